package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/goblin-bookie/internal/metrics"
	"github.com/codyseavey/goblin-bookie/internal/models"
)

// ErrNoSnapshot is returned when no stored detail exists for a card
var ErrNoSnapshot = errors.New("no stored snapshot")

// SnapshotService persists the last good detail for each card
type SnapshotService struct {
	db *gorm.DB
}

// NewSnapshotService creates a snapshot store backed by db
func NewSnapshotService(db *gorm.DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// Save upserts the snapshot for detail.UUID
func (s *SnapshotService) Save(detail *models.CardDetail, fetchedAt time.Time) error {
	snapshot, err := models.NewCardSnapshot(detail, fetchedAt)
	if err != nil {
		return err
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "set", "payload", "fetched_at", "updated_at"}),
	}).Create(snapshot).Error
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", detail.UUID, err)
	}

	s.updateGauge()
	return nil
}

// Get returns the stored detail and when it was fetched
func (s *SnapshotService) Get(uuid string) (*models.CardDetail, time.Time, error) {
	var snapshot models.CardSnapshot
	err := s.db.Where("uuid = ?", uuid).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load snapshot %s: %w", uuid, err)
	}

	detail, err := snapshot.Detail()
	if err != nil {
		return nil, time.Time{}, err
	}
	return detail, snapshot.FetchedAt, nil
}

// FetchedAt returns when uuid was last stored, or nil when it never was
func (s *SnapshotService) FetchedAt(uuid string) *time.Time {
	var snapshot models.CardSnapshot
	if err := s.db.Select("uuid", "fetched_at").Where("uuid = ?", uuid).First(&snapshot).Error; err != nil {
		return nil
	}
	return &snapshot.FetchedAt
}

// Oldest returns up to limit uuids fetched before cutoff, oldest first,
// skipping any listed in exclude
func (s *SnapshotService) Oldest(cutoff time.Time, limit int, exclude []string) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := s.db.Model(&models.CardSnapshot{}).Where("fetched_at < ?", cutoff)
	if len(exclude) > 0 {
		query = query.Where("uuid NOT IN ?", exclude)
	}

	var uuids []string
	if err := query.Order("fetched_at ASC").Limit(limit).Pluck("uuid", &uuids).Error; err != nil {
		return nil, fmt.Errorf("failed to list stale snapshots: %w", err)
	}
	return uuids, nil
}

// Count returns the number of stored snapshots
func (s *SnapshotService) Count() int64 {
	var count int64
	s.db.Model(&models.CardSnapshot{}).Count(&count)
	return count
}

func (s *SnapshotService) updateGauge() {
	metrics.StoredSnapshots.Set(float64(s.Count()))
}
