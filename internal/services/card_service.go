package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/phuslu/log"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/goblin-bookie/internal/metrics"
	"github.com/codyseavey/goblin-bookie/internal/models"
	"github.com/codyseavey/goblin-bookie/internal/viewmodel"
)

const (
	// SnapshotStalenessThreshold is how old a stored snapshot can be before
	// the refresh worker fetches it again
	SnapshotStalenessThreshold = 24 * time.Hour

	defaultCacheSize = 256
	defaultCacheTTL  = 5 * time.Minute

	// sharedFetchTimeout bounds a coalesced fetch, which outlives any single caller
	sharedFetchTimeout = 30 * time.Second
)

// Where a card detail was served from
const (
	SourceCache    = "cache"
	SourceLive     = "live"
	SourceSnapshot = "snapshot"
)

// PriceAPI is the upstream surface the card service needs
type PriceAPI interface {
	FetchCardsByName(ctx context.Context, name string, pageSize, page int) ([]models.Card, error)
	FetchCardDetails(ctx context.Context, uuid string) (*models.CardDetail, error)
}

// DetailResult is a card detail plus where it came from. Stale is set when
// the upstream failed and a stored snapshot was served instead.
type DetailResult struct {
	Card      *models.CardDetail
	Source    string
	Stale     bool
	FetchedAt time.Time
}

// CacheConfig sizes the in-memory detail cache
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// CardService fronts the price API with a detail cache, request coalescing
// and a stored-snapshot fallback
type CardService struct {
	api       PriceAPI
	snapshots *SnapshotService
	db        *gorm.DB
	cache     *expirable.LRU[string, *DetailResult]
	group     singleflight.Group
	now       func() time.Time
}

// NewCardService creates a card service. db may be nil, in which case no
// snapshots or views are stored.
func NewCardService(api PriceAPI, db *gorm.DB, cfg CacheConfig) *CardService {
	size := cfg.Size
	if size <= 0 {
		size = defaultCacheSize
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	s := &CardService{
		api:   api,
		db:    db,
		cache: expirable.NewLRU[string, *DetailResult](size, nil, ttl),
		now:   time.Now,
	}
	if db != nil {
		s.snapshots = NewSnapshotService(db)
	}
	return s
}

// Search returns one page of cards matching name
func (s *CardService) Search(ctx context.Context, name string, page int) ([]models.Card, error) {
	return s.api.FetchCardsByName(ctx, name, viewmodel.PageSize, viewmodel.ClampPage(page))
}

// FetchCardsByName passes through to the price API so the service can back a
// search session directly
func (s *CardService) FetchCardsByName(ctx context.Context, name string, pageSize, page int) ([]models.Card, error) {
	return s.api.FetchCardsByName(ctx, name, pageSize, page)
}

// GetCard returns the detail for uuid.
// Order: detail cache -> live fetch -> stored snapshot (stale).
// A not-found answer is never masked by a snapshot.
func (s *CardService) GetCard(ctx context.Context, uuid string) (*DetailResult, error) {
	if cached, ok := s.cache.Get(uuid); ok {
		metrics.DetailCacheHits.Inc()
		metrics.DetailSource.WithLabelValues(SourceCache).Inc()
		return &DetailResult{Card: cached.Card, Source: SourceCache, FetchedAt: cached.FetchedAt}, nil
	}
	metrics.DetailCacheMisses.Inc()

	result, err := s.fetch(ctx, uuid)
	if err == nil {
		metrics.DetailSource.WithLabelValues(SourceLive).Inc()
		return result, nil
	}
	if errors.Is(err, ErrCardNotFound) || ctx.Err() != nil {
		return nil, err
	}

	stale, snapErr := s.fromSnapshot(uuid)
	if snapErr != nil {
		if !errors.Is(snapErr, ErrNoSnapshot) {
			log.Warn().Err(snapErr).Str("uuid", uuid).Msg("Card service: snapshot lookup failed")
		}
		return nil, err
	}

	log.Info().Err(err).Str("uuid", uuid).Time("fetched_at", stale.FetchedAt).
		Msg("Card service: price API unavailable, serving stored snapshot")
	metrics.DetailSource.WithLabelValues(SourceSnapshot).Inc()
	return stale, nil
}

// Refresh fetches uuid from the price API, bypassing the cache
func (s *CardService) Refresh(ctx context.Context, uuid string) (*DetailResult, error) {
	s.cache.Remove(uuid)
	result, err := s.fetch(ctx, uuid)
	if err != nil {
		return nil, err
	}
	metrics.SnapshotRefreshesTotal.Inc()
	return result, nil
}

// fetch coalesces concurrent live fetches for one uuid. The shared fetch is
// detached from the caller that started it; each caller only stops waiting
// when its own context is done.
func (s *CardService) fetch(ctx context.Context, uuid string) (*DetailResult, error) {
	ch := s.group.DoChan(uuid, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		detail, err := s.api.FetchCardDetails(fetchCtx, uuid)
		if err != nil {
			return nil, err
		}
		if detail.UUID == "" {
			detail.UUID = uuid
		}

		fetchedAt := s.now()
		if s.snapshots != nil {
			if err := s.snapshots.Save(detail, fetchedAt); err != nil {
				log.Warn().Err(err).Str("uuid", uuid).Msg("Card service: failed to store snapshot")
			}
		}

		result := &DetailResult{Card: detail, Source: SourceLive, FetchedAt: fetchedAt}
		s.cache.Add(uuid, result)
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*DetailResult), nil
	}
}

func (s *CardService) fromSnapshot(uuid string) (*DetailResult, error) {
	if s.snapshots == nil {
		return nil, ErrNoSnapshot
	}
	detail, fetchedAt, err := s.snapshots.Get(uuid)
	if err != nil {
		return nil, err
	}
	return &DetailResult{Card: detail, Source: SourceSnapshot, Stale: true, FetchedAt: fetchedAt}, nil
}

// NeedsRefresh returns true if the card's snapshot is missing or stale
func (s *CardService) NeedsRefresh(uuid string) bool {
	if s.snapshots == nil {
		return false
	}
	return !s.isFresh(s.snapshots.FetchedAt(uuid))
}

// isFresh checks if a fetch time is within the staleness threshold
func (s *CardService) isFresh(fetchedAt *time.Time) bool {
	if fetchedAt == nil {
		return false
	}
	return s.now().Sub(*fetchedAt) < SnapshotStalenessThreshold
}

// StaleSnapshots returns up to limit uuids whose snapshots need a refresh
func (s *CardService) StaleSnapshots(limit int, exclude []string) ([]string, error) {
	if s.snapshots == nil {
		return nil, nil
	}
	return s.snapshots.Oldest(s.now().Add(-SnapshotStalenessThreshold), limit, exclude)
}

// RecordView bumps the view counter for a card opened on the detail page
func (s *CardService) RecordView(card *models.CardDetail) error {
	if s.db == nil || card == nil || card.UUID == "" {
		return nil
	}

	view := models.CardView{
		CardUUID:     card.UUID,
		Name:         card.Name,
		Set:          card.Set,
		ImageURL:     card.ImageURL,
		ViewCount:    1,
		LastViewedAt: s.now(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "card_uuid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":           view.Name,
			"set":            view.Set,
			"image_url":      view.ImageURL,
			"last_viewed_at": view.LastViewedAt,
			"view_count":     gorm.Expr("view_count + 1"),
		}),
	}).Create(&view).Error
	if err != nil {
		return fmt.Errorf("failed to record view for %s: %w", card.UUID, err)
	}
	return nil
}

// RecentlyViewed returns the most recently opened cards, newest first
func (s *CardService) RecentlyViewed(limit int) ([]models.CardView, error) {
	if s.db == nil {
		return nil, nil
	}
	var views []models.CardView
	if err := s.db.Order("last_viewed_at DESC").Limit(limit).Find(&views).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent views: %w", err)
	}
	return views, nil
}

// SnapshotCount returns how many card snapshots are stored
func (s *CardService) SnapshotCount() int64 {
	if s.snapshots == nil {
		return 0
	}
	return s.snapshots.Count()
}
