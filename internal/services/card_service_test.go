package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codyseavey/goblin-bookie/internal/database"
	"github.com/codyseavey/goblin-bookie/internal/models"
)

// fakeAPI serves details from a map and can be switched to fail
type fakeAPI struct {
	mu      sync.Mutex
	details map[string]*models.CardDetail
	err     error
	calls   int32
	gate    chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{details: map[string]*models.CardDetail{
		"bolt": {UUID: "bolt", Name: "Lightning Bolt", Set: "M10", Finishes: []string{"normal"}},
	}}
}

func (f *fakeAPI) FetchCardsByName(_ context.Context, name string, pageSize, page int) ([]models.Card, error) {
	return []models.Card{{UUID: name, Name: name}}, nil
}

func (f *fakeAPI) FetchCardDetails(ctx context.Context, uuid string) (*models.CardDetail, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[uuid]
	if !ok {
		return nil, ErrCardNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeAPI) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeAPI) Calls() int {
	return int(atomic.LoadInt32(&f.calls))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(":memory:", "silent")
	require.NoError(t, err)
	return db
}

func TestCardService_LiveThenCache(t *testing.T) {
	api := newFakeAPI()
	svc := NewCardService(api, newTestDB(t), CacheConfig{})

	first, err := svc.GetCard(context.Background(), "bolt")
	require.NoError(t, err)
	assert.Equal(t, SourceLive, first.Source)
	assert.False(t, first.Stale)

	second, err := svc.GetCard(context.Background(), "bolt")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, "Lightning Bolt", second.Card.Name)
	assert.Equal(t, 1, api.Calls())
}

func TestCardService_SnapshotFallbackWhenUnavailable(t *testing.T) {
	api := newFakeAPI()
	svc := NewCardService(api, newTestDB(t), CacheConfig{TTL: time.Millisecond})

	_, err := svc.GetCard(context.Background(), "bolt")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	api.setErr(errors.New("price API returned status 503"))
	result, err := svc.GetCard(context.Background(), "bolt")
	require.NoError(t, err)
	assert.Equal(t, SourceSnapshot, result.Source)
	assert.True(t, result.Stale)
	assert.Equal(t, "Lightning Bolt", result.Card.Name)
	assert.False(t, result.FetchedAt.IsZero())
}

func TestCardService_NoSnapshotReturnsError(t *testing.T) {
	api := newFakeAPI()
	api.setErr(errors.New("connection refused"))
	svc := NewCardService(api, newTestDB(t), CacheConfig{})

	_, err := svc.GetCard(context.Background(), "bolt")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCardNotFound))
}

func TestCardService_NotFoundNeverUsesSnapshot(t *testing.T) {
	api := newFakeAPI()
	db := newTestDB(t)
	svc := NewCardService(api, db, CacheConfig{})

	// A snapshot exists but the upstream says the card is gone
	require.NoError(t, NewSnapshotService(db).Save(&models.CardDetail{UUID: "gone", Name: "Old"}, time.Now()))

	_, err := svc.GetCard(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestCardService_WithoutDatabase(t *testing.T) {
	api := newFakeAPI()
	svc := NewCardService(api, nil, CacheConfig{})

	result, err := svc.GetCard(context.Background(), "bolt")
	require.NoError(t, err)
	assert.Equal(t, SourceLive, result.Source)
	assert.False(t, svc.NeedsRefresh("bolt"))
	assert.NoError(t, svc.RecordView(result.Card))
	assert.Zero(t, svc.SnapshotCount())
}

func TestCardService_CoalescesConcurrentFetches(t *testing.T) {
	api := newFakeAPI()
	api.gate = make(chan struct{})
	svc := NewCardService(api, nil, CacheConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetCard(context.Background(), "bolt")
			assert.NoError(t, err)
		}()
	}

	// Let the callers pile up behind the first fetch
	time.Sleep(20 * time.Millisecond)
	close(api.gate)
	wg.Wait()

	assert.Equal(t, 1, api.Calls())
}

func TestCardService_CancelledCallerDoesNotFailOthers(t *testing.T) {
	api := newFakeAPI()
	api.gate = make(chan struct{})
	db := newTestDB(t)
	svc := NewCardService(api, db, CacheConfig{})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetCard(firstCtx, "bolt")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return api.Calls() == 1 }, time.Second, time.Millisecond)

	type outcome struct {
		result *DetailResult
		err    error
	}
	second := make(chan outcome, 1)
	go func() {
		r, err := svc.GetCard(context.Background(), "bolt")
		second <- outcome{r, err}
	}()

	// Let the second caller join the in-flight fetch, then drop the first
	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(api.gate)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, SourceLive, got.result.Source)
	assert.False(t, got.result.Stale)
	assert.Equal(t, 1, api.Calls())
}

func TestCardService_RefreshBypassesCache(t *testing.T) {
	api := newFakeAPI()
	svc := NewCardService(api, newTestDB(t), CacheConfig{})

	_, err := svc.GetCard(context.Background(), "bolt")
	require.NoError(t, err)

	result, err := svc.Refresh(context.Background(), "bolt")
	require.NoError(t, err)
	assert.Equal(t, SourceLive, result.Source)
	assert.Equal(t, 2, api.Calls())
}

func TestCardService_NeedsRefresh(t *testing.T) {
	db := newTestDB(t)
	svc := NewCardService(newFakeAPI(), db, CacheConfig{})
	snapshots := NewSnapshotService(db)

	assert.True(t, svc.NeedsRefresh("missing"))

	require.NoError(t, snapshots.Save(&models.CardDetail{UUID: "fresh"}, time.Now().Add(-time.Hour)))
	assert.False(t, svc.NeedsRefresh("fresh"))

	require.NoError(t, snapshots.Save(&models.CardDetail{UUID: "old"}, time.Now().Add(-SnapshotStalenessThreshold-time.Hour)))
	assert.True(t, svc.NeedsRefresh("old"))

	stale, err := svc.StaleSnapshots(10, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, stale)
}

func TestIsFresh(t *testing.T) {
	svc := &CardService{now: time.Now}

	tests := []struct {
		name string
		at   *time.Time
		want bool
	}{
		{"nil", nil, false},
		{"one hour ago", timePtr(time.Now().Add(-time.Hour)), true},
		{"just within threshold", timePtr(time.Now().Add(-SnapshotStalenessThreshold + time.Minute)), true},
		{"beyond threshold", timePtr(time.Now().Add(-SnapshotStalenessThreshold - time.Hour)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.isFresh(tt.at))
		})
	}
}

func TestCardService_RecordViewAndRecentlyViewed(t *testing.T) {
	svc := NewCardService(newFakeAPI(), newTestDB(t), CacheConfig{})

	clock := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	require.NoError(t, svc.RecordView(&models.CardDetail{UUID: "bolt", Name: "Lightning Bolt", Set: "M10"}))
	clock = clock.Add(time.Minute)
	require.NoError(t, svc.RecordView(&models.CardDetail{UUID: "opal", Name: "Mox Opal", Set: "SOM"}))
	clock = clock.Add(time.Minute)
	require.NoError(t, svc.RecordView(&models.CardDetail{UUID: "bolt", Name: "Lightning Bolt", Set: "2XM"}))

	views, err := svc.RecentlyViewed(10)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "bolt", views[0].CardUUID)
	assert.Equal(t, 2, views[0].ViewCount)
	assert.Equal(t, "2XM", views[0].Set)
	assert.Equal(t, "opal", views[1].CardUUID)
	assert.Equal(t, 1, views[1].ViewCount)
}

func TestCardService_Search(t *testing.T) {
	svc := NewCardService(newFakeAPI(), nil, CacheConfig{})

	cards, err := svc.Search(context.Background(), "bolt", 0)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "bolt", cards[0].UUID)
}

func TestSnapshotService_Oldest(t *testing.T) {
	snapshots := NewSnapshotService(newTestDB(t))
	now := time.Now()

	require.NoError(t, snapshots.Save(&models.CardDetail{UUID: "a"}, now.Add(-3*time.Hour)))
	require.NoError(t, snapshots.Save(&models.CardDetail{UUID: "b"}, now.Add(-2*time.Hour)))
	require.NoError(t, snapshots.Save(&models.CardDetail{UUID: "c"}, now.Add(-time.Hour)))
	require.NoError(t, snapshots.Save(&models.CardDetail{UUID: "d"}, now))

	uuids, err := snapshots.Oldest(now.Add(-30*time.Minute), 10, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, uuids)

	uuids, err = snapshots.Oldest(now.Add(-30*time.Minute), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, uuids)

	assert.Equal(t, int64(4), snapshots.Count())
}

func TestSnapshotService_SaveOverwrites(t *testing.T) {
	snapshots := NewSnapshotService(newTestDB(t))

	require.NoError(t, snapshots.Save(&models.CardDetail{UUID: "a", Name: "Old"}, time.Now()))
	require.NoError(t, snapshots.Save(&models.CardDetail{UUID: "a", Name: "New"}, time.Now()))

	detail, _, err := snapshots.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "New", detail.Name)
	assert.Equal(t, int64(1), snapshots.Count())

	_, _, err = snapshots.Get("missing")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
