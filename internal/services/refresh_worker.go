package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/codyseavey/goblin-bookie/internal/metrics"
)

// Constants for refresh worker configuration
const (
	defaultBatchSize       = 25
	defaultRefreshInterval = 15 * time.Minute

	// maxUrgentAttempts is how many batches a user-requested refresh is
	// retried for while the price API keeps failing
	maxUrgentAttempts = 3
)

// snapshotRefresher is the part of CardService the worker drives
type snapshotRefresher interface {
	Refresh(ctx context.Context, uuid string) (*DetailResult, error)
	StaleSnapshots(limit int, exclude []string) ([]string, error)
	SnapshotCount() int64
}

// WorkerConfig configures the refresh worker
type WorkerConfig struct {
	Interval  time.Duration
	BatchSize int
}

// RefreshWorker keeps stored card snapshots warm so the detail page has
// something to fall back on when the price API is down
type RefreshWorker struct {
	cards          snapshotRefresher
	updateInterval time.Duration
	batchSize      int
	mu             sync.RWMutex

	// Priority queue for user-requested refreshes
	urgentQueue    []string
	urgentAttempts map[string]int
	urgentMu       sync.Mutex

	// Stats (reset at midnight)
	cardsRefreshedToday int
	lastUpdateTime      time.Time
	lastStatsDay        time.Time
	lastError           string
}

// RefreshStatus is reported by GET /api/prices/status
type RefreshStatus struct {
	LastUpdateTime      time.Time `json:"last_update_time"`
	NextUpdateTime      time.Time `json:"next_update_time"`
	CardsRefreshedToday int       `json:"cards_refreshed_today"`
	BatchSize           int       `json:"batch_size"`
	QueueSize           int       `json:"queue_size"`
	StoredSnapshots     int64     `json:"stored_snapshots"`
	LastError           string    `json:"last_error,omitempty"`
}

// NewRefreshWorker creates a refresh worker for cards
func NewRefreshWorker(cards *CardService, cfg WorkerConfig) *RefreshWorker {
	return newRefreshWorker(cards, cfg)
}

func newRefreshWorker(cards snapshotRefresher, cfg WorkerConfig) *RefreshWorker {
	w := &RefreshWorker{
		cards:          cards,
		updateInterval: cfg.Interval,
		batchSize:      cfg.BatchSize,
		urgentAttempts: make(map[string]int),
	}
	if w.updateInterval <= 0 {
		w.updateInterval = defaultRefreshInterval
	}
	if w.batchSize <= 0 {
		w.batchSize = defaultBatchSize
	}
	return w
}

// QueueRefresh adds a card to the high-priority refresh queue and returns
// its 1-indexed position
func (w *RefreshWorker) QueueRefresh(uuid string) int {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()

	for i, id := range w.urgentQueue {
		if id == uuid {
			return i + 1
		}
	}
	w.urgentQueue = append(w.urgentQueue, uuid)
	metrics.RefreshQueueSize.Set(float64(len(w.urgentQueue)))
	log.Info().Str("uuid", uuid).Int("queue_size", len(w.urgentQueue)).Msg("Refresh worker: queued refresh")
	return len(w.urgentQueue)
}

// GetQueueSize returns current urgent queue size
func (w *RefreshWorker) GetQueueSize() int {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()
	return len(w.urgentQueue)
}

// resetDailyStatsIfNeeded resets cardsRefreshedToday at midnight
func (w *RefreshWorker) resetDailyStatsIfNeeded(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if w.lastStatsDay.Before(today) {
		if !w.lastStatsDay.IsZero() {
			log.Info().Int("refreshed", w.cardsRefreshedToday).Msg("Refresh worker: daily stats reset")
		}
		w.cardsRefreshedToday = 0
		w.lastStatsDay = today
	}
}

// Start runs batches on a ticker until ctx is cancelled
func (w *RefreshWorker) Start(ctx context.Context) {
	log.Info().Int("batch_size", w.batchSize).Dur("interval", w.updateInterval).Msg("Refresh worker started")

	if updated, err := w.UpdateBatch(ctx); err != nil {
		log.Warn().Err(err).Msg("Refresh worker: initial batch failed")
	} else {
		log.Info().Int("updated", updated).Msg("Refresh worker: initial batch done")
	}

	ticker := time.NewTicker(w.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Refresh worker stopping...")
			return
		case <-ticker.C:
			if updated, err := w.UpdateBatch(ctx); err != nil {
				log.Warn().Err(err).Msg("Refresh worker: batch failed")
			} else if updated > 0 {
				log.Info().Int("updated", updated).Msg("Refresh worker: batch done")
			}
		}
	}
}

// UpdateBatch refreshes one batch with priority ordering:
// 1. User-requested refreshes
// 2. Stored snapshots with the oldest fetch time
func (w *RefreshWorker) UpdateBatch(ctx context.Context) (int, error) {
	start := time.Now()
	w.resetDailyStatsIfNeeded(start)

	w.urgentMu.Lock()
	uuids := w.urgentQueue
	if len(uuids) > w.batchSize {
		uuids = append([]string(nil), uuids[:w.batchSize]...)
		w.urgentQueue = w.urgentQueue[w.batchSize:]
	} else {
		w.urgentQueue = nil
	}
	metrics.RefreshQueueSize.Set(float64(len(w.urgentQueue)))
	w.urgentMu.Unlock()

	urgentCount := len(uuids)
	if urgentCount > 0 {
		log.Info().Int("count", urgentCount).Msg("Refresh worker: processing urgent refresh requests")
	}

	if remaining := w.batchSize - len(uuids); remaining > 0 {
		stale, err := w.cards.StaleSnapshots(remaining, uuids)
		if err != nil {
			w.setError(err)
			return 0, err
		}
		uuids = append(uuids, stale...)
	}

	if len(uuids) == 0 {
		log.Debug().Msg("Refresh worker: nothing to refresh")
		return 0, nil
	}

	updated := 0
	var lastErr error
	for i, uuid := range uuids {
		if ctx.Err() != nil {
			// Urgent requests not yet attempted go back on the queue
			if i < urgentCount {
				w.requeueUrgent(uuids[i:urgentCount], false)
			}
			break
		}
		_, err := w.cards.Refresh(ctx, uuid)
		switch {
		case err == nil:
			updated++
			if i < urgentCount {
				w.forgetUrgent(uuid)
			}
		case errors.Is(err, ErrCardNotFound):
			log.Warn().Str("uuid", uuid).Msg("Refresh worker: card no longer exists upstream")
			if i < urgentCount {
				w.forgetUrgent(uuid)
			}
		default:
			log.Warn().Err(err).Str("uuid", uuid).Msg("Refresh worker: refresh failed")
			lastErr = err
			if i < urgentCount {
				w.requeueUrgent([]string{uuid}, true)
			}
		}
	}

	w.mu.Lock()
	w.cardsRefreshedToday += updated
	w.lastUpdateTime = time.Now()
	if lastErr != nil {
		w.lastError = lastErr.Error()
	} else {
		w.lastError = ""
	}
	w.mu.Unlock()

	metrics.RefreshBatchDuration.Observe(time.Since(start).Seconds())
	metrics.StoredSnapshots.Set(float64(w.cards.SnapshotCount()))

	log.Info().Int("updated", updated).Int("attempted", len(uuids)).Msg("Refresh worker: batch refreshed snapshots")
	return updated, nil
}

// requeueUrgent puts failed user-requested refreshes back on the queue until
// they run out of attempts
func (w *RefreshWorker) requeueUrgent(uuids []string, failed bool) {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()

	for _, uuid := range uuids {
		if failed {
			w.urgentAttempts[uuid]++
			if w.urgentAttempts[uuid] >= maxUrgentAttempts {
				log.Warn().Str("uuid", uuid).Int("attempts", w.urgentAttempts[uuid]).Msg("Refresh worker: giving up on queued refresh")
				delete(w.urgentAttempts, uuid)
				continue
			}
		}
		if !slices.Contains(w.urgentQueue, uuid) {
			w.urgentQueue = append(w.urgentQueue, uuid)
		}
	}
	metrics.RefreshQueueSize.Set(float64(len(w.urgentQueue)))
}

func (w *RefreshWorker) forgetUrgent(uuid string) {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()
	delete(w.urgentAttempts, uuid)
}

func (w *RefreshWorker) setError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastError = err.Error()
}

// GetStatus returns the current status
func (w *RefreshWorker) GetStatus() RefreshStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return RefreshStatus{
		LastUpdateTime:      w.lastUpdateTime,
		NextUpdateTime:      w.lastUpdateTime.Add(w.updateInterval),
		CardsRefreshedToday: w.cardsRefreshedToday,
		BatchSize:           w.batchSize,
		QueueSize:           w.GetQueueSize(),
		StoredSnapshots:     w.cards.SnapshotCount(),
		LastError:           w.lastError,
	}
}
