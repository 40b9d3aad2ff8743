// Package search holds the query and pagination state of a search results
// view. Fetches run in the background; only the response for the latest
// (query, page) pair may update what is visible.
package search

import (
	"context"
	"strings"
	"sync"

	"github.com/phuslu/log"

	"github.com/codyseavey/goblin-bookie/internal/models"
	"github.com/codyseavey/goblin-bookie/internal/viewmodel"
)

// Fetcher loads one page of cards matching a name
type Fetcher interface {
	FetchCardsByName(ctx context.Context, name string, pageSize, page int) ([]models.Card, error)
}

// State is a copy of the visible session state
type State struct {
	Query   string
	Page    int
	Cards   []models.Card
	Loading bool
	Err     error
}

// CanPrev reports whether the Previous control is enabled. Like Next, it is
// disabled while loading.
func (s State) CanPrev() bool {
	return !s.Loading && s.Page > 1
}

// CanNext reports whether the Next control is enabled. It is disabled while
// loading and after a short page.
func (s State) CanNext() bool {
	return !s.Loading && s.Err == nil && viewmodel.CanGoNext(len(s.Cards))
}

// Session is the query/pagination state machine
type Session struct {
	fetcher Fetcher
	ctx     context.Context

	mu      sync.Mutex
	query   string
	page    int
	cards   []models.Card
	loading bool
	err     error

	// seq tags every fetch; only the latest one may apply its result
	seq    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates an idle session on page 1. Fetches started by the
// session derive from ctx.
func NewSession(ctx context.Context, fetcher Fetcher) *Session {
	done := make(chan struct{})
	close(done)
	return &Session{
		fetcher: fetcher,
		ctx:     ctx,
		page:    1,
		done:    done,
	}
}

// SetQuery applies a query taken from navigation. A non-empty query starts
// over on page 1 and fetches. An empty query fetches nothing and clears the
// results.
func (s *Session) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = query
	s.page = 1
	if query == "" {
		s.invalidateLocked()
		s.cards = nil
		s.loading = false
		s.err = nil
		return
	}
	s.fetchLocked()
}

// Search handles a submitted search box. Surrounding whitespace is dropped
// and blank input is ignored. Returns whether a search was started.
func (s *Session) Search(input string) bool {
	query := strings.TrimSpace(input)
	if query == "" {
		return false
	}
	s.SetQuery(query)
	return true
}

// Next moves to the following page when the current one was full. Returns
// false when the control is disabled.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stateLocked().CanNext() || s.query == "" {
		return false
	}
	s.page++
	s.fetchLocked()
	return true
}

// Prev moves to the previous page, never below page 1. Returns false when
// already on page 1 or while a page is loading.
func (s *Session) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page <= 1 {
		s.page = 1
		return false
	}
	if !s.stateLocked().CanPrev() {
		return false
	}
	s.page--
	if s.query != "" {
		s.fetchLocked()
	}
	return true
}

// Snapshot returns the visible state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Await blocks until the latest fetch has finished or ctx is done
func (s *Session) Await(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any fetch in flight
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
}

func (s *Session) stateLocked() State {
	cards := make([]models.Card, len(s.cards))
	copy(cards, s.cards)
	return State{
		Query:   s.query,
		Page:    s.page,
		Cards:   cards,
		Loading: s.loading,
		Err:     s.err,
	}
}

// invalidateLocked cancels the current fetch and makes its result stale
func (s *Session) invalidateLocked() {
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *Session) fetchLocked() {
	s.invalidateLocked()

	seq := s.seq
	query, page := s.query, s.page
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})

	s.cancel = cancel
	s.done = done
	s.loading = true
	s.err = nil

	go func() {
		defer cancel()
		cards, err := s.fetcher.FetchCardsByName(ctx, query, viewmodel.PageSize, page)
		s.complete(seq, done, cards, err)
	}()
}

func (s *Session) complete(seq uint64, done chan struct{}, cards []models.Card, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		log.Debug().Str("query", s.query).Int("page", s.page).Msg("Search session: discarded stale response")
		return
	}

	s.loading = false
	s.cancel = nil
	if err != nil {
		log.Warn().Err(err).Str("query", s.query).Int("page", s.page).Msg("Search session: fetch failed")
		s.err = err
		s.cards = nil
	} else {
		s.cards = cards
	}
	close(done)
}
