// Package summary keeps the dashboard's aggregated view: income, expense
// and balance totals plus per-category maps for the active date range.
//
// The backend computes the numbers; this service owns the client-side
// state slice. Responses fully replace the previous state. Each refresh
// is tagged with a monotonic request id and a response is dropped when a
// newer refresh was issued while it was in flight, so rapid date-range
// changes cannot leave an older response on screen.
package summary

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"trirule/internal/api"
	"trirule/internal/cache"
	"trirule/internal/log"
)

const (
	cacheSize = 32
	cacheTTL  = time.Minute
)

// Fetcher is the slice of the backend client this service needs.
type Fetcher interface {
	Summary(ctx context.Context, start, end string) (api.SummaryReport, error)
}

// State is the current summary view. Start/End are the YYYY-MM-DD bounds
// it was computed for; Loaded is false until the first successful fetch.
type State struct {
	Start  string
	End    string
	Report api.SummaryReport
	Loaded bool
}

type Service struct {
	fetcher Fetcher
	cache   *cache.LRUCache[api.SummaryReport]
	logger  *slog.Logger

	mu     sync.Mutex
	lastID uint64
	state  State
}

func NewService(fetcher Fetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		cache:   cache.NewLRUCache[api.SummaryReport](cacheSize, cacheTTL),
		logger:  logger,
	}
}

// Refresh fetches the summary for [start, end] and, unless a newer
// refresh superseded this one, replaces the current state with it.
func (s *Service) Refresh(ctx context.Context, start, end string) (api.SummaryReport, error) {
	s.mu.Lock()
	s.lastID++
	id := s.lastID
	c := s.cache
	s.mu.Unlock()

	key := start + ".." + end
	report, ok := c.Get(key)
	if !ok {
		var err error
		report, err = s.fetcher.Summary(ctx, start, end)
		if err != nil {
			return api.SummaryReport{}, err
		}
		c.Set(key, report)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.lastID {
		s.logger.Debug("dropping stale summary response",
			log.FieldOperation, log.OpRefresh,
			"request_id", id,
			"latest_id", s.lastID,
			"range", key)
		return report, nil
	}
	s.state = State{Start: start, End: end, Report: report, Loaded: true}
	return report, nil
}

// Current returns the last applied state.
func (s *Service) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Invalidate drops all cached reports; call it after any mutation so the
// next refresh reflects the change.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = cache.NewLRUCache[api.SummaryReport](cacheSize, cacheTTL)
}

// CleanExpired sweeps expired cache entries; the cache manager calls it
// periodically.
func (s *Service) CleanExpired() int {
	s.mu.Lock()
	c := s.cache
	s.mu.Unlock()
	return c.CleanExpired()
}
