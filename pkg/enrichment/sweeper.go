package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically removes expired cache entries on a cron schedule.
// It is the mitigation for the cache's lazy-eviction tradeoff: under
// write-heavy load without reads, expired entries would otherwise
// accumulate until restart.
type Sweeper struct {
	cache    *ContextCache
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper for the given cache. The schedule is a cron
// expression (e.g. "@every 5m" or "*/10 * * * *"). An empty schedule
// disables sweeping.
func NewSweeper(cache *ContextCache, schedule string) *Sweeper {
	return &Sweeper{
		cache:    cache,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "enrichment.sweeper"),
	}
}

// Start begins scheduled sweeping. It returns immediately; sweeping stops
// when the context is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping sweeper")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		removed := s.cache.Sweep()
		if removed > 0 {
			s.logger.Info("cache sweep completed", "removed", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("cache sweeper started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled sweeping and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false
	s.logger.Info("cache sweeper stopped")
}
