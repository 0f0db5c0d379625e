package upload

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
)

// Sweeper reconciles the blob store with the pipeline's outcomes. A
// canceled or failed transfer can leave a partial object behind (the
// pipeline issues no compensating delete of its own); the sweeper deletes
// those keys on a periodic pass.
type Sweeper struct {
	store    sitecontent.BlobStore
	logger   *slog.Logger
	interval time.Duration

	mu       sync.Mutex
	pending  map[string]struct{}
	orphaned map[string]struct{}
}

// NewSweeper creates a sweeper that deletes orphaned upload keys every
// interval when run.
func NewSweeper(store sitecontent.BlobStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:    store,
		logger:   logger,
		interval: interval,
		pending:  make(map[string]struct{}),
		orphaned: make(map[string]struct{}),
	}
}

// track records a key whose transfer has started.
func (s *Sweeper) track(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = struct{}{}
}

// settle records a transfer outcome: orphaned keys are queued for
// deletion, completed ones are forgotten.
func (s *Sweeper) settle(key string, orphaned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
	if orphaned {
		s.orphaned[key] = struct{}{}
	}
}

// Run executes sweep passes until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce deletes all currently orphaned keys and returns how many were
// removed. Keys whose delete fails stay queued for the next pass.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	s.mu.Lock()
	keys := make([]string, 0, len(s.orphaned))
	for key := range s.orphaned {
		keys = append(keys, key)
	}
	s.mu.Unlock()

	removed := 0
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Error("orphan sweep: delete failed", "key", key, "error", err)
			continue
		}
		s.mu.Lock()
		delete(s.orphaned, key)
		s.mu.Unlock()
		removed++
	}

	if removed > 0 {
		s.logger.Info("orphan sweep: removed objects", "count", removed)
	}
	return removed
}

// OrphanCount reports how many keys are queued for deletion.
func (s *Sweeper) OrphanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orphaned)
}
