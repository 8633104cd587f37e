package status

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler drives periodic refreshes of the owner's devices and each
// tracked contact's devices.
type Scheduler struct {
	cache    *Cache
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a refresh scheduler.
func NewScheduler(cache *Cache, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval == 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		cache:    cache,
		interval: interval,
		logger:   logger,
	}
}

// Start runs one immediate refresh pass, then repeats every interval until
// Stop is called. Calling Start while running is a no-op: there is never
// more than one active timer.
func (s *Scheduler) Start(ctx context.Context, ownerID string, contactIDs []string) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Debug("auto refresh already running")
		return
	}
	s.running = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	contacts := make([]string, len(contactIDs))
	copy(contacts, contactIDs)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// Run immediately on start, then on each tick.
		s.pass(runCtx, ownerID, contacts)

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.pass(runCtx, ownerID, contacts)
			}
		}
	}()

	s.logger.Info("auto refresh started",
		zap.String("owner", ownerID),
		zap.Int("contacts", len(contacts)),
		zap.Duration("interval", s.interval),
	)
}

// Stop cancels the refresh loop and waits for the in-flight pass to finish.
// Calling Stop when not running is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("auto refresh stopped")
}

// Running reports whether the refresh loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interval returns the configured refresh interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// pass refreshes the owner and every contact once. Each refresh is
// independent; a failure is logged and the pass moves on.
func (s *Scheduler) pass(ctx context.Context, ownerID string, contactIDs []string) {
	passCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	if res, err := s.cache.RefreshOwnDevices(passCtx, ownerID); err != nil {
		s.logger.Warn("own-device refresh failed", zap.String("owner", ownerID), zap.Error(err))
	} else {
		s.logger.Debug("own-device refresh complete",
			zap.Int("fetched", res.Fetched),
			zap.Int("probed", res.Probed),
			zap.Int("probe_failures", res.ProbeFailures),
			zap.Int("skipped", res.Skipped),
		)
	}

	for _, contactID := range contactIDs {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.cache.RefreshContactDevices(passCtx, contactID); err != nil {
			s.logger.Warn("contact refresh failed", zap.String("contact", contactID), zap.Error(err))
		}
	}
}
