package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper removes expired in-memory state and reports how many entries it dropped
type Sweeper interface {
	Sweep() int
}

// CleanupManager periodically sweeps expired sessions and stale login-attempt records.
// Sweeping only bounds memory; expiry is still enforced lazily on every lookup.
type CleanupManager struct {
	sweepers map[string]Sweeper
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCleanupManager creates a new cleanup manager. sweepers is keyed by a name used in logs.
func NewCleanupManager(
	sweepers map[string]Sweeper,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		sweepers: sweepers,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task and blocks until stopped.
// A non-positive interval returns immediately.
func (cm *CleanupManager) Start(ctx context.Context) {
	if cm.interval <= 0 {
		cm.logger.Info("cleanup manager disabled")
		return
	}

	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.RunOnce()
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// RunOnce sweeps every registered store once
func (cm *CleanupManager) RunOnce() {
	for name, s := range cm.sweepers {
		if removed := s.Sweep(); removed > 0 {
			cm.logger.Info("expired state swept",
				slog.String("store", name),
				slog.Int("removed", removed))
		}
	}
}

// Stop signals the cleanup manager to stop. Safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
