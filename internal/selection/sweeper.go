package selection

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

// DefaultSweepInterval is how often abandoned selections are collected
const DefaultSweepInterval = 60 * time.Second

// Sweeper periodically drops expired selections from a Store
type Sweeper struct {
	store     *Store
	interval  time.Duration
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewSweeper creates a sweeper for store
func NewSweeper(store *Store, interval time.Duration, clock adapter.Clock) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		store:     store,
		interval:  interval,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *Sweeper) Name() string {
	return "selection-sweeper"
}

// Start blocks, sweeping every interval until ctx is canceled or Stop is called
func (s *Sweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting selection sweeper", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopChan:
			return nil
		case <-s.clock.After(s.interval):
			if removed := s.store.Sweep(); removed > 0 {
				logger.DebugCtx(ctx, "Swept expired selections",
					zap.Int("removed", removed),
					zap.Int("remaining", s.store.Len()),
				)
			}
		}
	}
}

// Stop signals the loop to exit and waits for it within ctx
func (s *Sweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Selection sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
