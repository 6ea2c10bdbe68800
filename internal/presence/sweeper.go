package presence

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Expirer marks users offline once their heartbeat lapses.
type Expirer interface {
	ExpirePresence(ctx context.Context) ([]string, error)
}

// Sweeper periodically asks the Expirer to flip stale users offline.
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a sweeper. A non-positive interval defaults to 15s.
func NewSweeper(expirer Expirer, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Sweeper{
		expirer:  expirer,
		interval: interval,
		logger:   logger,
	}
}

// Start begins sweeping in the background.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx)
}

// Stop stops the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel = nil
	}
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	expired, err := s.expirer.ExpirePresence(ctx)
	if err != nil {
		s.logger.Error("presence sweep failed", zap.Error(err))
		return
	}
	if len(expired) > 0 {
		s.logger.Info("users went offline", zap.Strings("phones", expired))
	}
}
