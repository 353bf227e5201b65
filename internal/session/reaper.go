package session

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunReaper ticks ReapIdle on interval until ctx is cancelled, logging
// how many sessions it evicted. Intended to be launched via an
// errgroup.Group alongside the HTTP server so both are cancelled
// together on shutdown.
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration, logger *slog.Logger) error {
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("session reaper started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if n := m.ReapIdle(now); n > 0 {
				logger.Info("session reaper evicted idle sessions", "count", n)
			}
		}
	}
}

// StartReaper launches RunReaper under an errgroup bound to ctx, returning
// the group so the caller can Wait() on shutdown.
func StartReaper(ctx context.Context, m *Manager, interval time.Duration, logger *slog.Logger) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.RunReaper(gctx, interval, logger)
	})
	return g, gctx
}
