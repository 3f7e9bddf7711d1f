package appstate

import (
	"context"
	"time"
)

// RunRefresher calls LoadWeather every interval until ctx is cancelled.
// A non-positive interval returns immediately.
func (s *Store) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("weather refresher started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("weather refresher stopping", "reason", ctx.Err())
			return
		case <-ticker.Chan():
			s.LoadWeather(ctx)
		}
	}
}

// StartBackground performs one refresh and then runs the refresher, both on a
// new goroutine. The returned channel is closed once that goroutine has
// returned, after which background work no longer touches the store.
func (s *Store) StartBackground(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.LoadWeather(ctx)
		s.RunRefresher(ctx, interval)
	}()
	return done
}
