package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Pinger is anything that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Health pings the backing stores for the health endpoint.
type Health struct {
	deps map[string]Pinger
}

// NewHealth creates a Health over named dependencies.
func NewHealth(deps map[string]Pinger) *Health {
	return &Health{deps: deps}
}

// Check pings every dependency with a short timeout and reports "ok" or the
// error text per dependency, plus whether all of them are healthy.
func (h *Health) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.deps))
	healthy := true
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	return status, healthy
}

const (
	startupAttempts = 5
	startupBackoff  = time.Second
	pingTimeout     = 5 * time.Second
)

// waitReady pings p until it answers, doubling the wait between attempts.
// It gives up after attempts tries or when ctx ends.
func waitReady(ctx context.Context, p Pinger, attempts int, backoff time.Duration, log zerolog.Logger) error {
	var err error
	for i := 1; i <= attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = p.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if i == attempts {
			break
		}

		log.Warn().Err(err).Int("attempt", i).Dur("retry_in", backoff).Msg("Not ready, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
