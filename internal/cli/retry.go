package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/preston-bernstein/scorekeeper-service/internal/match"
)

const (
	defaultReconnectAttempts = 5
	defaultReconnectBackoff  = 500 * time.Millisecond
)

type backoffFunc func(attempt int) time.Duration

type followFunc func(ctx context.Context, fn func(match.State)) error

// reconnectingFollower re-opens the event stream when it drops. Attempts reset
// once a connection delivers a state.
type reconnectingFollower struct {
	follow      followFunc
	warn        io.Writer
	maxAttempts int
	backoffFn   backoffFunc
}

func newReconnectingFollower(follow followFunc, warn io.Writer, maxAttempts int, backoff time.Duration) *reconnectingFollower {
	if maxAttempts <= 0 {
		maxAttempts = defaultReconnectAttempts
	}
	if backoff <= 0 {
		backoff = defaultReconnectBackoff
	}
	return &reconnectingFollower{
		follow:      follow,
		warn:        warn,
		maxAttempts: maxAttempts,
		backoffFn: func(attempt int) time.Duration {
			return time.Duration(attempt) * backoff
		},
	}
}

func (r *reconnectingFollower) Run(ctx context.Context, fn func(match.State)) error {
	var lastErr error
	attempt := 1
	for {
		delivered := false
		err := r.follow(ctx, func(st match.State) {
			delivered = true
			fn(st)
		})
		if ctx.Err() != nil {
			return nil
		}
		if delivered {
			attempt = 1
		}
		if err == nil {
			err = errStreamClosed
		}
		lastErr = err

		if attempt >= r.maxAttempts {
			break
		}

		delay := r.backoffFn(attempt)
		fmt.Fprintln(r.warn, warningStyle.Render(fmt.Sprintf("event stream lost (%v); reconnecting in %s", err, delay)))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		attempt++
	}
	return fmt.Errorf("event stream: gave up after %d attempts: %w", r.maxAttempts, lastErr)
}
