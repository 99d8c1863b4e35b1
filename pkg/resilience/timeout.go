package resilience

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout runs fn under a deadline. It returns when the deadline passes
// even if fn ignores its context; fn then finishes in the background and its
// result is dropped. A non-positive timeout runs fn directly.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s: %w after %v", name, context.DeadlineExceeded, timeout)
		}
		return fmt.Errorf("%s: %w", name, ctx.Err())
	}
}
