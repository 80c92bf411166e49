package content

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
)

// RetryPolicy repeats an operation with a fixed delay while it fails with a retryable error.
// Errors rejected by Retryable stop the loop and are returned as is.
type RetryPolicy struct {
	Attempts  int
	Delay     time.Duration
	Retryable func(error) bool
}

// Do calls fn until it succeeds, fails with a non-retryable error or runs out of attempts.
// name is used in retry log messages.
func (p RetryPolicy) Do(ctx context.Context, name string, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var permanent, last error
	attempt := 0
	err := repeater.NewFixed(attempts, p.Delay).Do(ctx, func() error {
		attempt++
		err := fn()
		if err == nil {
			last = nil
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			permanent = err
			return nil // stop repeating, permanent error reported below
		}
		last = err
		if attempt < attempts {
			lgr.Printf("[WARN] %s: %v, retry %d/%d", name, err, attempt, attempts-1)
		}
		return err
	})

	if permanent != nil {
		return permanent
	}
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%s: %w", name, ctx.Err())
	}
	if last != nil {
		return fmt.Errorf("%s: giving up after %d attempts: %w", name, attempt, last)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
