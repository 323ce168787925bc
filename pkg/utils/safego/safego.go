package safego

import (
	"context"
	"runtime/debug"

	"github.com/morgatz/gitseer/pkg/logger"
)

// Go runs fn in a new goroutine, recovering and logging any panic so a
// misbehaving background task cannot take down the process.
func Go(ctx context.Context, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("goroutine panic recovered: %v\n%s", r, debug.Stack())
			}
		}()
		if ctx != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
		fn()
	}()
}
