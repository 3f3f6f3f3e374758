package testing

import (
	"context"
	"time"

	"github.com/tilinna/clock"
)

// Epoch is where advancing clocks start.
var Epoch = time.Unix(1, 0)

// NewAdvancingClock attaches a mock clock to ctx that jumps straight to the
// next pending timer, so poll loops run without real sleeps. The returned
// function stops the clock; it also stops when ctx is cancelled.
func NewAdvancingClock(ctx context.Context) (context.Context, *clock.Mock, func()) {
	clck := clock.NewMock(Epoch)
	ctx = clock.Context(ctx, clck)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			default:
				if _, d := clck.AddNext(); d == 0 {
					time.Sleep(time.Microsecond)
				}
			}
		}
	}()
	return ctx, clck, func() { close(done) }
}
