package session

import (
	"context"
	"time"
)

// TickInterval is how often a running session's elapsed time is re-read.
const TickInterval = time.Second

// Run drives a 1-second tick for the controller's lifetime, calling onTick
// with the current elapsed seconds while a session is running unpaused.
// Elapsed time is always recomputed from the start timestamp, never
// incremented, so a suspended process self-corrects on the next tick
// instead of accumulating drift.
//
// Run blocks until ctx is cancelled; the ticker is stopped on the way out
// so no callback can fire against a torn-down controller.
func (c *Controller) Run(ctx context.Context, onTick func(elapsed int)) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			active, elapsed := c.Active()
			if active == nil || active.IsPaused {
				continue
			}
			if onTick != nil {
				onTick(elapsed)
			}
		}
	}
}
