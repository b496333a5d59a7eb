package control

import (
	"context"
	"time"
)

// Poll forwards samples from src into b every interval until ctx ends.
// It is the input-device goroutine; it returns ctx.Err().
func Poll(ctx context.Context, src PoseSource, b *Binding, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if p, ok := src.Pose(); ok {
			b.UpdateFromExternalPose(p.Position, p.Orientation)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
