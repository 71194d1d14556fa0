// Package limiter provides global resource limiters for external processes.
package limiter

import (
	"context"

	"video-narrator/internal/config"
)

// execSemaphore limits concurrent ffmpeg/ffprobe processes across the app.
var execSemaphore = make(chan struct{}, config.MaxConcurrentExec)

// AcquireExecSlot blocks until a process slot is available or ctx is done.
func AcquireExecSlot(ctx context.Context) error {
	select {
	case execSemaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReleaseExecSlot releases a slot taken by AcquireExecSlot (use defer).
func ReleaseExecSlot() {
	<-execSemaphore
}
