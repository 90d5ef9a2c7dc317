package game

import (
	"time"

	"blockworld/internal/config"
)

// FPSLimiter provides high-precision frame rate limiting
type FPSLimiter struct {
	settings *config.Settings
	next     time.Time
}

// NewFPSLimiter creates a limiter reading its cap from settings
func NewFPSLimiter(settings *config.Settings) *FPSLimiter {
	return &FPSLimiter{settings: settings}
}

// frameTime returns the target frame duration, or 0 when unlimited
func (f *FPSLimiter) frameTime(paused bool) time.Duration {
	limit := f.settings.FPSLimit()
	if paused && (limit <= 0 || limit > pausedFPS) {
		limit = pausedFPS
	}
	if limit <= 0 {
		return 0
	}
	return time.Second / time.Duration(limit)
}

// Wait blocks until the next frame should be rendered based on the FPS limit.
// Uses a hybrid sleep/spin approach for better precision on high FPS caps.
func (f *FPSLimiter) Wait(paused bool) {
	target := f.frameTime(paused)
	if target == 0 {
		f.next = time.Time{}
		return
	}

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// resync after a hitch instead of rushing frames to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
