package game

import (
	"testing"
	"time"

	"blockworld/internal/config"
)

func TestFPSLimiterFrameTime(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		paused bool
		want   time.Duration
	}{
		{"capped", 100, false, 10 * time.Millisecond},
		{"unlimited", 0, false, 0},
		{"paused unlimited", 0, true, time.Second / pausedFPS},
		{"paused high cap", 240, true, time.Second / pausedFPS},
		{"paused low cap", 10, true, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.Default()
			s.SetFPSLimit(tt.limit)
			if got := NewFPSLimiter(s).frameTime(tt.paused); got != tt.want {
				t.Fatalf("frameTime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFPSLimiterPacesFrames(t *testing.T) {
	s := config.Default()
	s.SetFPSLimit(200)
	f := NewFPSLimiter(s)

	start := time.Now()
	for i := 0; i < 10; i++ {
		f.Wait(false)
	}
	if el := time.Since(start); el < 45*time.Millisecond {
		t.Fatalf("10 frames at 200 fps took %v", el)
	}
}
