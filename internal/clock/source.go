package clock

import (
	"time"
)

// Source is the free-running real clock a song clock derives from.
// It is injected so judgment is testable without a live audio device.
type Source interface {
	Now() time.Time
	// OutputLatency is the best-effort delay of the audio pipeline,
	// 0 when unknown.
	OutputLatency() time.Duration
}

// SystemSource reads the monotonic system clock. Latency is usually the
// speaker buffer duration.
type SystemSource struct {
	Latency time.Duration
}

func (s *SystemSource) Now() time.Time {
	return time.Now()
}

func (s *SystemSource) OutputLatency() time.Duration {
	return s.Latency
}
