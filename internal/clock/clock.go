package clock

import (
	"time"
)

// SongClock converts the source clock into song time. Song time only
// advances while the clock is running, pausing freezes it and resuming
// re-derives the zero reference so time never jumps.
//
// gameTime = (now - zero) * rate - userOffset - outputLatency
//
// The source is trusted to be best effort only. A stalled or
// non-monotonic source produces stalled or non-monotonic song time,
// never a crash, and callers judge nothing until it recovers.
type SongClock struct {
	src     Source
	rate    float64
	offset  time.Duration // User configured global audio offset
	zero    time.Time     // The real instant song time 0 plays
	running bool
	paused  time.Duration // Song time while not running
}

func New(src Source, rate float64, offset time.Duration) *SongClock {
	return &SongClock{
		src:    src,
		rate:   rate,
		offset: offset,
	}
}

func (c *SongClock) Rate() float64 {
	return c.rate
}

func (c *SongClock) Running() bool {
	return c.running
}

// Start begins a fresh session, audio playback is expected to begin
// leadIn from now.
func (c *SongClock) Start(leadIn time.Duration) {
	c.zero = c.src.Now().Add(leadIn)
	c.paused = 0
	c.running = true
}

// Pause freezes song time at its current value.
func (c *SongClock) Pause() {
	if !c.running {
		return
	}
	c.paused = c.Now()
	c.running = false
}

// Resume re-derives the zero reference from the paused song time.
func (c *SongClock) Resume() {
	if c.running {
		return
	}
	elapsed := float64(c.paused+c.offset+c.src.OutputLatency()) / c.rate
	c.zero = c.src.Now().Add(-time.Duration(elapsed))
	c.running = true
}

// Seek moves the paused song time, only sensible while not running.
func (c *SongClock) Seek(t time.Duration) {
	c.paused = t
}

// Now is the current song time, frozen at the pause point while not
// running and 0 before the first Start.
func (c *SongClock) Now() time.Duration {
	if !c.running {
		return c.paused
	}
	elapsed := c.src.Now().Sub(c.zero)
	return time.Duration(float64(elapsed)*c.rate) - c.offset - c.src.OutputLatency()
}
