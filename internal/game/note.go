package game

import (
	"time"
)

type Kind uint8

const (
	// KindNormal is judged on a lane engage edge.
	KindNormal Kind = iota
	// KindCatch is judged continuously while the lane is engaged.
	KindCatch
)

type Note struct {
	Lane     uint8 // The chart column
	Kind     Kind
	Denom    int           // The beat length, as a denominator, 4 = 1/4 beat
	Time     time.Duration // The time the note head should be hit
	Duration time.Duration // 0 for a tap, >0 for a hold

	// This is judgment state, only the session copy is ever mutated
	Hit     bool // Set once the note has resolved, including misses
	Missed  bool // Missed implies Hit so the note is not re-evaluated
	Holding bool // The hold head was hit and the lane is still engaged
}

func (n *Note) EndTime() time.Duration {
	return n.Time + n.Duration
}

// Terminal reports whether the note can no longer change state at song time t.
func (n *Note) Terminal(t time.Duration) bool {
	if n.Missed {
		return true
	}
	if !n.Hit {
		return false
	}
	if n.Duration == 0 {
		return true
	}
	return t >= n.EndTime()
}
