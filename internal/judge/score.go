package judge

import (
	"time"

	"git.lost.host/meutraa/vsrg/internal/game"
)

// Score is the session accumulator. The engine is its only writer,
// everything downstream reads copies.
type Score struct {
	Score    float64
	Combo    int
	MaxCombo int
	Perfect  int
	Good     int
	Miss     int

	// Signed timing offsets, one per player hit, append only.
	// Auto-play hits are excluded.
	HitHistory []time.Duration

	// The modifier set active when the session started.
	Modifiers game.Modifier
}

// Snapshot is a detached copy safe to hand to the renderer, the engine
// keeps sole ownership of the live accumulator.
func (s *Score) Snapshot() Score {
	out := *s
	out.HitHistory = make([]time.Duration, len(s.HitHistory))
	copy(out.HitHistory, s.HitHistory)
	return out
}
