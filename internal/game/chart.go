package game

import (
	"time"
)

type Chart struct {
	Notes      []*Note
	Measures   []*Measure
	NoteCount  int64
	HoldCount  int64
	CatchCount int64
	Difficulty Difficulty
}

// Clone deep copies the chart so a session can mutate judgment state
// without touching the parsed source chart.
func (c *Chart) Clone() *Chart {
	notes := make([]*Note, len(c.Notes))
	for i, n := range c.Notes {
		nn := *n
		notes[i] = &nn
	}
	return &Chart{
		Notes:      notes,
		Measures:   c.Measures,
		NoteCount:  c.NoteCount,
		HoldCount:  c.HoldCount,
		CatchCount: c.CatchCount,
		Difficulty: c.Difficulty,
	}
}

// End is the time the last note stops being playable.
func (c *Chart) End() time.Duration {
	var end time.Duration
	for _, n := range c.Notes {
		if e := n.EndTime(); e > end {
			end = e
		}
	}
	return end
}
