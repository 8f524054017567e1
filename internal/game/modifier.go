package game

import (
	"strings"
)

// Modifier is a set of session-wide toggles, fixed before play starts.
// The menu enforces exclusivity (DoubleTime/HalfTime, SuddenDeath/Auto),
// the engine trusts the set as given.
type Modifier uint8

const (
	ModDoubleTime Modifier = 1 << iota
	ModHalfTime
	ModHardRock
	ModSuddenDeath
	ModHidden
	ModFlashlight
	ModAuto
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModDoubleTime, "DT"},
	{ModHalfTime, "HT"},
	{ModHardRock, "HR"},
	{ModSuddenDeath, "SD"},
	{ModHidden, "HD"},
	{ModFlashlight, "FL"},
	{ModAuto, "AT"},
}

func (m Modifier) Has(f Modifier) bool {
	return m&f != 0
}

func (m Modifier) String() string {
	if m == 0 {
		return "none"
	}
	parts := []string{}
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, ",")
}

// Effects are the concrete numbers a modifier set resolves to,
// computed once per session.
type Effects struct {
	Rate        float64 // Playback rate, also applied to the game clock
	WindowScale float64 // Scale on every hit window, <1 is stricter
	Multiplier  float64 // Total score multiplier, 0 under auto-play
	Auto        bool
	SuddenDeath bool

	// Rendering concerns, carried here so the renderer never
	// re-derives anything from the raw set
	Hidden     bool
	Flashlight bool
}

// Resolve maps the set to its numeric effects. Contributions to the
// multiplier compose multiplicatively, auto-play forces it to zero.
func (m Modifier) Resolve() Effects {
	e := Effects{
		Rate:        1.0,
		WindowScale: 1.0,
		Multiplier:  1.0,
		Auto:        m.Has(ModAuto),
		SuddenDeath: m.Has(ModSuddenDeath),
		Hidden:      m.Has(ModHidden),
		Flashlight:  m.Has(ModFlashlight),
	}
	if m.Has(ModDoubleTime) {
		e.Rate = 1.5
		e.Multiplier *= 1.2
	}
	if m.Has(ModHalfTime) {
		e.Rate = 0.75
		e.Multiplier *= 0.5
	}
	if m.Has(ModHardRock) {
		e.WindowScale = 0.7
		e.Multiplier *= 1.1
	}
	if m.Has(ModHidden) {
		e.Multiplier *= 1.06
	}
	if m.Has(ModFlashlight) {
		e.Multiplier *= 1.12
	}
	if m.Has(ModAuto) {
		e.Multiplier = 0
	}
	return e
}
