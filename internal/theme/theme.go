package theme

import "image/color"

type Theme interface {
	// brightness in [0, 1], the hidden modifier fades notes near the bar
	NoteColor(denom int, brightness float64) color.RGBA
	NoteSym(lane int) string
	CatchSym(lane int) string
	HoldBodySym(lane int) string
	HitFieldSym(lane int) string
	JudgmentColor(perfect bool) color.RGBA
	MissColor() color.RGBA
}
