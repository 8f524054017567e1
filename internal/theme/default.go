package theme

import "image/color"

type DefaultTheme struct{}

var (
	noteSyms = [...]string{"⬤", "⬤", "⬤", "⬤", "⬤", "⬤", "⬤", "⬤"}
	catchSym = "◆"
	bodySym  = "┃"
	barSyms  = [...]string{"-", "-", "-", "-", "-", "-", "-", "-"}

	noteColors = map[int]color.RGBA{
		1:  {236, 30, 0, 255},    // 1/4 red
		2:  {0, 118, 236, 255},   // 1/8 blue
		3:  {106, 0, 236, 255},   // 1/12 purple
		4:  {236, 195, 0, 255},   // 1/16 yellow
		6:  {236, 0, 106, 255},   // 1/24 pink
		8:  {236, 128, 0, 255},   // 1/32 orange
		12: {173, 236, 236, 255}, // 1/48 light blue
		16: {0, 236, 128, 255},   // 1/64 green
		-1: {255, 255, 255, 255}, // other white
	}
)

func (t *DefaultTheme) NoteColor(denom int, brightness float64) color.RGBA {
	col, ok := noteColors[denom]
	if !ok {
		col = noteColors[-1]
	}
	if brightness < 0 {
		brightness = 0
	} else if brightness > 1 {
		brightness = 1
	}
	col.R = uint8(float64(col.R) * brightness)
	col.G = uint8(float64(col.G) * brightness)
	col.B = uint8(float64(col.B) * brightness)
	return col
}

func (t *DefaultTheme) NoteSym(lane int) string {
	return noteSyms[lane%len(noteSyms)]
}

func (t *DefaultTheme) CatchSym(lane int) string {
	return catchSym
}

func (t *DefaultTheme) HoldBodySym(lane int) string {
	return bodySym
}

func (t *DefaultTheme) HitFieldSym(lane int) string {
	return barSyms[lane%len(barSyms)]
}

func (t *DefaultTheme) JudgmentColor(perfect bool) color.RGBA {
	if perfect {
		return color.RGBA{173, 236, 236, 255}
	}
	return color.RGBA{0, 236, 128, 255}
}

func (t *DefaultTheme) MissColor() color.RGBA {
	return color.RGBA{236, 30, 0, 255}
}
