package config

import (
	"time"

	"git.lost.host/meutraa/vsrg/internal/game"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	Directory     = kingpin.Arg("directory", "Song/chart directory").Required().ExistingDir()
	Offset        = kingpin.Flag("offset", "Global audio offset").Default("0ms").Short('o').Duration()
	Delay         = kingpin.Flag("delay", "Lead-in before the song starts").Default("1.5s").Short('d').Duration()
	FramePeriod   = kingpin.Flag("frame-period", "Render frame period").Default("1ms").Short('p').Duration()
	KeyRelease    = kingpin.Flag("key-release", "Synthetic key release delay, terminals report no key up").Default("150ms").Duration()
	BarRow        = kingpin.Flag("bar-row", "Console row to render hit bar").Default("8").Uint()
	ColumnSpacing = kingpin.Flag("spacing", "Columns between keys").Default("6").Short('S').Uint()
	RefreshRate   = kingpin.Flag("refresh-rate", "Monitor refresh rate").Default("240.0").Short('R').Float()
	Database      = kingpin.Flag("database", "Result database file").Default("./scores.db").String()

	scrollSpeedModifier = kingpin.Flag("scroll-speed", "Scroll speed, lower is faster").Default("3").Short('s').Uint()
	keys4               = kingpin.Flag("keys-single", "Keys for 4k").Default("_-mp").Short('k').String()
	keys6               = kingpin.Flag("keys-solo", "Keys for 6k").Default("ieotsc").String()
	keys8               = kingpin.Flag("keys-double", "Keys for 8k").Default("ieonhtsc").String()

	modDoubleTime  = kingpin.Flag("mod-dt", "Double time, 1.5x rate").Bool()
	modHalfTime    = kingpin.Flag("mod-ht", "Half time, 0.75x rate").Bool()
	modHardRock    = kingpin.Flag("mod-hr", "Hard rock, 0.7x hit windows").Bool()
	modSuddenDeath = kingpin.Flag("mod-sd", "Sudden death, first miss ends the session").Bool()
	modHidden      = kingpin.Flag("mod-hd", "Hidden, notes fade near the bar").Bool()
	modFlashlight  = kingpin.Flag("mod-fl", "Flashlight, restricted vision").Bool()
	modAuto        = kingpin.Flag("mod-auto", "Auto play, score is forced to zero").Bool()

	ScrollSpeed float64
)

const (
	// Unscaled judgment windows, HardRock scales these down
	PerfectWindow = 50 * time.Millisecond
	GoodWindow    = 120 * time.Millisecond
	CatchWindow   = 80 * time.Millisecond

	BaseScorePerfect = 300.0
	BaseScoreGood    = 100.0
	TickBase         = 10.0

	// Hold ticks accrue at a fixed rate of held song time, not per frame
	TickPeriod = time.Second / 60

	// The session ends this long after the last note
	EndGrace = 3 * time.Second

	CountdownSeconds = 3
)

func Parse() {
	kingpin.Version("0.1.0")
	kingpin.Parse()
	ScrollSpeed = float64(*scrollSpeedModifier) * 1000 / *RefreshRate
}

func Keys(nKeys uint8) []rune {
	switch nKeys {
	case 4:
		return []rune(*keys4)
	case 6:
		return []rune(*keys6)
	case 8:
		return []rune(*keys8)
	}
	return []rune(*keys4)
}

func KeyLane(r rune, nKeys uint8) int {
	for i, c := range Keys(nKeys) {
		if r == c {
			return i
		}
	}
	return -1
}

// Modifiers collects the modifier flags into a set. DoubleTime wins over
// HalfTime and Auto drops SuddenDeath, the pairs make no sense together.
func Modifiers() game.Modifier {
	var m game.Modifier
	if *modDoubleTime {
		m |= game.ModDoubleTime
	} else if *modHalfTime {
		m |= game.ModHalfTime
	}
	if *modHardRock {
		m |= game.ModHardRock
	}
	if *modHidden {
		m |= game.ModHidden
	}
	if *modFlashlight {
		m |= game.ModFlashlight
	}
	if *modAuto {
		m |= game.ModAuto
	} else if *modSuddenDeath {
		m |= game.ModSuddenDeath
	}
	return m
}
