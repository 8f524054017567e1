package judge

import (
	"log"
	"sort"
	"time"

	"git.lost.host/meutraa/vsrg/internal/config"
	"git.lost.host/meutraa/vsrg/internal/game"
)

type Judgment uint8

const (
	JudgePerfect Judgment = iota
	JudgeGood
)

// Engine is the per-session judgment state machine. It owns a deep copy
// of the chart notes and the score accumulator, and is their sole
// mutator. Everything runs inside the host's serialized frame step, so
// no locking.
type Engine struct {
	notes     []*game.Note
	laneCount int
	effects   game.Effects

	// Windows pre-scaled by the modifier set
	perfect time.Duration
	good    time.Duration
	catch   time.Duration

	endAt    time.Duration
	engaged  []bool
	start    int // First note that may still change state, notes are time ordered
	lastTick map[*game.Note]time.Duration

	score    Score
	finished bool
	onFinish func(Score)
}

// NewEngine builds a session engine from the immutable chart. Notes with
// an out of range lane are dropped here so the frame step never has to
// consider them.
func NewEngine(chart *game.Chart, mods game.Modifier, audioLen time.Duration) *Engine {
	effects := mods.Resolve()
	laneCount := int(chart.Difficulty.NKeys)

	c := chart.Clone()
	notes := c.Notes[:0]
	for _, n := range c.Notes {
		if int(n.Lane) >= laneCount {
			log.Println("dropping note with out of range lane", n.Lane, n.Time)
			continue
		}
		notes = append(notes, n)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Time < notes[j].Time
	})

	end := chart.End()
	if audioLen > end {
		end = audioLen
	}

	return &Engine{
		notes:     notes,
		laneCount: laneCount,
		effects:   effects,
		perfect:   scale(config.PerfectWindow, effects.WindowScale),
		good:      scale(config.GoodWindow, effects.WindowScale),
		catch:     scale(config.CatchWindow, effects.WindowScale),
		endAt:     end + config.EndGrace,
		engaged:   make([]bool, laneCount),
		lastTick:  map[*game.Note]time.Duration{},
		score:     Score{Modifiers: mods},
	}
}

func scale(w time.Duration, s float64) time.Duration {
	return time.Duration(float64(w) * s)
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func comboBonus(combo int, div float64) float64 {
	if combo > 100 {
		combo = 100
	}
	return 1 + float64(combo)/div
}

func (e *Engine) Effects() game.Effects {
	return e.effects
}

func (e *Engine) LaneCount() int {
	return e.laneCount
}

// Notes exposes the session notes for rendering. Read only by contract.
func (e *Engine) Notes() []*game.Note {
	return e.notes
}

func (e *Engine) Finished() bool {
	return e.finished
}

// OnFinish registers the end of session signal. It fires exactly once,
// with the final score snapshot.
func (e *Engine) OnFinish(fn func(Score)) {
	e.onFinish = fn
}

func (e *Engine) Snapshot() Score {
	return e.score.Snapshot()
}

// Engage judges a lane press at song time t against the closest
// un-terminal normal note, or resumes a released hold. A press with
// nothing to hit is a no-op, empty presses carry no penalty.
func (e *Engine) Engage(lane int, t time.Duration) {
	if e.finished || lane < 0 || lane >= e.laneCount {
		return
	}
	e.engaged[lane] = true
	if e.effects.Auto {
		return
	}

	var closest *game.Note
	closestAbs := time.Hour * 24
	for i := e.start; i < len(e.notes); i++ {
		n := e.notes[i]
		if n.Time > t+e.good {
			break
		}
		if n.Hit || n.Kind != game.KindNormal || int(n.Lane) != lane {
			continue
		}
		d := abs(t - n.Time)
		if d < closestAbs {
			closestAbs = d
			closest = n
		} else if nil != closest {
			// already found the closest, distances only grow from here
			break
		}
	}

	if nil != closest && closestAbs < e.good {
		e.hit(closest, t, true)
		return
	}

	// No fresh note, maybe a released hold to pick back up
	for i := e.start; i < len(e.notes); i++ {
		n := e.notes[i]
		if n.Time > t+e.good {
			break
		}
		if int(n.Lane) != lane || !n.Hit || n.Missed || n.Holding {
			continue
		}
		if n.Duration > 0 && t < n.EndTime() {
			n.Holding = true
			e.lastTick[n] = t
			return
		}
	}
}

// Disengage releases a lane. A holding note stops tick scoring but is
// not missed, the hold still completes at its end time.
func (e *Engine) Disengage(lane int, t time.Duration) {
	if lane < 0 || lane >= e.laneCount {
		return
	}
	e.engaged[lane] = false
	for i := e.start; i < len(e.notes); i++ {
		n := e.notes[i]
		if n.Time > t+e.good {
			break
		}
		if int(n.Lane) == lane && n.Holding {
			n.Holding = false
			delete(e.lastTick, n)
		}
	}
}

// Step runs one frame of judgment at song time t. Per note the order is
// auto-hit, catch, miss, hold ticks, hold completion. Later checks
// assume the earlier ones have finalized Hit and Missed.
func (e *Engine) Step(t time.Duration) {
	if e.finished {
		return
	}

	for e.start < len(e.notes) && e.notes[e.start].Terminal(t) {
		delete(e.lastTick, e.notes[e.start])
		e.start++
	}

	for i := e.start; i < len(e.notes); i++ {
		n := e.notes[i]
		if n.Time > t+e.good {
			break
		}

		if e.effects.Auto && !n.Hit && t >= n.Time {
			e.hit(n, n.Time, false)
		}

		if !e.effects.Auto && !n.Hit && n.Kind == game.KindCatch && e.engaged[n.Lane] && abs(t-n.Time) <= e.catch {
			e.hit(n, t, true)
		}

		if !n.Hit && t > n.Time+e.good {
			e.miss(n)
			if e.finished {
				return
			}
		}

		if n.Holding {
			e.accrue(n, t)
			if t >= n.EndTime() {
				n.Holding = false
				delete(e.lastTick, n)
			}
		}
	}

	if t > e.endAt {
		e.finish()
	}
}

func (e *Engine) hit(n *game.Note, t time.Duration, player bool) {
	offset := t - n.Time
	j := JudgeGood
	if n.Kind == game.KindCatch || abs(offset) < e.perfect {
		// Catch notes have no good tier, auto hits land at offset 0
		j = JudgePerfect
	}

	if player {
		e.score.HitHistory = append(e.score.HitHistory, offset)
	}

	base := config.BaseScoreGood
	if j == JudgePerfect {
		base = config.BaseScorePerfect
		e.score.Perfect++
	} else {
		e.score.Good++
	}
	e.score.Combo++
	if e.score.Combo > e.score.MaxCombo {
		e.score.MaxCombo = e.score.Combo
	}
	e.score.Score += base * comboBonus(e.score.Combo, 50) * e.effects.Multiplier

	n.Hit = true
	if n.Duration > 0 {
		n.Holding = true
		e.lastTick[n] = t
	}
}

func (e *Engine) miss(n *game.Note) {
	n.Missed = true
	n.Hit = true
	e.score.Miss++
	e.score.Combo = 0
	if e.effects.SuddenDeath {
		e.finish()
	}
}

// accrue awards hold ticks for song time spent holding, at a fixed rate
// so the total does not depend on frame rate.
func (e *Engine) accrue(n *game.Note, t time.Duration) {
	limit := t
	if end := n.EndTime(); limit > end {
		limit = end
	}
	last := e.lastTick[n]
	for last+config.TickPeriod <= limit {
		last += config.TickPeriod
		e.score.Score += config.TickBase * comboBonus(e.score.Combo, 100) * e.effects.Multiplier
	}
	e.lastTick[n] = last
}

func (e *Engine) finish() {
	if e.finished {
		return
	}
	e.finished = true
	if nil != e.onFinish {
		e.onFinish(e.score.Snapshot())
	}
}
