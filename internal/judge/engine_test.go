package judge

import (
	"testing"
	"time"

	"git.lost.host/meutraa/vsrg/internal/game"
)

func ms(n int64) time.Duration {
	return time.Duration(n) * time.Millisecond
}

var benchScore float64

func BenchmarkEngageScan(b *testing.B) {
	notes := make([]*game.Note, 512)
	for i := range notes {
		notes[i] = &game.Note{Lane: uint8(1 + i%3), Time: ms(int64(i) * 5)}
	}
	e := NewEngine(newChart(notes...), 0, 0)
	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		e.Engage(0, ms(1280))
		e.Disengage(0, ms(1280))
	}

	benchScore = e.Snapshot().Score
}

func newChart(notes ...*game.Note) *game.Chart {
	return &game.Chart{
		Notes:      notes,
		NoteCount:  int64(len(notes)),
		Difficulty: game.Difficulty{NKeys: 4},
	}
}

func TestTapPerfect(t *testing.T) {
	e := NewEngine(newChart(&game.Note{Lane: 0, Time: ms(1000)}), 0, 0)
	e.Engage(0, ms(1020))
	s := e.Snapshot()
	if s.Perfect != 1 || s.Good != 0 || s.Combo != 1 {
		t.Log("snapshot", s)
		t.Fail()
	}
	if len(s.HitHistory) != 1 || s.HitHistory[0] != ms(20) {
		t.Log("history", s.HitHistory)
		t.Fail()
	}
}

func TestTapGood(t *testing.T) {
	e := NewEngine(newChart(&game.Note{Lane: 0, Time: ms(1000)}), 0, 0)
	e.Engage(0, ms(1080))
	s := e.Snapshot()
	if s.Perfect != 0 || s.Good != 1 {
		t.Log("snapshot", s)
		t.Fail()
	}
}

func TestTapMissAfterWindow(t *testing.T) {
	e := NewEngine(newChart(&game.Note{Lane: 0, Time: ms(1000)}), 0, 0)
	e.Step(ms(1120)) // window edge, not yet a miss
	if s := e.Snapshot(); s.Miss != 0 {
		t.Log("missed at the window edge", s)
		t.Fail()
	}
	e.Step(ms(1121))
	s := e.Snapshot()
	if s.Miss != 1 || s.Combo != 0 {
		t.Log("snapshot", s)
		t.Fail()
	}
	n := e.Notes()[0]
	if !n.Missed || !n.Hit {
		t.Log("note not terminal after miss", n)
		t.Fail()
	}
	// A terminal note never transitions again
	e.Engage(0, ms(1121))
	e.Step(ms(1500))
	if s := e.Snapshot(); s.Miss != 1 || s.Perfect != 0 {
		t.Log("terminal note re-evaluated", s)
		t.Fail()
	}
}

func TestHardRockScalesWindows(t *testing.T) {
	e := NewEngine(newChart(&game.Note{Lane: 0, Time: ms(1000)}), game.ModHardRock, 0)
	// 40ms is perfect by default but 40 > 50*0.7 under HardRock
	e.Engage(0, ms(1040))
	s := e.Snapshot()
	if s.Perfect != 0 || s.Good != 1 {
		t.Log("snapshot", s)
		t.Fail()
	}
}

func TestEmptyPressIsNoop(t *testing.T) {
	e := NewEngine(newChart(&game.Note{Lane: 0, Time: ms(1000)}), 0, 0)
	e.Engage(0, ms(200))  // nothing anywhere near
	e.Engage(2, ms(1000)) // wrong lane
	e.Engage(9, ms(1000)) // out of range lane
	s := e.Snapshot()
	if s.Perfect != 0 || s.Good != 0 || s.Miss != 0 || s.Score != 0 {
		t.Log("snapshot", s)
		t.Fail()
	}
}

func TestClosestNoteWins(t *testing.T) {
	a := &game.Note{Lane: 0, Time: ms(1000)}
	b := &game.Note{Lane: 0, Time: ms(1200)}
	e := NewEngine(newChart(a, b), 0, 0)
	e.Engage(0, ms(1150))
	if a.Hit || !b.Hit {
		t.Log("hit the wrong note", a, b)
		t.Fail()
	}
}

func TestComboAndMaxCombo(t *testing.T) {
	e := NewEngine(newChart(
		&game.Note{Lane: 0, Time: ms(1000)},
		&game.Note{Lane: 1, Time: ms(2000)},
		&game.Note{Lane: 2, Time: ms(3000)},
		&game.Note{Lane: 3, Time: ms(4000)},
	), 0, 0)
	e.Engage(0, ms(1000))
	e.Engage(1, ms(2000))
	e.Engage(2, ms(3000))
	e.Step(ms(4200)) // last note missed
	s := e.Snapshot()
	if s.Combo != 0 || s.MaxCombo != 3 || s.Miss != 1 {
		t.Log("snapshot", s)
		t.Fail()
	}
}

func TestHoldLifecycle(t *testing.T) {
	n := &game.Note{Lane: 0, Time: ms(2000), Duration: ms(1000)}
	e := NewEngine(newChart(n), 0, 0)

	e.Engage(0, ms(2000))
	if !n.Hit || !n.Holding {
		t.Log("hold head not holding", n)
		t.Fail()
	}

	e.Step(ms(2200))
	held := e.Snapshot().Score
	base := 300 * comboBonus(1, 50)
	if held <= base {
		t.Log("no tick score accrued, have", held, "hit was", base)
		t.Fail()
	}

	e.Disengage(0, ms(2400))
	if n.Holding {
		t.Log("still holding after release")
		t.Fail()
	}
	e.Step(ms(2400))
	released := e.Snapshot().Score
	e.Step(ms(2600))
	if got := e.Snapshot().Score; got != released {
		t.Log("tick score accrued while released", released, got)
		t.Fail()
	}

	// Releasing early is not a miss, the note completes at its end time
	e.Step(ms(3000))
	s := e.Snapshot()
	if s.Miss != 0 || n.Missed || n.Holding || !n.Terminal(ms(3000)) {
		t.Log("hold did not complete cleanly", s, n)
		t.Fail()
	}
}

func TestHoldReengageResumesTicks(t *testing.T) {
	n := &game.Note{Lane: 0, Time: ms(2000), Duration: ms(1000)}
	e := NewEngine(newChart(n), 0, 0)
	e.Engage(0, ms(2000))
	e.Disengage(0, ms(2200))
	e.Step(ms(2400))
	paused := e.Snapshot().Score

	e.Engage(0, ms(2500))
	if !n.Holding {
		t.Log("re-engage did not resume the hold")
		t.Fail()
	}
	e.Step(ms(2700))
	if got := e.Snapshot().Score; got <= paused {
		t.Log("no ticks after re-engage", paused, got)
		t.Fail()
	}

	// Ticks never accrue past the hold end
	e.Step(ms(3000))
	end := e.Snapshot().Score
	e.Step(ms(3500))
	if got := e.Snapshot().Score; got != end {
		t.Log("ticks accrued past hold end", end, got)
		t.Fail()
	}
}

func TestCatchJudgedWhileEngaged(t *testing.T) {
	n := &game.Note{Lane: 1, Time: ms(1000), Kind: game.KindCatch}
	e := NewEngine(newChart(n), 0, 0)

	e.Step(ms(970)) // in window but lane not engaged
	if n.Hit {
		t.Log("catch hit without engagement")
		t.Fail()
	}

	e.Engage(1, ms(980)) // the edge itself must not tap-judge a catch note
	if n.Hit {
		t.Log("catch hit by the engage edge")
		t.Fail()
	}

	e.Step(ms(990))
	s := e.Snapshot()
	if !n.Hit || s.Perfect != 1 || s.Good != 0 {
		t.Log("catch not perfect", s, n)
		t.Fail()
	}
	if len(s.HitHistory) != 1 || s.HitHistory[0] != ms(-10) {
		t.Log("history", s.HitHistory)
		t.Fail()
	}
}

func TestCatchMissesWhenUnengaged(t *testing.T) {
	n := &game.Note{Lane: 1, Time: ms(1000), Kind: game.KindCatch}
	e := NewEngine(newChart(n), 0, 0)
	e.Step(ms(1121))
	s := e.Snapshot()
	if s.Miss != 1 || !n.Missed {
		t.Log("catch note not missed", s, n)
		t.Fail()
	}
}

func TestAutoPlay(t *testing.T) {
	e := NewEngine(newChart(
		&game.Note{Lane: 0, Time: ms(1000)},
		&game.Note{Lane: 1, Time: ms(1500), Kind: game.KindCatch},
		&game.Note{Lane: 2, Time: ms(2000), Duration: ms(500)},
	), game.ModAuto|game.ModDoubleTime, 0)

	// Player input is ignored under auto
	e.Engage(0, ms(1000))

	for t0 := ms(0); t0 <= ms(6000); t0 += ms(16) {
		e.Step(t0)
	}
	s := e.Snapshot()
	if s.Perfect != 3 || s.Good != 0 || s.Miss != 0 {
		t.Log("snapshot", s)
		t.Fail()
	}
	if len(s.HitHistory) != 0 {
		t.Log("auto hits recorded offsets", s.HitHistory)
		t.Fail()
	}
	if s.Score != 0 {
		t.Log("auto multiplier not zero, score", s.Score)
		t.Fail()
	}
	if !e.Finished() {
		t.Log("session did not end after grace")
		t.Fail()
	}
}

func TestAutoPlayIgnoresEngagedCatch(t *testing.T) {
	n := &game.Note{Lane: 1, Time: ms(1000), Kind: game.KindCatch}
	e := NewEngine(newChart(n), game.ModAuto, 0)

	// An engaged lane must not judge a catch note early under auto
	e.Engage(1, ms(950))
	e.Step(ms(960))
	if n.Hit {
		t.Log("engaged lane judged a catch note under auto")
		t.Fail()
	}

	e.Step(ms(1000))
	s := e.Snapshot()
	if !n.Hit || s.Perfect != 1 {
		t.Log("auto did not hit the catch note at its time", s, n)
		t.Fail()
	}
	if len(s.HitHistory) != 0 {
		t.Log("auto session recorded player offsets", s.HitHistory)
		t.Fail()
	}
}

func TestSuddenDeathEndsOnFirstMiss(t *testing.T) {
	finishes := 0
	var final Score
	e := NewEngine(newChart(
		&game.Note{Lane: 0, Time: ms(1000)},
		&game.Note{Lane: 1, Time: ms(5000)},
	), game.ModSuddenDeath, 0)
	e.OnFinish(func(s Score) {
		finishes++
		final = s
	})

	e.Step(ms(1200))
	if !e.Finished() || finishes != 1 {
		t.Log("finished", e.Finished(), "signals", finishes)
		t.Fail()
	}
	if final.Miss != 1 {
		t.Log("final", final)
		t.Fail()
	}

	// No further evaluation for this session
	e.Engage(1, ms(5000))
	e.Step(ms(10000))
	if finishes != 1 || e.Snapshot().Perfect != 0 {
		t.Log("engine kept judging after sudden death")
		t.Fail()
	}
}

func TestFinishSignalIdempotent(t *testing.T) {
	finishes := 0
	e := NewEngine(newChart(&game.Note{Lane: 0, Time: ms(1000)}), 0, ms(2000))
	e.OnFinish(func(Score) { finishes++ })
	e.Engage(0, ms(1000))
	e.Step(ms(6000))
	e.Step(ms(7000))
	e.Step(ms(8000))
	if finishes != 1 {
		t.Log("finish fired", finishes, "times")
		t.Fail()
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	e := NewEngine(newChart(
		&game.Note{Lane: 0, Time: ms(1000)},
		&game.Note{Lane: 0, Time: ms(2000)},
	), 0, 0)
	e.Engage(0, ms(1000))
	s := e.Snapshot()
	s.HitHistory[0] = ms(999)
	s.Score = -1
	e.Engage(0, ms(2000))
	after := e.Snapshot()
	if after.HitHistory[0] != 0 || after.Score < 0 {
		t.Log("snapshot mutation leaked into the engine", after)
		t.Fail()
	}
}

func TestScoreFormula(t *testing.T) {
	e := NewEngine(newChart(
		&game.Note{Lane: 0, Time: ms(1000)},
		&game.Note{Lane: 0, Time: ms(2000)},
	), 0, 0)
	e.Engage(0, ms(1000))
	e.Engage(0, ms(2080))
	want := 300*(1+1.0/50) + 100*(1+2.0/50)
	if got := e.Snapshot().Score; got != want {
		t.Log("score", got, "expected", want)
		t.Fail()
	}
}
