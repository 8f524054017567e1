package parser

import (
	"testing"
	"time"

	"git.lost.host/meutraa/vsrg/internal/game"
)

const fixture = `#TITLE:test;
#OFFSET:-1.000;
#BPMS:0.000=120.000;

#NOTES:
     dance-single:
     :
     Beginner:
     1:
     0,0,0,0,0:
1000
0000
0L00
0000
,
2000
0000
3000
0000
;
`

func TestParse(t *testing.T) {
	p := &DefaultParser{}
	charts, err := p.parse(fixture)
	if nil != err {
		t.Fatal(err)
	}
	if len(charts) != 1 {
		t.Fatal("expected one chart, got", len(charts))
	}
	c := charts[0]
	if c.Difficulty.NKeys != 4 || c.Difficulty.Name != "Beginner" {
		t.Log("difficulty", c.Difficulty)
		t.Fail()
	}
	if c.NoteCount != 3 || c.HoldCount != 1 || c.CatchCount != 1 {
		t.Log("counts", c.NoteCount, c.HoldCount, c.CatchCount)
		t.Fail()
	}

	// 120 bpm, 4 lines per measure, one beat per line, 1s chart offset
	want := []game.Note{
		{Lane: 0, Kind: game.KindNormal, Time: 1 * time.Second},
		{Lane: 1, Kind: game.KindCatch, Time: 2 * time.Second},
		{Lane: 0, Kind: game.KindNormal, Time: 3 * time.Second, Duration: 1 * time.Second},
	}
	if len(c.Notes) != len(want) {
		t.Fatal("expected", len(want), "notes, got", len(c.Notes))
	}
	for i, n := range c.Notes {
		w := want[i]
		if n.Lane != w.Lane || n.Kind != w.Kind {
			t.Log("note", i, "out", *n, "expected", w)
			t.Fail()
			continue
		}
		if d := n.Time - w.Time; d < -time.Microsecond || d > time.Microsecond {
			t.Log("note", i, "time", n.Time, "expected", w.Time)
			t.Fail()
		}
		if d := n.Duration - w.Duration; d < -time.Microsecond || d > time.Microsecond {
			t.Log("note", i, "duration", n.Duration, "expected", w.Duration)
			t.Fail()
		}
	}
}

func TestParseSkipsUnknownChartTypes(t *testing.T) {
	p := &DefaultParser{}
	charts, err := p.parse("#OFFSET:0.000;\n#BPMS:0.000=60.000;\n#NOTES:\n     pump-single:\n     :\n     Hard:\n     9:\n     :\n0000\n;\n")
	if nil != err {
		t.Fatal(err)
	}
	if len(charts) != 0 {
		t.Log("expected no charts, got", len(charts))
		t.Fail()
	}
}
