package score

import (
	"time"

	"git.lost.host/meutraa/vsrg/internal/game"
	"git.lost.host/meutraa/vsrg/internal/judge"
)

type Store interface {
	Init(path string) error
	Deinit()

	// Save the result of a finished session
	Save(chart *game.Chart, rate float64, final judge.Score)

	// Load up previous results for the chart
	Load(chart *game.Chart) []Result
}

type Result struct {
	Sum       string
	Modifiers game.Modifier
	Rate      float64
	Score     float64
	MaxCombo  int
	Perfect   int
	Good      int
	Miss      int
	History   []time.Duration
}
