package session

import (
	"time"

	"git.lost.host/meutraa/vsrg/internal/clock"
	"git.lost.host/meutraa/vsrg/internal/config"
	"git.lost.host/meutraa/vsrg/internal/game"
	"git.lost.host/meutraa/vsrg/internal/input"
	"git.lost.host/meutraa/vsrg/internal/judge"
)

type Status uint8

const (
	// StatusLibrary is the idle state outside any session, a Session
	// object only exists from StatusReady on.
	StatusLibrary Status = iota
	StatusReady
	StatusCountdown
	StatusPlaying
	StatusPaused
	StatusFinished
)

var statusNames = map[Status]string{
	StatusLibrary:   "library",
	StatusReady:     "ready",
	StatusCountdown: "countdown",
	StatusPlaying:   "playing",
	StatusPaused:    "paused",
	StatusFinished:  "finished",
}

func (s Status) String() string {
	return statusNames[s]
}

// Session bounds the lifetime of the note copies, the score accumulator
// and the clock zero reference. Discard it after Finished and build a
// new one, nothing is reused.
type Session struct {
	status Status
	src    clock.Source
	clock  *clock.SongClock
	engine *judge.Engine
	router *input.Router

	leadIn    time.Duration
	countLeft int
	nextTick  time.Time
	started   bool // Playing has been entered at least once

	// Hooks for the front end, all optional
	OnCount  func(remaining int)
	OnPlay   func(resumed bool)
	OnPause  func()
	OnFinish func(judge.Score)
}

func New(chart *game.Chart, mods game.Modifier, audioLen time.Duration, src clock.Source, offset, leadIn time.Duration) *Session {
	effects := mods.Resolve()
	s := &Session{
		status: StatusReady,
		src:    src,
		clock:  clock.New(src, effects.Rate, offset),
		engine: judge.NewEngine(chart, mods, audioLen),
		leadIn: leadIn,
	}
	s.router = input.NewRouter(int(chart.Difficulty.NKeys), func(e input.Edge) {
		if e.Engage {
			s.engine.Engage(e.Lane, e.Time)
		} else {
			s.engine.Disengage(e.Lane, e.Time)
		}
	})
	s.engine.OnFinish(s.finish)
	return s
}

func (s *Session) Status() Status        { return s.status }
func (s *Session) Engine() *judge.Engine { return s.engine }
func (s *Session) Router() *input.Router { return s.router }
func (s *Session) Now() time.Duration    { return s.clock.Now() }
func (s *Session) Effects() game.Effects { return s.engine.Effects() }

// Start begins the countdown for a fresh session.
func (s *Session) Start() {
	if s.status != StatusReady {
		return
	}
	s.beginCountdown()
}

func (s *Session) beginCountdown() {
	s.status = StatusCountdown
	s.countLeft = config.CountdownSeconds
	s.nextTick = s.src.Now().Add(time.Second)
	if nil != s.OnCount {
		s.OnCount(s.countLeft)
	}
}

func (s *Session) enterPlaying() {
	s.status = StatusPlaying
	resumed := s.started
	if s.started {
		s.clock.Resume()
	} else {
		s.clock.Start(s.leadIn)
		s.started = true
	}
	s.router.SetEnabled(true)
	if nil != s.OnPlay {
		s.OnPlay(resumed)
	}
}

// Pause freezes the clock and force-releases input. Safe to call twice.
func (s *Session) Pause() {
	if s.status != StatusPlaying {
		return
	}
	s.clock.Pause()
	s.router.SetEnabled(false)
	s.status = StatusPaused
	if nil != s.OnPause {
		s.OnPause()
	}
}

// Resume re-enters the countdown rather than play directly, the player
// gets a re-sync cue and the clock continues from its paused song time.
func (s *Session) Resume() {
	if s.status != StatusPaused {
		return
	}
	s.beginCountdown()
}

// VisibilityLost pauses automatically, except under auto-play where
// nothing the player could desync from is happening.
func (s *Session) VisibilityLost() {
	if s.engine.Effects().Auto {
		return
	}
	s.Pause()
}

// Frame runs one cooperative step. Judgment only runs while playing,
// the countdown holds song time frozen.
func (s *Session) Frame() {
	switch s.status {
	case StatusCountdown:
		if !s.src.Now().Before(s.nextTick) {
			s.countLeft--
			s.nextTick = s.nextTick.Add(time.Second)
			if s.countLeft <= 0 {
				s.enterPlaying()
			} else if nil != s.OnCount {
				s.OnCount(s.countLeft)
			}
		}
	case StatusPlaying:
		s.engine.Step(s.clock.Now())
	}
}

func (s *Session) finish(final judge.Score) {
	if s.status == StatusFinished {
		return
	}
	s.status = StatusFinished
	s.clock.Pause()
	s.router.SetEnabled(false)
	if nil != s.OnFinish {
		s.OnFinish(final)
	}
}

// Input forwarding, every event is stamped with the current song time.

func (s *Session) KeyDown(key rune) {
	s.router.KeyDown(key, s.clock.Now())
}

func (s *Session) KeyUp(key rune) {
	s.router.KeyUp(key, s.clock.Now())
}

func (s *Session) PointerDown(id int, x float64) {
	s.router.PointerDown(id, x, s.clock.Now())
}

func (s *Session) PointerMove(id int, x float64) {
	s.router.PointerMove(id, x, s.clock.Now())
}

func (s *Session) PointerUp(id int) {
	s.router.PointerUp(id, s.clock.Now())
}
