package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"git.lost.host/meutraa/vsrg/internal/clock"
	"git.lost.host/meutraa/vsrg/internal/config"
	"git.lost.host/meutraa/vsrg/internal/game"
	"git.lost.host/meutraa/vsrg/internal/judge"
	"git.lost.host/meutraa/vsrg/internal/parser"
	"git.lost.host/meutraa/vsrg/internal/render"
	"git.lost.host/meutraa/vsrg/internal/score"
	"git.lost.host/meutraa/vsrg/internal/session"
	"git.lost.host/meutraa/vsrg/internal/theme"
	"github.com/eiannone/keyboard"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
)

func main() {
	config.Parse()
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func run() error {
	var psr parser.Parser = &parser.DefaultParser{}
	var db score.Store = &score.DefaultStore{}

	keyChannel, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			log.Println("unable to close keyboard", err)
		}
	}()

	var mp3File, ogg, chartFile string
	if err := filepath.Walk(*config.Directory, func(p string, info os.FileInfo, err error) error {
		switch path.Ext(info.Name()) {
		case ".mp3":
			mp3File = p
		case ".ogg":
			ogg = p
		case ".sm":
			chartFile = p
		}
		return nil
	}); nil != err {
		return fmt.Errorf("unable to walk song directory: %w", err)
	}

	if (mp3File == "" && ogg == "") || chartFile == "" {
		return errors.New("unable to find .sm and .mp3/.ogg file in given directory")
	}

	charts, err := psr.Parse(chartFile)
	if nil != err {
		return err
	}

	// Difficulty selection
	for i, c := range charts {
		fmt.Printf("%2v) %3v  %5v  %v\n", i, c.Difficulty.Msd, c.NoteCount, c.Difficulty.Name)
	}
	key := <-keyChannel
	chart, err := pickChart(charts, key.Rune)
	if nil != err {
		return err
	}

	if err := db.Init(*config.Database); nil != err {
		return fmt.Errorf("unable to open result database: %w", err)
	}
	defer db.Deinit()
	if prior := db.Load(chart); len(prior) > 0 {
		log.Println(len(prior), "previous results for this chart")
	}

	audioFile := mp3File
	if ogg != "" {
		audioFile = ogg
	}
	log.Printf("Opening %v (%v)\n", audioFile, chartFile)
	f, err := os.Open(audioFile)
	if nil != err {
		return err
	}
	var streamer beep.StreamSeekCloser
	var format beep.Format
	if ogg != "" {
		streamer, format, err = vorbis.Decode(f)
	} else {
		streamer, format, err = mp3.Decode(f)
	}
	if nil != err {
		return err
	}
	defer streamer.Close()

	mods := config.Modifiers()
	effects := mods.Resolve()

	// The playback rate is applied by resampling the speaker, the song
	// clock applies the same rate to wall time so both stay aligned
	sr := beep.SampleRate(math.Round(float64(format.SampleRate) * effects.Rate))
	bufLen := time.Second / 60
	if err := speaker.Init(sr, format.SampleRate.N(bufLen)); nil != err {
		return fmt.Errorf("unable to init speaker: %w", err)
	}
	audioLen := format.SampleRate.D(streamer.Len())

	src := &clock.SystemSource{Latency: bufLen}
	s := session.New(chart, mods, audioLen, src, *config.Offset, *config.Delay)
	s.Router().BindKeys(config.Keys(chart.Difficulty.NKeys))

	ctrl := &beep.Ctrl{Streamer: streamer}
	s.OnPlay = func(resumed bool) {
		if resumed {
			speaker.Lock()
			ctrl.Paused = false
			speaker.Unlock()
			return
		}
		go func() {
			time.Sleep(*config.Delay)
			speaker.Play(ctrl)
		}()
	}
	s.OnPause = func() {
		speaker.Lock()
		ctrl.Paused = true
		speaker.Unlock()
	}

	var final *judge.Score
	s.OnFinish = func(sc judge.Score) {
		final = &sc
		db.Save(chart, effects.Rate, sc)
		speaker.Lock()
		ctrl.Paused = true
		speaker.Unlock()
	}

	if err := play(s, keyChannel); nil != err {
		return err
	}

	if nil != final {
		fmt.Printf("%v  score %.0f  combo %v  %v/%v/%v\n",
			mods, final.Score, final.MaxCombo,
			final.Perfect, final.Good, final.Miss)
	}
	return nil
}

func pickChart(charts []*game.Chart, key rune) (*game.Chart, error) {
	index, err := strconv.ParseInt(string(key), 10, 64)
	if nil != err {
		return nil, fmt.Errorf("not a difficulty number: %w", err)
	}
	if index > int64(len(charts)-1) {
		return nil, fmt.Errorf("no difficulty %v, have %v", index, len(charts))
	}
	return charts[index], nil
}

func play(s *session.Session, keyChannel <-chan keyboard.KeyEvent) error {
	var r render.Renderer = &render.DefaultRenderer{}
	var th theme.Theme = &theme.DefaultTheme{}

	if err := r.Init(); nil != err {
		return err
	}
	defer func() {
		// Restore the terminal state
		if err := r.Deinit(); nil != err {
			log.Println("unable to restore terminal", err)
		}
	}()

	rows, columns, err := r.Size()
	if nil != err {
		return fmt.Errorf("unable to get terminal size: %w", err)
	}

	effects := s.Effects()
	notes := s.Engine().Notes()
	nKeys := s.Engine().LaneCount()

	mc := columns >> 1
	cen := rows >> 1
	spacing := int(*config.ColumnSpacing)
	cis := make([]int, nKeys)
	for i := range cis {
		cis[i] = mc + (2*i-(nKeys-1))*spacing
	}
	hitRow := rows - int(*config.BarRow)
	sideCol := cis[0] - 36
	if sideCol < 2 {
		sideCol = 2
	}

	countdown := 0
	s.OnCount = func(n int) { countdown = n }

	held := map[rune]time.Time{}
	prevRows := map[*game.Note]int{}
	lastMiss := 0

	s.Start()
	r.RenderLoop(*config.FramePeriod, func(now time.Time) bool {
		// Get the key inputs that occured so far
		for i := 0; i < len(keyChannel); i++ {
			key := <-keyChannel
			if key.Key == keyboard.KeyCtrlC {
				return false
			}
			if key.Key == keyboard.KeyEsc {
				switch s.Status() {
				case session.StatusPlaying:
					s.Pause()
				case session.StatusPaused:
					s.Resume()
				default:
					return false
				}
				continue
			}
			if _, down := held[key.Rune]; !down {
				s.KeyDown(key.Rune)
			}
			held[key.Rune] = now
		}
		// Terminals report no key releases, synthesize them after a
		// quiet period, auto-repeat keeps a held key alive above
		for k, ts := range held {
			if now.Sub(ts) > *config.KeyRelease {
				s.KeyUp(k)
				delete(held, k)
			}
		}

		s.Frame()
		t := s.Now()

		// Render the hit bar
		for i := 0; i < nKeys; i++ {
			r.Fill(hitRow, cis[i], th.HitFieldSym(i))
		}

		renderNotes(r, th, effects, notes, t, rows, hitRow, cis, prevRows)

		snap := s.Engine().Snapshot()
		if snap.Miss > lastMiss {
			lastMiss = snap.Miss
			c := th.MissColor()
			r.AddDecoration(cen, mc-1, fmt.Sprintf("\033[38;2;%v;%v;%vm╳\033[0m", c.R, c.G, c.B), 90)
		}
		renderSidebar(r, snap, t, sideCol)

		switch s.Status() {
		case session.StatusCountdown:
			r.Fill(cen, mc, strconv.Itoa(countdown))
		case session.StatusPaused:
			r.Fill(cen, mc-3, "PAUSED")
		case session.StatusFinished:
			return false
		}
		return true
	})

	// Leave the final field on screen until a key is pressed
	<-keyChannel
	return nil
}

func rowsFromBar(d time.Duration) int {
	return int(math.Round(float64(d.Milliseconds()) / config.ScrollSpeed))
}

func renderNotes(r render.Renderer, th theme.Theme, effects game.Effects, notes []*game.Note, t time.Duration, rows, hitRow int, cis []int, prevRows map[*game.Note]int) {
	for _, n := range notes {
		col := cis[n.Lane]

		// Clear the previous cells for this note
		if prev, ok := prevRows[n]; ok {
			for row := prev; row >= prev-rowsFromBar(n.Duration); row-- {
				if row > 1 && row <= rows {
					r.Fill(row, col, " ")
				}
			}
			delete(prevRows, n)
		}

		if n.Terminal(t) || (n.Hit && n.Duration == 0) {
			continue
		}

		row := hitRow - rowsFromBar(n.Time-t)
		headRow := row
		if n.Holding && headRow > hitRow {
			headRow = hitRow
		}
		endRow := hitRow - rowsFromBar(n.EndTime()-t)

		brightness := 1.0
		if effects.Hidden {
			// Fade out approaching the bar
			brightness = float64(hitRow-row) / 12.0
		}
		if effects.Flashlight && hitRow-row > 6 {
			// Only a short strip above the bar is lit
			brightness = 0
		}
		if brightness <= 0 {
			continue
		}

		for body := headRow - 1; body > endRow && n.Duration > 0; body-- {
			if body > 1 && body <= rows {
				r.FillColor(body, col, th.NoteColor(n.Denom, brightness), th.HoldBodySym(int(n.Lane)))
			}
		}
		if headRow > 1 && headRow <= rows && !n.Hit {
			sym := th.NoteSym(int(n.Lane))
			if n.Kind == game.KindCatch {
				sym = th.CatchSym(int(n.Lane))
			}
			r.FillColor(headRow, col, th.NoteColor(n.Denom, brightness), sym)
		}
		prevRows[n] = row
	}
}

func renderSidebar(r render.Renderer, snap judge.Score, t time.Duration, sideCol int) {
	mean := 0.0
	stdev := 0.0
	if len(snap.HitHistory) > 0 {
		sum := 0.0
		for _, d := range snap.HitHistory {
			sum += float64(d)
		}
		mean = sum / float64(len(snap.HitHistory))
	}
	if len(snap.HitHistory) > 1 {
		for _, d := range snap.HitHistory {
			xi := float64(d) - mean
			stdev += xi * xi
		}
		stdev /= float64(len(snap.HitHistory) - 1)
		stdev = math.Sqrt(stdev)
	}

	r.Fill(8, sideCol, fmt.Sprintf("       Time:  %6.1f s", t.Seconds()))
	r.Fill(10, sideCol, fmt.Sprintf("      Score:  %6.0f", snap.Score))
	r.Fill(11, sideCol, fmt.Sprintf("      Combo:  %6v", snap.Combo))
	r.Fill(12, sideCol, fmt.Sprintf("  Max Combo:  %6v", snap.MaxCombo))
	r.Fill(13, sideCol, fmt.Sprintf("       Mean:  %6.2f ms", mean/float64(time.Millisecond)))
	r.Fill(14, sideCol, fmt.Sprintf("      Stdev:  %6.2f ms", stdev/float64(time.Millisecond)))
	r.Fill(16, sideCol, fmt.Sprintf("    Perfect:  %6v", snap.Perfect))
	r.Fill(17, sideCol, fmt.Sprintf("       Good:  %6v", snap.Good))
	r.Fill(18, sideCol, fmt.Sprintf("       Miss:  %6v", snap.Miss))
	r.Fill(20, sideCol, fmt.Sprintf("  Modifiers:  %v", snap.Modifiers))
}
