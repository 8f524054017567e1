package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"log"
	"time"

	"git.lost.host/meutraa/vsrg/internal/game"
	"git.lost.host/meutraa/vsrg/internal/judge"
	_ "github.com/mattn/go-sqlite3"
)

type DefaultStore struct {
	db *sql.DB
}

// Offsets are stored as microseconds, nanosecond resolution is noise
// for timing analysis and triples the blob size.
func compactHistory(history []time.Duration) []int64 {
	out := make([]int64, len(history))
	for i, d := range history {
		out[i] = d.Microseconds()
	}
	return out
}

func uncompactHistory(compact []int64) []time.Duration {
	out := make([]time.Duration, len(compact))
	for i, us := range compact {
		out[i] = time.Duration(us) * time.Microsecond
	}
	return out
}

func (s *DefaultStore) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return err
	}

	initStatement := `
	create table if not exists results
	  (
		  id integer not null primary key,
		  sum text,
		  mods integer,
		  rate real,
		  score real,
		  max_combo integer,
		  perfect integer,
		  good integer,
		  miss integer,
		  history bytearray
	  );
	`
	_, err = db.Exec(initStatement)
	if nil != err {
		return err
	}

	s.db = db
	return nil
}

func (s *DefaultStore) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

func (s *DefaultStore) hashChart(c *game.Chart) string {
	sum := sha256.Sum256([]byte(c.Difficulty.Section))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (s *DefaultStore) Save(c *game.Chart, rate float64, final judge.Score) {
	data, err := json.Marshal(compactHistory(final.HitHistory))
	if nil != err {
		log.Println("unable to marshal hit history", err)
		return
	}
	_, err = s.db.Exec(
		"insert into results(sum, mods, rate, score, max_combo, perfect, good, miss, history) values(?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.hashChart(c), int64(final.Modifiers), rate, final.Score,
		final.MaxCombo, final.Perfect, final.Good, final.Miss, data,
	)
	if nil != err {
		log.Println("unable to save result", err)
		return
	}
}

func (s *DefaultStore) Load(c *game.Chart) []Result {
	results := []Result{}
	rows, err := s.db.Query(
		"select sum, mods, rate, score, max_combo, perfect, good, miss, history from results where sum = ?",
		s.hashChart(c),
	)
	if nil != err && err != sql.ErrNoRows {
		log.Println("unable to load results", err)
		return results
	}
	defer rows.Close()
	for rows.Next() {
		var r Result
		var mods int64
		var history []byte
		rows.Scan(&r.Sum, &mods, &r.Rate, &r.Score, &r.MaxCombo, &r.Perfect, &r.Good, &r.Miss, &history)
		var compact []int64
		if err := json.Unmarshal(history, &compact); nil != err {
			log.Println("unable to unmarshal hit history")
			continue
		}
		r.Modifiers = game.Modifier(mods)
		r.History = uncompactHistory(compact)
		results = append(results, r)
	}
	return results
}
