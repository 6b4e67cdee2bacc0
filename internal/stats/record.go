// internal/stats/record.go
//
// Completed-game records as persisted in the high score list.
//
// Two shapes exist in stored data:
//   - Legacy: a bare JSON number holding the solve time in seconds.
//   - Full:   {"time","word","wordLength","attempts","date"}. Older full
//     records used "score" for the time; both keys are read.
//
// Both decode into Record; Legacy marks the first shape and is written back
// as a bare number so old lists survive a round trip unchanged.

package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// Record is one completed game.
type Record struct {
	Time       int       // Seconds taken (>= 0).
	Word       string    // Solved word; empty for legacy records.
	WordLength int       // Letters in Word; 0 for legacy records.
	Attempts   int       // Rows used, 1..5; 0 for legacy records.
	Date       time.Time // When the game was won; zero for legacy records.
	Legacy     bool
}

// NewRecord builds a full record.
func NewRecord(seconds int, word string, attempts int, date time.Time) Record {
	return Record{
		Time:       max(seconds, 0),
		Word:       word,
		WordLength: utf8.RuneCountInString(word),
		Attempts:   attempts,
		Date:       date.UTC(),
	}
}

// LegacyRecord builds a time-only record.
func LegacyRecord(seconds int) Record {
	return Record{Time: max(seconds, 0), Legacy: true}
}

// Length returns the word length, deriving it from Word for records stored
// without the field. ok is false for legacy records.
func (r Record) Length() (n int, ok bool) {
	if r.Legacy {
		return 0, false
	}
	if r.WordLength > 0 {
		return r.WordLength, true
	}
	if r.Word != "" {
		return utf8.RuneCountInString(r.Word), true
	}
	return 0, false
}

type recordJSON struct {
	Time       *float64 `json:"time,omitempty"`
	Score      *float64 `json:"score,omitempty"`
	Word       string   `json:"word,omitempty"`
	WordLength int      `json:"wordLength,omitempty"`
	Attempts   int      `json:"attempts,omitempty"`
	Date       string   `json:"date,omitempty"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.Legacy {
		return json.Marshal(r.Time)
	}
	t := float64(r.Time)
	out := recordJSON{
		Time:       &t,
		Word:       r.Word,
		WordLength: r.WordLength,
		Attempts:   r.Attempts,
	}
	if !r.Date.IsZero() {
		out.Date = r.Date.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("stats: empty record")
	}
	if data[0] != '{' {
		var secs float64
		if err := json.Unmarshal(data, &secs); err != nil {
			return fmt.Errorf("stats: legacy record: %w", err)
		}
		*r = LegacyRecord(toSeconds(secs))
		return nil
	}

	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("stats: record: %w", err)
	}
	var secs float64
	switch {
	case in.Time != nil:
		secs = *in.Time
	case in.Score != nil:
		secs = *in.Score
	}
	rec := Record{
		Time:       toSeconds(secs),
		Word:       in.Word,
		WordLength: in.WordLength,
		Attempts:   in.Attempts,
	}
	if in.Date != "" {
		if d, err := time.Parse(time.RFC3339Nano, in.Date); err == nil {
			rec.Date = d.UTC()
		}
	}
	// An object with nothing but a time is a legacy record in disguise.
	if rec.Word == "" && rec.Attempts == 0 && rec.Date.IsZero() {
		rec.Legacy = true
		rec.WordLength = 0
	}
	*r = rec
	return nil
}

func toSeconds(f float64) int {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// MarshalJSON writes the listing view of an entry: always an object, with
// the serial number alongside the record fields.
func (e Entry) MarshalJSON() ([]byte, error) {
	type view struct {
		Serial     int        `json:"serial"`
		Time       int        `json:"time"`
		Word       string     `json:"word,omitempty"`
		WordLength int        `json:"wordLength,omitempty"`
		Attempts   int        `json:"attempts,omitempty"`
		Date       *time.Time `json:"date,omitempty"`
		Legacy     bool       `json:"legacy,omitempty"`
	}
	v := view{
		Serial:   e.Serial,
		Time:     e.Time,
		Word:     e.Word,
		Attempts: e.Attempts,
		Legacy:   e.Legacy,
	}
	v.WordLength, _ = e.Length()
	if !e.Date.IsZero() {
		d := e.Date
		v.Date = &d
	}
	return json.Marshal(v)
}
