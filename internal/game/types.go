// internal/game/types.go
//
// Core type definitions for the word game engine.
// Defines:
//   - Verdict: per-letter result of a guess (correct/present/absent).
//   - AlphabetState: best verdict seen per letter across all rows.
//   - Row: one attempt, its entered letters and (after evaluation) verdicts.
//   - Outcome / Phase: terminal state of the game and per-row phase.

package game

import "encoding/json"

// Verdict represents the evaluation result for a single letter in a guess.
// The numeric order is the precedence used when merging into AlphabetState:
// Correct > Present > Absent > unknown.
type Verdict uint8

const (
	VerdictUnknown Verdict = iota
	VerdictAbsent
	VerdictPresent
	VerdictCorrect
)

func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "correct"
	case VerdictPresent:
		return "present"
	case VerdictAbsent:
		return "absent"
	default:
		return ""
	}
}

// MarshalJSON encodes a verdict as its lowercase name.
func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// Outcome is the terminal state of a game.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "playing"
	}
}

// Terminal reports whether the game has ended.
func (o Outcome) Terminal() bool { return o != OutcomeNone }

// Phase is the state of a single row.
type Phase uint8

const (
	PhaseAwaitingInput Phase = iota // at least one position is empty
	PhaseRowComplete                // every position filled, not yet evaluated
	PhaseEvaluated                  // scored and locked
)

func (p Phase) String() string {
	switch p {
	case PhaseRowComplete:
		return "row_complete"
	case PhaseEvaluated:
		return "evaluated"
	default:
		return "awaiting_input"
	}
}

// AlphabetState maps a letter to the best verdict seen for it so far.
type AlphabetState map[rune]Verdict

// Merge folds one row of verdicts into the state. A letter is never
// downgraded: once Correct it stays Correct.
func (a AlphabetState) Merge(letters []rune, verdicts []Verdict) {
	for i, r := range letters {
		if i >= len(verdicts) {
			return
		}
		if verdicts[i] > a[r] {
			a[r] = verdicts[i]
		}
	}
}

// Row is one attempt. Letters holds the entered runes (0 = empty position);
// Verdicts is populated only once the row has been evaluated, after which the
// row is locked for good.
type Row struct {
	Index    int
	Letters  []rune
	Verdicts []Verdict
	Locked   bool
}

func newRow(index, length int) *Row {
	return &Row{Index: index, Letters: make([]rune, length)}
}

// Word returns the entered letters as a string; empty positions are skipped.
func (r *Row) Word() string {
	out := make([]rune, 0, len(r.Letters))
	for _, l := range r.Letters {
		if l != 0 {
			out = append(out, l)
		}
	}
	return string(out)
}

// Phase derives the row's position in the AwaitingInput → RowComplete →
// Evaluated progression.
func (r *Row) Phase() Phase {
	switch {
	case r.Locked:
		return PhaseEvaluated
	case IsRowComplete(r):
		return PhaseRowComplete
	default:
		return PhaseAwaitingInput
	}
}

// IsRowComplete is true iff every position of the row holds a letter.
func IsRowComplete(r *Row) bool {
	if r == nil || len(r.Letters) == 0 {
		return false
	}
	for _, l := range r.Letters {
		if l == 0 {
			return false
		}
	}
	return true
}
