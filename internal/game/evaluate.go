// internal/game/evaluate.go
//
// Guess evaluation using the classic two-pass algorithm.
//
// Pass 1:
//   - Mark exact matches Correct and remove them from the remaining counts.
//
// Pass 2 (left to right):
//   - For each non-correct guess letter: if the target still has unassigned
//     occurrences of it, mark Present and decrement; otherwise Absent.
//
// Left-to-right order in pass 2 matters: when a letter appears in the guess
// more often than it remains in the target, the leftmost copies win Present.

package game

import "strings"

// Result is the outcome of evaluating one guess.
type Result struct {
	Verdicts     []Verdict
	CorrectCount int
}

// Solved reports whether every position was Correct.
func (r Result) Solved() bool {
	return len(r.Verdicts) > 0 && r.CorrectCount == len(r.Verdicts)
}

// Evaluate scores guess against target. Both are lowercased before
// comparison; they must be non-empty and of equal length.
func Evaluate(guess, target string) (Result, error) {
	g := []rune(strings.ToLower(guess))
	t := []rune(strings.ToLower(target))
	if len(t) == 0 || len(g) != len(t) {
		return Result{}, ErrLengthMismatch
	}
	return evaluateRunes(g, t), nil
}

func evaluateRunes(guess, target []rune) Result {
	n := len(target)
	res := Result{Verdicts: make([]Verdict, n)}
	remaining := CountRunes(target)

	for i := 0; i < n; i++ {
		if guess[i] == target[i] {
			res.Verdicts[i] = VerdictCorrect
			remaining[guess[i]]--
			res.CorrectCount++
		}
	}

	for i := 0; i < n; i++ {
		if res.Verdicts[i] == VerdictCorrect {
			continue
		}
		if remaining[guess[i]] > 0 {
			res.Verdicts[i] = VerdictPresent
			remaining[guess[i]]--
		} else {
			res.Verdicts[i] = VerdictAbsent
		}
	}
	return res
}
