package game

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
)

const (
	C = VerdictCorrect
	P = VerdictPresent
	A = VerdictAbsent
)

func TestCountLetters(t *testing.T) {
	got := CountLetters("ErRoR")
	want := map[rune]int{'e': 1, 'r': 3, 'o': 1}
	if len(got) != len(want) {
		t.Fatalf("CountLetters: got %v, want %v", got, want)
	}
	for r, n := range want {
		if got[r] != n {
			t.Errorf("CountLetters[%q] = %d, want %d", r, got[r], n)
		}
	}
	if n := len(CountLetters("")); n != 0 {
		t.Errorf("CountLetters(\"\") has %d entries, want 0", n)
	}
	if n := len(CountRunes([]rune{0, 'a', 0})); n != 1 {
		t.Errorf("CountRunes skipped empties wrong: %d entries", n)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		guess, target string
		want          []Verdict
		correct       int
	}{
		{"rarer", "error", []Verdict{P, A, C, P, C}, 2},
		{"alley", "apple", []Verdict{C, P, A, P, A}, 1},
		{"apple", "apple", []Verdict{C, C, C, C, C}, 5},
		{"zzzzz", "apple", []Verdict{A, A, A, A, A}, 0},
		{"speed", "abide", []Verdict{A, A, P, A, P}, 0},
		{"eerie", "there", []Verdict{P, A, P, A, C}, 1},
		{"CAT", "act", []Verdict{P, P, C}, 1},
	}
	for _, tt := range tests {
		got, err := Evaluate(tt.guess, tt.target)
		if err != nil {
			t.Fatalf("Evaluate(%q, %q): %v", tt.guess, tt.target, err)
		}
		if got.CorrectCount != tt.correct {
			t.Errorf("Evaluate(%q, %q) correct = %d, want %d", tt.guess, tt.target, got.CorrectCount, tt.correct)
		}
		for i := range tt.want {
			if got.Verdicts[i] != tt.want[i] {
				t.Errorf("Evaluate(%q, %q) pos %d = %v, want %v", tt.guess, tt.target, i, got.Verdicts[i], tt.want[i])
			}
		}
	}
}

func TestEvaluateRejectsMismatch(t *testing.T) {
	for _, pair := range [][2]string{{"abc", "abcd"}, {"", ""}} {
		if _, err := Evaluate(pair[0], pair[1]); !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("Evaluate(%q, %q) err = %v, want ErrLengthMismatch", pair[0], pair[1], err)
		}
	}
}

// Marked letters never exceed guess letters that occur in the target, and
// a full Correct row happens only for an exact match.
func TestEvaluateProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	alphabet := "abcde"
	word := func(n int) string {
		var b strings.Builder
		for range n {
			b.WriteByte(alphabet[rng.IntN(len(alphabet))])
		}
		return b.String()
	}
	for range 2000 {
		n := 3 + rng.IntN(8)
		target, guess := word(n), word(n)
		res, err := Evaluate(guess, target)
		if err != nil {
			t.Fatal(err)
		}
		marked, shared := 0, 0
		for i, v := range res.Verdicts {
			if v == VerdictCorrect || v == VerdictPresent {
				marked++
			}
			if strings.ContainsRune(target, rune(guess[i])) {
				shared++
			}
		}
		if marked > shared {
			t.Fatalf("%s vs %s: %d marked > %d shared", guess, target, marked, shared)
		}
		if res.Solved() != (guess == target) {
			t.Fatalf("%s vs %s: solved=%v", guess, target, res.Solved())
		}
	}
}

func TestAlphabetMergeNeverDowngrades(t *testing.T) {
	a := make(AlphabetState)
	a.Merge([]rune("ab"), []Verdict{C, A})
	a.Merge([]rune("ab"), []Verdict{A, P})
	a.Merge([]rune("ba"), []Verdict{A, P})
	if a['a'] != VerdictCorrect {
		t.Errorf("a = %v, want correct", a['a'])
	}
	if a['b'] != VerdictPresent {
		t.Errorf("b = %v, want present", a['b'])
	}
}
