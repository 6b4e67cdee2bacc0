// internal/game/hints.go
//
// Hint budget shared by the two hint kinds.
//
// Rules:
//   - Both kinds draw from one pool whose size equals the word length.
//   - Only one kind may be used per row; the row commitment is cleared when
//     the game advances to a new row.
//   - After a use the kind cools down: letter hints by LetterCooldownStep times
//     the number of letter hints used so far, position hints by a flat
//     PositionCooldown. Cooldowns run on wall-clock time and survive row changes.
//   - Once the pool is empty both kinds are disabled for the rest of the game,
//     whatever their cooldown.
//   - A request that finds nothing informative to reveal is a no-op.

package game

import (
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
)

// HintKind selects which hint is requested.
type HintKind uint8

const (
	HintNone HintKind = iota
	HintLetter
	HintPosition
)

func (k HintKind) String() string {
	switch k {
	case HintLetter:
		return "letter"
	case HintPosition:
		return "position"
	default:
		return ""
	}
}

// ErrUnknownHint is returned by ParseHintKind for anything but letter/position.
var ErrUnknownHint = errors.New("unknown hint kind")

// ParseHintKind maps "letter" / "position" to a HintKind.
func ParseHintKind(s string) (HintKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "letter":
		return HintLetter, nil
	case "position":
		return HintPosition, nil
	default:
		return HintNone, ErrUnknownHint
	}
}

// ButtonState is the affordance a hint kind should show.
type ButtonState uint8

const (
	ButtonEnabled ButtonState = iota
	ButtonCooldown
	ButtonDisabled
)

func (s ButtonState) String() string {
	switch s {
	case ButtonCooldown:
		return "cooldown"
	case ButtonDisabled:
		return "disabled"
	default:
		return "enabled"
	}
}

// Hint is a granted reveal. For HintLetter, Position is where the letter was
// placed in the current row (not necessarily its home); for HintPosition it
// is the letter's correct index.
type Hint struct {
	Kind     HintKind
	Letter   rune
	Position int
}

// Rand is the subset of *math/rand/v2.Rand the budget uses.
type Rand interface {
	IntN(n int) int
}

// Board is the game state a hint is computed against.
type Board struct {
	Target  []rune
	Current []rune
	Prior   []*Row
}

// HintBudget owns all hint bookkeeping for one game.
type HintBudget struct {
	capacity      int
	used          int
	rowKind       HintKind
	uses          map[HintKind]int
	cooldownUntil map[HintKind]time.Time
	now           func() time.Time
	rng           Rand
}

// NewHintBudget creates a budget of wordLength hints.
func NewHintBudget(wordLength int, now func() time.Time, rng Rand) *HintBudget {
	if now == nil {
		now = time.Now
	}
	return &HintBudget{
		capacity:      wordLength,
		uses:          make(map[HintKind]int, 2),
		cooldownUntil: make(map[HintKind]time.Time, 2),
		now:           now,
		rng:           rng,
	}
}

func (h *HintBudget) Capacity() int { return h.capacity }
func (h *HintBudget) Used() int { return h.used }
func (h *HintBudget) Remaining() int { return h.capacity - h.used }
func (h *HintBudget) Exhausted() bool { return h.used >= h.capacity }
func (h *HintBudget) RowKind() HintKind { return h.rowKind }
func (h *HintBudget) Uses(k HintKind) int { return h.uses[k] }

// RemainingCooldown returns how long kind stays unusable; zero if ready.
func (h *HintBudget) RemainingCooldown(kind HintKind) time.Duration {
	until, ok := h.cooldownUntil[kind]
	if !ok {
		return 0
	}
	d := until.Sub(h.now())
	if d <= 0 {
		delete(h.cooldownUntil, kind)
		return 0
	}
	return d
}

// State reports the button state of kind.
func (h *HintBudget) State(kind HintKind) ButtonState {
	if h.Exhausted() || (h.rowKind != HintNone && h.rowKind != kind) {
		return ButtonDisabled
	}
	if h.RemainingCooldown(kind) > 0 {
		return ButtonCooldown
	}
	return ButtonEnabled
}

// Check reports why kind cannot be used right now, or nil.
func (h *HintBudget) Check(kind HintKind) error {
	switch {
	case kind != HintLetter && kind != HintPosition:
		return ErrUnknownHint
	case h.Exhausted():
		return ErrHintExhausted
	case h.rowKind != HintNone && h.rowKind != kind:
		return ErrHintConflict
	case h.RemainingCooldown(kind) > 0:
		return ErrHintCooldown
	}
	return nil
}

// Request tries to grant a hint of kind against b. ok is false with a nil
// error when nothing informative is left to reveal; no budget is consumed in
// that case or when err is non-nil.
func (h *HintBudget) Request(kind HintKind, b Board) (hint Hint, ok bool, err error) {
	if err := h.Check(kind); err != nil {
		return Hint{}, false, err
	}
	switch kind {
	case HintLetter:
		hint, ok = h.pickLetter(b)
	case HintPosition:
		hint, ok = h.pickPosition(b)
	}
	if !ok {
		return Hint{}, false, nil
	}
	h.commit(kind)
	return hint, true, nil
}

// AdvanceRow clears the per-row kind commitment. Cooldowns are untouched.
func (h *HintBudget) AdvanceRow() { h.rowKind = HintNone }

// Reset restores a fresh budget and cancels all cooldowns.
func (h *HintBudget) Reset() {
	h.used = 0
	h.rowKind = HintNone
	clear(h.uses)
	clear(h.cooldownUntil)
}

func (h *HintBudget) commit(kind HintKind) {
	h.used++
	h.rowKind = kind
	h.uses[kind]++
	if h.Exhausted() {
		return
	}
	var d time.Duration
	if kind == HintLetter {
		d = LetterCooldownStep * time.Duration(h.uses[HintLetter])
	} else {
		d = PositionCooldown
	}
	h.cooldownUntil[kind] = h.now().Add(d)
}

func (h *HintBudget) intn(n int) int {
	if h.rng == nil || n <= 1 {
		return 0
	}
	return h.rng.IntN(n)
}

// pickLetter chooses an informative target letter and a free slot in the
// current row (empty, or holding a letter the target does not contain).
func (h *HintBudget) pickLetter(b Board) (Hint, bool) {
	inTarget := CountRunes(b.Target)
	slots := lo.Filter(lo.Range(len(b.Current)), func(i int, _ int) bool {
		return b.Current[i] == 0 || inTarget[b.Current[i]] == 0
	})
	if len(slots) == 0 {
		return Hint{}, false
	}
	open := informative(b)
	letters := lo.Uniq(lo.Filter(b.Target, func(r rune, _ int) bool { return open[r] }))
	if len(letters) == 0 {
		return Hint{}, false
	}
	return Hint{
		Kind:     HintLetter,
		Letter:   letters[h.intn(len(letters))],
		Position: slots[h.intn(len(slots))],
	}, true
}

// pickPosition chooses an index whose correct letter is not already in place
// and whose letter still has unrevealed occurrences.
func (h *HintBudget) pickPosition(b Board) (Hint, bool) {
	open := informative(b)
	positions := lo.Filter(lo.Range(len(b.Target)), func(i int, _ int) bool {
		if i < len(b.Current) && b.Current[i] == b.Target[i] {
			return false
		}
		return open[b.Target[i]]
	})
	if len(positions) == 0 {
		return Hint{}, false
	}
	i := positions[h.intn(len(positions))]
	return Hint{Kind: HintPosition, Letter: b.Target[i], Position: i}, true
}

// informative returns the target letters that still have occurrences the
// player has not seen. Reveals per letter are the best of: any evaluated
// row's Correct+Present count, and the copies entered in the current row.
func informative(b Board) map[rune]bool {
	want := CountRunes(b.Target)
	seen := make(map[rune]int, len(want))
	for _, row := range b.Prior {
		if row == nil || !row.Locked {
			continue
		}
		perRow := make(map[rune]int)
		for i, v := range row.Verdicts {
			if v == VerdictCorrect || v == VerdictPresent {
				perRow[row.Letters[i]]++
			}
		}
		for r, n := range perRow {
			seen[r] = max(seen[r], n)
		}
	}
	for r, n := range CountRunes(b.Current) {
		seen[r] = max(seen[r], n)
	}
	out := make(map[rune]bool, len(want))
	for r, n := range want {
		if seen[r] < n {
			out[r] = true
		}
	}
	return out
}
