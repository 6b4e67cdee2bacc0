// internal/game/engine.go
//
// Core game engine for a single word game session.
// Responsibilities:
//   - Create games for a target word of length 3–10 with a bounded number of rows.
//   - Accept letter input into the current row.
//   - Score complete rows exactly once and lock them.
//   - Track state transitions: playing → won/lost, appending rows in between.
//   - Route hint requests through the game's HintBudget.
//
// A Game is not safe for concurrent use; callers serialize access per game.
// Misuse that a UI can trigger by double-clicking (submitting an incomplete or
// already evaluated row) is a no-op rather than an error.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Game holds the state of a single game session.
type Game struct {
	ID           string        // Unique game identifier.
	Target       string        // The solution word (always lowercase).
	Length       int           // Letters per word.
	MaxAttempts  int           // Rows available before the game is lost.
	Rows         []*Row        // Append-only; the last row is the current one.
	Outcome      Outcome       // None while playing.
	Alphabet     AlphabetState // Best verdict per guessed letter.
	TotalCorrect int           // Correct count of the most recently evaluated row.
	Hints        *HintBudget
	Clock        *TurnClock

	target []rune
	now    func() time.Time
}

type options struct {
	id          string
	maxAttempts int
	now         func() time.Time
	rng         Rand
}

// Option customizes New.
type Option func(*options)

// WithID sets the game identifier instead of a random one.
func WithID(id string) Option { return func(o *options) { o.id = id } }

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithClock injects the wall clock used by the turn clock and hint cooldowns.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithRand injects the random source hint selection draws from.
func WithRand(r Rand) Option { return func(o *options) { o.rng = r } }

// New constructs a game for target. The target must be 3–10 letters.
func New(target string, opts ...Option) (*Game, error) {
	o := options{maxAttempts: DefaultMaxAttempts, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	word := []rune(strings.ToLower(strings.TrimSpace(target)))
	if !ValidLength(len(word)) {
		return nil, fmt.Errorf("%w: target has %d letters", ErrInvalidLength, len(word))
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return nil, fmt.Errorf("%w: target %q", ErrBadLetter, target)
		}
	}
	if o.id == "" {
		o.id = randomID()
	}
	n := len(word)
	return &Game{
		ID:          o.id,
		Target:      string(word),
		Length:      n,
		MaxAttempts: o.maxAttempts,
		Rows:        []*Row{newRow(0, n)},
		Alphabet:    make(AlphabetState),
		Hints:       NewHintBudget(n, o.now, o.rng),
		Clock:       StartClock(o.now()),
		target:      word,
		now:         o.now,
	}, nil
}

// CurrentRow returns the row accepting input (the last one).
func (g *Game) CurrentRow() *Row { return g.Rows[len(g.Rows)-1] }

// CurrentIndex is the 0-based index of the current row.
func (g *Game) CurrentIndex() int { return len(g.Rows) - 1 }

// Attempts counts evaluated rows.
func (g *Game) Attempts() int {
	n := 0
	for _, r := range g.Rows {
		if r.Locked {
			n++
		}
	}
	return n
}

// Elapsed returns whole seconds on the turn clock.
func (g *Game) Elapsed() int { return g.Clock.Elapsed(g.now()) }

// SetLetter writes letter at pos in the current row. A zero rune clears it.
func (g *Game) SetLetter(pos int, letter rune) error {
	row, err := g.editableRow()
	if err != nil {
		return err
	}
	if pos < 0 || pos >= g.Length {
		return ErrBadPosition
	}
	if letter != 0 && !unicode.IsLetter(letter) {
		return ErrBadLetter
	}
	row.Letters[pos] = unicode.ToLower(letter)
	return nil
}

// Fill replaces the whole current row with guess.
func (g *Game) Fill(guess string) error {
	row, err := g.editableRow()
	if err != nil {
		return err
	}
	letters := []rune(strings.ToLower(strings.TrimSpace(guess)))
	if len(letters) != g.Length {
		return ErrLengthMismatch
	}
	for _, r := range letters {
		if !unicode.IsLetter(r) {
			return ErrBadLetter
		}
	}
	copy(row.Letters, letters)
	return nil
}

// ClearRow empties the current row so the player can try again.
func (g *Game) ClearRow() error {
	row, err := g.editableRow()
	if err != nil {
		return err
	}
	clear(row.Letters)
	return nil
}

func (g *Game) editableRow() (*Row, error) {
	if g.Outcome.Terminal() {
		return nil, ErrGameOver
	}
	row := g.CurrentRow()
	if row.Locked {
		return nil, ErrRowLocked
	}
	return row, nil
}

// SubmitResult reports what a submission did. Evaluated is false when the
// submission was a no-op (incomplete row, row already evaluated, game over).
type SubmitResult struct {
	Row          int
	Verdicts     []Verdict
	CorrectCount int
	Outcome      Outcome
	Evaluated    bool
}

// Submit evaluates the current row.
func (g *Game) Submit() SubmitResult { return g.SubmitRow(g.CurrentRow()) }

// SubmitRow evaluates row if it is the current, complete, unlocked row.
//
// State transitions:
//   - All letters Correct → Won.
//   - Else if this was row MaxAttempts-1 → Lost.
//   - Else a new row is appended and the hint row commitment is cleared.
func (g *Game) SubmitRow(row *Row) SubmitResult {
	if row == nil {
		return SubmitResult{Outcome: g.Outcome}
	}
	res := SubmitResult{Row: row.Index, Outcome: g.Outcome}
	if g.Outcome.Terminal() || row.Locked || row != g.CurrentRow() || !IsRowComplete(row) {
		return res
	}

	scored := evaluateRunes(row.Letters, g.target)
	row.Verdicts = scored.Verdicts
	row.Locked = true
	g.Alphabet.Merge(row.Letters, row.Verdicts)
	g.TotalCorrect = scored.CorrectCount

	switch {
	case scored.Solved():
		g.finish(OutcomeWon)
	case row.Index+1 >= g.MaxAttempts:
		g.finish(OutcomeLost)
	default:
		g.Rows = append(g.Rows, newRow(row.Index+1, g.Length))
		g.Hints.AdvanceRow()
	}

	res.Verdicts = scored.Verdicts
	res.CorrectCount = scored.CorrectCount
	res.Outcome = g.Outcome
	res.Evaluated = true
	return res
}

func (g *Game) finish(o Outcome) {
	g.Outcome = o
	g.Clock.Stop(g.now())
}

// Hint asks the budget for a hint and, when granted, writes the revealed
// letter into the current row.
func (g *Game) Hint(kind HintKind) (Hint, bool, error) {
	row, err := g.editableRow()
	if err != nil {
		return Hint{}, false, err
	}
	board := Board{
		Target:  g.target,
		Current: append([]rune(nil), row.Letters...),
		Prior:   g.Rows[:len(g.Rows)-1],
	}
	h, ok, err := g.Hints.Request(kind, board)
	if err != nil || !ok {
		return Hint{}, false, err
	}
	row.Letters[h.Position] = h.Letter
	return h, true, nil
}

// Close is the hard reset: it stops the clock and cancels hint cooldowns.
// The game should be discarded afterwards.
func (g *Game) Close() {
	g.Clock.Stop(g.now())
	g.Hints.Reset()
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
