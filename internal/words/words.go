// internal/words/words.go
//
// Word sources for the game engine.
//
// A Source supplies candidate target words of a given length and validates
// arbitrary guesses. Implementations:
//   - Embedded: word lists compiled into the binary (assets package).
//   - Datamuse: the Datamuse API for candidates, with Free Dictionary as a
//     second opinion for validation.
//   - Chain: a primary source whose candidate fetch falls back to another.
//
// Validation is best-effort. A source that cannot reach its backend reports
// the word as valid rather than blocking play.

package words

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/robalobadob/wordhunt/assets"
	"github.com/robalobadob/wordhunt/internal/metrics"
)

// ErrNoCandidates means a source returned no usable words for a length.
var ErrNoCandidates = errors.New("no candidate words")

// Source is the word supply contract.
type Source interface {
	// Candidates returns words of exactly length letters, lowercase.
	// It fails with ErrNoCandidates when the filtered set is empty.
	Candidates(ctx context.Context, length int) ([]string, error)

	// Validate reports whether word is a real word. Transport failures
	// yield true.
	Validate(ctx context.Context, word string) bool
}

// Pattern returns the length wildcard pattern ("?????" for 5).
func Pattern(length int) string {
	return strings.Repeat("?", max(length, 0))
}

// Pick returns a uniformly random element of pool using crypto/rand.
func Pick(pool []string) (string, error) {
	if len(pool) == 0 {
		return "", ErrNoCandidates
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	if err != nil {
		return "", err
	}
	return pool[n.Int64()], nil
}

// isAlpha reports whether s is non-empty and all lowercase ASCII letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------

// Embedded serves the word lists compiled into the binary. Answers are the
// candidate targets; allowed guesses are answers ∪ the allowed list.
type Embedded struct {
	once     sync.Once
	byLength map[int][]string
	allowed  map[string]struct{}
	initErr  error
}

// NewEmbedded returns a source over the embedded lists. Lists load lazily.
func NewEmbedded() *Embedded { return &Embedded{} }

func (e *Embedded) load() {
	ans, err := assets.AnswersList()
	if err != nil {
		e.initErr = fmt.Errorf("load answers: %w", err)
		return
	}
	all, err := assets.AllowedList()
	if err != nil {
		e.initErr = fmt.Errorf("load allowed: %w", err)
		return
	}
	ans = lo.Uniq(lo.Filter(ans, func(w string, _ int) bool { return isAlpha(w) }))
	e.byLength = lo.GroupBy(ans, func(w string) int { return len(w) })
	e.allowed = make(map[string]struct{}, len(ans)+len(all))
	for _, w := range append(ans, all...) {
		if isAlpha(w) {
			e.allowed[w] = struct{}{}
		}
	}
}

// Init loads the lists and reports any embedding error.
func (e *Embedded) Init() error {
	e.once.Do(e.load)
	return e.initErr
}

func (e *Embedded) Candidates(ctx context.Context, length int) ([]string, error) {
	if err := e.Init(); err != nil {
		return nil, err
	}
	pool := e.byLength[length]
	if len(pool) == 0 {
		metrics.WordSourceRequests.WithLabelValues("embedded", "candidates", "empty").Inc()
		return nil, fmt.Errorf("%w: length %d", ErrNoCandidates, length)
	}
	metrics.WordSourceRequests.WithLabelValues("embedded", "candidates", "ok").Inc()
	return append([]string(nil), pool...), nil
}

func (e *Embedded) Validate(ctx context.Context, word string) bool {
	if e.Init() != nil {
		return true
	}
	_, ok := e.allowed[strings.ToLower(strings.TrimSpace(word))]
	return ok
}

// Stats returns (answers, allowed) counts.
func (e *Embedded) Stats() (answers int, allowed int) {
	if e.Init() != nil {
		return 0, 0
	}
	for _, ws := range e.byLength {
		answers += len(ws)
	}
	return answers, len(e.allowed)
}

// ---------------------------------------------------------------------------

// Chain takes candidates from Primary and, when that fails for any reason,
// from Fallback. Validation always goes to Primary.
type Chain struct {
	Primary  Source
	Fallback Source
}

func (c Chain) Candidates(ctx context.Context, length int) ([]string, error) {
	ws, err := c.Primary.Candidates(ctx, length)
	if err == nil || c.Fallback == nil {
		return ws, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	fb, fbErr := c.Fallback.Candidates(ctx, length)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	return fb, nil
}

func (c Chain) Validate(ctx context.Context, word string) bool {
	return c.Primary.Validate(ctx, word)
}
