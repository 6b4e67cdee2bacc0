package game

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinWordLength      = 3
	MaxWordLength      = 10
	DefaultMaxAttempts = 5

	// LetterCooldownStep is multiplied by the number of letter hints used so far.
	LetterCooldownStep = 5 * time.Second
	// PositionCooldown is flat: a position hint gives away more.
	PositionCooldown = 60 * time.Second
)

// ValidLength reports whether n is an allowed word length.
func ValidLength(n int) bool {
	return n >= MinWordLength && n <= MaxWordLength
}

// ParseLength parses the player's word-length input. Non-numeric or
// out-of-range input yields ErrInvalidLength.
func ParseLength(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, input)
	}
	if !ValidLength(n) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	return n, nil
}

// ClampLength coerces free-form input into the allowed range the way the
// length picker does on blur: garbage and small values become the minimum,
// large values the maximum.
func ClampLength(input string) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	switch {
	case err != nil, n < MinWordLength:
		return MinWordLength
	case n > MaxWordLength:
		return MaxWordLength
	default:
		return n
	}
}
