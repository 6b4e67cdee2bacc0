// internal/game/errors.go
//
// Error taxonomy for the engine. Callers match with errors.Is.

package game

import "errors"

var (
	// ErrInvalidLength is the input-validation error for a word length that is
	// non-numeric or outside [MinWordLength, MaxWordLength].
	ErrInvalidLength = errors.New("word length must be a number between 3 and 10")

	// ErrLengthMismatch reports a guess whose length differs from the target.
	ErrLengthMismatch = errors.New("guess length does not match target")

	ErrGameOver    = errors.New("game is over")
	ErrRowLocked   = errors.New("row already evaluated")
	ErrBadPosition = errors.New("position out of range")
	ErrBadLetter   = errors.New("not a letter")

	// Hint errors are silent no-ops: no budget is consumed and the caller only
	// uses them to grey out the affordance.
	ErrHintExhausted = errors.New("no more hints available")
	ErrHintConflict  = errors.New("hint kind already committed this row")
	ErrHintCooldown  = errors.New("hint is cooling down")
)
