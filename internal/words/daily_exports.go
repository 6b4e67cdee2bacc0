// internal/words/daily_exports.go
//
// Target selection for the daily mode.
// Every player gets the same word for a given UTC date and word length, as
// long as the source returns the same pool: the pool is sorted and indexed
// by a daily.Picker keyed on date and length.

package words

import (
	"context"
	"slices"
	"time"

	"github.com/robalobadob/wordhunt/internal/daily"
)

// Daily returns the deterministic word for date among src's candidates of
// the given length.
func Daily(ctx context.Context, src Source, length int, date time.Time, salt string) (string, error) {
	pool, err := src.Candidates(ctx, length)
	if err != nil {
		return "", err
	}
	pool = slices.Clone(pool)
	slices.Sort(pool)
	pool = slices.Compact(pool)
	if len(pool) == 0 {
		return "", ErrNoCandidates
	}
	return pool[daily.NewPicker(salt).Index(date, length, len(pool))], nil
}
