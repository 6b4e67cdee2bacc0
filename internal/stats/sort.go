package stats

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// SortField selects the column a listing is ordered by.
type SortField string

const (
	SortSerial     SortField = "serial"
	SortWord       SortField = "word"
	SortTime       SortField = "time"
	SortAttempts   SortField = "attempts"
	SortWordLength SortField = "wordLength"
)

// Direction of a sort. DirDefault keeps the stored order.
type Direction string

const (
	DirDefault    Direction = "default"
	DirAscending  Direction = "ascending"
	DirDescending Direction = "descending"
)

var (
	ErrUnknownField     = errors.New("unknown sort field")
	ErrUnknownDirection = errors.New("unknown sort direction")
)

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.TrimSpace(s)); f {
	case SortSerial, SortWord, SortTime, SortAttempts, SortWordLength:
		return f, nil
	case "":
		return SortSerial, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// ParseDirection also accepts the short forms asc/desc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return DirDefault, nil
	case "asc", "ascending":
		return DirAscending, nil
	case "desc", "descending":
		return DirDescending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// NextDirection cycles default -> ascending -> descending -> default.
func NextDirection(d Direction) Direction {
	switch d {
	case DirDefault:
		return DirAscending
	case DirAscending:
		return DirDescending
	default:
		return DirDefault
	}
}

// Entry is a record together with its 1-based position in the stored list.
type Entry struct {
	Serial int
	Record
}

// compareRank is the ranking order of the stored list: time ascending, then
// attempts ascending, then date descending. On equal time a legacy record
// sorts after any full one.
func compareRank(a, b Record) int {
	if c := cmp.Compare(a.Time, b.Time); c != 0 {
		return c
	}
	switch {
	case a.Legacy && b.Legacy:
		return 0
	case a.Legacy:
		return 1
	case b.Legacy:
		return -1
	}
	if c := cmp.Compare(a.Attempts, b.Attempts); c != 0 {
		return c
	}
	return b.Date.Compare(a.Date)
}

// Rank stable-sorts records into ranking order in place.
func Rank(records []Record) {
	slices.SortStableFunc(records, compareRank)
}

// Sort returns a sorted copy of entries. DirDefault returns the entries in
// their given order.
//
// Sorting by time keeps the ranking tie-breaks (attempts ascending, date
// descending) in both directions. For the other fields, ties keep their
// relative order and legacy records, which carry no word or attempts, go
// last whichever the direction.
func Sort(entries []Entry, field SortField, dir Direction) []Entry {
	out := slices.Clone(entries)
	if dir == DirDefault {
		return out
	}
	sign := 1
	if dir == DirDescending {
		sign = -1
	}

	if field == SortTime {
		slices.SortStableFunc(out, func(a, b Entry) int {
			if c := cmp.Compare(a.Time, b.Time); c != 0 {
				return sign * c
			}
			return compareRank(a.Record, b.Record)
		})
		return out
	}

	slices.SortStableFunc(out, func(a, b Entry) int {
		if field != SortSerial && a.Legacy != b.Legacy {
			if a.Legacy {
				return 1
			}
			return -1
		}
		return sign * compareField(a, b, field)
	})
	return out
}

func compareField(a, b Entry, field SortField) int {
	switch field {
	case SortSerial:
		return cmp.Compare(a.Serial, b.Serial)
	case SortWord:
		return strings.Compare(strings.ToLower(a.Word), strings.ToLower(b.Word))
	case SortAttempts:
		return cmp.Compare(a.Attempts, b.Attempts)
	case SortWordLength:
		la, _ := a.Length()
		lb, _ := b.Length()
		return cmp.Compare(la, lb)
	}
	return 0
}
