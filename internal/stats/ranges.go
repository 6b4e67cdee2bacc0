package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// FilterType names a record attribute that can be filtered by range.
type FilterType string

const (
	FilterWordLength FilterType = "WORD_LENGTH"
	FilterTime       FilterType = "TIME"
	FilterAttempts   FilterType = "ATTEMPTS"
)

// FilterTypes lists every filter type in display order.
var FilterTypes = []FilterType{FilterWordLength, FilterTime, FilterAttempts}

var (
	ErrUnknownFilter = errors.New("unknown filter type")
	ErrBadRange      = errors.New("range index out of bounds")
)

// Range is an inclusive bucket [Min, Max].
type Range struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

func (r Range) Contains(v int) bool { return v >= r.Min && v <= r.Max }

// Ranges holds the canonical buckets per filter type. Bounds are inclusive
// on both ends, so a value on a boundary (60s, say) falls in two buckets.
var Ranges = map[FilterType][]Range{
	FilterWordLength: {
		{Label: "3-5 letters", Min: 3, Max: 5},
		{Label: "6-8 letters", Min: 6, Max: 8},
		{Label: "9-10 letters", Min: 9, Max: 10},
	},
	FilterTime: {
		{Label: "Under 30s", Min: 0, Max: 30},
		{Label: "30s - 60s", Min: 30, Max: 60},
		{Label: "1 min - 2 mins", Min: 60, Max: 120},
		{Label: "2 mins - 3 mins", Min: 120, Max: 180},
		{Label: "3 mins - 4 mins", Min: 180, Max: 240},
		{Label: "4 mins - 5 mins", Min: 240, Max: 300},
		{Label: "Over 5 mins", Min: 300, Max: math.MaxInt},
	},
	FilterAttempts: {
		{Label: "1-2 attempts", Min: 1, Max: 2},
		{Label: "3-4 attempts", Min: 3, Max: 4},
		{Label: "5 attempts", Min: 5, Max: 5},
	},
}

// ParseFilterType accepts the canonical upper-case names, case-insensitively.
func ParseFilterType(s string) (FilterType, error) {
	t := FilterType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := Ranges[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
	return t, nil
}

// Selection maps a filter type to the selected range indices. A type with
// no indices imposes no constraint.
type Selection map[FilterType][]int

// Validate checks every type and index.
func (s Selection) Validate() error {
	for t, idx := range s {
		rs, ok := Ranges[t]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownFilter, t)
		}
		for _, i := range idx {
			if i < 0 || i >= len(rs) {
				return fmt.Errorf("%w: %s[%d]", ErrBadRange, t, i)
			}
		}
	}
	return nil
}

// Normalize drops empty types and sorts and dedupes indices.
func (s Selection) Normalize() Selection {
	out := make(Selection, len(s))
	for t, idx := range s {
		idx = lo.Uniq(idx)
		if len(idx) == 0 {
			continue
		}
		slices.Sort(idx)
		out[t] = idx
	}
	return out
}

// Active reports whether any type carries a constraint.
func (s Selection) Active() bool {
	for _, idx := range s {
		if len(idx) > 0 {
			return true
		}
	}
	return false
}

// Toggle adds index to t's selection or removes it if present. Removing the
// last index removes the type.
func (s Selection) Toggle(t FilterType, index int) (Selection, error) {
	rs, ok := Ranges[t]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownFilter, t)
	}
	if index < 0 || index >= len(rs) {
		return s, fmt.Errorf("%w: %s[%d]", ErrBadRange, t, index)
	}
	out := s.Normalize()
	cur := out[t]
	if slices.Contains(cur, index) {
		cur = lo.Without(cur, index)
	} else {
		cur = append(cur, index)
		slices.Sort(cur)
	}
	if len(cur) == 0 {
		delete(out, t)
	} else {
		out[t] = cur
	}
	return out, nil
}

// value extracts the attribute t filters on. ok is false when the record
// has no such attribute (legacy records only carry a time).
func value(r Record, t FilterType) (int, bool) {
	switch t {
	case FilterTime:
		return r.Time, true
	case FilterWordLength:
		return r.Length()
	case FilterAttempts:
		if r.Legacy || r.Attempts == 0 {
			return 0, false
		}
		return r.Attempts, true
	}
	return 0, false
}

// Matches reports whether r passes s: AND across types, OR across the
// ranges selected within a type.
func (s Selection) Matches(r Record) bool {
	for t, idx := range s {
		if len(idx) == 0 {
			continue
		}
		v, ok := value(r, t)
		if !ok {
			return false
		}
		rs := Ranges[t]
		hit := lo.SomeBy(idx, func(i int) bool {
			return i >= 0 && i < len(rs) && rs[i].Contains(v)
		})
		if !hit {
			return false
		}
	}
	return true
}

// AvailableFilters returns, per filter type, the sorted range indices that
// at least one record falls in.
func AvailableFilters(records []Record) Selection {
	out := make(Selection, len(FilterTypes))
	for _, t := range FilterTypes {
		rs := Ranges[t]
		out[t] = lo.Filter(lo.Range(len(rs)), func(i int, _ int) bool {
			return lo.SomeBy(records, func(r Record) bool {
				v, ok := value(r, t)
				return ok && rs[i].Contains(v)
			})
		})
	}
	return out
}
