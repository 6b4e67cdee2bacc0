// internal/stats/store.go
//
// StatStore: the per-player high score list and saved filter selection.
//
// Persistence uses two keys per owner in a generic key-value store:
//   highScores:<owner>    JSON array of records, kept in ranking order.
//   scoreFilters:<owner>  JSON object of filter type -> selected range indices.
//
// The store serializes read-modify-write cycles within the process; it does
// not coordinate writers across processes.

package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/robalobadob/wordhunt/internal/store"
)

const (
	scoresPrefix  = "highScores:"
	filtersPrefix = "scoreFilters:"
)

// Store reads and writes stat records through a store.KV.
type Store struct {
	kv store.KV
	mu sync.Mutex
}

func NewStore(kv store.KV) *Store { return &Store{kv: kv} }

// Query selects and orders a listing.
type Query struct {
	Filters   Selection
	Field     SortField
	Direction Direction
}

// Records returns owner's stored list in ranking order. A missing list is
// empty, not an error.
func (s *Store) Records(ctx context.Context, owner string) ([]Record, error) {
	raw, err := s.kv.Get(ctx, scoresPrefix+owner)
	if errors.Is(err, store.ErrNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	var recs []Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	return recs, nil
}

// Record appends rec to owner's list, re-ranks and persists the full list.
func (s *Store) Record(ctx context.Context, owner string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.Records(ctx, owner)
	if err != nil {
		return err
	}
	recs = append(recs, rec)
	Rank(recs)
	raw, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}
	if err := s.kv.Set(ctx, scoresPrefix+owner, raw); err != nil {
		return fmt.Errorf("save scores: %w", err)
	}
	return nil
}

// Entries numbers records by their stored position, starting at 1.
func Entries(recs []Record) []Entry {
	return lo.Map(recs, func(r Record, i int) Entry { return Entry{Serial: i + 1, Record: r} })
}

// Filter keeps the entries sel matches, in order.
func Filter(entries []Entry, sel Selection) []Entry {
	return lo.Filter(entries, func(e Entry, _ int) bool { return sel.Matches(e.Record) })
}

// List filters and sorts owner's records.
func (s *Store) List(ctx context.Context, owner string, q Query) ([]Entry, error) {
	recs, err := s.Records(ctx, owner)
	if err != nil {
		return nil, err
	}
	entries := Filter(Entries(recs), q.Filters)
	return Sort(entries, q.Field, q.Direction), nil
}

// Filters returns owner's saved selection, empty if none was saved.
func (s *Store) Filters(ctx context.Context, owner string) (Selection, error) {
	raw, err := s.kv.Get(ctx, filtersPrefix+owner)
	if errors.Is(err, store.ErrNotFound) {
		return Selection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load filters: %w", err)
	}
	var sel Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("decode filters: %w", err)
	}
	// Drop anything no longer valid rather than failing the listing.
	for t, idx := range sel {
		rs, ok := Ranges[t]
		if !ok {
			delete(sel, t)
			continue
		}
		sel[t] = lo.Filter(idx, func(i int, _ int) bool { return i >= 0 && i < len(rs) })
	}
	return sel.Normalize(), nil
}

// SaveFilters replaces owner's selection.
func (s *Store) SaveFilters(ctx context.Context, owner string, sel Selection) error {
	if err := sel.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(sel.Normalize())
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	if err := s.kv.Set(ctx, filtersPrefix+owner, raw); err != nil {
		return fmt.Errorf("save filters: %w", err)
	}
	return nil
}

// ToggleFilter flips one range in owner's selection and persists it.
func (s *Store) ToggleFilter(ctx context.Context, owner string, t FilterType, index int) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, err := s.Filters(ctx, owner)
	if err != nil {
		return nil, err
	}
	sel, err = sel.Toggle(t, index)
	if err != nil {
		return nil, err
	}
	if err := s.SaveFilters(ctx, owner, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// ClearFilters persists an empty selection.
func (s *Store) ClearFilters(ctx context.Context, owner string) error {
	return s.SaveFilters(ctx, owner, Selection{})
}
