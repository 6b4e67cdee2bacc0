// internal/store/games.go
//
// Registry of live game sessions. Games are held in memory only: a game in
// progress carries running timers and is not worth persisting.
//
// Every Save/Get refreshes the entry's last-used time; Sweep evicts entries
// idle for longer than a cutoff.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/wordhunt/internal/game"
)

type gameEntry struct {
	g       *game.Game
	owner   string
	touched time.Time
}

// Games is a concurrency-safe map of game ID to game.
type Games struct {
	mu    sync.RWMutex
	games map[string]*gameEntry
	now   func() time.Time
}

// NewGames constructs an empty registry. now may be nil.
func NewGames(now func() time.Time) *Games {
	if now == nil {
		now = time.Now
	}
	return &Games{games: make(map[string]*gameEntry), now: now}
}

// Save adds or refreshes g under owner.
func (s *Games) Save(ctx context.Context, owner string, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = &gameEntry{g: g, owner: owner, touched: s.now()}
	return nil
}

// Get returns the game and its owner, or ErrNotFound.
func (s *Games) Get(ctx context.Context, id string) (*game.Game, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.games[id]
	if !ok {
		return nil, "", ErrNotFound
	}
	e.touched = s.now()
	return e.g, e.owner, nil
}

// Delete removes id. Missing IDs are ignored.
func (s *Games) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// Len returns the number of live games.
func (s *Games) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Sweep removes games idle for longer than maxIdle and returns them so the
// caller can stop their clocks.
func (s *Games) Sweep(maxIdle time.Duration) []*game.Game {
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*game.Game
	for id, e := range s.games {
		if e.touched.Before(cutoff) {
			out = append(out, e.g)
			delete(s.games, id)
		}
	}
	return out
}
