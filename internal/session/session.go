// Package session runs games on behalf of players: it picks targets from a
// word source, validates guesses, records wins and keeps the live game
// registry tidy. The game engine itself stays free of I/O.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordhunt/internal/daily"
	"github.com/robalobadob/wordhunt/internal/game"
	"github.com/robalobadob/wordhunt/internal/metrics"
	"github.com/robalobadob/wordhunt/internal/stats"
	"github.com/robalobadob/wordhunt/internal/store"
	"github.com/robalobadob/wordhunt/internal/words"
)

var (
	ErrInvalidWord     = errors.New("not a valid word")
	ErrStartInProgress = errors.New("a game is already being started")
	ErrNotFound        = errors.New("game not found")
	ErrDailyPlayed     = errors.New("daily word already solved")
	ErrUnknownMode     = errors.New("unknown game mode")
)

// Mode selects how the target word is chosen.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeDaily  Mode = "daily"
)

// ParseMode accepts "", "normal" and "daily".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeNormal:
		return ModeNormal, nil
	case ModeDaily:
		return ModeDaily, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Player identifies who is playing. Owner namespaces stats and games;
// UserID is set only for signed-in accounts.
type Player struct {
	Owner  string
	UserID string
}

// AnonPlayer and UserPlayer build the two kinds of owner key.
func AnonPlayer(id string) Player { return Player{Owner: "anon:" + id} }
func UserPlayer(id string) Player { return Player{Owner: "user:" + id, UserID: id} }

// AccountStats is the slice of the users store the manager touches.
type AccountStats interface {
	BumpStats(ctx context.Context, id string, won bool) error
}

// DailyResults persists daily-mode solves.
type DailyResults interface {
	AlreadyPlayed(ctx context.Context, owner, date string, length int) (bool, error)
	InsertResult(ctx context.Context, r daily.Result) error
}

// Config wires a Manager. Source, Games and Stats are required.
type Config struct {
	Source      words.Source
	Games       *store.Games
	Stats       *stats.Store
	Accounts    AccountStats // optional
	Daily       DailyResults // optional
	DailySalt   string
	MaxAttempts int
	Now         func() time.Time
	Rand        game.Rand
}

type meta struct {
	mu     sync.Mutex
	mode   Mode
	player Player
	date   string
}

// Manager owns every live game.
type Manager struct {
	cfg Config

	mu       sync.Mutex
	starting map[string]bool
	meta     map[string]*meta
}

func NewManager(cfg Config) *Manager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{cfg: cfg, starting: make(map[string]bool), meta: make(map[string]*meta)}
}

// Start begins a game of the requested length for p. Only one start per
// player may be in flight; a concurrent request gets ErrStartInProgress.
func (m *Manager) Start(ctx context.Context, p Player, lengthInput string, mode Mode) (State, error) {
	length, err := game.ParseLength(lengthInput)
	if err != nil {
		return State{}, err
	}
	if mode == "" {
		mode = ModeNormal
	}

	m.mu.Lock()
	if m.starting[p.Owner] {
		m.mu.Unlock()
		return State{}, ErrStartInProgress
	}
	m.starting[p.Owner] = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.starting, p.Owner)
		m.mu.Unlock()
	}()

	now := m.cfg.Now()
	md := &meta{mode: mode, player: p}
	var target string
	switch mode {
	case ModeDaily:
		md.date = daily.DateKey(now)
		if m.cfg.Daily != nil {
			played, err := m.cfg.Daily.AlreadyPlayed(ctx, p.Owner, md.date, length)
			if err != nil {
				return State{}, fmt.Errorf("check daily: %w", err)
			}
			if played {
				return State{}, ErrDailyPlayed
			}
		}
		target, err = words.Daily(ctx, m.cfg.Source, length, now, m.cfg.DailySalt)
	case ModeNormal:
		var pool []string
		if pool, err = m.cfg.Source.Candidates(ctx, length); err == nil {
			target, err = words.Pick(pool)
		}
	default:
		return State{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if err != nil {
		return State{}, err
	}

	opts := []game.Option{
		game.WithID(uuid.NewString()),
		game.WithClock(m.cfg.Now),
		game.WithMaxAttempts(m.cfg.MaxAttempts),
	}
	if m.cfg.Rand != nil {
		opts = append(opts, game.WithRand(m.cfg.Rand))
	}
	g, err := game.New(target, opts...)
	if err != nil {
		return State{}, err
	}
	if err := m.cfg.Games.Save(ctx, p.Owner, g); err != nil {
		return State{}, err
	}
	m.mu.Lock()
	m.meta[g.ID] = md
	m.mu.Unlock()

	metrics.GamesStarted.WithLabelValues(strconv.Itoa(length), string(mode)).Inc()
	metrics.ActiveGames.Set(float64(m.cfg.Games.Len()))
	log.Info().Str("gameId", g.ID).Str("owner", p.Owner).Int("length", length).Str("mode", string(mode)).Msg("game started")
	return snapshot(g, mode), nil
}

// acquire loads a game owned by p and locks it. The caller must call the
// returned release func.
func (m *Manager) acquire(ctx context.Context, p Player, id string) (*game.Game, *meta, func(), error) {
	g, owner, err := m.cfg.Games.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && owner != p.Owner) {
		return nil, nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, nil, err
	}
	m.mu.Lock()
	md, ok := m.meta[id]
	if !ok {
		md = &meta{mode: ModeNormal, player: p}
		m.meta[id] = md
	}
	m.mu.Unlock()
	md.mu.Lock()
	return g, md, md.mu.Unlock, nil
}

// Get returns the current state of a game.
func (m *Manager) Get(ctx context.Context, p Player, id string) (State, error) {
	g, md, release, err := m.acquire(ctx, p, id)
	if err != nil {
		return State{}, err
	}
	defer release()
	return snapshot(g, md.mode), nil
}

// GuessResult is the outcome of one submission.
type GuessResult struct {
	Verdicts     []game.Verdict `json:"verdicts"`
	CorrectCount int            `json:"correctCount"`
	Evaluated    bool           `json:"evaluated"`
	State        State          `json:"game"`
}

// Guess fills the current row with guess and submits it. An empty guess
// submits the row as it stands, including letters placed by hints or
// SetLetter. A word the source rejects leaves the row filled but unlocked and
// returns ErrInvalidWord; the player can edit it or clear it and try again.
func (m *Manager) Guess(ctx context.Context, p Player, id, guess string) (GuessResult, error) {
	g, md, release, err := m.acquire(ctx, p, id)
	if err != nil {
		return GuessResult{}, err
	}
	defer release()

	if guess != "" {
		if err := g.Fill(guess); err != nil {
			return GuessResult{}, err
		}
	} else if g.Outcome.Terminal() {
		return GuessResult{}, game.ErrGameOver
	}
	if row := g.CurrentRow(); game.IsRowComplete(row) && !m.cfg.Source.Validate(ctx, row.Word()) {
		metrics.Guesses.WithLabelValues("invalid_word").Inc()
		return GuessResult{}, ErrInvalidWord
	}

	res := g.Submit()
	if !res.Evaluated {
		metrics.Guesses.WithLabelValues("noop").Inc()
		return GuessResult{Evaluated: false, State: snapshot(g, md.mode)}, nil
	}
	metrics.Guesses.WithLabelValues("evaluated").Inc()
	if res.Outcome.Terminal() {
		m.finish(ctx, g, md)
	}
	return GuessResult{
		Verdicts:     res.Verdicts,
		CorrectCount: res.CorrectCount,
		Evaluated:    true,
		State:        snapshot(g, md.mode),
	}, nil
}

// finish records a terminal game. Persistence failures are logged, not
// returned: the game result stands either way.
func (m *Manager) finish(ctx context.Context, g *game.Game, md *meta) {
	won := g.Outcome == game.OutcomeWon
	metrics.GamesFinished.WithLabelValues(strconv.Itoa(g.Length), g.Outcome.String()).Inc()
	l := log.With().Str("gameId", g.ID).Str("owner", md.player.Owner).Logger()

	if won {
		rec := stats.NewRecord(g.Elapsed(), g.Target, g.Attempts(), m.cfg.Now())
		if err := m.cfg.Stats.Record(ctx, md.player.Owner, rec); err != nil {
			l.Error().Err(err).Msg("record stats")
		}
		if md.mode == ModeDaily && m.cfg.Daily != nil {
			err := m.cfg.Daily.InsertResult(ctx, daily.Result{
				Owner:    md.player.Owner,
				Date:     md.date,
				Length:   g.Length,
				Word:     g.Target,
				Attempts: g.Attempts(),
				Seconds:  g.Elapsed(),
			})
			if err != nil {
				l.Error().Err(err).Msg("record daily result")
			}
		}
	}
	if md.player.UserID != "" && m.cfg.Accounts != nil {
		if err := m.cfg.Accounts.BumpStats(ctx, md.player.UserID, won); err != nil {
			l.Error().Err(err).Msg("bump account stats")
		}
	}
	l.Info().Str("outcome", g.Outcome.String()).Int("attempts", g.Attempts()).Int("seconds", g.Elapsed()).Msg("game finished")
}

// Clear empties the current row.
func (m *Manager) Clear(ctx context.Context, p Player, id string) (State, error) {
	g, md, release, err := m.acquire(ctx, p, id)
	if err != nil {
		return State{}, err
	}
	defer release()
	if err := g.ClearRow(); err != nil {
		return State{}, err
	}
	return snapshot(g, md.mode), nil
}

// SetLetter writes one letter at pos in the current row. An empty letter
// clears the position.
func (m *Manager) SetLetter(ctx context.Context, p Player, id string, pos int, letter string) (State, error) {
	g, md, release, err := m.acquire(ctx, p, id)
	if err != nil {
		return State{}, err
	}
	defer release()

	var r rune
	if letter != "" {
		rs := []rune(letter)
		if len(rs) != 1 {
			return State{}, game.ErrBadLetter
		}
		r = rs[0]
	}
	if err := g.SetLetter(pos, r); err != nil {
		return State{}, err
	}
	return snapshot(g, md.mode), nil
}

// HintResult reports a hint request. Refusals are not errors: Granted is
// false and Reason says why.
type HintResult struct {
	Granted  bool   `json:"granted"`
	Reason   string `json:"reason,omitempty"`
	Letter   string `json:"letter,omitempty"`
	Position int    `json:"position"`
	State    State  `json:"game"`
}

// Hint requests a hint of the given kind for the current row.
func (m *Manager) Hint(ctx context.Context, p Player, id string, kind game.HintKind) (HintResult, error) {
	g, md, release, err := m.acquire(ctx, p, id)
	if err != nil {
		return HintResult{}, err
	}
	defer release()

	h, ok, err := g.Hint(kind)
	var out HintResult
	switch {
	case err == nil && ok:
		out = HintResult{Granted: true, Letter: string(h.Letter), Position: h.Position}
	case err == nil:
		out.Reason = "nothing_to_reveal"
	case errors.Is(err, game.ErrHintExhausted):
		out.Reason = "exhausted"
	case errors.Is(err, game.ErrHintConflict):
		out.Reason = "conflict"
	case errors.Is(err, game.ErrHintCooldown):
		out.Reason = "cooldown"
	default:
		return HintResult{}, err
	}
	result := "granted"
	if !out.Granted {
		out.Position = -1
		result = out.Reason
	}
	metrics.Hints.WithLabelValues(kind.String(), result).Inc()
	out.State = snapshot(g, md.mode)
	return out, nil
}

// Reset stops the game's clock and timers and drops it.
func (m *Manager) Reset(ctx context.Context, p Player, id string) error {
	g, _, release, err := m.acquire(ctx, p, id)
	if err != nil {
		return err
	}
	g.Close()
	release()
	m.drop(ctx, id)
	log.Debug().Str("gameId", id).Msg("game reset")
	return nil
}

func (m *Manager) drop(ctx context.Context, id string) {
	m.cfg.Games.Delete(ctx, id)
	m.mu.Lock()
	delete(m.meta, id)
	m.mu.Unlock()
	metrics.ActiveGames.Set(float64(m.cfg.Games.Len()))
}

// Sweep evicts games idle for longer than maxIdle and returns how many went.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	gone := m.cfg.Games.Sweep(maxIdle)
	metas := make([]*meta, len(gone))
	m.mu.Lock()
	for i, g := range gone {
		metas[i] = m.meta[g.ID]
		delete(m.meta, g.ID)
	}
	m.mu.Unlock()

	// A game's lock can be held across a remote word check, so close each
	// one without holding the manager lock.
	for i, g := range gone {
		if md := metas[i]; md != nil {
			md.mu.Lock()
			g.Close()
			md.mu.Unlock()
		} else {
			g.Close()
		}
	}
	metrics.ActiveGames.Set(float64(m.cfg.Games.Len()))
	return len(gone)
}

// Run sweeps idle games every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, every, maxIdle time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(maxIdle); n > 0 {
				log.Info().Int("evicted", n).Msg("swept idle games")
			}
		}
	}
}
