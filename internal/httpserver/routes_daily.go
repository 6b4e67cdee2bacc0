// internal/httpserver/routes_daily.go
//
// Daily mode leaderboard.
//   - GET /daily/leaderboard?length=5&date=YYYY-MM-DD → top 20 solves
//
// Daily games themselves start through POST /game/new with mode "daily";
// solves are persisted by the session manager on a win.

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordhunt/internal/daily"
	"github.com/robalobadob/wordhunt/internal/game"
)

const leaderboardSize = 20

func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date   string    `json:"date"`
	Length int       `json:"length"`
	Top    []lbEntry `json:"top"`
}

// lbEntry is one public leaderboard row. Players are shown by username, or
// as "guest" when they played without an account.
type lbEntry struct {
	Rank     int    `json:"rank"`
	Player   string `json:"player"`
	Attempts int    `json:"attempts"`
	Seconds  int    `json:"seconds"`
}

const guestName = "guest"

// displayName resolves an owner key to a public name. Anonymous keys carry
// the player's cookie value, so they are never echoed.
func (s *Server) displayName(ctx context.Context, owner string) string {
	id, ok := strings.CutPrefix(owner, "user:")
	if !ok || s.deps.Users == nil {
		return guestName
	}
	u, err := s.deps.Users.ByID(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("userId", id).Msg("leaderboard user lookup")
		return guestName
	}
	return u.Username
}

// handleLeaderboard returns the leaderboard for the given date (default today)
// and word length (default 5).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	length := 5
	if v := q.Get("length"); v != "" {
		n, err := game.ParseLength(v)
		if err != nil {
			fail(w, r, err)
			return
		}
		length = n
	}
	rows, err := s.deps.Daily.Leaderboard(r.Context(), date, length, leaderboardSize)
	if err != nil {
		fail(w, r, err)
		return
	}
	top := make([]lbEntry, len(rows))
	for i, row := range rows {
		top[i] = lbEntry{
			Rank:     i + 1,
			Player:   s.displayName(r.Context(), row.Owner),
			Attempts: row.Attempts,
			Seconds:  row.Seconds,
		}
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Length: length, Top: top})
}
