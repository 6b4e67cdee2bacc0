package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordhunt/internal/game"
	"github.com/robalobadob/wordhunt/internal/session"
)

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.With(s.rateLimit).Post("/new", s.handleNewGame)
		r.Get("/{id}", s.handleGetGame)
		r.With(s.rateLimit).Post("/guess", s.handleGuess)
		r.Post("/letter", s.handleLetter)
		r.Post("/clear", s.handleClear)
		r.Post("/hint", s.handleHint)
		r.Post("/reset", s.handleReset)
	})
}

// newGameReq accepts the length as a number or a string, since it comes
// straight from a text input.
type newGameReq struct {
	Length json.RawMessage `json:"length"`
	Mode   string          `json:"mode"`
}

func (req newGameReq) lengthInput() string {
	var s string
	if json.Unmarshal(req.Length, &s) == nil {
		return s
	}
	return string(req.Length)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if !decode(w, r, &req) {
		return
	}
	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		fail(w, r, err)
		return
	}
	st, err := s.deps.Sessions.Start(r.Context(), s.player(w, r), req.lengthInput(), mode)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Sessions.Get(r.Context(), s.player(w, r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// gameReq is shared by the per-game actions. An empty guess submits the
// current row as it stands.
type gameReq struct {
	GameID   string `json:"gameId"`
	Guess    string `json:"guess,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Position int    `json:"position"`
	Letter   string `json:"letter"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req gameReq
	if !decode(w, r, &req) {
		return
	}
	res, err := s.deps.Sessions.Guess(r.Context(), s.player(w, r), req.GameID, req.Guess)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLetter(w http.ResponseWriter, r *http.Request) {
	var req gameReq
	if !decode(w, r, &req) {
		return
	}
	st, err := s.deps.Sessions.SetLetter(r.Context(), s.player(w, r), req.GameID, req.Position, req.Letter)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req gameReq
	if !decode(w, r, &req) {
		return
	}
	st, err := s.deps.Sessions.Clear(r.Context(), s.player(w, r), req.GameID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleHint answers 200 for refusals too; the body says granted or why not.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req gameReq
	if !decode(w, r, &req) {
		return
	}
	kind, err := game.ParseHintKind(req.Kind)
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.deps.Sessions.Hint(r.Context(), s.player(w, r), req.GameID, kind)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req gameReq
	if !decode(w, r, &req) {
		return
	}
	if err := s.deps.Sessions.Reset(r.Context(), s.player(w, r), req.GameID); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
