// internal/httpserver/server.go
//
// HTTP server wiring for the word game backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     per-client rate limiting, Prometheus instrumentation).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints (optional auth): /game/*.
//   - Stat list and filter preferences (optional auth): /stats/*.
//   - Daily leaderboard: /daily/leaderboard.
//   - Accounts: /auth/*.
//
// Every player-scoped route resolves a session.Player: the signed-in user
// when a valid token is present, otherwise a long-lived anonymous cookie.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordhunt/internal/daily"
	"github.com/robalobadob/wordhunt/internal/game"
	"github.com/robalobadob/wordhunt/internal/session"
	"github.com/robalobadob/wordhunt/internal/stats"
	"github.com/robalobadob/wordhunt/internal/store"
	"github.com/robalobadob/wordhunt/internal/words"
)

// Config holds the HTTP-facing settings.
type Config struct {
	ClientOrigin   string
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	Production     bool
	RateLimitRPS   int
	RateLimitBurst int
}

// ConfigFromEnv reads Config from the environment with development defaults.
func ConfigFromEnv() Config {
	return Config{
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: getEnvInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "wordhunt_token"),
		Production:     os.Getenv("NODE_ENV") == "production",
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

// Deps are the services the handlers call. Users and Daily may be nil:
// without Users the /auth routes are not mounted and every player is
// anonymous; without Daily the leaderboard is not mounted.
type Deps struct {
	Sessions *session.Manager
	Stats    *stats.Store
	Users    *store.Users
	Daily    *daily.Store
	Words    *words.Embedded // optional, for /debug/words
}

// Server bundles the router with its dependencies.
type Server struct {
	r       *chi.Mux
	cfg     Config
	deps    Deps
	limiter *limiter
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		deps:    deps,
		limiter: newLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(15 * time.Second)) // word source calls can be slow
	s.r.Use(instrument)
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordhunt",
			"endpoints": []string{"/health", "/metrics", "/game/*", "/stats/*", "/daily/leaderboard", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if deps.Words != nil {
		s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			a, g := deps.Words.Stats()
			writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g})
		})
	}

	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth)
		s.mountGame(r)
		s.mountStats(r)
	})
	if deps.Daily != nil {
		s.mountDaily(s.r)
	}
	if deps.Users != nil {
		s.mountAuthRoutes()
	}

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

// fail maps a service error onto a status code and a stable error code.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidLength):
		writeError(w, http.StatusBadRequest, "invalid_length")
	case errors.Is(err, game.ErrLengthMismatch):
		writeError(w, http.StatusBadRequest, "length_mismatch")
	case errors.Is(err, game.ErrBadLetter), errors.Is(err, game.ErrBadPosition):
		writeError(w, http.StatusBadRequest, "invalid_input")
	case errors.Is(err, game.ErrUnknownHint), errors.Is(err, session.ErrUnknownMode):
		writeError(w, http.StatusBadRequest, "invalid_input")
	case errors.Is(err, stats.ErrUnknownFilter), errors.Is(err, stats.ErrBadRange),
		errors.Is(err, stats.ErrUnknownField), errors.Is(err, stats.ErrUnknownDirection):
		writeError(w, http.StatusBadRequest, "invalid_query")
	case errors.Is(err, session.ErrInvalidWord):
		writeError(w, http.StatusBadRequest, "invalid_word")
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, session.ErrStartInProgress):
		writeError(w, http.StatusConflict, "start_in_progress")
	case errors.Is(err, session.ErrDailyPlayed):
		writeError(w, http.StatusConflict, "daily_already_played")
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrRowLocked):
		writeError(w, http.StatusConflict, "game_over")
	case errors.Is(err, words.ErrNoCandidates):
		writeError(w, http.StatusServiceUnavailable, "no_candidates")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("requestId", chimw.GetReqID(r.Context())).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return def
}
