package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordhunt/internal/daily"
	"github.com/robalobadob/wordhunt/internal/httpserver"
	"github.com/robalobadob/wordhunt/internal/session"
	"github.com/robalobadob/wordhunt/internal/stats"
	"github.com/robalobadob/wordhunt/internal/store"
	"github.com/robalobadob/wordhunt/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.OpenSQLite(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	kv, closeKV, err := openKV(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("open stats backend")
	}
	defer closeKV()

	embedded := words.NewEmbedded()
	if err := embedded.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	src := wordSource(embedded)

	users := store.NewUsers(db)
	dailyStore := daily.NewStore(db)
	statStore := stats.NewStore(kv)
	mgr := session.NewManager(session.Config{
		Source:    src,
		Games:     store.NewGames(nil),
		Stats:     statStore,
		Accounts:  users,
		Daily:     dailyStore,
		DailySalt: getEnv("DAILY_SALT", "local_dev_salt"),
	})
	idle := getEnvDuration("SESSION_TIMEOUT", 2*time.Hour)
	go mgr.Run(ctx, time.Minute, idle)

	api := httpserver.New(httpserver.ConfigFromEnv(), httpserver.Deps{
		Sessions: mgr,
		Stats:    statStore,
		Users:    users,
		Daily:    dailyStore,
		Words:    embedded,
	})
	go api.Run(ctx, time.Minute, getEnvDuration("RATE_LIMIT_IDLE", 10*time.Minute))

	srv := &http.Server{
		Addr:              ":" + getEnv("PORT", "5175"),
		Handler:           api,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Dur("sessionTimeout", idle).Msg("starting wordhunt")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("stopped")
}

// openKV selects the stat list backend named by STATS_BACKEND.
func openKV(ctx context.Context, db *sql.DB) (store.KV, func() error, error) {
	noop := func() error { return nil }
	switch backend := getEnv("STATS_BACKEND", "sqlite"); backend {
	case "sqlite":
		return store.NewSQLiteKV(db), noop, nil
	case "memory":
		log.Warn().Msg("stats are kept in memory and lost on restart")
		return store.NewMemoryKV(), noop, nil
	case "redis":
		return store.NewRedisKV(ctx, store.RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
			Prefix:   "wordhunt:",
		})
	default:
		return nil, nil, errors.New("unknown STATS_BACKEND " + strconv.Quote(backend))
	}
}

// wordSource builds the source named by WORD_SOURCE. The remote source
// falls back to the embedded lists when it cannot supply candidates.
func wordSource(embedded *words.Embedded) words.Source {
	if getEnv("WORD_SOURCE", "datamuse") == "embedded" {
		return embedded
	}
	remote := words.NewDatamuse(
		getEnv("WORD_API_URL", words.DefaultDatamuseURL),
		getEnv("DICTIONARY_API_URL", words.DefaultDictionaryURL),
		getEnvDuration("WORD_API_TIMEOUT", 5*time.Second),
	)
	return words.Chain{Primary: remote, Fallback: embedded}
}

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

func getEnvDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil && d > 0 {
		return d
	}
	return def
}
