package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/robalobadob/wordhunt/internal/metrics"
)

// limiter hands out one token bucket per client key. Buckets unused for a
// while are pruned by sweep.
type limiter struct {
	mu    sync.Mutex
	rps   int
	burst int
	now   func() time.Time
	byKey map[string]*bucket
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLimiter(rps, burst int) *limiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = rps
	}
	return &limiter{rps: rps, burst: burst, now: time.Now, byKey: make(map[string]*bucket)}
}

func (l *limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.byKey[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Every(time.Second/time.Duration(l.rps)), l.burst)}
		l.byKey[key] = b
	}
	b.seen = l.now()
	return b.lim
}

// sweep drops buckets idle for longer than maxIdle. A dropped client starts
// again with a full bucket, so maxIdle should exceed the refill time.
func (l *limiter) sweep(maxIdle time.Duration) int {
	cutoff := l.now().Add(-maxIdle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key, b := range l.byKey {
		if b.seen.Before(cutoff) {
			delete(l.byKey, key)
			n++
		}
	}
	return n
}

// Run prunes idle rate limiter buckets every interval until ctx is done.
func (s *Server) Run(ctx context.Context, every, maxIdle time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.limiter.sweep(maxIdle); n > 0 {
				log.Debug().Int("pruned", n).Msg("swept idle rate limiters")
			}
		}
	}
}

// rateLimit refuses requests from a client IP that exceeds its bucket.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if host, _, err := net.SplitHostPort(key); err == nil {
			key = host
		}
		if !s.limiter.get(key).Allow() {
			metrics.RateLimiterRejections.Inc()
			log.Debug().Str("client", key).Str("path", r.URL.Path).Msg("rate limited")
			writeError(w, http.StatusTooManyRequests, "too_many_requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records request count and latency by route pattern, so IDs in
// paths do not explode label cardinality.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RequestCounter.WithLabelValues(strconv.Itoa(status), r.Method, path).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
