package web

import (
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"ebadmin/internal/config"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Str("request_id", w.Header().Get("X-Request-ID")).
			Msg("http request")
	})
}

// rateLimitMiddleware keeps one token bucket per client address. Entries are
// never evicted; an admin dashboard sees a handful of operator addresses, not
// the open internet.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	if s.cfg.RateLimit.RPS <= 0 {
		return next
	}
	var limiters sync.Map
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		v, _ := limiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(s.cfg.RateLimit.RPS), s.cfg.RateLimit.Burst))
		if !v.(*rate.Limiter).Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessGate is an optional shared-key check in front of every page. With no
// key configured the dashboard is open, which is the expected setup behind a
// private network.
type accessGate struct {
	key string
}

func newAccessGate(cfg config.ServerConfig) *accessGate {
	return &accessGate{key: cfg.AccessKey}
}

const accessCookie = "ebadmin_key"

func (g *accessGate) Wrap(next http.Handler) http.Handler {
	if g.key == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		if supplied := r.URL.Query().Get("key"); supplied != "" && g.match(supplied) {
			http.SetCookie(w, &http.Cookie{
				Name:     accessCookie,
				Value:    supplied,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r)
			return
		}
		if c, err := r.Cookie(accessCookie); err == nil && g.match(c.Value) {
			next.ServeHTTP(w, r)
			return
		}
		if header := r.Header.Get("X-Access-Key"); header != "" && g.match(header) {
			next.ServeHTTP(w, r)
			return
		}
		writeError(w, http.StatusUnauthorized, "access key required")
	})
}

func (g *accessGate) match(supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(g.key)) == 1
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
