// Package http exposes the JSON API over chi with tracing, rate limiting
// and security-header middleware.
package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"shopledger/internal/cache"
	"shopledger/internal/core"
	"shopledger/internal/middleware/ratelimit"
	"shopledger/internal/middleware/security"
	"shopledger/internal/middleware/trace"
	"shopledger/internal/services"
)

const (
	statsCacheSize = 64
	statsCacheTTL  = 30 * time.Second
)

type Server struct {
	transactions *services.TransactionService
	categories   *services.CategoryService
	statsCache   *cache.LRU[core.Summary]
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	ready        func(context.Context) error

	stopJanitor chan struct{}
	stopOnce    sync.Once

	srv *http.Server
}

// NewServer wires services into a configured HTTP server. The ready func is
// optional; when set it backs the readiness probe.
func NewServer(
	port string,
	transactions *services.TransactionService,
	categories *services.CategoryService,
	ready func(context.Context) error,
) *Server {
	s := &Server{
		transactions: transactions,
		categories:   categories,
		statsCache:   cache.NewLRU[core.Summary](statsCacheSize, statsCacheTTL),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:       trace.NewMiddleware(clientIP),
		ready:        ready,
		stopJanitor:  make(chan struct{}),
	}
	go s.cacheJanitor()

	s.srv = &http.Server{
		Addr:              ":" + port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	headersMw := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	r.Use(s.tracer.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(headersMw.Middleware)

	// Only writes are rate limited; probes and dashboard polling stay
	// unthrottled.
	limited := s.limiter.Middleware(clientIP, rateLimited)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)

		r.With(limited).Post("/init", s.handleInit)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.With(limited).Post("/", s.handleCreateCategory)
			r.With(limited).Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.With(limited).Post("/", s.handleCreateTransaction)
			r.With(limited).Delete("/{id}", s.handleDeleteTransaction)
		})
	})

	return r
}

// cacheJanitor evicts expired stats entries so memory is reclaimed even when
// a key is never read again.
func (s *Server) cacheJanitor() {
	ticker := time.NewTicker(statsCacheTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.statsCache.CleanExpired()
		case <-s.stopJanitor:
			return
		}
	}
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and releases middleware resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopJanitor) })
	s.limiter.Stop()
	s.statsCache.Purge()
	return s.srv.Shutdown(ctx)
}

func rateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeJSON(w, http.StatusTooManyRequests, envelope{
		Success: false,
		Error:   "rate limit exceeded",
	})
}

// clientIP prefers proxy headers and falls back to the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
