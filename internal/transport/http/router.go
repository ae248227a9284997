package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"panel/internal/auth"
	"panel/internal/cache"
	"panel/internal/cdn"
	"panel/internal/config"
	"panel/internal/discord"
	"panel/internal/domain"
	"panel/internal/netutil"
	obsmw "panel/internal/observability/middleware"
	"panel/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chunks arrive base64-encoded inside JSON, so the body cap sits well
// above the raw chunk cap.
const maxBodyBytes = 150 * 1024 * 1024

type Server struct {
	cfg      config.Config
	store    *store.Store
	auth     *auth.Service
	assets   *cdn.Assembler
	notifier discord.Notifier
	restRate *cache.RateLimiter
}

func NewServer(cfg config.Config, st *store.Store, authSvc *auth.Service, assets *cdn.Assembler, notifier discord.Notifier) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		auth:     authSvc,
		assets:   assets,
		notifier: notifier,
		restRate: cache.NewRateLimiter(cfg.RateWindow, cfg.RateMax),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if s.cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/", s.handlePanelQuery)

	r.Route("/panel/bots", func(r chi.Router) {
		r.Post("/approve", s.handleBotApprove)
		r.Post("/deny", s.handleBotDeny)
		r.Post("/unverify", s.handleBotUnverify)
		r.Post("/votes-reset", s.handleVotesReset)
		r.Post("/votes-reset/all", s.handleVotesResetAll)
	})

	return r
}

// clientIP resolves the caller's address, honoring proxy headers only when
// the deployment trusts them.
func (s *Server) clientIP(r *http.Request) string {
	if s.cfg.TrustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ip := strings.TrimSpace(strings.Split(xff, ",")[0])
			if normalized, ok := netutil.NormalizeIP(ip); ok {
				return normalized
			}
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			if normalized, ok := netutil.NormalizeIP(xr); ok {
				return normalized
			}
		}
	}
	if normalized, ok := netutil.NormalizeIP(r.RemoteAddr); ok {
		return normalized
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

// writeError maps domain sentinels to statuses. Validation problems carry
// their reason; auth failures stay generic so the response does not leak
// whether a token or user exists.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidRedirect),
		errors.Is(err, domain.ErrSessionAlreadyActive),
		errors.Is(err, domain.ErrMfaNotSetup),
		errors.Is(err, domain.ErrMfaInvalidCode),
		errors.Is(err, domain.ErrChunkMissing),
		errors.Is(err, domain.ErrChunkIDExhausted),
		errors.Is(err, domain.ErrHashMismatch),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrNotStaff):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, domain.ErrRateLimited):
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	default:
		slog.Error("internal error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
