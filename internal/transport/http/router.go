package http

import (
	"net/http"
	"strings"
	"time"

	obsmw "signupflow/internal/observability/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	// CORSOrigins is a comma-separated allowlist; empty disables CORS headers.
	CORSOrigins string

	// ServeUploadsDir exposes the local photo directory under /uploads when
	// the local storage backend is active. Empty when photos live on S3.
	ServeUploadsDir string
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(obsmw.Instrument)

	if cfg.CORSOrigins != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   splitOrigins(cfg.CORSOrigins),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/bootstrap", h.Bootstrap)

	r.Group(func(r chi.Router) {
		// One shared limit for the whole action surface; brute-force on the
		// login action is the case that matters.
		r.Use(httprate.LimitByIP(60, 1*time.Minute))
		r.Post(h.AjaxPath, h.Ajax)
	})

	if cfg.ServeUploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/",
			http.FileServer(http.Dir(cfg.ServeUploadsDir))))
	}

	return r
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
