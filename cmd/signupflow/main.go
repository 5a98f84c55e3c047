package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"signupflow/internal/config"
	"signupflow/internal/observability/logging"
	"signupflow/internal/observability/metrics"
	impl "signupflow/internal/service/impl"
	"signupflow/internal/store"
	httpx "signupflow/internal/transport/http"
	"signupflow/internal/uploads"
	"signupflow/pkg/db"
)

func main() {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "signupflow",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load()
	metrics.MustRegister("signupflow")

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if err := db.RunMigrations(context.Background(), gdb); err != nil {
		logger.Error("migrations", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)

	pw := impl.NewPasswordServiceArgon2id()
	rs := impl.NewRegistrationServiceImpl(st, pw, impl.RegistrationConfig{
		RedirectURL: cfg.RegisterRedirectURL,
	})
	ss := impl.NewSessionServiceImpl(st, pw, impl.SessionConfig{
		SigningKey:        []byte(cfg.SigningKey),
		SessionTTL:        cfg.SessionTTL,
		RememberTTL:       cfg.RememberTTL,
		LoginRedirectURL:  cfg.LoginRedirectURL,
		LogoutRedirectURL: cfg.LogoutRedirectURL,
	})

	photos, uploadsDir, err := newPhotoStore(cfg)
	if err != nil {
		logger.Error("photo store", "backend", cfg.PhotoBackend, "error", err)
		os.Exit(1)
	}

	h := &httpx.Handler{
		Registrations:     rs,
		Sessions:          ss,
		Photos:            photos,
		Nonces:            httpx.NewNonceIssuer([]byte(cfg.SigningKey), cfg.NonceTTL),
		AjaxPath:          "/ajax",
		LogoutRedirectURL: cfg.LogoutRedirectURL,
	}

	router := httpx.NewRouter(h, httpx.RouterConfig{
		CORSOrigins:     cfg.CORSOrigins,
		ServeUploadsDir: uploadsDir,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sessionJanitor(st, logger)

	logger.Info("listening", "addr", srv.Addr, "photo_backend", cfg.PhotoBackend)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newPhotoStore(cfg config.Config) (uploads.Store, string, error) {
	if cfg.PhotoBackend == "s3" {
		s3s, err := uploads.NewS3Store(context.Background(), uploads.S3Config{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			BaseEndpoint: cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			PublicURL:    cfg.PhotoBaseURL,
		})
		return s3s, "", err
	}
	local, err := uploads.NewLocalStore(cfg.PhotoDir, cfg.PhotoBaseURL)
	return local, cfg.PhotoDir, err
}

// sessionJanitor sweeps expired session rows hourly.
func sessionJanitor(st *store.Store, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := st.Sessions().DeleteExpired(ctx, time.Now())
		cancel()
		if err != nil {
			logger.Warn("session sweep", "error", err)
			continue
		}
		if n > 0 {
			logger.Info("session sweep", "removed", n)
		}
	}
}
