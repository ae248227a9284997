package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"panel/internal/auth"
	"panel/internal/cache"
	"panel/internal/cdn"
	"panel/internal/config"
	"panel/internal/discord"
	"panel/internal/domain"
	"panel/internal/observability/logging"
	"panel/internal/observability/metrics"
	"panel/internal/store"
	httpx "panel/internal/transport/http"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "panel",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load()

	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if err := gdb.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.MfaRecord{},
		&domain.Bot{},
		&domain.Partner{},
		&domain.PartnerType{},
	); err != nil {
		logger.Error("automigrate", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)

	provider := discord.NewOAuthProvider(cfg.ClientID, cfg.ClientSecret)
	authSvc := auth.New(st, provider, auth.Options{
		RedirectURLs: cfg.RedirectURLs,
		TotpIssuer:   cfg.TotpIssuer,
		TotpAccount:  cfg.TotpAccount,
	})

	assets := cdn.New(cache.NewChunkCache(cfg.ChunkTTL), cfg.CdnScopes, cfg.MainScope)

	var notifier discord.Notifier = discord.NopNotifier{}
	if cfg.NotifyWebhookURL != "" {
		notifier = discord.NewWebhookNotifier(cfg.NotifyWebhookURL)
	}

	metrics.MustRegister("panel")

	server := httpx.NewServer(cfg, st, authSvc, assets, notifier)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("panel listening", "addr", srv.Addr, "scopes", len(cfg.CdnScopes))
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
