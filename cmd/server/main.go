package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"splitshare/internal/auth"
	"splitshare/internal/config"
	"splitshare/internal/extract"
	"splitshare/internal/mail"
	"splitshare/internal/server"
	"splitshare/internal/service"
	"splitshare/internal/storage/sqlite"
	"splitshare/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	var mailer service.InviteMailer
	if cfg.SMTPHost != "" {
		mailer = mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
		slog.Info("invite mail enabled", "host", cfg.SMTPHost)
	}

	var extractor *extract.Client
	if cfg.GroqAPIKey != "" {
		extractor = extract.NewClient(cfg.GroqAPIKey, cfg.GroqModel)
		slog.Info("receipt extraction enabled", "model", cfg.GroqModel)
	}

	srv := server.New(
		service.NewAuthService(authenticator, jwtManager, store),
		service.NewGroupService(store, mailer),
		service.NewReceiptService(store),
		service.NewSplitService(store),
		extractor,
		jwtManager,
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "address", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
