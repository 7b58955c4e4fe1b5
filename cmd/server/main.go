package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"elevate.dev/internal/config"
	"elevate.dev/internal/handlers"
	"elevate.dev/internal/mail"
	"elevate.dev/internal/services"
	"elevate.dev/internal/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "elevate-api: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// The catalog must be fully loaded before the listener starts.
	src := store.EmbeddedSource()
	if cfg.CatalogPath != "" {
		src = store.FileSource(cfg.CatalogPath)
	}
	catalog, err := store.Load(src, logger)
	if err != nil {
		logger.Error("failed to load catalog", zap.Error(err))
		return err
	}

	projectService := services.NewProjectService(catalog)
	mailer, err := newMailer(cfg, logger)
	if err != nil {
		logger.Error("failed to configure mailer", zap.Error(err))
		return err
	}

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handlers.SetupRoutes(cfg, projectService, mailer, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", cfg.ServerAddr),
			zap.String("api_prefix", cfg.APIPrefix),
			zap.Int("projects", catalog.Len()),
			zap.Bool("smtp", cfg.MailEnabled()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if verbose {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zapConfig.Build()
}

func newMailer(cfg *config.Config, logger *zap.Logger) (mail.Mailer, error) {
	if !cfg.MailEnabled() {
		logger.Warn("SMTP credentials not set, contact messages will only be logged")
		return mail.NewLogMailer(logger), nil
	}
	m, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
	}, logger.Named("mail"))
	if err != nil {
		return nil, err
	}
	return m, nil
}
