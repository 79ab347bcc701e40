package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/emsi-platform/studyhub/internal/api"
	"github.com/emsi-platform/studyhub/internal/chat"
	"github.com/emsi-platform/studyhub/internal/config"
	"github.com/emsi-platform/studyhub/internal/db"
	"github.com/emsi-platform/studyhub/internal/fetch"
	"github.com/emsi-platform/studyhub/internal/llm"
	"github.com/emsi-platform/studyhub/internal/logging"
	"github.com/emsi-platform/studyhub/internal/metrics"
	"github.com/emsi-platform/studyhub/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) (err error) {
	database, err := db.New(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.Database.Path))
		return err
	}
	defer func() { err = multierr.Append(err, database.Close()) }()

	objects, err := storage.New(ctx, storage.Config{
		Endpoint:     cfg.Storage.Endpoint,
		Region:       cfg.Storage.Region,
		Bucket:       cfg.Storage.Bucket,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		UsePathStyle: cfg.Storage.UsePathStyle,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	model, err := llm.New(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	m := metrics.New()
	assistant := chat.NewService(chat.Deps{
		Files:             database,
		Signer:            objects,
		Fetcher:           fetch.New(fetch.WithTimeout(cfg.Fetch.Timeout), fetch.WithMaxBytes(cfg.Fetch.MaxBytes)),
		Completer:         model,
		Limiter:           chat.NewLimiter(cfg.Prompt.Encoding, cfg.Prompt.MaxTokens, logger),
		Metrics:           m,
		Logger:            logger.Named("chat"),
		SignedURLTTL:      cfg.Storage.SignedURLTTL,
		CompletionTimeout: cfg.LLM.Timeout,
	})

	handler := api.NewHandler(database, objects, assistant, logger.Named("api"), api.Options{
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		SignedURLTTL:   cfg.Storage.SignedURLTTL,
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(handler, m, logger.Named("http"), cfg.CORS.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("addr", cfg.Server.Addr),
			zap.String("model", cfg.LLM.Model),
			zap.String("bucket", cfg.Storage.Bucket))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
