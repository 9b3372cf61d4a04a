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

	"supersoniq-insights/internal/api"
	"supersoniq-insights/internal/config"
	"supersoniq-insights/internal/extractor"
	"supersoniq-insights/internal/keystore"
	"supersoniq-insights/internal/logger"
	"supersoniq-insights/internal/pipeline"
	"supersoniq-insights/internal/processor"
	"supersoniq-insights/internal/transcription"
	"supersoniq-insights/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// config.Load has applied .env, so the logger sees the same environment.
	log := logger.New()
	log.WithField("service", "supersoniq-insights").Info("starting service")

	catalog, err := config.LoadCatalog(cfg.ProvidersFile)
	if err != nil {
		log.WithError(err).Fatal("failed to load provider catalog")
	}

	backend, err := openBackend(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open key store")
	}
	defer backend.Close()
	log.WithField("driver", cfg.KeystoreDriver).WithField("path", cfg.KeystorePath).Info("key store ready")

	keys, err := keystore.New(backend, keystore.Config{
		Keys:            catalog.StorageKeys(),
		SelectionKey:    catalog.SelectionKey,
		DefaultProvider: types.ProviderGemini,
	}, log.Entry)
	if err != nil {
		log.WithError(err).Fatal("failed to build key store")
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	stt := transcription.NewClient(transcription.Options{
		BaseURL:      cfg.TranscribeBaseURL,
		HTTPClient:   httpClient,
		PollInterval: cfg.PollInterval,
		MaxAttempts:  cfg.PollMaxAttempts,
		Timeout:      cfg.PollTimeout,
	}, log.Entry)
	ex := extractor.New(extractor.Options{
		HTTPClient:    httpClient,
		GeminiBaseURL: cfg.GeminiBaseURL,
		GeminiModel:   cfg.GeminiModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIModel:   cfg.OpenAIModel,
		ClaudeBaseURL: cfg.ClaudeBaseURL,
		ClaudeModel:   cfg.ClaudeModel,
	}, log.Entry)

	proc := processor.New(pipeline.New(stt, ex, keys, log.Entry), catalog, log.Entry)
	srv := api.NewServer(api.Deps{
		Keys:           keys,
		Processor:      proc,
		Catalog:        catalog,
		Proxy:          api.NewClaudeProxy(httpClient, cfg.ClaudeBaseURL, cfg.ClaudeModel, log.Entry),
		Log:            log,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Metrics:        cfg.MetricsEnabled,
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	if cfg.RunWriteTimeout() == 0 {
		log.Warn("polling is unbounded; POST /runs has no write timeout")
	}
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Minute,
		WriteTimeout: cfg.RunWriteTimeout(),
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// openBackend picks the credential storage named by KEYSTORE_DRIVER.
func openBackend(cfg *config.Config) (keystore.Backend, error) {
	switch cfg.KeystoreDriver {
	case "memory":
		return keystore.NewMemoryBackend(), nil
	case "sqlite":
		b, err := keystore.OpenSQLite(cfg.KeystorePath)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown KEYSTORE_DRIVER %q", cfg.KeystoreDriver)
}
