package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gateway/internal/adapter/strapi"
	"gateway/internal/http/handlers"
	"gateway/internal/http/httpapi"
	"gateway/internal/infra"
	"gateway/internal/providers/advantech"
	"gateway/internal/search"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := strapi.NewClient(strapi.Options{
		BaseURL:        cfg.StrapiBaseURL,
		Token:          cfg.StrapiToken,
		Logger:         &logger,
		RequestTimeout: cfg.UpstreamTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build account store client")
	}

	partner, err := advantech.NewClient(advantech.Options{
		BaseURL:        cfg.PartnerBaseURL,
		Key:            cfg.PartnerKey,
		Logger:         &logger,
		RequestTimeout: cfg.UpstreamTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build partner search client")
	}

	orchestrator := search.New(search.Options{
		Accounts:   store,
		Tariffs:    store,
		History:    store,
		Partner:    partner,
		Logger:     &logger,
		Passphrase: cfg.APIKeyPassphrase,
	})

	app := handlers.NewApp(&logger, orchestrator)
	router := httpapi.NewRouter(app, logger, cfg.CORSOrigins)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
