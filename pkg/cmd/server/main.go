// Command server exposes local community detection over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/gilchrisn/local-community-service/pkg/api"
	"github.com/gilchrisn/local-community-service/pkg/metrics"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	configFile := pflag.StringP("config", "c", "", "config file (yaml, json or toml)")
	pflag.String("address", ":8080", "listen address")
	pflag.String("log-level", "info", "log level")
	pflag.Parse()

	cfg := api.NewConfig()
	if *configFile != "" {
		if err := cfg.LoadFromFile(*configFile); err != nil {
			log.Fatal().Err(err).Str("file", *configFile).Msg("Failed to load configuration")
		}
	}
	if err := cfg.Viper().BindPFlag("server.address", pflag.Lookup("address")); err != nil {
		log.Fatal().Err(err).Msg("Failed to bind flags")
	}
	if err := cfg.Viper().BindPFlag("logging.level", pflag.Lookup("log-level")); err != nil {
		log.Fatal().Err(err).Msg("Failed to bind flags")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel()); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().
		Str("address", cfg.Address()).
		Dur("read_timeout", cfg.ReadTimeout()).
		Dur("write_timeout", cfg.WriteTimeout()).
		Int64("max_upload_bytes", cfg.MaxUploadBytes()).
		Msg("Configuration loaded")

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      api.NewRouter(cfg, metrics.DefaultRegistry()),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}

	go func() {
		log.Info().Str("address", cfg.Address()).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server shutdown complete")
}
