// devapi runs the local marketplace API the storefront talks to during
// development.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/marketfront/internal/config"
	"github.com/isdelr/marketfront/internal/devserver"
	"github.com/isdelr/marketfront/internal/logger"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-only-secret"
		log.Warn().Msg("JWT_SECRET not set, using a development default")
	}

	store, err := devserver.OpenStore(cfg.DevAPIDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer store.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.DevAPIPort),
		Handler: devserver.New(store, secret).Router(),
	}

	go func() {
		log.Info().Int("port", cfg.DevAPIPort).Msg("Dev marketplace API starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
