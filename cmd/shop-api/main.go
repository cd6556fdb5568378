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

	"github.com/healclinics/shop-api/internal/address"
	"github.com/healclinics/shop-api/internal/auth"
	"github.com/healclinics/shop-api/internal/cart"
	"github.com/healclinics/shop-api/internal/catalog"
	"github.com/healclinics/shop-api/internal/config"
	"github.com/healclinics/shop-api/internal/db"
	shopHttp "github.com/healclinics/shop-api/internal/handler/http"
	"github.com/healclinics/shop-api/internal/order"
	"github.com/healclinics/shop-api/internal/payment"
	"github.com/healclinics/shop-api/internal/pdok"
	"github.com/healclinics/shop-api/internal/post"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.App.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Info().Str("app", cfg.App.Name).Str("env", cfg.App.Env).Msg("Starting shop API")

	if err := db.RunMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	ctx := context.Background()
	database, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	catalogRepo := catalog.NewRepository(database.Pool)
	cartRepo := cart.NewRepository(database.Pool)
	addressRepo := address.NewRepository(database.Pool)
	orderRepo := order.NewRepository(database.Pool)
	paymentRepo := payment.NewRepository(database.Pool)
	authRepo := auth.NewRepository(database.Pool)
	postRepo := post.NewRepository(database.Pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	mollie := payment.NewMollieClient(cfg.Mollie)
	lookupClient := pdok.NewClient(cfg.PDOK.BaseURL, cfg.PDOK.SuggestURL, cfg.PDOK.Timeout)

	catalogSvc := catalog.NewService(catalogRepo)
	cartSvc := cart.NewService(cartRepo, catalogRepo)
	addressSvc := address.NewService(addressRepo)
	orderSvc := order.NewService(orderRepo, cartRepo, addressRepo)
	paymentSvc := payment.NewService(mollie, paymentRepo, orderRepo, payment.NewLogNotifier())
	authSvc := auth.NewService(authRepo, tokens)
	postSvc := post.NewService(postRepo)

	router := shopHttp.NewRouter(shopHttp.RouterDeps{
		Tokens:  tokens,
		Auth:    shopHttp.NewAuthHandler(authSvc),
		Catalog: shopHttp.NewCatalogHandler(catalogSvc),
		Cart:    shopHttp.NewCartHandler(cartSvc),
		Address: shopHttp.NewAddressHandler(addressSvc, lookupClient),
		Order:   shopHttp.NewOrderHandler(orderSvc, cartSvc, addressSvc, paymentSvc),
		Post:    shopHttp.NewPostHandler(postSvc),
		Webhook: shopHttp.NewWebhookHandler(paymentSvc),
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("port", cfg.App.Port).Msg("HTTP server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shop API stopped gracefully")
}
