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

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/isdelr/storefront-be/internal/api"
	"github.com/isdelr/storefront-be/internal/auth"
	"github.com/isdelr/storefront-be/internal/config"
	"github.com/isdelr/storefront-be/internal/database"
	"github.com/isdelr/storefront-be/internal/importer"
	"github.com/isdelr/storefront-be/internal/logger"
	"github.com/isdelr/storefront-be/internal/services"
	"github.com/isdelr/storefront-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	// Credential primitives; both refuse to start on bad settings.
	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize password hasher")
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token issuer")
	}

	// Set up database
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	stores, err := database.Open(startCtx, cfg)
	if err != nil {
		cancelStart()
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	source, err := importSource(startCtx, cfg)
	cancelStart()
	if err != nil {
		log.Fatal().Err(err).Str("location", cfg.PostsImportSource).Msg("Failed to set up posts import source")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(stores.Events, hub)
	authService := services.NewAuthService(stores.Users, hasher, tokens, eventService)
	productService := services.NewProductService(stores.Products, eventService)
	postService := services.NewPostService(stores.Posts, source, eventService)

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Hub:            hub,
		Verifier:       tokens,
		AuthService:    authService,
		ProductService: productService,
		PostService:    postService,
		EventService:   eventService,
		Ping:           stores.Ping,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := stores.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}

	log.Info().Msg("Server exiting")
}

// importSource resolves the posts import location, building an S3 client only
// when the location points at a bucket.
func importSource(ctx context.Context, cfg *config.Config) (importer.Source, error) {
	if !importer.IsS3(cfg.PostsImportSource) {
		return importer.ParseLocation(cfg.PostsImportSource, nil)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return importer.ParseLocation(cfg.PostsImportSource, client)
}
