package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"discount-engine/internal/config"
	"discount-engine/internal/database"
	"discount-engine/internal/discount"
	"discount-engine/internal/handler"
	"discount-engine/internal/repository"
	"discount-engine/internal/router"
	"discount-engine/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting discount engine API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	discountRepo := repository.NewDiscountRepository(pool, logger)
	ledger := repository.NewRedemptionLedger(pool, logger)

	// Initialize the code import source: S3 when configured, local file
	// system otherwise.
	var source discount.Source
	if cfg.S3.Enabled {
		s3Source, err := discount.NewS3Source(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 source, falling back to local file system only")
			source = discount.NewFileSource(logger)
		} else {
			source = prefixedSource{inner: s3Source, prefix: cfg.S3.Prefix}
		}
	} else {
		source = discount.NewFileSource(logger)
		logger.Info().Msg("using local file system for code import files (S3 disabled)")
	}

	// Initialize the discount engine
	resolver := discount.NewResolver(logger)
	importer := discount.NewImporter(source, discountRepo, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	discountService := service.NewDiscountService(discountRepo, ledger, productRepo, resolver, importer, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, discountService, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	discountHandler := handler.NewDiscountHandler(discountService, logger)

	// Initialize router
	mux := router.New(productHandler, orderHandler, discountHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// prefixedSource prepends the configured bucket prefix to import keys.
type prefixedSource struct {
	inner  discount.Source
	prefix string
}

func (s prefixedSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.inner.Open(ctx, path.Join(s.prefix, key))
}
