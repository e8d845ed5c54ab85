package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopfront/pricegrab/internal/auth"
	"github.com/shopfront/pricegrab/internal/config"
	"github.com/shopfront/pricegrab/internal/extractor"
	"github.com/shopfront/pricegrab/internal/fetcher"
	"github.com/shopfront/pricegrab/internal/scrape"
	"github.com/shopfront/pricegrab/internal/server"
	"github.com/shopfront/pricegrab/internal/storage"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pricegrab",
		Short: "Storefront API with price scraping",
		Long: `pricegrab serves the storefront backend: product catalog, price
records, accounts, and the compare-price endpoint that scrapes a product
page from an external shop and extracts its price.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE:  runServe,
	}
}

// runServe wires the components and serves until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(&cfg.Logging)

	logger.Info("starting pricegrab",
		"addr", cfg.Server.Address,
		"storage", cfg.Storage.Backend,
		"fetch_timeout", cfg.Fetcher.Timeout,
	)

	// Root context: cancelled on SIGINT/SIGTERM so in-flight scrapes stop
	// promptly during graceful shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	stores, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer func() { _ = stores.Close() }()

	httpFetcher := fetcher.NewHTTPFetcher(&cfg.Fetcher, logger)
	defer func() { _ = httpFetcher.Close() }()

	ext := extractor.New(extractor.FromConfig(cfg.Extract.Candidates), logger)
	scraper := scrape.New(httpFetcher, ext, stores.Prices, logger)
	authMgr := auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	srv := server.New(rootCtx, cfg, scraper, stores, authMgr, logger)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	rootCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pricegrab %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Server:\n")
			fmt.Printf("  Address:        %s\n", cfg.Server.Address)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Timeout:        %s\n", cfg.Fetcher.Timeout)
			fmt.Printf("  Max Body Size:  %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("  User-Agent:     %s\n", cfg.Fetcher.UserAgent)
			fmt.Printf("\nExtract:\n")
			if len(cfg.Extract.Candidates) == 0 {
				fmt.Printf("  Candidates:     built-in list\n")
			} else {
				fmt.Printf("  Candidates:     %d configured\n", len(cfg.Extract.Candidates))
			}
			fmt.Printf("  Refresh Concurrency: %d\n", cfg.Extract.RefreshConcurrency)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Backend:        %s\n", cfg.Storage.Backend)
			if cfg.Storage.Backend == "mongo" {
				fmt.Printf("  Database:       %s\n", cfg.Storage.Mongo.Database)
			} else {
				fmt.Printf("  Data Dir:       %s\n", cfg.Storage.DataDir)
			}
			fmt.Printf("\nLogging:\n")
			fmt.Printf("  Level:          %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:         %s\n", cfg.Logging.Format)
			return nil
		},
	}
}

// setupLogger creates a structured logger.
func setupLogger(cfg *config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
