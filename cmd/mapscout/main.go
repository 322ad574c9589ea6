package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/mapscout/api"
	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/diag"
	"github.com/use-agent/mapscout/models"
	"github.com/use-agent/mapscout/scraper"
)

func main() {
	root := &cobra.Command{
		Use:   "mapscout",
		Short: "Google Maps place scraper",
		Long:  "mapscout extracts structured place records from Google Maps search results.",
	}
	root.AddCommand(serveCmd(), searchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			initLogger(cfg.Log)
			slog.Info("mapscout starting",
				"host", cfg.Server.Host,
				"port", cfg.Server.Port,
				"mode", cfg.Server.Mode,
			)

			sc, err := scraper.NewScraper(cfg.Browser)
			if err != nil {
				return fmt.Errorf("initialise scraper: %w", err)
			}
			defer sc.Close()

			pipeline := scraper.NewPipeline(sc, cfg, slog.Default(), newSink(cfg))
			router := api.NewRouter(sc, pipeline, cfg)

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			srv := &http.Server{
				Addr:    addr,
				Handler: router,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("HTTP server listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("HTTP server: %w", err)
			case sig := <-quit:
				slog.Info("shutdown signal received", "signal", sig.String())
			}

			// Give in-flight requests 5 seconds to complete.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				slog.Error("HTTP server forced shutdown", "error", err)
			} else {
				slog.Info("HTTP server drained gracefully")
			}

			// sc.Close() runs via defer — drains page pool and kills Chrome.
			slog.Info("mapscout stopped")
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var (
		maxPlaces int
		language  string
		headless  bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search and print the records as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			initLogger(cfg.Log)
			if cmd.Flags().Changed("headless") {
				cfg.Browser.Headless = headless
			}

			sc, err := scraper.NewScraper(cfg.Browser)
			if err != nil {
				return fmt.Errorf("initialise scraper: %w", err)
			}
			defer sc.Close()

			pipeline := scraper.NewPipeline(sc, cfg, slog.Default(), newSink(cfg))
			req := &models.SearchRequest{
				Query:     args[0],
				MaxPlaces: maxPlaces,
				Language:  language,
			}
			places, err := pipeline.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			if places == nil {
				places = []models.PlaceRecord{}
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(places)
		},
	}
	cmd.Flags().IntVar(&maxPlaces, "max-places", 0, "maximum places to scrape (0 = all found)")
	cmd.Flags().StringVar(&language, "lang", "en", "language code for results")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
	return cmd
}

func newSink(cfg *config.Config) diag.Sink {
	if !cfg.Diag.Enabled {
		return diag.NopSink{}
	}
	return diag.NewFileSink(cfg.Diag.Dir, slog.Default())
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
