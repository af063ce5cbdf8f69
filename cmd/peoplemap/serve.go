package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/peoplemap/internal/cms"
	"github.com/jonathan/peoplemap/internal/logger"
	"github.com/jonathan/peoplemap/internal/publish"
	"github.com/jonathan/peoplemap/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	servePort    int
	serveRefresh time.Duration
	serveInput   string
	serveKeep    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that builds the people map on request and stores published snapshots.
Snapshots go to PostgreSQL when DATABASE_URL is set and are kept in memory otherwise.
Only the newest --keep snapshots are retained; the in-memory store is capped regardless.
With --refresh, a snapshot is rebuilt and stored on that interval.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from PORT or 8080)")
	serveCmd.Flags().DurationVar(&serveRefresh, "refresh", 0, "Snapshot refresh interval, e.g. 15m (default from REFRESH_MINUTES, 0 disables)")
	serveCmd.Flags().StringVarP(&serveInput, "in", "i", "", "Serve from a content export file instead of the query API")
	serveCmd.Flags().IntVar(&serveKeep, "keep", 50, "Keep only the newest N snapshots (0 keeps everything)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings(serveInput)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	refresh := cfg.RefreshInterval()
	if serveRefresh != 0 {
		refresh = serveRefresh
	}
	if refresh < 0 {
		return fmt.Errorf("--refresh must be non-negative")
	}
	if serveKeep < 0 {
		return fmt.Errorf("--keep must be non-negative")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}
	opts.Source = cms.NewCachedSource(opts.Source, cfg.CacheTTL())

	var store publish.Store = publish.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		database, err := connectStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		store = database
	} else {
		logger.Warn("DATABASE_URL not set, snapshots are kept in memory only")
	}

	srv, err := server.New(server.Config{
		Port:     cfg.Port,
		Pipeline: opts,
		Store:    store,
		Keep:     serveKeep,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if refresh > 0 {
		publisher := publish.NewPublisher(opts, store).Retain(serveKeep)
		g.Go(func() error {
			logger.Info("snapshot refresher started", "interval", refresh)
			return publisher.Run(gctx, refresh)
		})
	}

	return g.Wait()
}
