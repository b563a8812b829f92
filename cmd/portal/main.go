// Package main provides the entry point for the VeloPortal service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/veloportal/internal/config"
	"github.com/yourusername/veloportal/internal/database"
	"github.com/yourusername/veloportal/internal/datasource"
	applogger "github.com/yourusername/veloportal/internal/logger"
	"github.com/yourusername/veloportal/internal/portal"
	"github.com/yourusername/veloportal/internal/server"
	"github.com/yourusername/veloportal/internal/snapshot"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Cycling race platform",
	Long:  `VeloPortal manages staged cycling races, teams, riders and per-stage results and classifications.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
			region := os.Getenv("AWS_REGION")
			secretName := os.Getenv("AWS_SECRET_NAME")
			if region == "" || secretName == "" {
				return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
			}
			if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}

		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		appLog = applogger.New(cfg.App.LogLevel)
		appLog.WithFields(logrus.Fields{
			"version": Version,
			"commit":  GitCommit,
		}).Info("VeloPortal starting")
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and live leaderboard feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p := portal.New(appLog)
		snapStore, cleanup, err := buildSnapshotStore(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		// Resume from the latest snapshot when one exists.
		if dump, err := snapStore.Load(ctx); err == nil {
			p.Store().Restore(dump)
			appLog.Info("State restored from snapshot")
		} else {
			appLog.WithError(err).Info("Starting with empty state")
		}

		if cfg.Snapshot.AutosaveCron != "" {
			sched := snapshot.NewScheduler(p.Store(), snapStore, appLog)
			if err := sched.Schedule(cfg.Snapshot.AutosaveCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()
		}

		srv := server.New(cfg.Server, p, appLog, cfg.Metrics.Enabled)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			appLog.WithField("signal", sig.String()).Info("Shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}

		// Final snapshot on the way out.
		if err := snapStore.Save(context.Background(), p.Store().Export()); err != nil {
			appLog.WithError(err).Error("Final snapshot failed")
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import teams and riders from the startlist feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Startlist.URL == "" {
			return fmt.Errorf("startlist.url is not configured")
		}
		ctx := cmd.Context()

		clientCfg := datasource.DefaultClientConfig(cfg.Startlist.URL)
		clientCfg.APIKey = cfg.Startlist.APIKey
		if cfg.Startlist.RateLimit > 0 {
			clientCfg.RateLimit = cfg.Startlist.RateLimit
		}
		if cfg.Startlist.TimeoutSeconds > 0 {
			clientCfg.Timeout = time.Duration(cfg.Startlist.TimeoutSeconds) * time.Second
		}
		if cfg.Startlist.MaxRetries > 0 {
			clientCfg.MaxRetries = cfg.Startlist.MaxRetries
		}

		list, err := datasource.NewStartlistClient(clientCfg, appLog).Fetch(ctx)
		if err != nil {
			return err
		}

		p := portal.New(appLog)
		snapStore, cleanup, err := buildSnapshotStore(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if dump, err := snapStore.Load(ctx); err == nil {
			p.Store().Restore(dump)
		}

		report := p.ImportStartlist(list)
		fmt.Printf("teams created: %d, riders created: %d, skipped: %d, errors: %d\n",
			report.TeamsCreated, report.RidersCreated, report.Skipped, len(report.Errors))
		for _, e := range report.Errors {
			fmt.Println("  " + e)
		}

		return snapStore.Save(ctx, p.Store().Export())
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect the configured snapshot store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		snapStore, cleanup, err := buildSnapshotStore(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		dump, err := snapStore.Load(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("races: %d, stages: %d, checkpoints: %d, teams: %d, riders: %d, results: %d\n",
			len(dump.Races), len(dump.Stages), len(dump.Checkpoints),
			len(dump.Teams), len(dump.Riders), len(dump.Results))
		return nil
	},
}

func buildSnapshotStore(ctx context.Context) (snapshot.Store, func(), error) {
	switch cfg.Snapshot.Backend {
	case "postgres":
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		pgStore := snapshot.NewPostgresStore(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return pgStore, db.Close, nil
	default:
		return snapshot.NewFileStore(cfg.Snapshot.FilePath), func() {}, nil
	}
}

func main() {
	rootCmd.AddCommand(serveCmd, importCmd, snapshotCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
