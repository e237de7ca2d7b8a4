package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/servicehub/provider-directory/app/config"
	"github.com/servicehub/provider-directory/app/database"
	"github.com/servicehub/provider-directory/app/logging"
	"github.com/servicehub/provider-directory/app/seed"
	"github.com/servicehub/provider-directory/app/server"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "directory",
	Short: "Service provider directory",
	Long: `A read-only directory of service providers grouped by category.

Use 'directory migrate' to create the schema, 'directory seed' to load demo
data, and 'directory serve' to start the HTTP API.`,
	SilenceUsage: true,
}

// --- serve command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, db, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer closeDB(db, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx, cfg, db, logger)
	},
}

// --- migrate command ---

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer closeDB(db, logger)

		if err := database.Migrate(db); err != nil {
			return err
		}
		logger.Info("schema migrated")
		return nil
	},
}

// --- seed command ---

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo categories and providers",
	Long: `Create the ten demo categories and their providers.

Every provider gets a copy of a logo from --logos-dir under the storage
directory. With --fresh both tables are emptied first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, db, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer closeDB(db, logger)

		if err := database.Migrate(db); err != nil {
			return err
		}
		if fresh, _ := cmd.Flags().GetBool("fresh"); fresh {
			if err := database.Truncate(db); err != nil {
				return err
			}
			logger.Info("tables truncated")
		}

		catalog, err := seed.DefaultCatalog()
		if err != nil {
			return err
		}
		logosDir, _ := cmd.Flags().GetString("logos-dir")
		_, err = seed.New(db, catalog, seed.Options{
			StorageDir: cfg.Storage.Dir,
			LogosDir:   logosDir,
			Logger:     logger,
		}).Run(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to YAML config file")

	seedCmd.Flags().String("logos-dir", "storage/seed-logos", "Directory of logo images to copy")
	seedCmd.Flags().Bool("fresh", false, "Truncate tables before seeding")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// bootstrap loads configuration, builds the logger and connects to the
// database.
func bootstrap(cmd *cobra.Command) (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	slog.SetDefault(logger)

	debug := logger.Enabled(context.Background(), slog.LevelDebug)
	db, err := database.Open(cfg.Database, logger, debug)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}

func closeDB(db *gorm.DB, logger *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("closing database", "error", err)
	}
}
