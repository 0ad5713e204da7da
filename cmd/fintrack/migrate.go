package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/config"
	"github.com/Veraticus/fintrack/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the SQLite record store",
		Long: `Initialize or update the schema of the SQLite record store to the latest
version. Only applies to the sqlite remote driver.`,
		RunE: runMigrate,
	}
	cmd.Flags().Bool("status", false, "show the schema version without applying changes")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Remote.Driver != config.DriverSQLite {
		return common.NewUserError("Migrations only apply to the sqlite driver", common.ErrInvalidConfig)
	}
	status, _ := cmd.Flags().GetBool("status")
	out := cmd.OutOrStdout()

	db, err := storage.NewSQLiteStorage(cfg.Remote.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if status {
		fmt.Fprintln(out, cli.FormatTitle("Database migration status"))
		fmt.Fprintln(out, cli.RenderTable([]string{"Database", "Current", "Latest"}, [][]string{{
			cfg.Remote.Path,
			fmt.Sprint(current),
			fmt.Sprint(storage.ExpectedSchemaVersion),
		}}))
		if current < storage.ExpectedSchemaVersion {
			fmt.Fprintln(out, cli.FormatInfo("Run: fintrack migrate"))
		}
		return nil
	}

	slog.Info("Running database migrations", "database", cfg.Remote.Path, "from", current)
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database at schema version %d", storage.ExpectedSchemaVersion)))
	return nil
}
