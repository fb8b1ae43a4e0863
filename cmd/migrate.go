package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hrmspro/hrms/internal/database"
	"github.com/hrmspro/hrms/internal/migrations"
	"github.com/hrmspro/hrms/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply the schema migrations to the configured database",
	}
	migrateRollback bool
	migrateStatus   bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest applied migration")
	migrateCmd.Flags().BoolVarP(&migrateStatus, "status", "s", false, "to list migrations and whether they are applied")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	dialect, err := database.Dialect(db)
	if err != nil {
		return err
	}
	provider, err := migrations.NewProvider(db.DB, dialect)
	if err != nil {
		return err
	}

	lg := logger.LoggerWrapper()
	switch {
	case migrateStatus:
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("goose status: %w", err)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT")
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Source.Version, s.State, applied)
		}
		return tw.Flush()

	case migrateRollback:
		result, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		lg.Info("rolled back migration", "version", result.Source.Version, "duration", result.Duration)
		fmt.Fprintf(os.Stdout, "rolled back version %d\n", result.Source.Version)
		return nil

	default:
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		for _, r := range results {
			lg.Info("applied migration", "version", r.Source.Version, "duration", r.Duration)
		}
		fmt.Fprintf(os.Stdout, "applied %d migration(s)\n", len(results))
		return nil
	}
}
