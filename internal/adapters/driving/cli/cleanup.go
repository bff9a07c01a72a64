package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

var (
	cleanupDryRun bool
	cleanupDriver string
	cleanupDSN    string
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete orphaned embeddings",
	Long: `Delete embeddings whose collection no longer exists.

Orphans are counted first; with --dry-run nothing is deleted. The store and
connection string default to the [maintenance] section of the config file.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "count orphans without deleting them")
	cleanupCmd.Flags().StringVar(&cleanupDriver, "driver", "", "store driver: postgres or sqlite")
	cleanupCmd.Flags().StringVar(&cleanupDSN, "dsn", "", "connection string (postgres) or database file (sqlite)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	if openMaintenance == nil {
		return errors.New("maintenance not configured")
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}

	driver := settings.Maintenance.Driver
	if cleanupDriver != "" {
		driver = domain.StoreDriver(cleanupDriver)
		if !driver.IsValid() {
			return fmt.Errorf("unknown driver %q (want postgres or sqlite)", cleanupDriver)
		}
	}
	dsn := settings.Maintenance.DSN
	if cleanupDSN != "" {
		dsn = cleanupDSN
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, closer, err := openMaintenance(ctx, driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to %s store: %w", driver, err)
	}
	defer closer.Close()

	n, err := svc.DeleteOrphans(ctx, cleanupDryRun)
	if err != nil {
		return err
	}

	if cleanupDryRun {
		cmd.Printf("%s %d orphan embeddings would be deleted.\n", styles.Warning.Render("Dry run:"), n)
	} else {
		cmd.Printf("%s %d orphan embeddings.\n", styles.Success.Render("Deleted"), n)
	}
	return nil
}
