package cmd

import (
	"inventory-sync/core/catalog"
	"inventory-sync/core/database"
	"inventory-sync/core/lock"
	"inventory-sync/core/syncrun"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates or updates every table the service uses.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalog, lock and run tables",
	Long: `Auto-migrates the catalog_entries, sync_locks and sync_runs tables.
Existing columns are never dropped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := bootstrap()
		if err != nil {
			return err
		}
		defer l.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		if err := database.Migrate(db, catalog.Migrate, lock.Migrate, syncrun.Migrate); err != nil {
			return err
		}

		l.Info("Migration complete", zap.String("driver", cfg.Database.Driver), zap.String("database", cfg.Database.Name))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
