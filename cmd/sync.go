package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inventory-sync/core/syncrun"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var feedFile string

// syncCmd is the parent command for sync operations.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run and inspect inventory syncs",
}

// syncRunCmd runs one sync in the foreground.
var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a sync now and print its report",
	Long: `Runs a full sync in the foreground and prints the finished run as JSON.
The run takes the same lock as the server, so it is rejected while another run is active.
Interrupting the command cancels the run; items already applied are kept.

Examples:
  # Sync from the configured feed
  sync run

  # Sync from a local YAML or JSON export
  sync run --file ./inventory.yaml`,
	RunE: runSync,
}

// syncStatusCmd prints a stored run.
var syncStatusCmd = &cobra.Command{
	Use:   "status <run-id>",
	Short: "Print the status and report of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncStatus,
}

func init() {
	syncRunCmd.Flags().StringVar(&feedFile, "file", "", "Read the feed from a YAML or JSON file instead of the HTTP feed")

	syncCmd.AddCommand(syncRunCmd)
	syncCmd.AddCommand(syncStatusCmd)
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	if feedFile != "" {
		cfg.Feed.File = feedFile
	}

	db, err := connect(cfg, l)
	if err != nil {
		return err
	}

	client, err := newStorage(cfg)
	if err != nil {
		return err
	}

	coordinator, err := newCoordinator(cmd.Context(), cfg, l, db, client)
	if err != nil {
		return err
	}
	defer coordinator.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := coordinator.Trigger(ctx)
	if err != nil {
		return err
	}

	if err := coordinator.Wait(ctx, run.ID); err != nil {
		l.Warn("Interrupted, cancelling sync run", zap.String("run_id", run.ID))
		if cancelErr := coordinator.Cancel(run.ID); cancelErr != nil && !errors.Is(cancelErr, syncrun.ErrNotRunning) {
			return cancelErr
		}
		if err := coordinator.Wait(context.Background(), run.ID); err != nil {
			return err
		}
	}

	finished, err := coordinator.Status(context.Background(), run.ID)
	if err != nil {
		return err
	}
	if err := printRun(finished); err != nil {
		return err
	}

	if finished.Status == syncrun.StatusAborted {
		return fmt.Errorf("sync run %s aborted: %s", finished.ID, finished.Report.AbortReason)
	}
	return nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	db, err := connect(cfg, l)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	run, err := syncrun.NewGormRepository(db).Get(ctx, args[0])
	if errors.Is(err, syncrun.ErrNotFound) {
		client, storageErr := newStorage(cfg)
		if storageErr != nil {
			return storageErr
		}
		if client != nil {
			run, err = syncrun.NewArchive(client, cfg.Storage.Bucket).Get(ctx, args[0])
		}
	}
	if err != nil {
		return err
	}
	return printRun(run)
}

func printRun(run syncrun.Run) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}
