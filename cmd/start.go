package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inventory-sync/core/loader"
	"inventory-sync/core/logger"
	"inventory-sync/core/middleware/auth"
	"inventory-sync/core/middleware/rayid"

	"inventory-sync/feature/integrity"
	"inventory-sync/feature/inventory"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "inventory-sync/docs/swagger"
)

// @title Inventory Sync API
// @version 1.0
// @description API for triggering and inspecting inventory sync runs.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory sync server",
	Long: `Starts the HTTP server exposing the sync trigger, status and cancel endpoints.
When sync.schedule is set, runs are also triggered on that cron schedule.`,
	RunE: runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, logg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	db, err := connect(cfg, logg)
	if err != nil {
		return err
	}
	logg.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))

	client, err := newStorage(cfg)
	if err != nil {
		return err
	}

	coordinator, err := newCoordinator(cmd.Context(), cfg, logg, db, client)
	if err != nil {
		return err
	}
	defer coordinator.Close()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	mgr := loader.NewManager(logg)
	mgr.Register(inventory.NewFeature(coordinator, logg))
	mgr.Register(integrity.NewFeature(db, client, cfg.Storage.Bucket, logg))

	// RayID first so every later log line carries it
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	// Swagger stays public
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

	if err := mgr.LoadAll(app); err != nil {
		return err
	}

	if cfg.Sync.Schedule != "" {
		schedule := inventory.NewSchedule(cfg.Sync.Schedule, coordinator, logg)
		if err := schedule.Start(); err != nil {
			return err
		}
		defer schedule.Stop()
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
		if err := app.Listen(cfg.Server.Address()); err != nil {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return err
	}

	logg.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
		logg.Warn("Server shutdown incomplete", zap.Error(err))
	}
	// Deferred: schedule stops first, then the active run is cancelled and awaited.
	return nil
}
