package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/automation"
	"github.com/smallbiznis/descomplaca/internal/cache"
	"github.com/smallbiznis/descomplaca/internal/chat"
	"github.com/smallbiznis/descomplaca/internal/clock"
	"github.com/smallbiznis/descomplaca/internal/config"
	"github.com/smallbiznis/descomplaca/internal/document"
	"github.com/smallbiznis/descomplaca/internal/events"
	"github.com/smallbiznis/descomplaca/internal/ledger"
	"github.com/smallbiznis/descomplaca/internal/migration"
	"github.com/smallbiznis/descomplaca/internal/observability"
	"github.com/smallbiznis/descomplaca/internal/order"
	"github.com/smallbiznis/descomplaca/internal/payment"
	"github.com/smallbiznis/descomplaca/internal/pipeline"
	"github.com/smallbiznis/descomplaca/internal/proposal"
	"github.com/smallbiznis/descomplaca/internal/ratelimit"
	"github.com/smallbiznis/descomplaca/internal/review"
	"github.com/smallbiznis/descomplaca/internal/scheduler"
	"github.com/smallbiznis/descomplaca/internal/server"
	"github.com/smallbiznis/descomplaca/internal/session"
	"github.com/smallbiznis/descomplaca/internal/user"
	"github.com/smallbiznis/descomplaca/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background sweepers",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			// Core Infrastructure
			config.Module,
			observability.Module,
			fx.Provide(RegisterSnowflake),
			db.Module,
			migration.Module,
			clock.Module,
			cache.Module,
			ratelimit.Module,
			events.Module,

			// Functional Domains
			ledger.Module,
			user.Module,
			order.Module,
			proposal.Module,
			payment.Module,
			review.Module,
			chat.Module,
			document.Module,

			// Automation
			automation.Module,
			session.Module,
			pipeline.Module,
			scheduler.Module,

			server.Module,
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		var conn *gorm.DB
		app := fx.New(
			config.Module,
			observability.Module,
			db.Module,
			fx.Populate(&conn),
			fx.NopLogger,
		)
		return runOnce(cmd.Context(), app, func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		})
	},
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Plate portal pipeline tools",
}

var pipelineRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the plate portal pipeline once and store the snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cached *pipeline.Cache
		app := fx.New(
			config.Module,
			observability.Module,
			clock.Module,
			cache.Module,
			automation.Module,
			pipeline.Module,
			fx.Populate(&cached),
			fx.NopLogger,
		)
		return runOnce(cmd.Context(), app, func(ctx context.Context) error {
			snap, err := cached.Refresh(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pipeline refreshed: %d rows\n", len(snap.Data))
			return nil
		})
	},
}

// runOnce starts app, runs fn and stops app again.
func runOnce(ctx context.Context, app *fx.App, fn func(context.Context) error) error {
	if err := app.Err(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := fn(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(nodeID)
}
