package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkoshkina/baristabot/cmd/cli/commands"
	"github.com/mkoshkina/baristabot/internal/config"
	"github.com/mkoshkina/baristabot/pkg/postgres"
	"github.com/mkoshkina/baristabot/pkg/utils/logging"
)

var (
	env string
	app *commands.AppContext
	db  *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "baristabot",
		Short: "Barista Bot CLI - Manage coffee-point schedules and shift swaps",
		Long: `A CLI tool for the coffee-point staff operations bot: import the
published roster, look up current shifts, and run shift swaps.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "prod", "Environment (test, prod)")

	rootCmd.AddCommand(commands.ImportScheduleCmd(appRef()))
	rootCmd.AddCommand(commands.CurrentShiftCmd(appRef()))
	rootCmd.AddCommand(commands.FindPartnerCmd(appRef()))
	rootCmd.AddCommand(commands.SwapShiftCmd(appRef()))
	rootCmd.AddCommand(commands.ExchangeShiftsCmd(appRef()))
	rootCmd.AddCommand(commands.ListShiftsCmd(appRef()))
	rootCmd.AddCommand(commands.AddShiftCmd(appRef()))
	rootCmd.AddCommand(commands.ReassignShiftCmd(appRef()))
	rootCmd.AddCommand(commands.DeleteShiftCmd(appRef()))
	rootCmd.AddCommand(commands.ResyncShiftCmd(appRef()))
	rootCmd.AddCommand(commands.ListShiftTypesCmd(appRef()))
	rootCmd.AddCommand(commands.AddShiftTypeCmd(appRef()))
	rootCmd.AddCommand(commands.ListUsersCmd(appRef()))
	rootCmd.AddCommand(commands.AddUserCmd(appRef()))
	rootCmd.AddCommand(commands.DeactivateUserCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef hands commands the shared context before initApp fills it in
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config and the database connection
func initApp() error {
	var err error
	appRef().Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.Logger.Debug("Connecting to database")
	db, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RunMigrations(app.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Database = db
	app.Logger.Info("Database initialized successfully")

	return nil
}
