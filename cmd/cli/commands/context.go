package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/mkoshkina/baristabot/internal/config"
	"github.com/mkoshkina/baristabot/pkg/clients/sheetsclient"
	"github.com/mkoshkina/baristabot/pkg/core/services"
	"github.com/mkoshkina/baristabot/pkg/core/swap"
	"github.com/mkoshkina/baristabot/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context

	sheetsClient *sheetsclient.Client
}

// Sheets returns the spreadsheet client, creating it on first use so
// commands that never touch the sheet work without credentials
func (app *AppContext) Sheets() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}
	timeout := time.Duration(app.Cfg.SyncTimeoutSecs) * time.Second
	if app.Cfg.SyncTimeoutSecs == 0 {
		timeout = time.Duration(config.DefaultSyncTimeoutSecs) * time.Second
	}
	client, err := sheetsclient.NewClient(app.Ctx, app.Cfg.CredentialsPath, app.Cfg.SpreadsheetID, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.sheetsClient = client
	return client, nil
}

// SwapEngine builds a swap engine over the shared dependencies
func (app *AppContext) SwapEngine() (*swap.Engine, error) {
	sheets, err := app.Sheets()
	if err != nil {
		return nil, err
	}
	lookahead := app.Cfg.LookaheadDays
	if lookahead == 0 {
		lookahead = config.DefaultLookaheadDays
	}
	return swap.NewEngine(app.Database, app.Database, app.Database, sheets, app.Logger, lookahead), nil
}

// Closures compiles the configured closure rules into a calendar
func (app *AppContext) Closures() (*services.ClosureCalendar, error) {
	if len(app.Cfg.Closures) == 0 {
		return nil, nil
	}
	rules := make([]services.ClosureRule, 0, len(app.Cfg.Closures))
	for _, c := range app.Cfg.Closures {
		rule, err := rrule.StrToRRule(c.RRule)
		if err != nil {
			return nil, fmt.Errorf("invalid closure rule for %s: %w", c.Point, err)
		}
		rules = append(rules, services.ClosureRule{Point: c.Point, Rule: rule})
	}
	return services.NewClosureCalendar(rules), nil
}
