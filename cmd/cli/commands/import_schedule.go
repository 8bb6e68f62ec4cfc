package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkoshkina/baristabot/pkg/clients/sheetsclient"
	"github.com/mkoshkina/baristabot/pkg/core/services"
)

// ImportScheduleCmd creates the importSchedule command
func ImportScheduleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importSchedule [month_label]",
		Short: "Import a month tab of the published roster into the database",
		Long: `Reconciles one month tab of the published roster with the database.
Past days are never touched, and shifts created by swaps or manual edits
are preserved. Defaults to the current month.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := sheetsclient.CurrentMonthLabel()
			if len(args) > 0 {
				label = args[0]
			}

			sheets, err := app.Sheets()
			if err != nil {
				return err
			}
			closures, err := app.Closures()
			if err != nil {
				return err
			}

			result, err := services.ReconcileSchedule(app.Ctx, sheets, app.Database, app.Logger, label, closures)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Schedule reconciled from tab %q\n\n", result.Tab)
			fmt.Printf("Cells parsed:    %d\n", result.Parsed)
			fmt.Printf("Shifts imported: %d\n", result.Imported)
			fmt.Printf("Rows created:    %d\n", result.Created)
			fmt.Printf("Rows removed:    %d\n", result.Removed)

			if len(result.Warnings) > 0 {
				fmt.Printf("\n⚠ %d cells skipped:\n", len(result.Warnings))
				for _, w := range result.Warnings {
					fmt.Printf("  - %s\n", w)
				}
			}
			fmt.Println()

			return nil
		},
	}
}
