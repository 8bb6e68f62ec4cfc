package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkoshkina/baristabot/pkg/core/services"
	"github.com/mkoshkina/baristabot/pkg/db"
)

// AddShiftCmd creates the addShift command
func AddShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "addShift <date> <staff_id> <shift_type_id>",
		Short: "Add a shift by hand, outside the spreadsheet import",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[0])
			if err != nil {
				return err
			}
			staffID := db.NormalizeStaffID(args[1])
			shiftTypeID, err := parseID(args[2])
			if err != nil {
				return err
			}

			shift, err := app.Database.CreateShift(app.Ctx, date, staffID, shiftTypeID, db.SourceManual)
			if err != nil {
				return fmt.Errorf("failed to create shift: %w", err)
			}

			fmt.Printf("\n✓ Shift %d created for %s on %s\n\n", shift.ID, staffID, date)
			return nil
		},
	}
}

// ReassignShiftCmd creates the reassignShift command
func ReassignShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reassignShift <shift_id> <staff_id>",
		Short: "Reassign a shift without going through a swap",
		Long: `Changes a shift's assignee directly, leaving its provenance and
version alone. This is an admin correction; use swapShift for the
audited hand-over with spreadsheet sync.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shiftID, err := parseID(args[0])
			if err != nil {
				return err
			}
			staffID := db.NormalizeStaffID(args[1])

			shift, err := app.Database.ReassignShift(app.Ctx, shiftID, staffID)
			if err != nil {
				return fmt.Errorf("failed to reassign shift %d: %w", shiftID, err)
			}
			fmt.Printf("\n✓ Shift %d on %s reassigned to %s\n\n", shift.ID, shift.Date, shift.StaffID)
			return nil
		},
	}
}

// DeleteShiftCmd creates the deleteShift command
func DeleteShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteShift <shift_id>",
		Short: "Delete a shift by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shiftID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Database.DeleteShiftByID(app.Ctx, shiftID); err != nil {
				return fmt.Errorf("failed to delete shift %d: %w", shiftID, err)
			}
			fmt.Printf("\n✓ Shift %d deleted\n\n", shiftID)
			return nil
		},
	}
}

// ResyncShiftCmd creates the resyncShift command
func ResyncShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resyncShift <shift_id>",
		Short: "Re-push one database row to the published spreadsheet",
		Long: `Repairs a spreadsheet cell after a degraded swap: the database row
wins and is written over whatever the cell currently holds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shiftID, err := parseID(args[0])
			if err != nil {
				return err
			}
			sheets, err := app.Sheets()
			if err != nil {
				return err
			}

			result, err := services.ResyncShift(app.Ctx, app.Database, sheets, app.Logger, shiftID)
			if err != nil {
				return err
			}

			if result.Cleared {
				fmt.Printf("\n✓ Cell cleared for %s on %s\n\n", result.Shift.StaffID, result.Shift.Date)
			} else {
				fmt.Printf("\n✓ Cell rewritten for %s on %s (%s-%s %s)\n\n",
					result.Shift.StaffID, result.Shift.Date,
					result.ShiftType.StartTime, result.ShiftType.EndTime, result.ShiftType.Point)
			}
			return nil
		},
	}
}
