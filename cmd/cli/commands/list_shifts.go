package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkoshkina/baristabot/pkg/db"
)

// ListShiftsCmd creates the listShifts command
func ListShiftsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listShifts <staff_id> [from_date] [to_date]",
		Short: "List a staff member's shifts, optionally bounded by dates",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			staffID := db.NormalizeStaffID(args[0])
			var fromDate, toDate string
			var err error
			if len(args) > 1 {
				if fromDate, err = parseDate(args[1]); err != nil {
					return err
				}
			}
			if len(args) > 2 {
				if toDate, err = parseDate(args[2]); err != nil {
					return err
				}
			}

			shifts, err := app.Database.ListShiftsByStaff(app.Ctx, staffID, fromDate, toDate)
			if err != nil {
				return fmt.Errorf("failed to list shifts: %w", err)
			}

			if len(shifts) == 0 {
				fmt.Printf("\nNo shifts found for %s.\n\n", staffID)
				return nil
			}

			fmt.Printf("\nFound %d shifts for %s:\n\n", len(shifts), staffID)
			for _, shift := range shifts {
				line := fmt.Sprintf("  %6d  %s", shift.ID, shift.Date)
				if shiftType, err := app.Database.FindShiftTypeByID(app.Ctx, shift.ShiftTypeID); err == nil {
					line += fmt.Sprintf("  %s-%s %s", shiftType.StartTime, shiftType.EndTime, shiftType.Point)
				}
				if shift.Source != db.SourceSheets {
					line += fmt.Sprintf("  [%s]", shift.Source)
				}
				if !shift.Active {
					line += "  (inactive)"
				}
				fmt.Println(line)
			}
			fmt.Println()
			return nil
		},
	}
}
