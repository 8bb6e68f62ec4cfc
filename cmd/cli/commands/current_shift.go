package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkoshkina/baristabot/pkg/core/schedule"
	"github.com/mkoshkina/baristabot/pkg/core/services"
	"github.com/mkoshkina/baristabot/pkg/db"
)

// CurrentShiftCmd creates the currentShift command
func CurrentShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "currentShift <staff_id>",
		Short: "Show the shift a staff member is working right now",
		Long: `Resolves the staff member's current shift with a one-hour tolerance
either side, so someone arriving early or leaving late still counts as
on shift. Overnight shifts are attributed to the day they started.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			staffID := db.NormalizeStaffID(args[0])

			resolution, err := schedule.Resolve(app.Ctx, app.Database, app.Database, app.Logger, staffID, time.Now())
			if err != nil {
				if errors.Is(err, schedule.ErrNoCurrentShift) {
					fmt.Printf("\n%s is not on shift right now.\n\n", staffID)
					return nil
				}
				return err
			}

			fmt.Printf("\n%s is on shift:\n\n", staffID)
			fmt.Printf("Date:  %s (%s)\n", resolution.Shift.Date, resolution.Weekday)
			fmt.Printf("Time:  %s - %s\n", resolution.ShiftType.StartTime, resolution.ShiftType.EndTime)
			fmt.Printf("Point: %s\n\n", resolution.Point)
			return nil
		},
	}
}

// FindPartnerCmd creates the findPartner command
func FindPartnerCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "findPartner <staff_id>",
		Short: "Find the colleague working alongside a staff member right now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			staffID := db.NormalizeStaffID(args[0])

			resolution, err := schedule.Resolve(app.Ctx, app.Database, app.Database, app.Logger, staffID, time.Now())
			if err != nil {
				if errors.Is(err, schedule.ErrNoCurrentShift) {
					fmt.Printf("\n%s is not on shift right now.\n\n", staffID)
					return nil
				}
				return err
			}

			partner, err := services.FindShiftPartner(app.Ctx, app.Database, app.Logger,
				resolution.Shift.Date, resolution.Point, resolution.ShiftType.Category, staffID)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					fmt.Printf("\nNobody else is scheduled at %s on %s.\n\n", resolution.Point, resolution.Shift.Date)
					return nil
				}
				return err
			}

			fmt.Printf("\n%s works with %s (%s) at %s today.\n\n", staffID, partner.Name, partner.StaffID, resolution.Point)
			return nil
		},
	}
}
