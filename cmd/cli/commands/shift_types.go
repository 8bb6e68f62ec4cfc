package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkoshkina/baristabot/pkg/core/schedule"
	"github.com/mkoshkina/baristabot/pkg/db"
)

// ListShiftTypesCmd creates the listShiftTypes command
func ListShiftTypesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listShiftTypes",
		Short: "List the shift type catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := app.Database.ListShiftTypes(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list shift types: %w", err)
			}

			fmt.Printf("\nFound %d shift types:\n\n", len(types))
			for _, st := range types {
				fmt.Printf("  %4d  %-11s %s  %s\n", st.ID, st.StartTime+"-"+st.EndTime, st.Point, st.Category)
			}
			fmt.Println()
			return nil
		},
	}
}

// AddShiftTypeCmd creates the addShiftType command
func AddShiftTypeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "addShiftType <start_time> <end_time> <point>",
		Short: "Add a shift type to the catalog",
		Long: `Adds a catalog entry. The category (morning, evening or hybrid) is
derived from the start time the same way roster import does it.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := schedule.NormalizeTime(args[0])
			end := schedule.NormalizeTime(args[1])
			point := args[2]

			if _, err := schedule.ParseClock(start); err != nil {
				return fmt.Errorf("bad start time: %w", err)
			}
			if _, err := schedule.ParseClock(end); err != nil {
				return fmt.Errorf("bad end time: %w", err)
			}
			category, err := schedule.CategoryForStart(start)
			if err != nil {
				return err
			}

			shiftType := &db.ShiftType{
				Name:      fmt.Sprintf("%s-%s %s", start, end, point),
				StartTime: start,
				EndTime:   end,
				Point:     point,
				Category:  category,
			}
			id, err := app.Database.CreateShiftType(app.Ctx, shiftType)
			if err != nil {
				return fmt.Errorf("failed to create shift type: %w", err)
			}

			fmt.Printf("\n✓ Shift type %d created: %s (%s)\n\n", id, shiftType.Name, category)
			return nil
		},
	}
}
