package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkoshkina/baristabot/pkg/core/swap"
	"github.com/mkoshkina/baristabot/pkg/db"
)

// SwapShiftCmd creates the swapShift command (one-way hand-over)
func SwapShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "swapShift <shift_id> <to_staff_id>",
		Short: "Hand a shift over to another staff member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shiftID, err := parseID(args[0])
			if err != nil {
				return err
			}
			toStaffID := db.NormalizeStaffID(args[1])

			flow, err := app.startFlowForShiftOwner(shiftID)
			if err != nil {
				return err
			}
			if err := flow.SelectShift(app.Ctx, shiftID); err != nil {
				return err
			}
			if _, err := flow.SelectCounterpart(app.Ctx, toStaffID); err != nil {
				return err
			}
			if err := flow.ChooseOneWay(); err != nil {
				return err
			}

			summary, err := flow.Summary()
			if err != nil {
				return err
			}
			fmt.Printf("\n%s\n", summary.Text)

			result, err := flow.Confirm(app.Ctx)
			if err != nil {
				return err
			}
			printSwapResult(result)
			return nil
		},
	}
}

// ExchangeShiftsCmd creates the exchangeShifts command (two-way swap)
func ExchangeShiftsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "exchangeShifts <shift_id> <counterpart_shift_id>",
		Short: "Exchange two shifts between their holders",
		Long: `Swaps the assignees of two shifts. The published spreadsheet is
updated first; the database changes only after the sheet push succeeds.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shiftID, err := parseID(args[0])
			if err != nil {
				return err
			}
			otherID, err := parseID(args[1])
			if err != nil {
				return err
			}

			other, err := app.Database.GetShiftByID(app.Ctx, otherID)
			if err != nil {
				return fmt.Errorf("failed to load shift %d: %w", otherID, err)
			}

			flow, err := app.startFlowForShiftOwner(shiftID)
			if err != nil {
				return err
			}
			if err := flow.SelectShift(app.Ctx, shiftID); err != nil {
				return err
			}
			if _, err := flow.SelectCounterpart(app.Ctx, other.StaffID); err != nil {
				return err
			}
			if err := flow.ChooseExchange(app.Ctx, otherID); err != nil {
				return err
			}

			summary, err := flow.Summary()
			if err != nil {
				return err
			}
			fmt.Printf("\n%s\n", summary.Text)

			result, err := flow.Confirm(app.Ctx)
			if err != nil {
				return err
			}
			printSwapResult(result)
			return nil
		},
	}
}

// startFlowForShiftOwner begins a swap flow acting on behalf of the staff
// member who currently holds the shift
func (app *AppContext) startFlowForShiftOwner(shiftID int64) (*swap.Flow, error) {
	shift, err := app.Database.GetShiftByID(app.Ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift %d: %w", shiftID, err)
	}
	owner, err := app.Database.GetUserByStaffID(app.Ctx, shift.StaffID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holder of shift %d: %w", shiftID, err)
	}

	engine, err := app.SwapEngine()
	if err != nil {
		return nil, err
	}
	return engine.NewFlow(swap.ActingIdentity{Real: owner})
}

func printSwapResult(result *swap.Result) {
	fmt.Printf("\n✓ %s applied\n", result.Kind)
	fmt.Printf("  %s\n", result.RequesterNote)
	if result.Degraded {
		fmt.Println("\n⚠ The spreadsheet could not be updated; run resyncShift to repair it.")
	}
	fmt.Println()
}
