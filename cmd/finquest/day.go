package main

import (
	"context"
	"fmt"

	"github.com/hyperengineering/finquest/internal/tracker"
	"github.com/hyperengineering/finquest/internal/types"
	"github.com/spf13/cobra"
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Inspect or move the simulated day clock",
	Long:  "Show, advance, or reset the simulated day clock without running the server.",
}

var dayShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current simulated day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDay(cmd, func(ctx context.Context, tr *tracker.Tracker) (int, error) {
			return tr.CurrentDay(), nil
		})
	},
}

var dayAdvanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Advance the clock by one day and snapshot goal progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDay(cmd, func(ctx context.Context, tr *tracker.Tracker) (int, error) {
			return tr.AdvanceDay(ctx)
		})
	},
}

var dayResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the clock to day 0",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDay(cmd, func(ctx context.Context, tr *tracker.Tracker) (int, error) {
			return tr.ResetDay(ctx)
		})
	},
}

func init() {
	dayCmd.AddCommand(dayShowCmd)
	dayCmd.AddCommand(dayAdvanceCmd)
	dayCmd.AddCommand(dayResetCmd)
}

func runDay(cmd *cobra.Command, op func(ctx context.Context, tr *tracker.Tracker) (int, error)) error {
	ctx := context.Background()

	tr, closeFn, err := openTracker(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	day, err := op(ctx, tr)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), types.DayResponse{Success: true, CurrentDay: day})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Day %d\n", day)
	return nil
}
