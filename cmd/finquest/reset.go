package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/hyperengineering/finquest/internal/types"
	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every goal, streak and ledger entry",
	Long:  "Permanently delete every goal, streak and ledger entry. The day clock is kept. Requires --force or interactive confirmation.",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false,
		"Skip confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Interactive confirmation unless --force
	if !resetForce {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintln(errOut, "WARNING: This will permanently delete every goal and streak.")
		fmt.Fprint(errOut, "Type \"reset\" to confirm: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}

		if strings.TrimSpace(input) != "reset" {
			fmt.Fprintln(errOut, "Aborted.")
			return nil
		}
	}

	tr, closeFn, err := openTracker(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	goals, streaks, err := tr.ResetAll(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), types.ResetResponse{
			Success:      true,
			GoalsCount:   goals,
			StreaksCount: streaks,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Reset complete")
	return nil
}
