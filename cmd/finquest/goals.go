package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "List goals with their derived progress",
	Args:  cobra.NoArgs,
	RunE:  runGoals,
}

func runGoals(cmd *cobra.Command, args []string) error {
	tr, closeFn, err := openTracker(context.Background())
	if err != nil {
		return err
	}
	defer closeFn()

	goals := tr.ListGoals()
	out := cmd.OutOrStdout()

	if jsonOutput {
		return printJSON(out, goals)
	}

	if len(goals) == 0 {
		fmt.Fprintln(out, "No goals.")
		return nil
	}

	w := newTabWriter(out)
	fmt.Fprintln(w, "ID\tTITLE\tSAVED\tTARGET\tPROGRESS\tDAYS LEFT\tON TRACK")
	for _, g := range goals {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f%%\t%d\t%t\n",
			g.ID, g.Title, g.CurrentAmount, g.TargetAmount,
			g.Progress.ProgressPercentage, g.Progress.DaysRemaining, g.Progress.OnTrack)
	}
	return w.Flush()
}
