package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Reading history and statistics",
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Chapters you have read, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		entries, err := cli.services.Progress.History(ctx, userID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No reading history.")
			return nil
		}
		tw := newTable(out)
		fmt.Fprintln(tw, heading("NOVEL")+"\t"+heading("CHAPTER")+"\t"+heading("READ"))
		for _, e := range entries {
			title := e.NovelID
			if e.Novel != nil {
				title = truncate(e.Novel.Title, 40)
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", title, e.ChapterNumber, timeAgo(e.LastreadAt))
		}
		return tw.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Chapters read per day over the last week",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		days, err := cli.services.Progress.WeeklyStats(ctx, userID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		total := 0
		for _, d := range days {
			total += d.Reads
			fmt.Fprintf(out, "%-4s %s %d\n", d.Label, accent(strings.Repeat("█", d.Reads)), d.Reads)
		}
		fmt.Fprintf(out, "\n%s %d\n", dim("Total this week:"), total)
		return nil
	},
}

var clearHistoryCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete your reading history",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("this removes all reading progress; pass --yes to confirm")
		}
		return cli.services.Progress.ClearHistory(ctx, userID)
	},
}

func init() {
	progressCmd.AddCommand(historyCmd, statsCmd, clearHistoryCmd)
	clearHistoryCmd.Flags().Bool("yes", false, "confirm")
}
