package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Your saved novels",
}

var listLibraryCmd = &cobra.Command{
	Use:   "list",
	Short: "Show your library with reading progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		items, err := cli.services.Library.List(ctx, userID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "Your library is empty.")
			return nil
		}
		tw := newTable(out)
		fmt.Fprintln(tw, heading("ID")+"\t"+heading("TITLE")+"\t"+heading("PROGRESS")+"\t"+heading("LAST READ")+"\t")
		for _, it := range items {
			last := "-"
			if it.LastRead != nil {
				last = fmt.Sprintf("ch. %d, %s", it.LastRead.ChapterNumber, timeAgo(it.LastRead.LastreadAt))
			}
			news := ""
			if it.HasNewChapters {
				news = accent("new chapters")
			}
			fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\t%s\n", it.Novel.NovelID, truncate(it.Novel.Title, 40),
				it.ReadChapters, it.TotalChapters, last, news)
		}
		return tw.Flush()
	},
}

var addLibraryCmd = &cobra.Command{
	Use:   "add [novel-id]",
	Short: "Save a novel to your library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		return cli.services.Library.Add(ctx, userID, args[0])
	},
}

var removeLibraryCmd = &cobra.Command{
	Use:   "remove [novel-id]",
	Short: "Remove a novel from your library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		return cli.services.Library.Remove(ctx, userID, args[0])
	},
}

func init() {
	libraryCmd.AddCommand(listLibraryCmd, addLibraryCmd, removeLibraryCmd)
}
