package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Chapter comments",
}

func printComment(w io.Writer, user, content, when string) {
	fmt.Fprintf(w, "%s %s\n  %s\n", accent(user), dim(when), content)
}

var listCommentCmd = &cobra.Command{
	Use:   "list [chapter-id]",
	Short: "Show comments on a chapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		comments, err := cli.services.Comments.ListByChapter(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(comments) == 0 {
			fmt.Fprintln(out, "No comments yet.")
			return nil
		}
		for _, c := range comments {
			when := ""
			if c.CreatedAt != nil {
				when = timeAgo(*c.CreatedAt)
			}
			printComment(out, c.Username, c.Content, when)
		}
		return nil
	},
}

var postCommentCmd = &cobra.Command{
	Use:   "post [chapter-id] [text...]",
	Short: "Comment on a chapter",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		_, err = cli.services.Comments.Post(ctx, userID, args[0], strings.Join(args[1:], " "))
		return err
	},
}

var watchCommentCmd = &cobra.Command{
	Use:   "watch [chapter-id]",
	Short: "Follow new comments on a chapter until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		live, err := cli.services.Comments.Watch(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, dim("Watching for new comments, press Ctrl+C to stop"))
		for c := range live {
			printComment(out, c.UserID, c.Content, "just now")
		}
		return nil
	},
}

func init() {
	commentCmd.AddCommand(listCommentCmd, postCommentCmd, watchCommentCmd)
}
