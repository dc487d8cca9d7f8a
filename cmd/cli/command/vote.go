package command

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"novelhub/internal/models"
	"novelhub/internal/service"
)

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Up- or downvote novels",
}

func printVotes(w io.Writer, st *service.VoteState) {
	fmt.Fprintf(w, "▲ %d  ▼ %d  %s %d\n", st.Upvotes, st.Downvotes, dim("score"), st.Score())
	if st.UserVote != "" {
		fmt.Fprintf(w, "%s %s\n", dim("Your vote:"), st.UserVote)
	}
}

// toggleVote casts voteType; running it again withdraws the vote.
func toggleVote(voteType string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		st, err := cli.services.Votes.Toggle(ctx, userID, args[0], voteType)
		if err != nil {
			return err
		}
		printVotes(cmd.OutOrStdout(), st)
		return nil
	}
}

var upvoteCmd = &cobra.Command{
	Use:   "up [novel-id]",
	Short: "Upvote a novel, or withdraw your upvote",
	Args:  cobra.ExactArgs(1),
	RunE:  toggleVote(models.VoteUp),
}

var downvoteCmd = &cobra.Command{
	Use:   "down [novel-id]",
	Short: "Downvote a novel, or withdraw your downvote",
	Args:  cobra.ExactArgs(1),
	RunE:  toggleVote(models.VoteDown),
}

var showVoteCmd = &cobra.Command{
	Use:   "show [novel-id]",
	Short: "Show vote counts for a novel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		st, err := cli.services.Votes.State(ctx, cli.session.UserID(), args[0])
		if err != nil {
			return err
		}
		printVotes(cmd.OutOrStdout(), st)
		return nil
	},
}

func init() {
	voteCmd.AddCommand(upvoteCmd, downvoteCmd, showVoteCmd)
}
