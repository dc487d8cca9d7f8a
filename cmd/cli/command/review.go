package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"novelhub/internal/service"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Read and write novel reviews",
}

var listReviewCmd = &cobra.Command{
	Use:   "list [novel-id]",
	Short: "Show the reviews of a novel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		reviews, err := cli.services.Reviews.ListByNovel(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(reviews) == 0 {
			fmt.Fprintln(out, "No reviews yet.")
			return nil
		}
		var sum int
		for _, r := range reviews {
			sum += r.Rating
		}
		fmt.Fprintf(out, "%s %.1f/5 %s\n\n", heading("Average"), float64(sum)/float64(len(reviews)), dim(fmt.Sprintf("(%d reviews)", len(reviews))))
		for _, r := range reviews {
			when := ""
			if r.CreatedAt != nil {
				when = timeAgo(*r.CreatedAt)
			}
			fmt.Fprintf(out, "%s %s %s\n", accent(stars(r.Rating)), r.Username, dim(when))
			fmt.Fprintf(out, "  %s\n\n", r.Content)
		}
		return nil
	},
}

func stars(n int) string {
	n = max(0, min(n, 5))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

var postReviewCmd = &cobra.Command{
	Use:   "post [novel-id]",
	Short: "Review a novel; a second review replaces your first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		var in service.ReviewInput
		in.Rating, _ = cmd.Flags().GetInt("rating")
		in.Content, _ = cmd.Flags().GetString("text")
		_, err = cli.services.Reviews.Submit(ctx, userID, args[0], in)
		return err
	},
}

func init() {
	reviewCmd.AddCommand(listReviewCmd, postReviewCmd)

	postReviewCmd.Flags().IntP("rating", "r", 0, "rating from 1 to 5")
	postReviewCmd.Flags().StringP("text", "t", "", "review text")
	postReviewCmd.MarkFlagRequired("rating")
	postReviewCmd.MarkFlagRequired("text")
}
