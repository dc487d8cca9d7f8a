package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"novelhub/internal/models"
	"novelhub/internal/service"
)

var novelCmd = &cobra.Command{
	Use:   "novel",
	Short: "Browse and publish novels",
}

var listNovelCmd = &cobra.Command{
	Use:   "list",
	Short: "List novels, most viewed first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		genre, _ := cmd.Flags().GetString("genre")
		order, _ := cmd.Flags().GetString("order")
		asc, _ := cmd.Flags().GetBool("asc")

		res, err := cli.services.Novels.List(ctx, service.ListParams{Page: page, Limit: limit, Genre: genre, OrderBy: order, Ascending: asc})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printNovels(out, res.Novels)
		fmt.Fprintln(out, dim(fmt.Sprintf("\nPage %d of %d (%d novels)", res.Page, res.TotalPages, res.Total)))
		return nil
	},
}

var newNovelCmd = &cobra.Command{
	Use:   "new",
	Short: "Recently published novels",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")
		res, err := cli.services.Novels.NewArrivals(ctx, page)
		if err != nil {
			return err
		}
		printNovels(cmd.OutOrStdout(), res.Novels)
		if res.HasMore {
			fmt.Fprintln(cmd.OutOrStdout(), dim(fmt.Sprintf("\nMore on page %d", res.Page+1)))
		}
		return nil
	},
}

var exploreNovelCmd = &cobra.Command{
	Use:   "explore",
	Short: "Top novels, optionally within a genre",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		genre, _ := cmd.Flags().GetString("genre")
		novels, err := cli.services.Novels.Explore(ctx, genre)
		if err != nil {
			return err
		}
		printNovels(cmd.OutOrStdout(), novels)
		return nil
	},
}

var rankingNovelCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Rank novels by votes or views",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		genre, _ := cmd.Flags().GetString("genre")
		sortBy, _ := cmd.Flags().GetString("sort")
		timeRange, _ := cmd.Flags().GetString("range")

		ranked, err := cli.services.Ranking.Ranking(ctx, genre, sortBy, timeRange)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(ranked) == 0 {
			fmt.Fprintln(out, "No novels found.")
			return nil
		}
		tw := newTable(out)
		fmt.Fprintln(tw, heading("RANK")+"\t"+heading("TITLE")+"\t"+heading("AUTHOR")+"\t"+heading("VOTES")+"\t"+heading("VIEWS"))
		for i, n := range ranked {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", i+1, truncate(n.Title, 40), n.Author, n.VoteScore, n.Views)
		}
		return tw.Flush()
	},
}

var searchNovelCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over titles, authors and stories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")
		genres, _ := cmd.Flags().GetStringSlice("genre")
		page, _ := cmd.Flags().GetInt("page")
		quick, _ := cmd.Flags().GetBool("quick")

		var novels []models.Novel
		if quick {
			novels, err = cli.services.Novels.QuickSearch(ctx, query)
		} else {
			novels, err = cli.services.Novels.Search(ctx, query, genres, page, 0)
		}
		if err != nil {
			return err
		}
		printNovels(cmd.OutOrStdout(), novels)
		return nil
	},
}

var showNovelCmd = &cobra.Command{
	Use:   "show [novel-id]",
	Short: "Show a novel with its chapters and votes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		id := args[0]
		novel, err := cli.services.Novels.Get(ctx, id)
		if err != nil {
			return err
		}
		_ = cli.services.Novels.IncrementViews(ctx, id)

		out := cmd.OutOrStdout()
		printNovel(out, novel)

		userID := cli.session.UserID()
		if state, err := cli.services.Votes.State(ctx, userID, id); err == nil {
			mine := ""
			if state.UserVote != "" {
				mine = dim(" (you voted " + state.UserVote + ")")
			}
			fmt.Fprintf(out, "\n%s ▲ %d  ▼ %d%s\n", dim("Votes:"), state.Upvotes, state.Downvotes, mine)
		}
		if userID != "" {
			if p, err := cli.services.Progress.ContinueReading(ctx, userID, id); err == nil && p != nil {
				fmt.Fprintf(out, "%s chapter %d, %s\n", accent("Continue reading:"), p.ChapterNumber, timeAgo(p.LastreadAt))
			}
		}

		chapters, err := cli.services.Chapters.ListByNovel(ctx, id, true)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		printChapters(out, chapters)
		return nil
	},
}

func novelInputFromFlags(cmd *cobra.Command) service.NovelInput {
	in := service.NovelInput{}
	in.Title, _ = cmd.Flags().GetString("title")
	in.Author, _ = cmd.Flags().GetString("author")
	in.Genres, _ = cmd.Flags().GetStringSlice("genre")
	in.Story, _ = cmd.Flags().GetString("story")
	in.Language, _ = cmd.Flags().GetString("language")
	in.Status, _ = cmd.Flags().GetString("status")
	in.LeadingCharacter, _ = cmd.Flags().GetString("lead")
	return in
}

// mergeNovel starts from the stored novel and overrides what was passed.
func mergeNovel(cmd *cobra.Command, n *models.Novel) service.NovelInput {
	in := service.NovelInput{
		Title:            n.Title,
		Author:           n.Author,
		Genres:           n.Genre,
		Story:            n.Story,
		Language:         n.Language,
		Status:           n.Status,
		LeadingCharacter: n.LeadingCharacter,
		CoverURL:         n.NovelCoverpage,
	}
	set := novelInputFromFlags(cmd)
	flags := cmd.Flags()
	if flags.Changed("title") {
		in.Title = set.Title
	}
	if flags.Changed("author") {
		in.Author = set.Author
	}
	if flags.Changed("genre") {
		in.Genres = set.Genres
	}
	if flags.Changed("story") {
		in.Story = set.Story
	}
	if flags.Changed("language") {
		in.Language = set.Language
	}
	if flags.Changed("status") {
		in.Status = set.Status
	}
	if flags.Changed("lead") {
		in.LeadingCharacter = set.LeadingCharacter
	}
	return in
}

func coverFromFlags(cmd *cobra.Command) (*service.Upload, func(), error) {
	path, _ := cmd.Flags().GetString("cover")
	if path == "" {
		return nil, func() {}, nil
	}
	up, f, err := openUpload(path)
	if err != nil {
		return nil, nil, err
	}
	return up, func() { f.Close() }, nil
}

var createNovelCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new novel",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		cover, done, err := coverFromFlags(cmd)
		if err != nil {
			return err
		}
		defer done()

		novel, err := cli.services.Novels.Create(ctx, userID, novelInputFromFlags(cmd), cover)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", dim("Novel ID:"), novel.NovelID)
		return nil
	},
}

var updateNovelCmd = &cobra.Command{
	Use:   "update [novel-id]",
	Short: "Edit one of your novels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		novel, err := ownNovel(cmd, userID, args[0])
		if err != nil {
			return err
		}
		cover, done, err := coverFromFlags(cmd)
		if err != nil {
			return err
		}
		defer done()

		_, err = cli.services.Novels.Update(ctx, novel.NovelID, mergeNovel(cmd, novel), cover)
		return err
	},
}

var deleteNovelCmd = &cobra.Command{
	Use:   "delete [novel-id]",
	Short: "Delete one of your novels and all its chapters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		novel, err := ownNovel(cmd, userID, args[0])
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("deleting %q removes all its chapters; pass --yes to confirm", novel.Title)
		}
		return cli.services.Novels.Delete(ctx, novel.NovelID)
	},
}

func ownNovel(cmd *cobra.Command, userID, id string) (*models.Novel, error) {
	ctx, err := cli.context(cmd.Context())
	if err != nil {
		return nil, err
	}
	novel, err := cli.services.Novels.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if novel.UploadBy != userID {
		return nil, fmt.Errorf("you can only change your own novels")
	}
	return novel, nil
}

var dashboardCmd = &cobra.Command{
	Use:   "mine",
	Short: "Your novels with their chapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		novels, err := cli.services.Novels.Dashboard(ctx, userID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(novels) == 0 {
			fmt.Fprintln(out, "You have not published any novels yet.")
			return nil
		}
		for _, n := range novels {
			fmt.Fprintf(out, "%s %s\n", heading(n.Title), dim(n.NovelID))
			printChapters(out, n.Chapters)
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	novelCmd.AddCommand(listNovelCmd, newNovelCmd, exploreNovelCmd, rankingNovelCmd, searchNovelCmd,
		showNovelCmd, createNovelCmd, updateNovelCmd, deleteNovelCmd, dashboardCmd)

	listNovelCmd.Flags().Int("page", 1, "page number")
	listNovelCmd.Flags().Int("limit", service.DefaultPageSize, "novels per page")
	listNovelCmd.Flags().String("genre", models.AllGenres, "genre filter")
	listNovelCmd.Flags().String("order", "views", "order by views, created_at, updated_at or title")
	listNovelCmd.Flags().Bool("asc", false, "ascending order")

	newNovelCmd.Flags().Int("page", 1, "page number")
	exploreNovelCmd.Flags().String("genre", models.AllGenres, "genre filter")

	rankingNovelCmd.Flags().String("genre", models.AllGenres, "genre filter")
	rankingNovelCmd.Flags().String("sort", service.RankByVotes, "rank by votes or views")
	rankingNovelCmd.Flags().String("range", service.RangeAll, "all, yearly, monthly, weekly or daily")

	searchNovelCmd.Flags().StringSlice("genre", nil, "restrict to genres")
	searchNovelCmd.Flags().Int("page", 1, "page number")
	searchNovelCmd.Flags().Bool("quick", false, "title/author match only")

	for _, c := range []*cobra.Command{createNovelCmd, updateNovelCmd} {
		c.Flags().String("title", "", "title")
		c.Flags().String("author", "", "author name")
		c.Flags().StringSlice("genre", nil, "up to 3 genres")
		c.Flags().String("story", "", "synopsis")
		c.Flags().String("language", models.DefaultLanguage, "language")
		c.Flags().String("status", models.StatusOngoing, "ongoing or completed")
		c.Flags().String("lead", models.LeadMale, "leading character: male or female")
		c.Flags().String("cover", "", "cover image file (jpeg, png or webp)")
	}
	deleteNovelCmd.Flags().Bool("yes", false, "confirm deletion")
}
