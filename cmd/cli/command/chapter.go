package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"novelhub/internal/models"
	"novelhub/internal/service"
)

var chapterCmd = &cobra.Command{
	Use:   "chapter",
	Short: "Read and write chapters",
}

var listChapterCmd = &cobra.Command{
	Use:   "list [novel-id]",
	Short: "List the chapters of a novel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		desc, _ := cmd.Flags().GetBool("desc")
		chapters, err := cli.services.Chapters.ListByNovel(ctx, args[0], !desc)
		if err != nil {
			return err
		}
		printChapters(cmd.OutOrStdout(), chapters)
		return nil
	},
}

var readChapterCmd = &cobra.Command{
	Use:   "read [chapter-id]",
	Short: "Read a chapter; signed-in readers get their progress saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.context(cmd.Context())
		if err != nil {
			return err
		}
		page, err := cli.services.Chapters.Read(ctx, cli.session.UserID(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		ch := page.Chapter
		fmt.Fprintf(out, "%s\n\n", heading(fmt.Sprintf("Chapter %d: %s", ch.ChapterNumber, ch.Title)))
		fmt.Fprintln(out, ch.Content)
		fmt.Fprintln(out)
		if prev := page.Navigation.Previous; prev != nil {
			fmt.Fprintf(out, "%s %d %s\n", dim("← previous:"), prev.ChapterNumber, dim(prev.ChapterID))
		}
		if next := page.Navigation.Next; next != nil {
			fmt.Fprintf(out, "%s %d %s\n", dim("next →"), next.ChapterNumber, dim(next.ChapterID))
		}
		return nil
	},
}

// chapterContent reads --file when set, else --content.
func chapterContent(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read chapter file: %w", err)
		}
		return string(b), nil
	}
	content, _ := cmd.Flags().GetString("content")
	return content, nil
}

var writeChapterCmd = &cobra.Command{
	Use:   "write [novel-id]",
	Short: "Add a chapter to one of your novels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		if _, err := ownNovel(cmd, userID, args[0]); err != nil {
			return err
		}
		content, err := chapterContent(cmd)
		if err != nil {
			return err
		}
		in := service.ChapterInput{Content: content}
		in.Title, _ = cmd.Flags().GetString("title")
		in.ChapterNumber, _ = cmd.Flags().GetInt("number")
		in.Status, _ = cmd.Flags().GetString("status")

		ch, err := cli.services.Chapters.Create(ctx, userID, args[0], in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s\n", dim("Chapter"), ch.ChapterNumber, dim(ch.ChapterID))
		return nil
	},
}

var updateChapterCmd = &cobra.Command{
	Use:   "update [chapter-id]",
	Short: "Edit one of your chapters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		ch, err := ownChapter(cmd, userID, args[0])
		if err != nil {
			return err
		}
		in := service.ChapterInput{
			Title:         ch.Title,
			Content:       ch.Content,
			ChapterNumber: ch.ChapterNumber,
			Status:        ch.Status,
		}
		flags := cmd.Flags()
		if flags.Changed("title") {
			in.Title, _ = flags.GetString("title")
		}
		if flags.Changed("number") {
			in.ChapterNumber, _ = flags.GetInt("number")
		}
		if flags.Changed("status") {
			in.Status, _ = flags.GetString("status")
		}
		if flags.Changed("content") || flags.Changed("file") {
			if in.Content, err = chapterContent(cmd); err != nil {
				return err
			}
		}
		_, err = cli.services.Chapters.Update(ctx, ch.ChapterID, in)
		return err
	},
}

var deleteChapterCmd = &cobra.Command{
	Use:   "delete [chapter-id]",
	Short: "Delete one of your chapters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, ctx, err := cli.user(cmd.Context())
		if err != nil {
			return err
		}
		ch, err := ownChapter(cmd, userID, args[0])
		if err != nil {
			return err
		}
		return cli.services.Chapters.Delete(ctx, ch.ChapterID)
	},
}

func ownChapter(cmd *cobra.Command, userID, id string) (*models.Chapter, error) {
	ctx, err := cli.context(cmd.Context())
	if err != nil {
		return nil, err
	}
	ch, err := cli.services.Chapters.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownNovel(cmd, userID, ch.NovelID); err != nil {
		return nil, err
	}
	return ch, nil
}

func init() {
	chapterCmd.AddCommand(listChapterCmd, readChapterCmd, writeChapterCmd, updateChapterCmd, deleteChapterCmd)

	listChapterCmd.Flags().Bool("desc", false, "newest chapter first")

	for _, c := range []*cobra.Command{writeChapterCmd, updateChapterCmd} {
		c.Flags().String("title", "", "chapter title")
		c.Flags().String("content", "", "chapter text")
		c.Flags().String("file", "", "read chapter text from a file")
		c.Flags().Int("number", 0, "chapter number (default: next free number)")
		c.Flags().String("status", models.ChapterPublished, "draft or published")
	}
}
