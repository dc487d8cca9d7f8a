package command

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"novelhub/internal/models"
)

var (
	heading = color.New(color.Bold, color.FgCyan).SprintFunc()
	dim     = color.New(color.FgHiBlack).SprintFunc()
	accent  = color.New(color.FgYellow).SprintFunc()
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printNovels(w io.Writer, novels []models.Novel) {
	if len(novels) == 0 {
		fmt.Fprintln(w, "No novels found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, heading("ID")+"\t"+heading("TITLE")+"\t"+heading("AUTHOR")+"\t"+heading("GENRES")+"\t"+heading("VIEWS"))
	for _, n := range novels {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", n.NovelID, truncate(n.Title, 40), n.Author, strings.Join(n.Genre, ", "), n.Views)
	}
	tw.Flush()
}

func printNovel(w io.Writer, n *models.Novel) {
	fmt.Fprintln(w, heading(n.Title))
	fmt.Fprintf(w, "%s %s\n", dim("by"), n.Author)
	fmt.Fprintf(w, "%s %s\n", dim("ID:"), n.NovelID)
	fmt.Fprintf(w, "%s %s\n", dim("Genres:"), strings.Join(n.Genre, ", "))
	if n.Language != "" {
		fmt.Fprintf(w, "%s %s\n", dim("Language:"), n.Language)
	}
	if n.Status != "" {
		fmt.Fprintf(w, "%s %s\n", dim("Status:"), n.Status)
	}
	if n.LeadingCharacter != "" {
		fmt.Fprintf(w, "%s %s\n", dim("Lead:"), n.LeadingCharacter)
	}
	fmt.Fprintf(w, "%s %d\n", dim("Views:"), n.Views)
	if n.NovelCoverpage != nil {
		fmt.Fprintf(w, "%s %s\n", dim("Cover:"), *n.NovelCoverpage)
	}
	if n.CreatedAt != nil {
		fmt.Fprintf(w, "%s %s\n", dim("Published:"), formatDate(*n.CreatedAt))
	}
	if n.Story != "" {
		fmt.Fprintf(w, "\n%s\n", n.Story)
	}
}

func printChapters(w io.Writer, chapters []models.Chapter) {
	if len(chapters) == 0 {
		fmt.Fprintln(w, "No chapters yet.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, heading("#")+"\t"+heading("ID")+"\t"+heading("TITLE")+"\t"+heading("STATUS")+"\t"+heading("VIEWS"))
	for _, c := range chapters {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", c.ChapterNumber, c.ChapterID, truncate(c.Title, 40), c.Status, c.Views)
	}
	tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatDate(t time.Time) string {
	return t.Local().Format("Jan 2, 2006")
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return formatDate(t)
}
