package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"

	"github.com/evcraddock/newsroom/internal/comment"
	"github.com/evcraddock/newsroom/internal/post"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// printCommentDetail prints a single comment in text format.
func printCommentDetail(w io.Writer, c *comment.Comment) error {
	lines := []string{
		fmt.Sprintf("Comment #%d\n", c.ID),
		fmt.Sprintf("  Author:   %s <%s>\n", c.Name, c.Email),
	}
	if c.URL != "" {
		lines = append(lines, fmt.Sprintf("  URL:      %s\n", c.URL))
	}
	lines = append(lines, fmt.Sprintf("  Status:   %s\n", c.Status))
	if c.Post != nil {
		lines = append(lines, fmt.Sprintf("  Post:     #%d %s (%d comments)\n", c.Post.ID, c.Post.Title, c.Post.CommentsCount))
	} else {
		lines = append(lines, fmt.Sprintf("  Post:     #%d\n", c.PostID))
	}
	if !c.UpdatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("  Updated:  %s\n", c.UpdatedAt.Format("2006-01-02 15:04")))
	}
	lines = append(lines, fmt.Sprintf("\n  %s\n", c.Message))

	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("writing comment: %w", err)
		}
	}
	return nil
}

// printCommentTable prints a list of comments as a formatted table.
func printCommentTable(w io.Writer, comments []*comment.Comment) error {
	if len(comments) == 0 {
		_, err := fmt.Fprintln(w, "No comments.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tCREATED\tAUTHOR\tSTATUS\tMESSAGE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "--\t-------\t------\t------\t-------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, c := range comments {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			c.ID, humanize.Time(c.CreatedAt), truncate(c.Name, 20), c.Status, truncate(c.Message, 50)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d comments\n", len(comments))
	return err
}

// printPostTable prints a list of posts as a formatted table.
func printPostTable(w io.Writer, posts []*post.Post) error {
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "No posts found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tTITLE\tSLUG\tCOMMENTS\tENABLED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "--\t-----\t----\t--------\t-------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range posts {
		enabled := "no"
		if p.Enabled {
			enabled = "yes"
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			p.ID, truncate(p.Title, 40), truncate(p.Slug, 30), p.CommentsCount, enabled); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d posts\n", len(posts))
	return err
}

// printValidationFailure lists rejected fields one per line.
func printValidationFailure(w io.Writer, vf *comment.ValidationFailure) error {
	if _, err := fmt.Fprintln(w, vf.Message+":"); err != nil {
		return err
	}
	for _, msg := range vf.Global {
		if _, err := fmt.Fprintf(w, "  %s\n", msg); err != nil {
			return err
		}
	}

	fields := make([]string, 0, len(vf.Errors))
	for field := range vf.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		for _, msg := range vf.Errors[field] {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", field, msg); err != nil {
				return err
			}
		}
	}
	return nil
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
