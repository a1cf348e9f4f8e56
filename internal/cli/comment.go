package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/newsroom/internal/client"
	"github.com/evcraddock/newsroom/internal/comment"
	"github.com/evcraddock/newsroom/internal/post"
)

func newCommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Read, edit and delete comments",
		Long:  "Read, edit and delete comments through the API server, or add and list them directly in the database.",
	}

	cmd.AddCommand(
		newCommentShowCmd(),
		newCommentEditCmd(),
		newCommentDeleteCmd(),
		newCommentAddCmd(),
		newCommentListCmd(),
	)

	return cmd
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, raw)
	}
	return id, nil
}

func newCommentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("comment", args[0])
			if err != nil {
				return err
			}

			comm, err := newAPIClient().GetComment(id)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), comm)
			}
			return printCommentDetail(cmd.OutOrStdout(), comm)
		},
	}
}

var editFields = []string{"name", "email", "url", "message", "status"}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func newCommentEditCmd() *cobra.Command {
	var name, email, url, message, status string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a comment",
		Long:  "Fetch a comment, apply the given flags and submit the full result. Unset flags keep their current values.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("comment", args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !anyChanged(cmd, editFields...) {
				return fmt.Errorf("nothing to change: set at least one of --name, --email, --url, --message, --status")
			}

			c := newAPIClient()
			current, err := c.GetComment(id)
			if err != nil {
				return err
			}

			st := current.Status
			in := comment.Input{
				Name:    current.Name,
				Email:   current.Email,
				URL:     current.URL,
				Message: current.Message,
				Status:  &st,
			}
			if flags.Changed("name") {
				in.Name = name
			}
			if flags.Changed("email") {
				in.Email = email
			}
			if flags.Changed("url") {
				in.URL = url
			}
			if flags.Changed("message") {
				in.Message = message
			}
			if flags.Changed("status") {
				parsed, err := comment.ParseStatus(status)
				if err != nil {
					return err
				}
				in.Status = &parsed
			}

			updated, err := c.UpdateComment(id, in)
			if err != nil {
				var vf *comment.ValidationFailure
				if errors.As(err, &vf) && !isJSON() {
					if perr := printValidationFailure(cmd.ErrOrStderr(), vf); perr != nil {
						return perr
					}
				}
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), updated)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d updated.\n", updated.ID)
			return printCommentDetail(cmd.OutOrStdout(), updated)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "author name")
	cmd.Flags().StringVar(&email, "email", "", "author email")
	cmd.Flags().StringVar(&url, "url", "", "author website")
	cmd.Flags().StringVar(&message, "message", "", "comment text")
	cmd.Flags().StringVar(&status, "status", "", "moderation status (invalid|valid|moderate)")

	return cmd
}

func newCommentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("comment", args[0])
			if err != nil {
				return err
			}

			if err := newAPIClient().DeleteComment(id); err != nil {
				if client.IsNotFound(err) {
					return err
				}
				return fmt.Errorf("deleting comment %d: %w", id, err)
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"id": id, "deleted": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d deleted.\n", id)
			return nil
		},
	}
}

func newCommentAddCmd() *cobra.Command {
	var name, email, url, status string

	cmd := &cobra.Command{
		Use:   `add <post-id> "message"`,
		Short: "Add a comment to a post",
		Long:  "Add a comment to a post directly in the database. New comments wait for moderation unless --status says otherwise.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID("post", args[0])
			if err != nil {
				return err
			}

			st, err := comment.ParseStatus(status)
			if err != nil {
				return err
			}

			c := &comment.Comment{
				PostID:  postID,
				Name:    strings.TrimSpace(name),
				Email:   strings.TrimSpace(email),
				URL:     strings.TrimSpace(url),
				Message: strings.TrimSpace(strings.Join(args[1:], " ")),
				Status:  st,
			}
			if vf := comment.NewForm().Validate(c); vf != nil {
				return vf
			}

			database, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(database)

			ctx := cmd.Context()
			if _, err := post.NewRepository(database).GetByID(ctx, postID); err != nil {
				return err
			}

			repo := comment.NewRepository(database)
			if err := repo.Save(ctx, c); err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d added to post #%d (%s).\n", c.ID, c.PostID, c.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "author name")
	cmd.Flags().StringVar(&email, "email", "", "author email")
	cmd.Flags().StringVar(&url, "url", "", "author website")
	cmd.Flags().StringVar(&status, "status", "moderate", "moderation status (invalid|valid|moderate)")

	return cmd
}

func newCommentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <post-id>",
		Short: "List comments on a post",
		Long:  "List all comments on a post, newest first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID("post", args[0])
			if err != nil {
				return err
			}

			database, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(database)

			comments, err := comment.NewRepository(database).ListByPostID(cmd.Context(), postID)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), comments)
			}
			return printCommentTable(cmd.OutOrStdout(), comments)
		},
	}
}
