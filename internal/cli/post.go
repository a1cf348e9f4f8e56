package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/newsroom/internal/post"
)

func newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Manage posts",
	}
	cmd.AddCommand(newPostAddCmd(), newPostListCmd())
	return cmd
}

func newPostAddCmd() *cobra.Command {
	var p post.Post

	cmd := &cobra.Command{
		Use:   `add "title"`,
		Short: "Add a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Title = strings.Join(args, " ")

			database, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(database)

			created, err := post.NewRepository(database).Insert(cmd.Context(), &p)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Post #%d added (%s).\n", created.ID, created.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&p.Slug, "slug", "", "URL slug (default: derived from title)")
	cmd.Flags().StringVar(&p.Abstract, "abstract", "", "short summary")
	cmd.Flags().StringVar(&p.Content, "content", "", "post body")
	cmd.Flags().StringVar(&p.Author, "author", "", "author name")
	cmd.Flags().BoolVar(&p.Enabled, "enabled", true, "publish the post")

	return cmd
}

func newPostListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(database)

			posts, err := post.NewRepository(database).List(cmd.Context())
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), posts)
			}
			return printPostTable(cmd.OutOrStdout(), posts)
		},
	}
}
