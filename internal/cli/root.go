// Package cli defines the cobra command tree for newsroom.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/newsroom/internal/client"
	"github.com/evcraddock/newsroom/internal/db"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nr",
		Short:         "Moderate comments on newsroom posts",
		Long:          "A tool to serve and moderate reader comments. Run the comment API, or read, edit and delete comments through it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.config/nr/news.db)")

	root.AddCommand(
		newCommentCmd(),
		newPostCmd(),
		newServeCmd(),
		newStatusCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

// dbPath returns the --db flag or the default path.
func dbPath() (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	return db.DefaultPath()
}

// openDB opens the SQLite database using the --db flag or default path.
func openDB() (*sql.DB, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the comment API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getAPIKey())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
