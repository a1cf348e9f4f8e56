package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the connection to the API server",
		Long:  "Prints the configured server and probes its health endpoint.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Server:  %s\n", getServerURL())

	if key := getAPIKey(); key != "" {
		prefix := key
		if len(prefix) > 8 {
			prefix = prefix[:8]
		}
		fmt.Fprintf(out, "API Key: %s…\n", prefix)
	}

	status, err := newAPIClient().Health()
	if err != nil {
		fmt.Fprintf(out, "Status:  ✗ cannot reach server (%v)\n", err)
		return nil
	}
	fmt.Fprintf(out, "Status:  ✓ %s\n", status)
	return nil
}
