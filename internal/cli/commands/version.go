package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/multiquery/pkg/adapter"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display multiquery version and the database backends compiled in.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "multiquery v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Backends: %s\n", strings.Join(adapter.ListAdapters(), ", "))
		},
	}
}
