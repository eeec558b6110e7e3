package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karmakrafts/modship/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show modship version information.

Displays:
  - modship version, commit, and build date
  - Go and CUE SDK versions`,
		RunE: func(c *cobra.Command, _ []string) error {
			info := version.Get()
			w := c.OutOrStdout()

			fmt.Fprintf(w, "modship version %s\n", info.Version)
			fmt.Fprintf(w, "  Commit:    %s\n", info.GitCommit)
			fmt.Fprintf(w, "  Built:     %s\n", info.BuildDate)
			fmt.Fprintf(w, "  Go:        %s\n", info.GoVersion)
			fmt.Fprintf(w, "  CUE SDK:   %s\n", info.CUESDKVersion)
			return nil
		},
	}
}
