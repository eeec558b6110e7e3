package cmd

import (
	"github.com/spf13/cobra"

	"github.com/karmakrafts/modship/internal/cmdtypes"
	"github.com/karmakrafts/modship/internal/cmdutil"
)

// NewRenderCmd creates the render command.
func NewRenderCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render metadata templates into the staging directory",
		Long: `Resolve the version and render metadata templates without publishing.

Every file of the resource roots is copied into resources.staging, later
roots replacing earlier ones. Files listed in resources.templates have their
${variable} placeholders expanded. A template referencing an unknown
variable fails the command; all such failures are reported together.

Examples:
  # Render into the configured staging directory
  modship render

  # Show the rendered file list as JSON
  modship render -o json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runRelease(c, cfg, &cmdutil.ReleaseFlags{}, false)
		},
	}
}
