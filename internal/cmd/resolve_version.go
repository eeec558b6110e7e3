package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karmakrafts/modship/internal/buildinfo"
	"github.com/karmakrafts/modship/internal/cmdtypes"
	"github.com/karmakrafts/modship/internal/output"
)

// NewResolveVersionCmd creates the resolve-version command.
func NewResolveVersionCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-version",
		Short: "Print the version this pipeline would release",
		Long: `Print the resolved release version "<baseVersion>.<build>".

The build number is read from CI_PIPELINE_IID; a missing or malformed value
counts as 0. With -o json or -o yaml the full build identity is printed.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			id := buildinfo.FromEnv(cfg.Config.Project.BaseVersion, buildinfo.Options{
				CommitFallback: func() (string, error) {
					return buildinfo.HeadCommit(cfg.ProjectDir)
				},
			})

			if cfg.OutputFormat != output.FormatTable {
				return output.WriteStructured(c.OutOrStdout(), cfg.OutputFormat, struct {
					buildinfo.Identity `yaml:",inline"`
					Version            string `json:"version" yaml:"version"`
				}{id, id.Version()})
			}

			_, err := fmt.Fprintln(c.OutOrStdout(), id.Version())
			return err
		},
	}
}
