package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/karmakrafts/modship/internal/cmdtypes"
	"github.com/karmakrafts/modship/internal/cmdutil"
	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/output"
	"github.com/karmakrafts/modship/internal/release"
)

// NewReleaseCmd creates the release command.
func NewReleaseCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var flags cmdutil.ReleaseFlags

	c := &cobra.Command{
		Use:   "release",
		Short: "Publish the built artifact to every eligible channel",
		Long: `Run a full release.

Phases:
  1. Resolve the version from project.baseVersion and CI_PIPELINE_IID
  2. Render metadata templates from the resource roots into staging
  3. Check channel credentials and load (or bundle) the artifact
  4. Publish to every eligible channel concurrently

Channels and their credentials:
  gitlab      CI_API_V4_URL, CI_PROJECT_ID, CI_JOB_TOKEN
  modrinth    CI_MODRINTH_TOKEN
  curseforge  CI_CURSEFORGE_TOKEN

A channel without credentials is skipped. The command exits non-zero when
rendering fails or any eligible channel fails.

Examples:
  # Publish using modship.yaml in the current directory
  modship release

  # See what would be published without uploading
  modship release --dry-run

  # Publish a specific jar with a tighter per-channel timeout
  modship release --artifact build/libs/mymod.jar --timeout 30s`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runRelease(c, cfg, &flags, true)
		},
	}

	flags.AddTo(c)

	return c
}

func runRelease(c *cobra.Command, cfg *cmdtypes.GlobalConfig, flags *cmdutil.ReleaseFlags, publishing bool) error {
	opts, err := cmdutil.CoordinatorOptions(cfg, flags, publishing)
	if err != nil {
		return err
	}

	coordinator := release.New(opts)

	var report *release.Report
	title := "Publishing..."
	if !publishing {
		title = "Rendering..."
	}
	_ = output.RunWithSpinner(c.Context(), func(ctx context.Context) error {
		report = coordinator.Run(ctx)
		return nil
	}, output.WithTitle(title))

	if fatal := report.Fatal(); errors.Is(fatal, oerrors.ErrMissingVariable) {
		cmdutil.PrintRenderErrors(fatal)
	}

	if err := cmdutil.WriteReport(c.OutOrStdout(), cfg.OutputFormat, report); err != nil {
		return err
	}

	return cmdutil.ReportExitError(report)
}
