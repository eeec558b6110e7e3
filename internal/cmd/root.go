// Package cmd provides CLI command implementations.
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/karmakrafts/modship/internal/cmdtypes"
	"github.com/karmakrafts/modship/internal/config"
	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/output"
	"github.com/karmakrafts/modship/internal/version"
)

// NewRootCmd creates the root command for the modship CLI.
func NewRootCmd() *cobra.Command {
	var (
		configFlag     string
		outputFlag     string
		verboseFlag    bool
		timestampsFlag bool
	)

	cfg := &cmdtypes.GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "modship",
		Short: "Multi-channel release orchestrator for Forge mods",
		Long: `modship publishes a compiled mod jar to the GitLab package registry,
Modrinth and CurseForge in one run.

A release resolves the version from the CI build number, renders the
metadata templates, checks which channels have credentials and publishes
to every eligible channel concurrently. Channels without credentials are
skipped; one channel failing never stops the others.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return initializeGlobals(c, cfg, globalFlags{
				config:     configFlag,
				output:     outputFlag,
				verbose:    verboseFlag,
				timestamps: timestampsFlag,
			})
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: MODSHIP_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Output format: table, json, yaml (env: MODSHIP_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(NewReleaseCmd(cfg))
	rootCmd.AddCommand(NewRenderCmd(cfg))
	rootCmd.AddCommand(NewResolveVersionCmd(cfg))
	rootCmd.AddCommand(NewChannelsCmd(cfg))
	rootCmd.AddCommand(NewConfigCmd(cfg))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

type globalFlags struct {
	config     string
	output     string
	verbose    bool
	timestamps bool
}

// initializeGlobals loads configuration and sets up logging.
func initializeGlobals(c *cobra.Command, cfg *cmdtypes.GlobalConfig, flags globalFlags) error {
	pathResult, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{FlagValue: flags.config})
	if err != nil {
		return oerrors.NewExitError(fmt.Errorf("resolving config path: %w", err), oerrors.ExitGeneralError)
	}

	loader := config.NewLoader()
	loaded, err := loader.Load(pathResult.ConfigPath)
	if err != nil {
		return oerrors.NewExitError(err, oerrors.ExitValidationError)
	}

	// Build LogConfig with precedence: flag > config > default(true)
	logCfg := output.LogConfig{Verbose: flags.verbose}
	if c.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(flags.timestamps)
	} else if loaded.Log.Timestamps != nil {
		logCfg.Timestamps = loaded.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	formatValue := config.ResolveOutputFormat(flags.output, loaded.Output.Format)
	format, ok := output.ParseFormat(formatValue.String())
	if !ok {
		return oerrors.NewExitError(
			fmt.Errorf("invalid output format %q (valid: %v)", formatValue.String(), output.ValidFormats()),
			oerrors.ExitValidationError,
		)
	}

	config.LogResolvedValues([]config.ResolvedValue{
		{
			Key:      "config",
			Value:    pathResult.ConfigPath,
			Source:   pathResult.Source,
			Shadowed: shadowed(pathResult.Shadowed),
		},
		formatValue,
	})

	paths, err := config.PathsFor(pathResult.ConfigPath)
	if err != nil {
		return oerrors.NewExitError(fmt.Errorf("resolving project directory: %w", err), oerrors.ExitGeneralError)
	}

	cfg.Config = loaded
	cfg.ConfigPath = pathResult.ConfigPath
	cfg.ConfigFound = loader.ConfigFileUsed() != ""
	cfg.ProjectDir = paths.ProjectDir
	cfg.OutputFormat = format
	cfg.Verbose = flags.verbose

	info := version.Get()
	output.Debug("modship started",
		"version", info.Version,
		"config", filepath.Base(cfg.ConfigPath),
		"found", cfg.ConfigFound,
		"project", cfg.ProjectDir,
	)

	return nil
}

func shadowed(m map[config.ConfigSource]string) map[config.ConfigSource]any {
	out := make(map[config.ConfigSource]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
