package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karmakrafts/modship/internal/cmdtypes"
	"github.com/karmakrafts/modship/internal/config"
	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate modship.yaml against the embedded schema.

Checks performed:
  1. Config file exists at resolved path
  2. Values satisfy the schema (identifiers, URLs, channel names, bounds)
  3. Channel-specific requirements (curseforge projectId, gitlab group)

Version fields that are not semantic versions produce warnings only.

The config path is resolved using precedence:
  --config flag > MODSHIP_CONFIG env > ./modship.yaml`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runConfigVet(c, cfg)
		},
	}
}

func runConfigVet(c *cobra.Command, cfg *cmdtypes.GlobalConfig) error {
	if !cfg.ConfigFound {
		return &oerrors.DetailError{
			Type:     "not found",
			Message:  "configuration file not found",
			Location: cfg.ConfigPath,
			Hint:     "Run 'modship config init' to create a default configuration",
			Cause:    oerrors.ErrNotFound,
		}
	}

	validator, err := config.NewValidator()
	if err != nil {
		return fmt.Errorf("creating validator: %w", err)
	}

	if err := validator.Validate(cfg.Config); err != nil {
		var validationErrs config.ValidationErrors
		if errors.As(err, &validationErrs) {
			fmt.Fprintln(c.ErrOrStderr(), "Error: config validation failed")
			fmt.Fprintf(c.ErrOrStderr(), "  File: %s\n\n", cfg.ConfigPath)
			for _, e := range validationErrs {
				fmt.Fprintf(c.ErrOrStderr(), "  %s: %s\n", e.Field, e.Message)
			}
			return &oerrors.ExitError{Err: err, Code: oerrors.ExitValidationError, Printed: true}
		}
		return fmt.Errorf("validating config: %w", err)
	}

	for _, w := range config.Lint(cfg.Config) {
		output.Warn(w)
	}

	fmt.Fprintf(c.OutOrStdout(), "Config file is valid: %s\n", cfg.ConfigPath)
	return nil
}
