package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/karmakrafts/modship/internal/cmdtypes"
	"github.com/karmakrafts/modship/internal/config"
	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/templates"
)

type configInitFlags struct {
	force     bool
	scaffold  bool
	modID     string
	name      string
	minecraft string
	forge     string
}

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var flags configInitFlags

	c := &cobra.Command{
		Use:   "init",
		Short: "Write a default modship.yaml",
		Long: `Write a modship.yaml with default settings to the resolved config path.

With --scaffold the default metadata templates (META-INF/mods.toml and
pack.mcmeta) are also written into the last resource root.

Examples:
  # Create modship.yaml for a mod
  modship config init --mod-id mymod --name "My Mod" --minecraft 1.20.1 --forge 47.2.0

  # Also write template files, replacing existing ones
  modship config init --scaffold --force`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runConfigInit(c, cfg, &flags)
		},
	}

	c.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing files")
	c.Flags().BoolVar(&flags.scaffold, "scaffold", false, "Also write default metadata templates")
	c.Flags().StringVar(&flags.modID, "mod-id", "", "Mod identifier (project.modId)")
	c.Flags().StringVar(&flags.name, "name", "", "Display name (project.name)")
	c.Flags().StringVar(&flags.minecraft, "minecraft", "", "Minecraft version (platform.minecraft)")
	c.Flags().StringVar(&flags.forge, "forge", "", "Forge version (platform.forge)")

	return c
}

func runConfigInit(c *cobra.Command, cfg *cmdtypes.GlobalConfig, flags *configInitFlags) error {
	path := cfg.ConfigPath
	if path == "" {
		path = config.DefaultConfigFile
	}

	if _, err := os.Stat(path); err == nil && !flags.force {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: path,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrValidation,
		}
	}

	out := config.DefaultConfig()
	out.Project.ModID = flags.modID
	out.Project.Name = flags.name
	out.Platform.Minecraft = flags.minecraft
	out.Platform.Forge = flags.forge

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return oerrors.NewExitError(fmt.Errorf("creating config directory: %w", err), oerrors.ExitGeneralError)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return oerrors.NewExitError(fmt.Errorf("writing %s: %w", path, err), oerrors.ExitGeneralError)
	}

	w := c.OutOrStdout()
	fmt.Fprintf(w, "Configuration written to %s\n", path)

	if flags.scaffold {
		projectDir := filepath.Dir(path)
		root := out.Resources.Roots[len(out.Resources.Roots)-1]
		written, err := templates.Scaffold(osfs.New(projectDir), root, flags.force)
		if err != nil {
			return oerrors.NewExitError(fmt.Errorf("scaffolding templates: %w", err), oerrors.ExitValidationError)
		}
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Created templates:")
		for _, f := range written {
			fmt.Fprintf(w, "  %s\n", filepath.Join(root, f))
		}
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Next: fill in project.license, project.group and the channel settings")
	fmt.Fprintln(w, "Validate with: modship config vet")

	return nil
}
