package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/karmakrafts/modship/internal/cmdtypes"
	"github.com/karmakrafts/modship/internal/config"
	"github.com/karmakrafts/modship/internal/output"
	"github.com/karmakrafts/modship/internal/testutil"
)

const modsToml = `modLoader="javafml"
loaderVersion="${loader_version_range}"
license="${mod_license}"

[[mods]]
modId="${mod_id}"
version="${mod_version}"
`

// clearCI blanks every CI variable modship reads so the host environment
// cannot make channels eligible.
func clearCI(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CI_PIPELINE_IID", "CI_PROJECT_URL", "CI_COMMIT_SHA", "CI_JOB_TOKEN",
		"CI_API_V4_URL", "CI_PROJECT_ID", "CI_MODRINTH_TOKEN", "CI_CURSEFORGE_TOKEN",
		"MODSHIP_CONFIG", "MODSHIP_OUTPUT", "MODSHIP_TIMEOUT",
	} {
		t.Setenv(name, "")
	}
}

// newProject lays out a mod project in a temp dir with a resource root,
// a templated mods.toml and a compiled jar for version 1.4.0.57.
func newProject(t *testing.T) *cmdtypes.GlobalConfig {
	t.Helper()
	clearCI(t)
	t.Setenv("CI_PIPELINE_IID", "57")
	t.Setenv("CI_COMMIT_SHA", "0123456789abcdef")
	t.Setenv("CI_PROJECT_URL", "https://git.karmakrafts.dev/kk/mc-projects/mymod")

	dir := t.TempDir()
	testutil.WriteFile(t, dir, "src/main/resources/META-INF/mods.toml", modsToml)
	testutil.WriteFile(t, dir, "src/main/resources/pack.mcmeta", `{"pack":{"pack_format":15}}`)

	jar := filepath.Join(dir, "build", "libs", "mymod-1.20.1-1.4.0.57.jar")
	require.NoError(t, os.MkdirAll(filepath.Dir(jar), 0o755))
	require.NoError(t, os.WriteFile(jar, testutil.JarBytes(t, [2]string{"dev/karmakrafts/mymod/MyMod.class", "bytecode"}), 0o644))

	cfg := config.DefaultConfig()
	cfg.Project.ModID = "mymod"
	cfg.Project.Name = "My Mod"
	cfg.Project.License = "LGPL-2.1"
	cfg.Project.Group = "dev.karmakrafts"
	cfg.Project.URL = "https://git.karmakrafts.dev/kk/mc-projects/mymod"
	cfg.Project.BaseVersion = "1.4.0"
	cfg.Platform.Minecraft = "1.20.1"
	cfg.Platform.Forge = "47.2.0"
	cfg.Maintainer = config.MaintainerConfig{ID: "kitsunealex", Name: "KitsuneAlex"}
	cfg.Channels.CurseForge.ProjectID = 123456

	return &cmdtypes.GlobalConfig{
		Config:       cfg,
		ConfigPath:   filepath.Join(dir, config.DefaultConfigFile),
		ConfigFound:  true,
		ProjectDir:   dir,
		OutputFormat: output.FormatTable,
	}
}

// execute runs c with exactly args. Cobra falls back to os.Args when no
// args were set, which would hand it the test binary's flags.
func execute(c *cobra.Command, args ...string) error {
	c.SetArgs(append([]string{}, args...))
	return c.Execute()
}
