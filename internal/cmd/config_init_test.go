package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karmakrafts/modship/internal/cmdtypes"
	"github.com/karmakrafts/modship/internal/config"
	oerrors "github.com/karmakrafts/modship/internal/errors"
)

func TestNewConfigInitCmd(t *testing.T) {
	c := NewConfigInitCmd(&cmdtypes.GlobalConfig{})

	assert.Equal(t, "init", c.Use)
	assert.NotEmpty(t, c.Short)
	assert.NotEmpty(t, c.Long)

	for _, name := range []string{"force", "scaffold", "mod-id", "name", "minecraft", "forge"} {
		assert.NotNil(t, c.Flags().Lookup(name), name)
	}
}

func TestConfigInit_WritesLoadableConfig(t *testing.T) {
	clearCI(t)
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultConfigFile)

	var out bytes.Buffer
	c := NewConfigInitCmd(&cmdtypes.GlobalConfig{ConfigPath: path})
	c.SetOut(&out)
	require.NoError(t, execute(c, "--mod-id", "mymod", "--name", "My Mod", "--minecraft", "1.20.1", "--forge", "47.2.0"))

	assert.Contains(t, out.String(), path)

	cfg, err := config.NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mymod", cfg.Project.ModID)
	assert.Equal(t, "My Mod", cfg.Project.Name)
	assert.Equal(t, "1.20.1", cfg.Platform.Minecraft)
	assert.Equal(t, 2*time.Minute, cfg.Publish.Timeout)
	assert.Equal(t, []string{"gitlab", "modrinth", "curseforge"}, cfg.Channels.Order)
}

func TestConfigInit_Scaffold(t *testing.T) {
	clearCI(t)
	dir := t.TempDir()

	var out bytes.Buffer
	c := NewConfigInitCmd(&cmdtypes.GlobalConfig{ConfigPath: filepath.Join(dir, config.DefaultConfigFile)})
	c.SetOut(&out)
	require.NoError(t, execute(c, "--scaffold"))

	assert.FileExists(t, filepath.Join(dir, "src", "main", "resources", "META-INF", "mods.toml"))
	assert.FileExists(t, filepath.Join(dir, "src", "main", "resources", "pack.mcmeta"))
	assert.Contains(t, out.String(), "Created templates")
}

func TestConfigInit_ExistingConfig(t *testing.T) {
	clearCI(t)
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("project: {}\n"), 0o644))

	t.Run("refuses without force", func(t *testing.T) {
		c := NewConfigInitCmd(&cmdtypes.GlobalConfig{ConfigPath: path})
		c.SetOut(&bytes.Buffer{})

		err := execute(c)
		require.Error(t, err)
		assert.ErrorIs(t, err, oerrors.ErrValidation)
		assert.Contains(t, err.Error(), "already exists")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "project: {}\n", string(content))
	})

	t.Run("overwrites with force", func(t *testing.T) {
		c := NewConfigInitCmd(&cmdtypes.GlobalConfig{ConfigPath: path})
		c.SetOut(&bytes.Buffer{})

		require.NoError(t, execute(c, "--force", "--mod-id", "other"))

		cfg, err := config.NewLoader().Load(path)
		require.NoError(t, err)
		assert.Equal(t, "other", cfg.Project.ModID)
	})
}
