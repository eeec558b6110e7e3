package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
project:
  modId: mymod
  name: My Mod
  license: LGPL-2.1
  authors: KitsuneAlex
  group: dev.karmakrafts
  url: https://git.karmakrafts.dev/kk/mc-projects/mymod
  baseVersion: 1.4.0
platform:
  minecraft: 1.20.1
  forge: 47.2.0
resources:
  roots:
    - src/main/resources
  templates:
    - META-INF/mods.toml
channels:
  order:
    - modrinth
    - curseforge
  companion: kotlin-for-forge
  curseforge:
    projectId: 123456
publish:
  timeout: 90s
  concurrency: 2
`

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, DefaultConfigFile)
		require.NoError(t, os.WriteFile(configFile, []byte(sampleConfig), 0o644))

		loader := NewLoader()
		cfg, err := loader.Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "mymod", cfg.Project.ModID)
		assert.Equal(t, "My Mod", cfg.Project.Name)
		assert.Equal(t, "dev.karmakrafts", cfg.Project.Group)
		assert.Equal(t, "1.4.0", cfg.Project.BaseVersion)
		assert.Equal(t, "1.20.1", cfg.Platform.Minecraft)
		assert.Equal(t, "47.2.0", cfg.Platform.Forge)
		assert.Equal(t, []string{"src/main/resources"}, cfg.Resources.Roots)
		assert.Equal(t, []string{"modrinth", "curseforge"}, cfg.Channels.Order)
		assert.Equal(t, int64(123456), cfg.Channels.CurseForge.ProjectID)
		assert.Equal(t, "kotlin-for-forge", cfg.Channels.Companion)
		assert.Equal(t, 90*time.Second, cfg.Publish.Timeout)
		assert.Equal(t, 2, cfg.Publish.Concurrency)
		assert.Equal(t, configFile, loader.ConfigFileUsed())
	})

	t.Run("fills unset keys from defaults", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, DefaultConfigFile)
		require.NoError(t, os.WriteFile(configFile, []byte(sampleConfig), 0o644))

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "Karma Krafts", cfg.Project.Vendor)
		assert.Equal(t, "build/modship/staging", cfg.Resources.Staging)
		assert.Equal(t, []string{"forge"}, cfg.Channels.Modrinth.Loaders)
		assert.Equal(t, "Forge", cfg.Channels.CurseForge.Loader)
		assert.Equal(t, "table", cfg.Output.Format)
	})

	t.Run("returns defaults for missing file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "nonexistent.yaml")

		loader := NewLoader()
		cfg, err := loader.Load(configFile)

		require.NoError(t, err)
		assert.Empty(t, cfg.Project.ModID)
		assert.Equal(t, DefaultConfig().Channels.Order, cfg.Channels.Order)
		assert.Equal(t, DefaultConfig().Publish.Timeout, cfg.Publish.Timeout)
		assert.Equal(t, DefaultCompanion, cfg.Channels.Companion)
		assert.Empty(t, loader.ConfigFileUsed())
	})

	t.Run("loads from environment variables", func(t *testing.T) {
		t.Setenv("MODSHIP_PROJECT_MODID", "envmod")
		t.Setenv("MODSHIP_PUBLISH_CONCURRENCY", "5")
		t.Setenv("MODSHIP_PUBLISH_TIMEOUT", "45s")
		t.Setenv("MODSHIP_CHANNELS_COMPANION", "kotlin-for-forge")

		tmpDir := t.TempDir()
		cfg, err := NewLoader().Load(filepath.Join(tmpDir, "nonexistent.yaml"))

		require.NoError(t, err)
		assert.Equal(t, "envmod", cfg.Project.ModID)
		assert.Equal(t, 5, cfg.Publish.Concurrency)
		assert.Equal(t, 45*time.Second, cfg.Publish.Timeout)
		assert.Equal(t, "kotlin-for-forge", cfg.Channels.Companion)
	})

	t.Run("env overrides file values", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, DefaultConfigFile)
		require.NoError(t, os.WriteFile(configFile, []byte(sampleConfig), 0o644))

		t.Setenv("MODSHIP_PLATFORM_MINECRAFT", "1.20.4")

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "1.20.4", cfg.Platform.Minecraft)
		assert.Equal(t, "mymod", cfg.Project.ModID)
	})

	t.Run("fails on malformed yaml", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, DefaultConfigFile)
		require.NoError(t, os.WriteFile(configFile, []byte("project: [unclosed"), 0o644))

		_, err := NewLoader().Load(configFile)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})
}

func TestConfigFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, DefaultConfigFile)

	exists, err := ConfigFileExists(configFile)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(configFile, []byte(sampleConfig), 0o644))

	exists, err = ConfigFileExists(configFile)
	require.NoError(t, err)
	assert.True(t, exists)
}
