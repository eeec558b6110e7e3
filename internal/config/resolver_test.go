package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	defaultPath := filepath.Join(wd, DefaultConfigFile)

	t.Run("flag precedence", func(t *testing.T) {
		t.Setenv(EnvConfig, "/env/modship.yaml")

		result, err := ResolveConfigPath(ResolveConfigPathOptions{FlagValue: "/flag/modship.yaml"})
		require.NoError(t, err)

		assert.Equal(t, "/flag/modship.yaml", result.ConfigPath)
		assert.Equal(t, SourceFlag, result.Source)
		assert.Equal(t, "/env/modship.yaml", result.Shadowed[SourceEnv])
		assert.Equal(t, defaultPath, result.Shadowed[SourceDefault])
	})

	t.Run("env precedence", func(t *testing.T) {
		t.Setenv(EnvConfig, "/env/modship.yaml")

		result, err := ResolveConfigPath(ResolveConfigPathOptions{})
		require.NoError(t, err)

		assert.Equal(t, "/env/modship.yaml", result.ConfigPath)
		assert.Equal(t, SourceEnv, result.Source)
		assert.NotContains(t, result.Shadowed, SourceFlag)
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvConfig, "")

		result, err := ResolveConfigPath(ResolveConfigPathOptions{})
		require.NoError(t, err)

		assert.Equal(t, defaultPath, result.ConfigPath)
		assert.Equal(t, SourceDefault, result.Source)
		assert.Empty(t, result.Shadowed)
	})
}

func TestResolveOutputFormat(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		env      string
		config   string
		expected string
		source   ConfigSource
		shadowed []ConfigSource
	}{
		{
			name:     "flag wins",
			flag:     "json",
			env:      "yaml",
			config:   "table",
			expected: "json",
			source:   SourceFlag,
			shadowed: []ConfigSource{SourceEnv, SourceConfig, SourceDefault},
		},
		{
			name:     "env over config",
			env:      "yaml",
			config:   "json",
			expected: "yaml",
			source:   SourceEnv,
			shadowed: []ConfigSource{SourceConfig, SourceDefault},
		},
		{
			name:     "config over default",
			config:   "json",
			expected: "json",
			source:   SourceConfig,
			shadowed: []ConfigSource{SourceDefault},
		},
		{
			name:     "default",
			expected: "table",
			source:   SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOutput, tt.env)

			result := ResolveOutputFormat(tt.flag, tt.config)

			assert.Equal(t, "output.format", result.Key)
			assert.Equal(t, tt.expected, result.String())
			assert.Equal(t, tt.source, result.Source)
			assert.Len(t, result.Shadowed, len(tt.shadowed))
			for _, s := range tt.shadowed {
				assert.Contains(t, result.Shadowed, s)
			}
		})
	}
}

func TestResolveTimeout(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(EnvTimeout, "30s")

		result := ResolveTimeout(ResolveTimeoutOptions{
			FlagValue:   10 * time.Second,
			ConfigValue: time.Minute,
		})

		assert.Equal(t, 10*time.Second, result.Duration())
		assert.Equal(t, SourceFlag, result.Source)
		assert.Equal(t, 30*time.Second, result.Shadowed[SourceEnv])
		assert.Equal(t, time.Minute, result.Shadowed[SourceConfig])
	})

	t.Run("env over config", func(t *testing.T) {
		t.Setenv(EnvTimeout, "30s")

		result := ResolveTimeout(ResolveTimeoutOptions{ConfigValue: time.Minute})

		assert.Equal(t, 30*time.Second, result.Duration())
		assert.Equal(t, SourceEnv, result.Source)
	})

	t.Run("invalid env ignored", func(t *testing.T) {
		t.Setenv(EnvTimeout, "soon")

		result := ResolveTimeout(ResolveTimeoutOptions{ConfigValue: time.Minute})

		assert.Equal(t, time.Minute, result.Duration())
		assert.Equal(t, SourceConfig, result.Source)
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvTimeout, "")

		result := ResolveTimeout(ResolveTimeoutOptions{})

		assert.Equal(t, DefaultConfig().Publish.Timeout, result.Duration())
		assert.Equal(t, SourceDefault, result.Source)
		assert.Empty(t, result.Shadowed)
	})
}

func TestLogResolvedValues(t *testing.T) {
	// Must not panic with empty or shadowed values.
	LogResolvedValues(nil)
	LogResolvedValues([]ResolvedValue{
		ResolveOutputFormat("json", "yaml"),
	})
}
