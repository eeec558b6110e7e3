package config

import (
	"os"
	"time"

	"github.com/karmakrafts/modship/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// Environment variables read by the resolver. These are distinct from the
// MODSHIP_<SECTION>_<KEY> overrides applied by the Loader.
const (
	EnvOutput  = "MODSHIP_OUTPUT"
	EnvTimeout = "MODSHIP_TIMEOUT"
)

// ResolvedValue tracks a configuration value and its source for logging.
type ResolvedValue struct {
	Key      string
	Value    any
	Source   ConfigSource
	Shadowed map[ConfigSource]any
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

// ResolveConfigPathResult contains the resolved config path and its source.
type ResolveConfigPathResult struct {
	// ConfigPath is the resolved config file path.
	ConfigPath string
	// Source indicates where the config path came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) MODSHIP_CONFIG env, (3) ./modship.yaml
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolveConfigPathResult, error) {
	result := ResolveConfigPathResult{
		Shadowed: make(map[ConfigSource]string),
	}

	envValue := os.Getenv(EnvConfig)

	paths, err := DefaultPaths()
	if err != nil {
		return result, err
	}
	defaultPath := paths.ConfigFile

	switch {
	case opts.FlagValue != "":
		result.ConfigPath = opts.FlagValue
		result.Source = SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		result.Shadowed[SourceDefault] = defaultPath
	case envValue != "":
		result.ConfigPath = envValue
		result.Source = SourceEnv
		result.Shadowed[SourceDefault] = defaultPath
	default:
		result.ConfigPath = defaultPath
		result.Source = SourceDefault
	}

	return result, nil
}

// ResolveStringOptions contains the candidates for a string setting.
type ResolveStringOptions struct {
	Key         string
	FlagValue   string
	EnvVar      string
	ConfigValue string
	Default     string
}

// ResolveString resolves a string setting using precedence:
// (1) flag, (2) env, (3) config file, (4) default.
func ResolveString(opts ResolveStringOptions) ResolvedValue {
	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, opts.FlagValue},
		{SourceEnv, lookupEnv(opts.EnvVar)},
		{SourceConfig, opts.ConfigValue},
		{SourceDefault, opts.Default},
	}

	result := ResolvedValue{
		Key:      opts.Key,
		Shadowed: make(map[ConfigSource]any),
	}
	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if result.Source == "" {
			result.Value = c.value
			result.Source = c.source
			continue
		}
		result.Shadowed[c.source] = c.value
	}
	if result.Source == "" {
		result.Value = ""
		result.Source = SourceDefault
	}
	return result
}

// ResolveOutputFormat resolves the report format:
// (1) --output flag, (2) MODSHIP_OUTPUT env, (3) output.format, (4) table.
func ResolveOutputFormat(flagValue, configValue string) ResolvedValue {
	return ResolveString(ResolveStringOptions{
		Key:         "output.format",
		FlagValue:   flagValue,
		EnvVar:      EnvOutput,
		ConfigValue: configValue,
		Default:     DefaultConfig().Output.Format,
	})
}

// ResolveTimeoutOptions contains the candidates for the publish timeout.
type ResolveTimeoutOptions struct {
	// FlagValue is the --timeout flag value (zero if not set).
	FlagValue time.Duration
	// ConfigValue is publish.timeout (zero if not set).
	ConfigValue time.Duration
}

// ResolveTimeout resolves the per-channel publish timeout:
// (1) --timeout flag, (2) MODSHIP_TIMEOUT env, (3) publish.timeout, (4) default.
// An unparsable env value is ignored.
func ResolveTimeout(opts ResolveTimeoutOptions) ResolvedValue {
	var envValue time.Duration
	if raw := lookupEnv(EnvTimeout); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			envValue = d
		} else {
			output.Warn("ignoring invalid timeout", "env", EnvTimeout, "value", raw)
		}
	}

	candidates := []struct {
		source ConfigSource
		value  time.Duration
	}{
		{SourceFlag, opts.FlagValue},
		{SourceEnv, envValue},
		{SourceConfig, opts.ConfigValue},
		{SourceDefault, DefaultConfig().Publish.Timeout},
	}

	result := ResolvedValue{
		Key:      "publish.timeout",
		Shadowed: make(map[ConfigSource]any),
	}
	for _, c := range candidates {
		if c.value <= 0 {
			continue
		}
		if result.Source == "" {
			result.Value = c.value
			result.Source = c.source
			continue
		}
		result.Shadowed[c.source] = c.value
	}
	return result
}

// Duration returns the value as a time.Duration, or zero.
func (r ResolvedValue) Duration() time.Duration {
	d, _ := r.Value.(time.Duration)
	return d
}

// String returns the value as a string, or "".
func (r ResolvedValue) String() string {
	s, _ := r.Value.(string)
	return s
}

func lookupEnv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
