package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable prefix for modship configuration.
const envPrefix = "MODSHIP"

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
// Every key can be overridden from the environment, e.g.
// MODSHIP_PUBLISH_CONCURRENCY overrides publish.concurrency.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	return &Loader{v: v}
}

// setDefaults registers every key so AutomaticEnv can see it during
// Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project.modId", d.Project.ModID)
	v.SetDefault("project.name", d.Project.Name)
	v.SetDefault("project.description", d.Project.Description)
	v.SetDefault("project.license", d.Project.License)
	v.SetDefault("project.authors", d.Project.Authors)
	v.SetDefault("project.group", d.Project.Group)
	v.SetDefault("project.url", d.Project.URL)
	v.SetDefault("project.vendor", d.Project.Vendor)
	v.SetDefault("project.baseVersion", d.Project.BaseVersion)

	v.SetDefault("platform.minecraft", d.Platform.Minecraft)
	v.SetDefault("platform.forge", d.Platform.Forge)

	v.SetDefault("resources.roots", d.Resources.Roots)
	v.SetDefault("resources.templates", d.Resources.Templates)
	v.SetDefault("resources.staging", d.Resources.Staging)

	v.SetDefault("artifact.path", d.Artifact.Path)
	v.SetDefault("artifact.bundle", d.Artifact.Bundle)
	v.SetDefault("artifact.mixinConfigs", d.Artifact.MixinConfigs)

	v.SetDefault("maintainer.id", d.Maintainer.ID)
	v.SetDefault("maintainer.name", d.Maintainer.Name)
	v.SetDefault("maintainer.url", d.Maintainer.URL)

	v.SetDefault("channels.order", d.Channels.Order)
	v.SetDefault("channels.companion", d.Channels.Companion)
	v.SetDefault("channels.gitlab.apiUrl", d.Channels.GitLab.APIURL)
	v.SetDefault("channels.modrinth.endpoint", d.Channels.Modrinth.Endpoint)
	v.SetDefault("channels.modrinth.project", d.Channels.Modrinth.Project)
	v.SetDefault("channels.modrinth.loaders", d.Channels.Modrinth.Loaders)
	v.SetDefault("channels.curseforge.endpoint", d.Channels.CurseForge.Endpoint)
	v.SetDefault("channels.curseforge.projectId", d.Channels.CurseForge.ProjectID)
	v.SetDefault("channels.curseforge.javaVersions", d.Channels.CurseForge.JavaVersions)
	v.SetDefault("channels.curseforge.environments", d.Channels.CurseForge.Environments)
	v.SetDefault("channels.curseforge.loader", d.Channels.CurseForge.Loader)

	v.SetDefault("publish.timeout", d.Publish.Timeout)
	v.SetDefault("publish.concurrency", d.Publish.Concurrency)

	v.SetDefault("output.format", d.Output.Format)
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// A missing file is not an error; defaults and environment apply.
// Environment variables take precedence over file values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	l.v.SetConfigFile(expandedPath)
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the file read by the last Load, or "" when the
// file did not exist.
func (l *Loader) ConfigFileUsed() string {
	f := l.v.ConfigFileUsed()
	if f == "" {
		return ""
	}
	if _, err := os.Stat(f); err != nil {
		return ""
	}
	return f
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(configFile string) (bool, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return false, err
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
