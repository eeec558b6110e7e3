// Package config provides configuration loading and management.
package config

import (
	"strings"
	"time"
)

// ProjectConfig describes the released mod.
type ProjectConfig struct {
	// ModID is the mod identifier, also used for the Modrinth slug.
	ModID string `mapstructure:"modId" json:"modId" yaml:"modId"`

	Name        string `mapstructure:"name" json:"name" yaml:"name"`
	Description string `mapstructure:"description" json:"description,omitempty" yaml:"description,omitempty"`
	License     string `mapstructure:"license" json:"license" yaml:"license"`
	Authors     string `mapstructure:"authors" json:"authors,omitempty" yaml:"authors,omitempty"`

	// Group is the Maven group id.
	Group string `mapstructure:"group" json:"group,omitempty" yaml:"group,omitempty"`

	// URL is the project home, used for POM scm and issue links.
	URL    string `mapstructure:"url" json:"url,omitempty" yaml:"url,omitempty"`
	Vendor string `mapstructure:"vendor" json:"vendor,omitempty" yaml:"vendor,omitempty"`

	// BaseVersion is the version the build number is appended to.
	BaseVersion string `mapstructure:"baseVersion" json:"baseVersion" yaml:"baseVersion"`
}

// PlatformConfig pins the host platform and loader versions.
type PlatformConfig struct {
	Minecraft string `mapstructure:"minecraft" json:"minecraft" yaml:"minecraft"`
	Forge     string `mapstructure:"forge" json:"forge" yaml:"forge"`
}

// ResourcesConfig controls metadata rendering.
type ResourcesConfig struct {
	// Roots are processed in order; later roots win.
	Roots []string `mapstructure:"roots" json:"roots" yaml:"roots"`

	// Templates are the relative paths expanded during rendering.
	Templates []string `mapstructure:"templates" json:"templates" yaml:"templates"`

	// Staging is the directory the rendered tree is written to.
	Staging string `mapstructure:"staging" json:"staging" yaml:"staging"`
}

// ArtifactConfig locates the compiled payload.
type ArtifactConfig struct {
	// Path is the jar produced by the compile step. It may contain
	// ${mod_id}, ${minecraft_version} and ${mod_version}.
	Path string `mapstructure:"path" json:"path,omitempty" yaml:"path,omitempty"`

	// Bundle, when set, is where the jar rewritten with manifest and staged
	// metadata is written. Same placeholders as Path.
	Bundle string `mapstructure:"bundle" json:"bundle,omitempty" yaml:"bundle,omitempty"`

	MixinConfigs []string `mapstructure:"mixinConfigs" json:"mixinConfigs,omitempty" yaml:"mixinConfigs,omitempty"`
}

// MaintainerConfig is the developer listed in the POM.
type MaintainerConfig struct {
	ID   string `mapstructure:"id" json:"id,omitempty" yaml:"id,omitempty"`
	Name string `mapstructure:"name" json:"name,omitempty" yaml:"name,omitempty"`
	URL  string `mapstructure:"url" json:"url,omitempty" yaml:"url,omitempty"`
}

// GitLabConfig configures the package registry channel.
type GitLabConfig struct {
	// APIURL overrides CI_API_V4_URL.
	APIURL string `mapstructure:"apiUrl" json:"apiUrl,omitempty" yaml:"apiUrl,omitempty"`
}

// ModrinthConfig configures the Modrinth channel.
type ModrinthConfig struct {
	Endpoint string `mapstructure:"endpoint" json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Project defaults to project.modId.
	Project string `mapstructure:"project" json:"project,omitempty" yaml:"project,omitempty"`

	Loaders []string `mapstructure:"loaders" json:"loaders,omitempty" yaml:"loaders,omitempty"`
}

// CurseForgeConfig configures the CurseForge channel.
type CurseForgeConfig struct {
	Endpoint     string   `mapstructure:"endpoint" json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	ProjectID    int64    `mapstructure:"projectId" json:"projectId,omitempty" yaml:"projectId,omitempty"`
	JavaVersions []string `mapstructure:"javaVersions" json:"javaVersions,omitempty" yaml:"javaVersions,omitempty"`
	Environments []string `mapstructure:"environments" json:"environments,omitempty" yaml:"environments,omitempty"`
	Loader       string   `mapstructure:"loader" json:"loader,omitempty" yaml:"loader,omitempty"`
}

// ChannelsConfig lists the configured channels and their settings.
type ChannelsConfig struct {
	// Order is the set of configured channels, in report order.
	Order []string `mapstructure:"order" json:"order" yaml:"order"`

	// Companion is the slug of the project both marketplaces list as the
	// single required dependency. The CurseForge relation uses it as is.
	Companion string `mapstructure:"companion" json:"companion" yaml:"companion"`

	GitLab     GitLabConfig     `mapstructure:"gitlab" json:"gitlab" yaml:"gitlab"`
	Modrinth   ModrinthConfig   `mapstructure:"modrinth" json:"modrinth" yaml:"modrinth"`
	CurseForge CurseForgeConfig `mapstructure:"curseforge" json:"curseforge" yaml:"curseforge"`
}

// PublishConfig bounds the publishing phase.
type PublishConfig struct {
	// Timeout applies to each channel separately.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`

	// Concurrency is the number of channels published at once.
	Concurrency int `mapstructure:"concurrency" json:"concurrency" yaml:"concurrency"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" json:"timestamps,omitempty" yaml:"timestamps,omitempty"`
}

// OutputConfig contains report output settings.
type OutputConfig struct {
	// Format is one of table, json, yaml.
	Format string `mapstructure:"format" json:"format,omitempty" yaml:"format,omitempty"`
}

// Config is the project configuration, loaded from modship.yaml and
// validated against the embedded CUE schema.
type Config struct {
	Project    ProjectConfig    `mapstructure:"project" json:"project" yaml:"project"`
	Platform   PlatformConfig   `mapstructure:"platform" json:"platform" yaml:"platform"`
	Resources  ResourcesConfig  `mapstructure:"resources" json:"resources" yaml:"resources"`
	Artifact   ArtifactConfig   `mapstructure:"artifact" json:"artifact" yaml:"artifact"`
	Maintainer MaintainerConfig `mapstructure:"maintainer" json:"maintainer" yaml:"maintainer"`
	Channels   ChannelsConfig   `mapstructure:"channels" json:"channels" yaml:"channels"`
	Publish    PublishConfig    `mapstructure:"publish" json:"publish" yaml:"publish"`
	Log        LogConfig        `mapstructure:"log" json:"log" yaml:"log"`
	Output     OutputConfig     `mapstructure:"output" json:"output" yaml:"output"`
}

// Channel names known to modship.
const (
	ChannelGitLab     = "gitlab"
	ChannelModrinth   = "modrinth"
	ChannelCurseForge = "curseforge"
)

// DefaultCompanion is the companion project the mods are built against.
const DefaultCompanion = "almost-unified"

// DefaultConfig returns a Config with all default values populated.
// Used by `modship config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Vendor:      "Karma Krafts",
			BaseVersion: "1.0.0",
		},
		Resources: ResourcesConfig{
			Roots:     []string{"src/generated/resources", "src/main/resources"},
			Templates: []string{"META-INF/mods.toml", "pack.mcmeta"},
			Staging:   "build/modship/staging",
		},
		Artifact: ArtifactConfig{
			Path: "build/libs/${mod_id}-${minecraft_version}-${mod_version}.jar",
		},
		Channels: ChannelsConfig{
			Order:     []string{ChannelGitLab, ChannelModrinth, ChannelCurseForge},
			Companion: DefaultCompanion,
			Modrinth: ModrinthConfig{
				Loaders: []string{"forge"},
			},
			CurseForge: CurseForgeConfig{
				JavaVersions: []string{"Java 17", "Java 18", "Java 19", "Java 20", "Java 21"},
				Environments: []string{"Client", "Server"},
				Loader:       "Forge",
			},
		},
		Publish: PublishConfig{
			Timeout:     2 * time.Minute,
			Concurrency: 3,
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// ExpandArtifactPath substitutes ${mod_id}, ${minecraft_version} and
// ${mod_version} in an artifact path template.
func (c *Config) ExpandArtifactPath(path, version string) string {
	return strings.NewReplacer(
		"${mod_id}", c.Project.ModID,
		"${minecraft_version}", c.Platform.Minecraft,
		"${mod_version}", version,
	).Replace(path)
}

// ModrinthProject returns the Modrinth project slug, defaulting to the mod id.
func (c *Config) ModrinthProject() string {
	if c.Channels.Modrinth.Project != "" {
		return c.Channels.Modrinth.Project
	}
	return c.Project.ModID
}
