package cmdutil

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/karmakrafts/modship/internal/buildinfo"
	"github.com/karmakrafts/modship/internal/cmdtypes"
	"github.com/karmakrafts/modship/internal/config"
	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/output"
	"github.com/karmakrafts/modship/internal/publish"
	"github.com/karmakrafts/modship/internal/release"
)

// ProjectFrom builds the release project description from config.
func ProjectFrom(cfg *config.Config) publish.Project {
	return publish.Project{
		ModID:            cfg.Project.ModID,
		ModName:          cfg.Project.Name,
		Description:      cfg.Project.Description,
		License:          cfg.Project.License,
		Authors:          cfg.Project.Authors,
		Group:            cfg.Project.Group,
		URL:              cfg.Project.URL,
		Vendor:           cfg.Project.Vendor,
		MinecraftVersion: cfg.Platform.Minecraft,
		ForgeVersion:     cfg.Platform.Forge,
		Developer: publish.Developer{
			ID:   cfg.Maintainer.ID,
			Name: cfg.Maintainer.Name,
			URL:  cfg.Maintainer.URL,
		},
		Companion: cfg.Channels.Companion,
	}
}

// Channels returns the configured channels in configured order.
// An unknown channel name is a validation error.
func Channels(cfg *config.Config, client *http.Client) ([]release.ChannelSpec, error) {
	specs := make([]release.ChannelSpec, 0, len(cfg.Channels.Order))
	for _, name := range cfg.Channels.Order {
		switch name {
		case config.ChannelGitLab:
			specs = append(specs, release.MavenChannel(release.MavenSettings{
				APIURL: cfg.Channels.GitLab.APIURL,
			}, client))
		case config.ChannelModrinth:
			m := cfg.Channels.Modrinth
			specs = append(specs, release.ModrinthChannel(release.ModrinthSettings{
				Endpoint: m.Endpoint,
				Project:  cfg.ModrinthProject(),
				Loaders:  m.Loaders,
			}, client))
		case config.ChannelCurseForge:
			c := cfg.Channels.CurseForge
			specs = append(specs, release.CurseForgeChannel(release.CurseForgeSettings{
				Endpoint:     c.Endpoint,
				ProjectID:    c.ProjectID,
				JavaVersions: c.JavaVersions,
				Environments: c.Environments,
				Loader:       c.Loader,
			}, client))
		default:
			return nil, oerrors.NewValidationError(
				fmt.Sprintf("unknown channel %q", name),
				"channels.order",
				"Known channels: gitlab, modrinth, curseforge",
			)
		}
	}
	return specs, nil
}

// CoordinatorOptions assembles coordinator options from the loaded config
// and command flags. Relative paths resolve against the project directory.
// With publishing false no channels are configured and the run stops after
// rendering.
func CoordinatorOptions(g *cmdtypes.GlobalConfig, flags *ReleaseFlags, publishing bool) (release.Options, error) {
	if g == nil || g.Config == nil {
		return release.Options{}, &oerrors.ExitError{Code: oerrors.ExitGeneralError, Err: fmt.Errorf("configuration not loaded")}
	}
	if flags == nil {
		flags = &ReleaseFlags{}
	}
	cfg := g.Config

	projectDir, err := filepath.Abs(g.ProjectDir)
	if err != nil {
		return release.Options{}, fmt.Errorf("resolving project directory: %w", err)
	}

	stagingDir := absUnder(projectDir, cfg.Resources.Staging)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return release.Options{}, fmt.Errorf("creating staging directory: %w", err)
	}

	opts := release.Options{
		Project:     ProjectFrom(cfg),
		BaseVersion: cfg.Project.BaseVersion,
		CommitFallback: func() (string, error) {
			return buildinfo.HeadCommit(projectDir)
		},
		Source:       osfs.New(projectDir),
		Roots:        cfg.Resources.Roots,
		Templates:    cfg.Resources.Templates,
		Staging:      osfs.New(stagingDir),
		ArtifactFS:   osfs.New("/"),
		MixinConfigs: cfg.Artifact.MixinConfigs,
		Concurrency:  cfg.Publish.Concurrency,
		DryRun:       flags.DryRun,
	}
	if flags.Concurrency > 0 {
		opts.Concurrency = flags.Concurrency
	}

	timeout := config.ResolveTimeout(config.ResolveTimeoutOptions{
		FlagValue:   flags.Timeout,
		ConfigValue: cfg.Publish.Timeout,
	})
	config.LogResolvedValues([]config.ResolvedValue{timeout})
	opts.Timeout = timeout.Duration()

	if publishing {
		opts.Channels, err = Channels(cfg, &http.Client{})
		if err != nil {
			return release.Options{}, err
		}
	}

	// The artifact path may reference the resolved version, which is only
	// known once the run starts. It is expanded with the same identity the
	// coordinator derives.
	version := buildinfo.FromEnv(cfg.Project.BaseVersion, buildinfo.Options{}).Version()
	artifactPath := flags.Artifact
	if artifactPath == "" {
		artifactPath = cfg.ExpandArtifactPath(cfg.Artifact.Path, version)
	}
	if artifactPath != "" {
		opts.ArtifactPath = filepath.ToSlash(absUnder(projectDir, artifactPath))
	}
	if cfg.Artifact.Bundle != "" {
		opts.BundlePath = filepath.ToSlash(absUnder(projectDir, cfg.ExpandArtifactPath(cfg.Artifact.Bundle, version)))
	}

	output.Debug("coordinator options",
		"project", projectDir,
		"staging", stagingDir,
		"artifact", opts.ArtifactPath,
		"bundle", opts.BundlePath,
		"channels", len(opts.Channels),
		"timeout", opts.Timeout,
		"concurrency", opts.Concurrency,
	)

	return opts, nil
}

func absUnder(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
