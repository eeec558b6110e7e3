// Package modrinth publishes releases to the Modrinth marketplace.
package modrinth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/output"
	"github.com/karmakrafts/modship/internal/publish"
)

// ChannelName is the name of the Modrinth channel.
const ChannelName = "modrinth"

// EnvToken holds the Modrinth personal access token.
const EnvToken = "CI_MODRINTH_TOKEN"

// DefaultEndpoint is the production API.
const DefaultEndpoint = "https://api.modrinth.com"

// RequiredEnv lists the variables gating this channel.
func RequiredEnv() []string {
	return []string{EnvToken}
}

// Options configures a Publisher.
type Options struct {
	// Endpoint is the API base URL. Defaults to DefaultEndpoint.
	Endpoint string

	Token string

	// Project is the slug or id of the mod. Defaults to the mod id.
	Project string

	// Loaders defaults to ["forge"].
	Loaders []string

	// VersionType defaults to "release".
	VersionType string

	HTTPClient *http.Client
}

// Publisher creates a Modrinth version for each release.
type Publisher struct {
	opts   Options
	client *publish.Client
}

// New creates a Publisher.
func New(opts Options) *Publisher {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if len(opts.Loaders) == 0 {
		opts.Loaders = []string{"forge"}
	}
	if opts.VersionType == "" {
		opts.VersionType = "release"
	}
	c := publish.NewClient(ChannelName, oerrors.ErrUploadRejected, opts.HTTPClient)
	c.Headers.Set("Authorization", opts.Token)
	return &Publisher{opts: opts, client: c}
}

// Dependency is a version dependency entry.
type Dependency struct {
	ProjectID      string `json:"project_id"`
	DependencyType string `json:"dependency_type"`
}

// VersionData is the "data" part of a create-version request.
type VersionData struct {
	Name          string       `json:"name"`
	VersionNumber string       `json:"version_number"`
	Changelog     string       `json:"changelog"`
	Dependencies  []Dependency `json:"dependencies"`
	GameVersions  []string     `json:"game_versions"`
	VersionType   string       `json:"version_type"`
	Loaders       []string     `json:"loaders"`
	Featured      bool         `json:"featured"`
	ProjectID     string       `json:"project_id"`
	FileParts     []string     `json:"file_parts"`
	PrimaryFile   string       `json:"primary_file"`
}

type project struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

type version struct {
	ID string `json:"id"`
}

// filePart is the multipart field carrying the artifact.
const filePart = "file"

// Publish uploads the artifact as a new version and returns the version id.
func (p *Publisher) Publish(ctx context.Context, rel *publish.Release) (string, error) {
	log := output.ChannelLogger(ChannelName)
	if rel.Project.Companion == "" {
		return "", oerrors.NewChannelError(ChannelName, oerrors.ErrUploadRejected,
			errors.New("no companion project configured"))
	}

	slug := p.opts.Project
	if slug == "" {
		slug = rel.Project.ModID
	}
	projectID, err := p.resolveProject(ctx, slug)
	if err != nil {
		return "", err
	}

	companionID, err := p.resolveProject(ctx, rel.Project.Companion)
	if err != nil {
		return "", err
	}

	data := VersionData{
		Name:          rel.Project.ModName + " " + rel.Version,
		VersionNumber: rel.Version,
		Changelog:     rel.Changelog,
		Dependencies:  []Dependency{{ProjectID: companionID, DependencyType: "required"}},
		GameVersions:  []string{rel.Project.MinecraftVersion},
		VersionType:   p.opts.VersionType,
		Loaders:       p.opts.Loaders,
		ProjectID:     projectID,
		FileParts:     []string{filePart},
		PrimaryFile:   filePart,
	}
	body, contentType, err := p.form(rel, data)
	if err != nil {
		return "", oerrors.NewChannelError(ChannelName, oerrors.ErrUploadRejected, err)
	}

	log.Debug("creating version", "project", projectID, "version", rel.Version)

	var created version
	if err := p.client.DoJSON(ctx, http.MethodPost, p.url("/v2/version"), body, contentType, &created); err != nil {
		return "", err
	}

	log.Info("published", "version", created.ID)
	return created.ID, nil
}

func (p *Publisher) form(rel *publish.Release, data VersionData) (io.Reader, string, error) {
	m := publish.NewMultipart()
	if err := m.JSON("data", data); err != nil {
		return nil, "", err
	}

	r, err := rel.Artifact.Open()
	if err != nil {
		return nil, "", err
	}
	defer r.Close()

	if err := m.File(filePart, rel.Artifact.Name(), r); err != nil {
		return nil, "", fmt.Errorf("attaching %s: %w", rel.Artifact.Name(), err)
	}
	return m.Close()
}

// resolveProject maps a slug or id to the canonical project id.
func (p *Publisher) resolveProject(ctx context.Context, slug string) (string, error) {
	var proj project
	err := p.client.DoJSON(ctx, http.MethodGet, p.url("/v2/project/"+url.PathEscape(slug)), nil, "", &proj)
	if err != nil {
		return "", fmt.Errorf("resolving project %q: %w", slug, err)
	}
	if proj.ID == "" {
		return "", oerrors.NewChannelError(ChannelName, oerrors.ErrUploadRejected,
			fmt.Errorf("project %q has no id", slug))
	}
	return proj.ID, nil
}

func (p *Publisher) url(path string) string {
	return strings.TrimSuffix(p.opts.Endpoint, "/") + path
}
