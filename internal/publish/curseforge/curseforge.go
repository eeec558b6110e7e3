// Package curseforge publishes releases through the CurseForge upload API.
package curseforge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/output"
	"github.com/karmakrafts/modship/internal/publish"
)

// ChannelName is the name of the CurseForge channel.
const ChannelName = "curseforge"

// EnvToken holds the CurseForge upload API token.
const EnvToken = "CI_CURSEFORGE_TOKEN"

// DefaultEndpoint is the Minecraft upload API host.
const DefaultEndpoint = "https://minecraft.curseforge.com"

// RequiredEnv lists the variables gating this channel.
func RequiredEnv() []string {
	return []string{EnvToken}
}

// Options configures a Publisher.
type Options struct {
	// Endpoint is the API base URL. Defaults to DefaultEndpoint.
	Endpoint string

	Token string

	// ProjectID is the numeric CurseForge project id.
	ProjectID int64

	// JavaVersions defaults to Java 17 through Java 21.
	JavaVersions []string

	// Environments defaults to Client and Server.
	Environments []string

	// Loader defaults to "Forge".
	Loader string

	// ReleaseType defaults to "release".
	ReleaseType string

	HTTPClient *http.Client
}

// Publisher uploads files to one CurseForge project.
type Publisher struct {
	opts   Options
	client *publish.Client
}

// New creates a Publisher.
func New(opts Options) *Publisher {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if len(opts.JavaVersions) == 0 {
		opts.JavaVersions = []string{"Java 17", "Java 18", "Java 19", "Java 20", "Java 21"}
	}
	if len(opts.Environments) == 0 {
		opts.Environments = []string{"Client", "Server"}
	}
	if opts.Loader == "" {
		opts.Loader = "Forge"
	}
	if opts.ReleaseType == "" {
		opts.ReleaseType = "release"
	}
	c := publish.NewClient(ChannelName, oerrors.ErrUploadRejected, opts.HTTPClient)
	c.Headers.Set("X-Api-Token", opts.Token)
	return &Publisher{opts: opts, client: c}
}

// Relation links the upload to another project.
type Relation struct {
	Slug string `json:"slug"`
	Type string `json:"type"`
}

// Relations is the relations block of the upload metadata.
type Relations struct {
	Projects []Relation `json:"projects"`
}

// Metadata is the "metadata" part of an upload request.
type Metadata struct {
	Changelog     string    `json:"changelog"`
	ChangelogType string    `json:"changelogType"`
	DisplayName   string    `json:"displayName,omitempty"`
	GameVersions  []int     `json:"gameVersions"`
	ReleaseType   string    `json:"releaseType"`
	Relations     Relations `json:"relations"`
}

type uploaded struct {
	ID int64 `json:"id"`
}

// Publish uploads the artifact and returns the file id.
func (p *Publisher) Publish(ctx context.Context, rel *publish.Release) (string, error) {
	log := output.ChannelLogger(ChannelName)
	if p.opts.ProjectID <= 0 {
		return "", oerrors.NewChannelError(ChannelName, oerrors.ErrUploadRejected,
			fmt.Errorf("curseforge project id is not configured"))
	}
	if rel.Project.Companion == "" {
		return "", oerrors.NewChannelError(ChannelName, oerrors.ErrUploadRejected,
			fmt.Errorf("no companion project configured"))
	}

	gameVersions, err := p.resolveGameVersions(ctx, p.categories(rel))
	if err != nil {
		return "", err
	}

	meta := Metadata{
		Changelog:     rel.Changelog,
		ChangelogType: "text",
		DisplayName:   rel.Artifact.Name(),
		GameVersions:  gameVersions,
		ReleaseType:   p.opts.ReleaseType,
		Relations: Relations{
			Projects: []Relation{{Slug: rel.Project.Companion, Type: "requiredDependency"}},
		},
	}

	body, contentType, err := p.form(rel, meta)
	if err != nil {
		return "", oerrors.NewChannelError(ChannelName, oerrors.ErrUploadRejected, err)
	}

	log.Debug("uploading file", "project", p.opts.ProjectID, "gameVersions", len(gameVersions))

	var out uploaded
	path := "/api/projects/" + strconv.FormatInt(p.opts.ProjectID, 10) + "/upload-file"
	if err := p.client.DoJSON(ctx, http.MethodPost, p.url(path), body, contentType, &out); err != nil {
		return "", err
	}

	id := strconv.FormatInt(out.ID, 10)
	log.Info("published", "file", id)
	return id, nil
}

func (p *Publisher) categories(rel *publish.Release) []Category {
	return []Category{
		{TypePrefix: "java", Names: p.opts.JavaVersions},
		{TypePrefix: "minecraft", Names: []string{rel.Project.MinecraftVersion}},
		{TypePrefix: "environment", Names: p.opts.Environments},
		{TypePrefix: "modloader", Names: []string{p.opts.Loader}},
	}
}

func (p *Publisher) form(rel *publish.Release, meta Metadata) (io.Reader, string, error) {
	m := publish.NewMultipart()
	if err := m.JSON("metadata", meta); err != nil {
		return nil, "", err
	}

	r, err := rel.Artifact.Open()
	if err != nil {
		return nil, "", err
	}
	defer r.Close()

	if err := m.File("file", rel.Artifact.Name(), r); err != nil {
		return nil, "", fmt.Errorf("attaching %s: %w", rel.Artifact.Name(), err)
	}
	return m.Close()
}

func (p *Publisher) url(path string) string {
	return strings.TrimSuffix(p.opts.Endpoint, "/") + path
}
