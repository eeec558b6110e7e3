// Package maven publishes releases to a GitLab project's Maven package
// registry.
package maven

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/karmakrafts/modship/internal/artifact"
	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/output"
	"github.com/karmakrafts/modship/internal/publish"
)

// ChannelName is the name of the registry channel.
const ChannelName = "gitlab"

// Credential environment variables. All three are required.
const (
	EnvAPIURL    = "CI_API_V4_URL"
	EnvProjectID = "CI_PROJECT_ID"
	EnvJobToken  = "CI_JOB_TOKEN"
)

// RequiredEnv lists the variables gating this channel.
func RequiredEnv() []string {
	return []string{EnvAPIURL, EnvProjectID, EnvJobToken}
}

// Options configures a Publisher.
type Options struct {
	// APIURL is the GitLab API v4 base URL.
	APIURL string

	// ProjectID is the GitLab project owning the registry.
	ProjectID string

	// Token is sent as the Job-Token header.
	Token string

	HTTPClient *http.Client
}

// Publisher uploads the artifact, its POM and their checksums.
type Publisher struct {
	opts   Options
	client *publish.Client
}

// New creates a Publisher.
func New(opts Options) *Publisher {
	c := publish.NewClient(ChannelName, oerrors.ErrRegistryRejected, opts.HTTPClient)
	c.Headers.Set("Job-Token", opts.Token)
	return &Publisher{opts: opts, client: c}
}

// RepositoryURL returns the Maven repository root of the project.
func (p *Publisher) RepositoryURL() string {
	return strings.TrimSuffix(p.opts.APIURL, "/") + "/projects/" + p.opts.ProjectID + "/packages/maven"
}

// Publish uploads the release and returns its coordinates.
func (p *Publisher) Publish(ctx context.Context, rel *publish.Release) (string, error) {
	log := output.ChannelLogger(ChannelName)
	coords := CoordinatesFor(rel)
	if coords.GroupID == "" {
		return "", oerrors.NewChannelError(ChannelName, oerrors.ErrRegistryRejected,
			fmt.Errorf("project group is required for maven coordinates"))
	}
	if d := rel.Project.Developer; d.ID == "" || d.Name == "" {
		return "", oerrors.NewChannelError(ChannelName, oerrors.ErrRegistryRejected,
			fmt.Errorf("maintainer id and name are required for the pom"))
	}

	pom, err := NewPOM(rel).Marshal()
	if err != nil {
		return "", oerrors.NewChannelError(ChannelName, oerrors.ErrRegistryRejected, err)
	}
	pomDigests, _, err := artifact.ComputeDigests(bytes.NewReader(pom))
	if err != nil {
		return "", oerrors.NewChannelError(ChannelName, oerrors.ErrRegistryRejected, err)
	}

	base := p.RepositoryURL() + "/" + coords.Dir() + "/"
	jarName := coords.FileName("jar")
	pomName := coords.FileName("pom")

	log.Debug("uploading", "coordinates", coords.String(), "repository", p.RepositoryURL())

	if err := p.putArtifact(ctx, base+jarName, rel.Artifact); err != nil {
		return "", err
	}
	uploads := []struct {
		name string
		body []byte
	}{
		{jarName + ".sha1", []byte(rel.Artifact.Digests.SHA1)},
		{jarName + ".md5", []byte(rel.Artifact.Digests.MD5)},
		{pomName, pom},
		{pomName + ".sha1", []byte(pomDigests.SHA1)},
		{pomName + ".md5", []byte(pomDigests.MD5)},
	}
	for _, u := range uploads {
		if err := p.put(ctx, base+u.name, bytes.NewReader(u.body)); err != nil {
			return "", err
		}
	}

	log.Info("published", "coordinates", coords.String())
	return coords.String(), nil
}

func (p *Publisher) putArtifact(ctx context.Context, url string, a *artifact.Artifact) error {
	r, err := a.Open()
	if err != nil {
		return oerrors.NewChannelError(ChannelName, oerrors.ErrRegistryRejected, err)
	}
	defer r.Close()
	return p.put(ctx, url, r)
}

func (p *Publisher) put(ctx context.Context, url string, body io.Reader) error {
	resp, err := p.client.Do(ctx, http.MethodPut, url, body, "application/octet-stream")
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
