package release

import (
	"net/http"

	"github.com/karmakrafts/modship/internal/credentials"
	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/publish"
	"github.com/karmakrafts/modship/internal/publish/curseforge"
	"github.com/karmakrafts/modship/internal/publish/maven"
	"github.com/karmakrafts/modship/internal/publish/modrinth"
)

// ChannelSpec is a configured distribution channel.
type ChannelSpec struct {
	Name string

	// Env lists the credential variables gating the channel.
	Env []string

	// Rejection is the kind reported for unclassified failures.
	Rejection error

	// New builds the publisher from the resolved credentials.
	New func(creds credentials.Set) publish.Publisher
}

// RequiredEnv implements credentials.Channel.
func (c ChannelSpec) RequiredEnv() []string {
	return c.Env
}

// MavenSettings configures the package registry channel.
type MavenSettings struct {
	// APIURL overrides CI_API_V4_URL.
	APIURL string
}

// ModrinthSettings configures the Modrinth channel.
type ModrinthSettings struct {
	Endpoint string
	Project  string
	Loaders  []string
}

// CurseForgeSettings configures the CurseForge channel.
type CurseForgeSettings struct {
	Endpoint     string
	ProjectID    int64
	JavaVersions []string
	Environments []string
	Loader       string
}

// MavenChannel returns the GitLab package registry channel.
func MavenChannel(s MavenSettings, client *http.Client) ChannelSpec {
	return ChannelSpec{
		Name:      maven.ChannelName,
		Env:       maven.RequiredEnv(),
		Rejection: oerrors.ErrRegistryRejected,
		New: func(creds credentials.Set) publish.Publisher {
			api := s.APIURL
			if api == "" {
				api = creds.Get(maven.EnvAPIURL)
			}
			return maven.New(maven.Options{
				APIURL:     api,
				ProjectID:  creds.Get(maven.EnvProjectID),
				Token:      creds.Get(maven.EnvJobToken),
				HTTPClient: client,
			})
		},
	}
}

// ModrinthChannel returns the Modrinth channel.
func ModrinthChannel(s ModrinthSettings, client *http.Client) ChannelSpec {
	return ChannelSpec{
		Name:      modrinth.ChannelName,
		Env:       modrinth.RequiredEnv(),
		Rejection: oerrors.ErrUploadRejected,
		New: func(creds credentials.Set) publish.Publisher {
			return modrinth.New(modrinth.Options{
				Endpoint:   s.Endpoint,
				Token:      creds.Get(modrinth.EnvToken),
				Project:    s.Project,
				Loaders:    s.Loaders,
				HTTPClient: client,
			})
		},
	}
}

// CurseForgeChannel returns the CurseForge channel.
func CurseForgeChannel(s CurseForgeSettings, client *http.Client) ChannelSpec {
	return ChannelSpec{
		Name:      curseforge.ChannelName,
		Env:       curseforge.RequiredEnv(),
		Rejection: oerrors.ErrUploadRejected,
		New: func(creds credentials.Set) publish.Publisher {
			return curseforge.New(curseforge.Options{
				Endpoint:     s.Endpoint,
				Token:        creds.Get(curseforge.EnvToken),
				ProjectID:    s.ProjectID,
				JavaVersions: s.JavaVersions,
				Environments: s.Environments,
				Loader:       s.Loader,
				HTTPClient:   client,
			})
		},
	}
}
