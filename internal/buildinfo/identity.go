// Package buildinfo derives the build identity of a release run from CI
// metadata and resolves the public artifact version from it.
package buildinfo

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CI environment variables read when deriving an Identity.
const (
	EnvBuildNumber = "CI_PIPELINE_IID"
	EnvCommitSHA   = "CI_COMMIT_SHA"
	EnvProjectURL  = "CI_PROJECT_URL"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Identity is the immutable version/build/commit/time tuple of one run.
type Identity struct {
	BaseVersion string    `json:"baseVersion" yaml:"baseVersion"`
	BuildNumber int       `json:"buildNumber" yaml:"buildNumber"`
	CommitRef   string    `json:"commitRef,omitempty" yaml:"commitRef,omitempty"`
	ProjectURL  string    `json:"projectUrl,omitempty" yaml:"projectUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}

// Version returns the resolved version of the identity.
func (i Identity) Version() string {
	return Format(i.BaseVersion, i.BuildNumber)
}

// Resolve computes "<base>.<n>" where n is parsed from rawBuildNumber.
// An absent, non-numeric or negative build number resolves as 0; the base
// version is passed through as is.
func Resolve(baseVersion, rawBuildNumber string) string {
	return Format(baseVersion, ParseBuildNumber(rawBuildNumber))
}

// Format joins a base version and a build number.
func Format(baseVersion string, buildNumber int) string {
	return baseVersion + "." + strconv.Itoa(buildNumber)
}

// ParseBuildNumber parses a CI build counter. It never fails; anything that
// is not a non-negative integer yields 0.
func ParseBuildNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Options configures FromEnv.
type Options struct {
	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup LookupFunc

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// CommitFallback is consulted when CI_COMMIT_SHA is absent.
	// Errors from it are ignored; the commit ref then stays empty.
	CommitFallback func() (string, error)
}

// FromEnv derives the Identity of the current run.
func FromEnv(baseVersion string, opts Options) Identity {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	raw, _ := lookup(EnvBuildNumber)
	commit, _ := lookup(EnvCommitSHA)
	projectURL, _ := lookup(EnvProjectURL)

	if commit == "" && opts.CommitFallback != nil {
		if sha, err := opts.CommitFallback(); err == nil {
			commit = sha
		}
	}

	return Identity{
		BaseVersion: baseVersion,
		BuildNumber: ParseBuildNumber(raw),
		CommitRef:   commit,
		ProjectURL:  strings.TrimSuffix(projectURL, "/"),
		Timestamp:   now().UTC(),
	}
}
