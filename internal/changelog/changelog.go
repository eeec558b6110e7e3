// Package changelog builds the release notes shared by every channel.
package changelog

import (
	"strings"

	"github.com/karmakrafts/modship/internal/buildinfo"
)

// Fallback is used when no project URL is known.
const Fallback = "See commit history for changes"

// ForIdentity returns the changelog for a build identity:
// "See changes until <project>/-/tree/<commit>".
func ForIdentity(id buildinfo.Identity) string {
	return Build(id.ProjectURL, id.CommitRef)
}

// Build returns the changelog for a project URL and commit. An empty
// commit links the project tree root; an empty URL yields Fallback.
func Build(projectURL, commit string) string {
	projectURL = strings.TrimSuffix(projectURL, "/")
	if projectURL == "" {
		return Fallback
	}
	if commit == "" {
		return "See changes until " + projectURL + "/-/tree"
	}
	return "See changes until " + projectURL + "/-/tree/" + commit
}
