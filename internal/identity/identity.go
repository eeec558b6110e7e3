// Package identity computes deterministic release identities.
package identity

import (
	"github.com/google/uuid"
)

// NamespaceUUID is the UUID v5 namespace for release identities.
// Computed as: uuid.SHA1(uuid.NameSpaceDNS, "modship.karmakrafts.dev")
var NamespaceUUID = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("modship.karmakrafts.dev"))

// ReleaseID returns the identity of a mod version. Re-running the same
// pipeline yields the same id, unlike the per-run id of a report.
func ReleaseID(modID, version string) string {
	return uuid.NewSHA1(NamespaceUUID, []byte(modID+"@"+version)).String()
}
