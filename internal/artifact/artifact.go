// Package artifact handles the built release artifact: digests, the jar
// manifest and bundling staged metadata into the archive.
package artifact

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	oerrors "github.com/karmakrafts/modship/internal/errors"
)

// Digests holds the hex digests of an artifact.
type Digests struct {
	SHA1   string `json:"sha1" yaml:"sha1"`
	MD5    string `json:"md5" yaml:"md5"`
	SHA256 string `json:"sha256" yaml:"sha256"`
}

// String returns the digest in "sha256:<hex>" form.
func (d Digests) String() string {
	return "sha256:" + d.SHA256
}

// ComputeDigests reads r to EOF and returns its digests.
func ComputeDigests(r io.Reader) (Digests, int64, error) {
	s1, m5, s256 := sha1.New(), md5.New(), sha256.New()
	n, err := io.Copy(io.MultiWriter(s1, m5, s256), r)
	if err != nil {
		return Digests{}, n, err
	}
	return Digests{
		SHA1:   hexSum(s1),
		MD5:    hexSum(m5),
		SHA256: hexSum(s256),
	}, n, nil
}

func hexSum(h hash.Hash) string {
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Artifact is a read-only handle to the built payload. Publishers open it
// independently, so concurrent uploads never share a reader.
type Artifact struct {
	fs billy.Filesystem

	// Path is the artifact location within its filesystem.
	Path string `json:"path" yaml:"path"`

	// Size is the artifact size in bytes.
	Size int64 `json:"size" yaml:"size"`

	Digests Digests `json:"digests" yaml:"digests"`
}

// Load opens the artifact at p and computes its digests.
func Load(fs billy.Filesystem, p string) (*Artifact, error) {
	f, err := fs.Open(p)
	if err != nil {
		return nil, oerrors.NewNotFoundError(
			fmt.Sprintf("artifact %s could not be opened: %v", p, err),
			p,
			"Run the compile step first, or pass --artifact",
		)
	}
	defer f.Close()

	d, n, err := ComputeDigests(f)
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", p, err)
	}

	return &Artifact{fs: fs, Path: p, Size: n, Digests: d}, nil
}

// Name returns the file name of the artifact.
func (a *Artifact) Name() string {
	return path.Base(filepath.ToSlash(a.Path))
}

// Open returns a fresh reader over the artifact content.
func (a *Artifact) Open() (io.ReadCloser, error) {
	return a.fs.Open(a.Path)
}
