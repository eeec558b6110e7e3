package artifact

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/zip"
)

// ManifestPath is the location of the manifest inside a jar.
const ManifestPath = "META-INF/MANIFEST.MF"

// BundleOptions configures Bundle.
type BundleOptions struct {
	// FS holds both the input and output archives.
	FS billy.Filesystem

	// Input is the compiled archive.
	Input string

	// Output is where the bundled archive is written. It may equal Input.
	Output string

	// Staging is the rendered metadata tree overlaid onto the archive.
	Staging billy.Filesystem

	// Manifest replaces the archive manifest when set.
	Manifest *Manifest

	// ModTime is stamped on every entry Bundle writes itself.
	ModTime time.Time
}

// BundleResult describes a bundled archive.
type BundleResult struct {
	Artifact *Artifact

	// Overlaid lists the staged paths written into the archive, sorted.
	Overlaid []string

	// Replaced lists archive entries superseded by a staged file.
	Replaced []string
}

// Bundle rewrites the input archive with the manifest first, then every
// original entry not superseded by a staged file, then the staged files in
// path order. The output is written to a temporary file and renamed into
// place; a failed bundle leaves the output untouched.
func Bundle(opts BundleOptions) (*BundleResult, error) {
	staged, err := stagedFiles(opts.Staging)
	if err != nil {
		return nil, fmt.Errorf("listing staging tree: %w", err)
	}

	dir := path.Dir(filepath.ToSlash(opts.Output))
	if err := opts.FS.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := util.TempFile(opts.FS, dir, ".modship-bundle-")
	if err != nil {
		return nil, fmt.Errorf("creating temporary archive: %w", err)
	}
	tmpName := tmp.Name()

	replaced, err := writeBundle(tmp, opts, staged)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = opts.FS.Remove(tmpName)
		return nil, err
	}

	if err := opts.FS.Rename(tmpName, opts.Output); err != nil {
		_ = opts.FS.Remove(tmpName)
		return nil, fmt.Errorf("moving archive into place: %w", err)
	}

	a, err := Load(opts.FS, opts.Output)
	if err != nil {
		return nil, err
	}
	return &BundleResult{Artifact: a, Overlaid: staged, Replaced: replaced}, nil
}

func writeBundle(w io.Writer, opts BundleOptions, staged []string) ([]string, error) {
	in, err := opts.FS.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", opts.Input, err)
	}
	defer in.Close()

	info, err := opts.FS.Stat(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", opts.Input, err)
	}

	zr, err := zip.NewReader(in, info.Size())
	if err != nil {
		return nil, fmt.Errorf("reading archive %s: %w", opts.Input, err)
	}

	skip := make(map[string]bool, len(staged)+1)
	for _, s := range staged {
		skip[s] = true
	}
	if opts.Manifest != nil {
		skip[ManifestPath] = true
	}

	zw := zip.NewWriter(w)

	if opts.Manifest != nil {
		if err := writeEntry(zw, ManifestPath, opts.Manifest.Bytes(), opts.ModTime); err != nil {
			return nil, err
		}
	}

	var replaced []string
	for _, f := range zr.File {
		if skip[f.Name] {
			if f.Name != ManifestPath {
				replaced = append(replaced, f.Name)
			}
			continue
		}
		if err := zw.Copy(f); err != nil {
			return nil, fmt.Errorf("copying %s: %w", f.Name, err)
		}
	}

	for _, s := range staged {
		data, err := util.ReadFile(opts.Staging, s)
		if err != nil {
			return nil, fmt.Errorf("reading staged %s: %w", s, err)
		}
		if err := writeEntry(zw, s, data, opts.ModTime); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	sort.Strings(replaced)
	return replaced, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte, mod time.Time) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: mod,
	})
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// stagedFiles lists regular files of the staging tree as slash-separated
// relative paths, sorted.
func stagedFiles(fs billy.Filesystem) ([]string, error) {
	if fs == nil {
		return nil, nil
	}
	var out []string
	err := util.Walk(fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		out = append(out, strings.TrimPrefix(filepath.ToSlash(p), "/"))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
