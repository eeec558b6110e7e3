package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

//go:embed all:scaffold
var scaffoldFS embed.FS

const scaffoldRoot = "scaffold"

// DefaultTemplates lists the template paths shipped in the scaffold.
func DefaultTemplates() []string {
	return []string{"META-INF/mods.toml", "pack.mcmeta"}
}

// Scaffold writes the default metadata templates below root in dst.
// Existing files are left alone unless force is set. It returns the
// slash-separated paths written.
func Scaffold(dst billy.Filesystem, root string, force bool) ([]string, error) {
	var written []string

	err := fs.WalkDir(scaffoldFS, scaffoldRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := p[len(scaffoldRoot)+1:]
		target := path.Join(root, rel)

		if !force {
			if _, err := dst.Stat(target); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", target)
			} else if !os.IsNotExist(err) {
				return err
			}
		}

		content, err := scaffoldFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading scaffold %s: %w", p, err)
		}
		if err := dst.MkdirAll(path.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", target, err)
		}
		if err := util.WriteFile(dst, target, content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}

		written = append(written, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return written, nil
}
