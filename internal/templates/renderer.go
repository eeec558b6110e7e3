package templates

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/karmakrafts/modship/internal/output"
)

// Renderer stages resource roots and expands the configured templates.
type Renderer struct {
	vars      Variables
	src       billy.Filesystem
	dst       billy.Filesystem
	templates map[string]struct{}
}

// NewRenderer creates a renderer for the given variables.
func NewRenderer(vars Variables, opts Options) *Renderer {
	tmpl := make(map[string]struct{}, len(opts.Templates))
	for _, t := range opts.Templates {
		tmpl[path.Clean(filepath.ToSlash(t))] = struct{}{}
	}
	return &Renderer{
		vars:      vars,
		src:       opts.Source,
		dst:       opts.Staging,
		templates: tmpl,
	}
}

// source is the winning copy of one relative path.
type source struct {
	root string
	full string
}

// Render stages every file of roots into the staging tree. Roots are
// processed in order and a later root replaces an earlier root's file at the
// same relative path. Template files are expanded; a template that fails
// expansion is not written and any stale copy of it is removed, while the
// remaining files are still staged. Staged files no root provides any more
// are removed first. All expansion failures are joined into the returned
// error.
func (r *Renderer) Render(roots []string) (*Result, error) {
	plan, overridden, err := r.plan(roots)
	if err != nil {
		return nil, err
	}

	pruned, err := r.prune(plan)
	if err != nil {
		return nil, err
	}

	rels := make([]string, 0, len(plan))
	for rel := range plan {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	result := &Result{Overridden: overridden, Pruned: pruned}
	var errs []error

	for _, rel := range rels {
		src := plan[rel]
		content, err := util.ReadFile(r.src, src.full)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", src.full, err)
		}

		_, templated := r.templates[rel]
		if templated {
			expanded, err := Expand(rel, content, r.vars)
			if err != nil {
				errs = append(errs, err)
				if rmErr := r.removeStale(rel); rmErr != nil {
					return nil, rmErr
				}
				continue
			}
			content = expanded
		}

		if err := writeFileAtomic(r.dst, rel, content); err != nil {
			return nil, fmt.Errorf("staging %s: %w", rel, err)
		}

		result.Files = append(result.Files, RenderedFile{
			Path:      rel,
			Root:      src.root,
			Templated: templated,
			Size:      len(content),
		})
	}

	for t := range r.templates {
		if _, ok := plan[t]; !ok {
			result.Unmatched = append(result.Unmatched, t)
		}
	}
	sort.Strings(result.Unmatched)

	output.Debug("metadata rendered",
		"files", len(result.Files),
		"templates", len(result.Templated()),
		"overridden", len(result.Overridden),
		"pruned", len(result.Pruned),
		"failed", len(errs),
	)

	return result, errors.Join(errs...)
}

// plan walks all roots and returns the winning source of every relative path.
func (r *Renderer) plan(roots []string) (map[string]source, []string, error) {
	plan := make(map[string]source)
	dup := make(map[string]struct{})

	for _, root := range roots {
		if _, err := r.src.Stat(root); err != nil {
			if os.IsNotExist(err) {
				output.Debug("resource root does not exist, skipping", "root", root)
				continue
			}
			return nil, nil, fmt.Errorf("resource root %s: %w", root, err)
		}

		err := util.Walk(r.src, root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if prev, ok := plan[rel]; ok {
				dup[rel] = struct{}{}
				output.Debug("resource overridden by later root", "path", rel, "from", prev.root, "by", root)
			}
			plan[rel] = source{root: root, full: p}
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("walking resource root %s: %w", root, err)
		}
	}

	overridden := make([]string, 0, len(dup))
	for rel := range dup {
		overridden = append(overridden, rel)
	}
	sort.Strings(overridden)

	return plan, overridden, nil
}

// prune removes staged files whose relative path is not part of plan and
// returns their paths, sorted.
func (r *Renderer) prune(plan map[string]source) ([]string, error) {
	if _, err := r.dst.Stat("/"); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("staging tree: %w", err)
	}

	var stale []string
	err := util.Walk(r.dst, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(filepath.ToSlash(p), "/")
		if _, ok := plan[rel]; !ok {
			stale = append(stale, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking staging tree: %w", err)
	}

	sort.Strings(stale)
	for _, rel := range stale {
		if err := r.removeStale(rel); err != nil {
			return nil, err
		}
		output.Debug("pruned stale staged file", "path", rel)
	}
	return stale, nil
}

func (r *Renderer) removeStale(rel string) error {
	err := r.dst.Remove(rel)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale %s: %w", rel, err)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to name and renames it
// into place. The temporary handle is closed and removed on every failure
// path, so readers never observe a partially written file.
func writeFileAtomic(fs billy.Filesystem, name string, data []byte) (err error) {
	dir := path.Dir(name)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := util.TempFile(fs, dir, ".modship-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		if err != nil {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return err
	}
	return fs.Rename(tmpName, name)
}
