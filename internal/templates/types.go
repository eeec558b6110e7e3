// Package templates renders the metadata templates bundled into the artifact.
package templates

import (
	"github.com/go-git/go-billy/v5"
)

// RenderedFile is one file written to the staging tree.
type RenderedFile struct {
	// Path is the slash-separated path relative to the staging root.
	Path string `json:"path" yaml:"path"`

	// Root is the resource root the winning copy came from.
	Root string `json:"root" yaml:"root"`

	// Templated is true when placeholders were expanded.
	Templated bool `json:"templated" yaml:"templated"`

	// Size is the number of bytes written.
	Size int `json:"size" yaml:"size"`
}

// Options configures a Renderer.
type Options struct {
	// Source is the filesystem resource roots are resolved against.
	Source billy.Filesystem

	// Staging receives the rendered tree.
	Staging billy.Filesystem

	// Templates lists the slash-separated relative paths whose content is
	// expanded. Every other file is copied verbatim.
	Templates []string
}

// Result is the outcome of a render pass.
type Result struct {
	// Files lists the successfully staged files, sorted by path.
	Files []RenderedFile

	// Overridden lists relative paths provided by more than one root.
	Overridden []string

	// Unmatched lists configured templates found in no root.
	Unmatched []string

	// Pruned lists staged files removed because no root provides them.
	Pruned []string
}

// Templated returns the staged files that went through expansion.
func (r *Result) Templated() []RenderedFile {
	var out []RenderedFile
	for _, f := range r.Files {
		if f.Templated {
			out = append(out, f)
		}
	}
	return out
}
