// Package testutil provides test helpers for modship tests.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/zip"

	"github.com/karmakrafts/modship/internal/artifact"
	"github.com/karmakrafts/modship/internal/buildinfo"
	"github.com/karmakrafts/modship/internal/publish"
)

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// JarBytes returns a zip archive holding entries in name order of the slice.
func JarBytes(t *testing.T, entries ...[2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		if err != nil {
			t.Fatalf("failed to add %s: %v", e[0], err)
		}
		if _, err := w.Write([]byte(e[1])); err != nil {
			t.Fatalf("failed to write %s: %v", e[0], err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close jar: %v", err)
	}
	return buf.Bytes()
}

// WriteJar writes a small jar into fs and returns its loaded handle.
func WriteJar(t *testing.T, fs billy.Filesystem, name string) *artifact.Artifact {
	t.Helper()
	data := JarBytes(t, [2]string{"com/example/Mod.class", "bytecode"})
	if err := util.WriteFile(fs, name, data, 0o644); err != nil {
		t.Fatalf("failed to write jar %s: %v", name, err)
	}
	a, err := artifact.Load(fs, name)
	if err != nil {
		t.Fatalf("failed to load jar %s: %v", name, err)
	}
	return a
}

// NewRelease returns a release of a sample mod backed by an in-memory jar.
func NewRelease(t *testing.T) *publish.Release {
	t.Helper()
	id := buildinfo.Identity{
		BaseVersion: "1.4.0",
		BuildNumber: 57,
		CommitRef:   "0123456789abcdef",
		ProjectURL:  "https://git.karmakrafts.dev/kk/mc-projects/mymod",
		Timestamp:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	return &publish.Release{
		Project: publish.Project{
			ModID:            "mymod",
			ModName:          "My Mod",
			Description:      "A sample mod",
			License:          "Apache-2.0",
			Authors:          "KitsuneAlex",
			Group:            "dev.karmakrafts",
			URL:              "https://git.karmakrafts.dev/kk/mc-projects/mymod",
			Vendor:           "Karma Krafts",
			MinecraftVersion: "1.20.1",
			ForgeVersion:     "47.2.0",
			Developer: publish.Developer{
				ID:   "kitsunealex",
				Name: "KitsuneAlex",
				URL:  "https://git.karmakrafts.dev/KitsuneAlex",
			},
			Companion: "almost-unified",
		},
		Identity:  id,
		Version:   id.Version(),
		Changelog: "See changes until https://git.karmakrafts.dev/kk/mc-projects/mymod/-/tree/0123456789abcdef",
		Artifact:  WriteJar(t, memfs.New(), "build/libs/mymod-1.20.1.jar"),
	}
}

// Request is a request captured by a Recorder.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Recorder is an httptest server that records every request and answers
// through a handler.
type Recorder struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
}

// NewRecorder starts a recording server. It is closed when the test ends.
func NewRecorder(t *testing.T, handler http.HandlerFunc) *Recorder {
	t.Helper()
	rec := &Recorder{}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		rec.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler(w, r)
	}))
	t.Cleanup(rec.Close)
	return rec
}

// Requests returns a copy of the recorded requests.
func (r *Recorder) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Request, len(r.requests))
	copy(out, r.requests)
	return out
}

// Paths returns "METHOD path" for every recorded request.
func (r *Recorder) Paths() []string {
	var out []string
	for _, req := range r.Requests() {
		out = append(out, req.Method+" "+req.Path)
	}
	return out
}

// Status returns a handler answering every request with code.
func Status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	}
}
