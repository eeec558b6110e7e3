package templates

import (
	"os"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/karmakrafts/modship/internal/errors"
)

const (
	generatedRoot = "src/generated/resources"
	mainRoot      = "src/main/resources"
)

func write(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
}

func read(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	b, err := util.ReadFile(fs, name)
	require.NoError(t, err)
	return string(b)
}

func newTestRenderer(src, dst billy.Filesystem) *Renderer {
	return NewRenderer(NewVariables(testInputs()), Options{
		Source:    src,
		Staging:   dst,
		Templates: DefaultTemplates(),
	})
}

func TestRender(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	write(t, src, mainRoot+"/META-INF/mods.toml", `modId="${mod_id}"`+"\n"+`version="${mod_version}"`)
	write(t, src, mainRoot+"/pack.mcmeta", `{"pack":{"description":"${mod_name}"}}`)
	write(t, src, mainRoot+"/assets/lang/en_us.json", `{"literal":"${not_expanded}"}`)

	result, err := newTestRenderer(src, dst).Render([]string{generatedRoot, mainRoot})
	require.NoError(t, err)

	assert.Equal(t, "modId=\"unifyeverything\"\nversion=\"1.4.0.57\"", read(t, dst, "META-INF/mods.toml"))
	assert.Equal(t, `{"pack":{"description":"Almost Unify Everything"}}`, read(t, dst, "pack.mcmeta"))
	assert.Equal(t, `{"literal":"${not_expanded}"}`, read(t, dst, "assets/lang/en_us.json"),
		"non-template files are copied verbatim")

	require.Len(t, result.Files, 3)
	assert.Equal(t, "META-INF/mods.toml", result.Files[0].Path)
	assert.Len(t, result.Templated(), 2)
	assert.Empty(t, result.Unmatched)
}

func TestRender_Idempotent(t *testing.T) {
	src := memfs.New()
	write(t, src, mainRoot+"/META-INF/mods.toml", `version="${mod_version}" range="${forge_version_range}"`)
	write(t, src, mainRoot+"/pack.mcmeta", `{"pack":{}}`)

	dst := memfs.New()
	r := newTestRenderer(src, dst)

	_, err := r.Render([]string{mainRoot})
	require.NoError(t, err)
	first := read(t, dst, "META-INF/mods.toml")

	_, err = r.Render([]string{mainRoot})
	require.NoError(t, err)
	assert.Equal(t, first, read(t, dst, "META-INF/mods.toml"))

	other := memfs.New()
	_, err = newTestRenderer(src, other).Render([]string{mainRoot})
	require.NoError(t, err)
	assert.Equal(t, first, read(t, other, "META-INF/mods.toml"))
}

func TestRender_LaterRootWins(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	write(t, src, generatedRoot+"/pack.mcmeta", `{"from":"generated"}`)
	write(t, src, mainRoot+"/pack.mcmeta", `{"from":"main","name":"${mod_name}"}`)
	write(t, src, generatedRoot+"/data/tags.json", `{}`)

	result, err := newTestRenderer(src, dst).Render([]string{generatedRoot, mainRoot})
	require.NoError(t, err)

	assert.Equal(t, `{"from":"main","name":"Almost Unify Everything"}`, read(t, dst, "pack.mcmeta"))
	assert.Equal(t, []string{"pack.mcmeta"}, result.Overridden)
	assert.Equal(t, "{}", read(t, dst, "data/tags.json"))

	// reversed order flips the winner
	dst = memfs.New()
	_, err = newTestRenderer(src, dst).Render([]string{mainRoot, generatedRoot})
	require.NoError(t, err)
	assert.Equal(t, `{"from":"generated"}`, read(t, dst, "pack.mcmeta"))
}

func TestRender_PrunesRemovedResources(t *testing.T) {
	tests := []struct {
		name   string
		staged map[string]string
		want   []string
	}{
		{
			name:   "resource deleted from source",
			staged: map[string]string{"assets/old.png": "old"},
			want:   []string{"assets/old.png"},
		},
		{
			name:   "leftover from an unrelated run",
			staged: map[string]string{"data/x.json": "{}", "META-INF/extra.txt": "x"},
			want:   []string{"META-INF/extra.txt", "data/x.json"},
		},
		{
			name: "nothing stale",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := memfs.New(), memfs.New()
			write(t, src, mainRoot+"/pack.mcmeta", `{}`)
			write(t, src, mainRoot+"/META-INF/mods.toml", `modId="${mod_id}"`)
			for name, content := range tt.staged {
				write(t, dst, name, content)
			}

			result, err := newTestRenderer(src, dst).Render([]string{mainRoot})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Pruned)

			for _, name := range tt.want {
				_, statErr := dst.Stat(name)
				assert.True(t, os.IsNotExist(statErr), "%s must be pruned", name)
			}
			assert.Equal(t, `{}`, read(t, dst, "pack.mcmeta"))
		})
	}
}

func TestRender_RerenderDropsDeletedSource(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	write(t, src, mainRoot+"/pack.mcmeta", `{}`)
	write(t, src, mainRoot+"/assets/icon.png", "png")
	r := newTestRenderer(src, dst)

	_, err := r.Render([]string{mainRoot})
	require.NoError(t, err)
	assert.Equal(t, "png", read(t, dst, "assets/icon.png"))

	require.NoError(t, src.Remove(mainRoot+"/assets/icon.png"))
	result, err := r.Render([]string{mainRoot})
	require.NoError(t, err)

	assert.Equal(t, []string{"assets/icon.png"}, result.Pruned)
	_, statErr := dst.Stat("assets/icon.png")
	assert.True(t, os.IsNotExist(statErr))
}

func TestRender_MissingVariable(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	write(t, src, mainRoot+"/META-INF/mods.toml", `modId="${mod_id}" colour="${mod_colour}"`)
	write(t, src, mainRoot+"/pack.mcmeta", `{"pack":{"description":"${mod_name}"}}`)
	// stale output from an earlier run must not survive a failed render
	write(t, dst, "META-INF/mods.toml", "stale")

	result, err := newTestRenderer(src, dst).Render([]string{mainRoot})
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrMissingVariable)
	require.NotNil(t, result)

	_, statErr := dst.Stat("META-INF/mods.toml")
	assert.True(t, os.IsNotExist(statErr), "failed template must not be staged")

	assert.Equal(t, `{"pack":{"description":"Almost Unify Everything"}}`, read(t, dst, "pack.mcmeta"),
		"other files still render")
	require.Len(t, result.Files, 1)
}

func TestRender_CollectsAllFailures(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	write(t, src, mainRoot+"/META-INF/mods.toml", `${first_missing}`)
	write(t, src, mainRoot+"/pack.mcmeta", `${second_missing}`)

	_, err := newTestRenderer(src, dst).Render([]string{mainRoot})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first_missing")
	assert.Contains(t, err.Error(), "second_missing")
}

func TestRender_SkipsMissingRootAndReportsUnmatched(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	write(t, src, mainRoot+"/pack.mcmeta", `{}`)

	result, err := newTestRenderer(src, dst).Render([]string{"does/not/exist", mainRoot})
	require.NoError(t, err)
	assert.Equal(t, []string{"META-INF/mods.toml"}, result.Unmatched)
}

func TestRender_LeavesNoTemporaryFiles(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	write(t, src, mainRoot+"/META-INF/mods.toml", `${mod_id}`)
	write(t, src, mainRoot+"/pack.mcmeta", `${broken}`)

	_, _ = newTestRenderer(src, dst).Render([]string{mainRoot})

	err := util.Walk(dst, "/", func(p string, info os.FileInfo, err error) error {
		require.NoError(t, err)
		assert.False(t, strings.Contains(p, ".modship-"), "temporary file left behind: %s", p)
		return nil
	})
	require.NoError(t, err)
}
