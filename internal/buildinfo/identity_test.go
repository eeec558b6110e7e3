package buildinfo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		base string
		raw  string
		want string
	}{
		{name: "ci build number", base: "1.4.0", raw: "57", want: "1.4.0.57"},
		{name: "absent defaults to zero", base: "1.4.0", raw: "", want: "1.4.0.0"},
		{name: "non-numeric defaults to zero", base: "1.4.0", raw: "abc", want: "1.4.0.0"},
		{name: "negative defaults to zero", base: "1.4.0", raw: "-3", want: "1.4.0.0"},
		{name: "whitespace is trimmed", base: "2.0", raw: " 12\n", want: "2.0.12"},
		{name: "base is passed through", base: "not-semver", raw: "1", want: "not-semver.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.base, tt.raw))
			// deterministic
			assert.Equal(t, Resolve(tt.base, tt.raw), Resolve(tt.base, tt.raw))
		})
	}
}

func TestResolve_AbsentEqualsZero(t *testing.T) {
	for _, base := range []string{"1.0.0", "0.1", ""} {
		assert.Equal(t, Resolve(base, "0"), Resolve(base, ""))
	}
}

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromEnv(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	t.Run("reads ci variables", func(t *testing.T) {
		id := FromEnv("1.4.0", Options{
			Lookup: env(map[string]string{
				EnvBuildNumber: "57",
				EnvCommitSHA:   "abc123",
				EnvProjectURL:  "https://git.example.com/group/project/",
			}),
			Now: func() time.Time { return fixed },
		})

		assert.Equal(t, "1.4.0.57", id.Version())
		assert.Equal(t, 57, id.BuildNumber)
		assert.Equal(t, "abc123", id.CommitRef)
		assert.Equal(t, "https://git.example.com/group/project", id.ProjectURL)
		assert.Equal(t, fixed.UTC(), id.Timestamp)
	})

	t.Run("no ci context", func(t *testing.T) {
		id := FromEnv("1.4.0", Options{Lookup: env(nil), Now: func() time.Time { return fixed }})
		assert.Equal(t, "1.4.0.0", id.Version())
		assert.Empty(t, id.CommitRef)
	})

	t.Run("commit fallback used only without ci sha", func(t *testing.T) {
		fallback := func() (string, error) { return "local", nil }

		id := FromEnv("1.0", Options{Lookup: env(nil), CommitFallback: fallback})
		assert.Equal(t, "local", id.CommitRef)

		id = FromEnv("1.0", Options{Lookup: env(map[string]string{EnvCommitSHA: "ci"}), CommitFallback: fallback})
		assert.Equal(t, "ci", id.CommitRef)
	})

	t.Run("commit fallback error is ignored", func(t *testing.T) {
		id := FromEnv("1.0", Options{
			Lookup:         env(nil),
			CommitFallback: func() (string, error) { return "", errors.New("not a repository") },
		})
		assert.Empty(t, id.CommitRef)
	})
}
