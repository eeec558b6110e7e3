package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channel []string

func (c channel) RequiredEnv() []string { return c }

func TestGate_IsEligible(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		req  channel
		want bool
	}{
		{"single present", map[string]string{"CI_MODRINTH_TOKEN": "abc"}, channel{"CI_MODRINTH_TOKEN"}, true},
		{"single absent", map[string]string{}, channel{"CI_MODRINTH_TOKEN"}, false},
		{"single empty", map[string]string{"CI_MODRINTH_TOKEN": ""}, channel{"CI_MODRINTH_TOKEN"}, false},
		{
			"all three present",
			map[string]string{"CI_API_V4_URL": "u", "CI_PROJECT_ID": "1", "CI_JOB_TOKEN": "t"},
			channel{"CI_API_V4_URL", "CI_PROJECT_ID", "CI_JOB_TOKEN"},
			true,
		},
		{
			"two of three",
			map[string]string{"CI_API_V4_URL": "u", "CI_PROJECT_ID": "1"},
			channel{"CI_API_V4_URL", "CI_PROJECT_ID", "CI_JOB_TOKEN"},
			false,
		},
		{"nothing required", map[string]string{}, channel{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(MapLookup(tt.env))
			assert.Equal(t, tt.want, g.IsEligible(tt.req))
		})
	}
}

func TestGate_ReadsEnvironmentEachTime(t *testing.T) {
	t.Setenv("MODSHIP_TEST_TOKEN", "")
	g := NewGate(nil)
	ch := channel{"MODSHIP_TEST_TOKEN"}

	assert.False(t, g.IsEligible(ch))

	t.Setenv("MODSHIP_TEST_TOKEN", "secret")
	assert.True(t, g.IsEligible(ch))
}

func TestGate_Resolve(t *testing.T) {
	g := NewGate(MapLookup(map[string]string{"A": "1", "B": "2"}))

	set, ok := g.Resolve("A", "B")
	require.True(t, ok)
	assert.Equal(t, "1", set.Get("A"))
	assert.Equal(t, []string{"A", "B"}, set.Names())

	set, ok = g.Resolve("A", "C")
	assert.False(t, ok)
	assert.Nil(t, set)
}

func TestGate_Missing(t *testing.T) {
	g := NewGate(MapLookup(map[string]string{"CI_PROJECT_ID": "1"}))
	missing := g.Missing(channel{"CI_API_V4_URL", "CI_PROJECT_ID", "CI_JOB_TOKEN"})
	assert.Equal(t, []string{"CI_API_V4_URL", "CI_JOB_TOKEN"}, missing)
}
