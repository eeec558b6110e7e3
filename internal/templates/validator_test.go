package templates

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/karmakrafts/modship/internal/errors"
)

func TestPlaceholders(t *testing.T) {
	content := []byte(`modId="${mod_id}" version="${mod_version}" again="${mod_id}" bad="${}"`)
	assert.Equal(t, []string{"", "mod_id", "mod_version"}, Placeholders(content))
}

func TestExpand(t *testing.T) {
	vars := NewVariables(testInputs())

	t.Run("substitutes every placeholder", func(t *testing.T) {
		out, err := Expand("pack.mcmeta", []byte(`{"description": "${mod_name} ${mod_version}"}`), vars)
		require.NoError(t, err)
		assert.Equal(t, `{"description": "Almost Unify Everything 1.4.0.57"}`, string(out))
	})

	t.Run("leaves dollar text without braces alone", func(t *testing.T) {
		out, err := Expand("a.txt", []byte("cost: $5 and $mod_id"), vars)
		require.NoError(t, err)
		assert.Equal(t, "cost: $5 and $mod_id", string(out))
	})

	t.Run("unknown variable fails without partial output", func(t *testing.T) {
		out, err := Expand("META-INF/mods.toml", []byte(`id="${mod_id}" colour="${mod_colour}"`), vars)
		require.Error(t, err)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, oerrors.ErrMissingVariable)

		var mv *oerrors.MissingVariableError
		require.True(t, errors.As(err, &mv))
		assert.Equal(t, "META-INF/mods.toml", mv.File)
		assert.Equal(t, "mod_colour", mv.Variable)
	})

	t.Run("every missing name is reported", func(t *testing.T) {
		_, err := Expand("x", []byte(`${a} ${b} ${mod_id} ${1bad}`), vars)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "${a}")
		assert.Contains(t, err.Error(), "${b}")
		assert.Contains(t, err.Error(), "${1bad}")
		assert.NotContains(t, err.Error(), "${mod_id}")
	})
}
