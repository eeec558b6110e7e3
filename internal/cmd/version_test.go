package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCmd(t *testing.T) {
	c := NewVersionCmd()

	assert.Equal(t, "version", c.Use)
	assert.NotEmpty(t, c.Short)
	assert.NotEmpty(t, c.Long)
}

func TestVersionCmd_Execute(t *testing.T) {
	var out bytes.Buffer
	c := NewVersionCmd()
	c.SetOut(&out)
	c.SetErr(&bytes.Buffer{})

	require.NoError(t, execute(c))
	assert.Contains(t, out.String(), "modship version")
	assert.Contains(t, out.String(), "CUE SDK:")
}
