package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "relative/path.csv", ExpandPath("relative/path.csv"))
	assert.Equal(t, "/abs/path.json", ExpandPath("/abs/path.json"))
	assert.Equal(t, filepath.Join(home, "data.json"), ExpandPath("~/data.json"))
	assert.Equal(t, home, ExpandPath("~"))
}
