package prefs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "preferences.json")

	p := LoadFrom(path)
	p.SetString(KeyLastDocument, "board")
	p.SetFloat(KeyWindowWidth, 1280)
	p.SetBool(KeyShowGrid, true)
	require.NoError(t, p.Save())

	reloaded := LoadFrom(path)
	assert.Equal(t, "board", reloaded.String(KeyLastDocument))
	assert.Equal(t, 1280.0, reloaded.Float(KeyWindowWidth))
	assert.True(t, reloaded.Bool(KeyShowGrid, false))
}

func TestDefaults(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))

	assert.Equal(t, 0.0, p.Float(KeyWindowWidth))
	assert.Equal(t, 900.0, p.FloatWithFallback(KeyWindowHeight, 900))
	assert.Empty(t, p.String(KeyLastDocument))
	assert.True(t, p.Bool(KeyShowGrid, true))
}
