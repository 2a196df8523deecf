package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInitializesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	config, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:1337", config.ServerURL)
	assert.Equal(t, 120, config.RequestTimeout)
	require.NotNil(t, config.Viewer)
	assert.Equal(t, "localhost:8322", config.Viewer.ListenAddress)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestParseMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"server_url": "https://strata.example.com", "database": {"path": "/tmp/strata-test.db"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	config, err := Parse(path)
	require.NoError(t, err)

	// User values win.
	assert.Equal(t, "https://strata.example.com", config.ServerURL)
	assert.Equal(t, "/tmp/strata-test.db", config.Database.Path)
	// Omitted values come from the defaults.
	assert.Equal(t, 120, config.RequestTimeout)
	require.NotNil(t, config.Chat)
}

func TestSaveRoundTripsToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	config, err := Parse(path)
	require.NoError(t, err)

	config.Token = "session-token"
	require.NoError(t, config.Save(path))

	reloaded, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "session-token", reloaded.Token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
