package dexconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apkreader.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
dump = "methods"
verbose = 2
strict = true
workers = 4
`)
	c, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, &Config{
		Dump:         "methods",
		Verbose:      2,
		Strict:       true,
		CacheStrings: true,
		Workers:      4,
	}, c)
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeConfig(t, `dump = `))
	require.ErrorContains(t, err, "failed to parse config file")

	_, err = LoadConfig(writeConfig(t, `colour = "blue"`))
	require.ErrorContains(t, err, "failed to parse config file")

	_, err = LoadConfig(writeConfig(t, `workers = -1`))
	require.EqualError(t, err, "invalid workers -1")
}

func TestMarshalRoundTrip(t *testing.T) {
	c := Default()
	c.Dump = "classes"
	c.Strict = true
	b, err := c.Marshal()
	require.NoError(t, err)

	got, err := LoadConfig(writeConfig(t, string(b)))
	require.NoError(t, err)
	require.Equal(t, c, got)
}
