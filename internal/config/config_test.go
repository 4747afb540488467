package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsZeroConfig(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "whyc.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &File{}, f)
}

func TestLoadParsesYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whyc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language_version: \"^0.1\"\n"), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "^0.1", f.LanguageVersion)
}

func TestLoadMalformedYamlFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whyc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language_version: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestMergeLanguageVersionFlagWins(t *testing.T) {
	f := &File{LanguageVersion: "^0.1"}

	assert.Equal(t, "^0.2", f.MergeLanguageVersion("^0.2"))
	assert.Equal(t, "^0.1", f.MergeLanguageVersion(""))
	assert.Equal(t, "", (&File{}).MergeLanguageVersion(""))
}
