package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteConfigOrdered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Favicon.TouchIconsEnabled = true
	require.NoError(t, WriteConfigOrdered(cfg, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var sections []string
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, "[") {
			sections = append(sections, line)
		}
	}
	assert.Equal(t, []string{"[downloads]", "[favicon]", "[logging]"}, sections)

	var decoded Config
	require.NoError(t, toml.Unmarshal(content, &decoded))
	assert.Equal(t, *cfg, decoded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is renamed into place")
}

func TestWriteConfigOrdered_NilConfig(t *testing.T) {
	assert.Error(t, WriteConfigOrdered(nil, filepath.Join(t.TempDir(), "config.toml")))
}

func TestSortTOMLSections(t *testing.T) {
	input := `title = 'x'

[logging]
level = 'info'

[favicon]
export_size = 32
`
	expected := `title = 'x'

[favicon]
export_size = 32

[logging]
level = 'info'
`
	assert.Equal(t, expected, sortTOMLSections(input))
	assert.Equal(t, "", sortTOMLSections(""))
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "pagekit configuration", doc["title"])
	assert.Contains(t, string(data), "touch_icons_enabled")
	assert.Contains(t, string(data), "download_unrenderable")
}

func TestManager_WriteSchemaFile(t *testing.T) {
	configDir, _, _ := isolate(t)
	m, err := NewManagerWithDir(configDir)
	require.NoError(t, err)

	path, err := m.WriteSchemaFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(configDir, schemaFileName), path)
	assert.FileExists(t, path)
}
