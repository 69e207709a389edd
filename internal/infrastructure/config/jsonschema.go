package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

const schemaFileName = "config.schema.json"

// Schema returns the JSON schema describing config.toml.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag:              "toml",
		AllowAdditionalProperties: false,
	}
	schema := r.Reflect(&Config{})

	schema.ID = "https://github.com/bnema/pagekit/config.schema.json"
	schema.Title = "pagekit configuration"
	schema.Description = "Configuration schema for pagekit favicon and download tooling"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// WriteSchemaFile writes the schema next to config.toml and returns its path.
func (m *Manager) WriteSchemaFile() (string, error) {
	data, err := Schema()
	if err != nil {
		return "", err
	}

	path := filepath.Join(m.configDir, schemaFileName)
	if err := os.MkdirAll(m.configDir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write schema file: %w", err)
	}
	return path, nil
}
