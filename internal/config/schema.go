package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects the settings record into a JSON schema document,
// suitable for editor completion of config.toml.
func GenerateSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	schema := r.Reflect(&Settings{})

	schema.ID = "https://github.com/bnema/umbra/config.schema.json"
	schema.Title = "Umbra Configuration"
	schema.Description = "Configuration schema for umbra, a dark-mode theming engine for HTML documents"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
