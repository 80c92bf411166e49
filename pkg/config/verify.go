package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema map[string]any
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateSourceKinds(schema, cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return fmt.Errorf("server.timeout is required")
	}
	if cfg.Snapshot.Path == "" {
		return fmt.Errorf("snapshot.path is required")
	}
	for i, src := range cfg.Sources {
		if src.Kind == "" {
			return fmt.Errorf("sources[%d].kind is required", i)
		}
		if src.URL == "" {
			return fmt.Errorf("sources[%d].url is required", i)
		}
	}
	return nil
}

// validateSourceKinds checks source kinds against the enum declared in the schema
func validateSourceKinds(schema map[string]any, cfg *Config) error {
	defs, _ := schema["$defs"].(map[string]any)
	srcDef, _ := defs["SourceConfig"].(map[string]any)
	props, _ := srcDef["properties"].(map[string]any)
	kind, _ := props["kind"].(map[string]any)
	rawEnum, ok := kind["enum"].([]any)
	if !ok {
		return fmt.Errorf("schema has no enum for source kind")
	}

	allowed := make([]string, 0, len(rawEnum))
	for _, v := range rawEnum {
		if s, ok := v.(string); ok {
			allowed = append(allowed, s)
		}
	}
	for i, src := range cfg.Sources {
		if !slices.Contains(allowed, src.Kind) {
			return fmt.Errorf("sources[%d].kind %q is not one of %v", i, src.Kind, allowed)
		}
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
