package metrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const bandManifestVersion = "1"

// BandManifestVersion exposes the supported band manifest format version.
const BandManifestVersion = bandManifestVersion

// BandManifest is a YAML document listing band sets.
type BandManifest struct {
	Version string    `json:"version" yaml:"version"`
	Sets    []BandSet `json:"bands" yaml:"bands"`
	Source  string    `json:"-" yaml:"-"`
}

const bandManifestSchema = `{
  "type": "object",
  "required": ["bands"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": ["string", "number"]},
    "bands": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "family", "bands"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "family": {"enum": ["rate", "currency", "risk"]},
          "bands": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["min", "level"],
              "additionalProperties": false,
              "properties": {
                "min": {"type": "number"},
                "level": {"type": "string", "pattern": "(?i)^(poor|fair|good|excellent)$"}
              }
            }
          }
        }
      }
    }
  }
}`

var (
	manifestSchemaOnce sync.Once
	manifestSchema     *jsonschema.Schema
	manifestSchemaErr  error
)

func bandManifestJSONSchema() (*jsonschema.Schema, error) {
	manifestSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("bands.json", bytes.NewReader([]byte(bandManifestSchema))); err != nil {
			manifestSchemaErr = fmt.Errorf("metrics: load band manifest schema: %w", err)
			return
		}
		manifestSchema, manifestSchemaErr = compiler.Compile("bands.json")
	})
	return manifestSchema, manifestSchemaErr
}

// ReadBandManifest loads a band manifest from disk.
func ReadBandManifest(path string) (*BandManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("metrics: open band manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeBandManifest(f)
	if err != nil {
		return nil, fmt.Errorf("metrics: decode band manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeBandManifest reads, schema-checks and validates a band manifest.
func DecodeBandManifest(r io.Reader) (*BandManifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("metrics: read band manifest: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ConfigurationError{Reason: "band manifest is empty"}
	}
	if err := validateManifestShape(data); err != nil {
		return nil, err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var doc BandManifest
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("metrics: parse band manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = bandManifestVersion
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the version, every set and name uniqueness.
func (m *BandManifest) Validate() error {
	if m.Version != bandManifestVersion {
		return configErrorf("unsupported band manifest version %q", m.Version)
	}
	var errs error
	seen := make(map[string]struct{}, len(m.Sets))
	for _, set := range m.Sets {
		if err := set.Validate(); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if _, dup := seen[set.Name]; dup {
			errs = errors.Join(errs, configErrorf("band manifest duplicates set %s", set.Name))
		}
		seen[set.Name] = struct{}{}
	}
	return errs
}

// Catalog indexes the manifest sets.
func (m *BandManifest) Catalog() (*BandCatalog, error) {
	return NewBandCatalog(m.Sets...)
}

// Encode writes the manifest as YAML.
func (m *BandManifest) Encode(w io.Writer) error {
	out := *m
	if out.Version == "" {
		out.Version = bandManifestVersion
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("metrics: encode band manifest: %w", err)
	}
	return nil
}

func validateManifestShape(data []byte) error {
	schema, err := bandManifestJSONSchema()
	if err != nil {
		return err
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("metrics: parse band manifest: %w", err)
	}
	encoded, err := json.Marshal(jsonSafe(raw))
	if err != nil {
		return fmt.Errorf("metrics: normalize band manifest: %w", err)
	}
	var payload any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return fmt.Errorf("metrics: normalize band manifest: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return &ConfigurationError{Reason: "band manifest failed schema validation: " + err.Error()}
	}
	return nil
}

// jsonSafe rewrites values JSON cannot carry. A -.inf band floor becomes the
// lowest finite float so it still validates as a number; +Inf and NaN become
// strings and fail the schema.
func jsonSafe(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = jsonSafe(value)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			out[i] = jsonSafe(value)
		}
		return out
	case float64:
		if math.IsInf(typed, -1) {
			return -math.MaxFloat64
		}
		if math.IsInf(typed, 1) || math.IsNaN(typed) {
			return fmt.Sprint(typed)
		}
		return typed
	}
	return v
}
