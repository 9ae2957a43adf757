package dashboard

import (
	"strings"
	"testing"
)

func TestJSONSchemaValidatorRejectsInvalidPayload(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := WidgetDefinition{
		Code: "demo.widget.string_required",
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"bands"},
			"properties": map[string]any{
				"bands": map[string]any{"type": "string", "minLength": 1},
			},
		},
	}
	if err := validator.Validate(def, map[string]any{"bands": "rate"}); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if err := validator.Validate(def, map[string]any{}); err == nil {
		t.Fatalf("expected validation error for missing bands")
	}
}

func TestJSONSchemaValidatorCachesCompiledSchemas(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := WidgetDefinition{
		Code:   "demo.widget.cache",
		Schema: map[string]any{"type": "object"},
	}
	if err := validator.Validate(def, nil); err != nil {
		t.Fatalf("unexpected error validating config: %v", err)
	}
	if len(validator.compiled) != 1 {
		t.Fatalf("expected schema cache to contain 1 entry, got %d", len(validator.compiled))
	}
	if err := validator.Validate(def, map[string]any{}); err != nil {
		t.Fatalf("unexpected error on cached validation: %v", err)
	}
	if len(validator.compiled) != 1 {
		t.Fatalf("expected schema cache to remain 1 entry, got %d", len(validator.compiled))
	}
}

func TestDefaultDefinitionSchemasCompile(t *testing.T) {
	validator := NewJSONSchemaValidator()
	for _, def := range DefaultWidgetDefinitions() {
		config := map[string]any{"source": "default", "range": "30d"}
		if def.Code == WidgetScore {
			config["bands"] = "rate"
		}
		if err := validator.Validate(def, config); err != nil {
			t.Fatalf("default config for %s rejected: %v", def.Code, err)
		}
	}
}

func TestJSONSchemaValidatorRecompilesRedefinedSchemas(t *testing.T) {
	validator := NewJSONSchemaValidator()
	loose := WidgetDefinition{
		Code:   "demo.widget.redefined",
		Schema: map[string]any{"type": "object"},
	}
	if err := validator.Validate(loose, map[string]any{}); err != nil {
		t.Fatalf("unexpected error on loose schema: %v", err)
	}

	strict := WidgetDefinition{
		Code: loose.Code,
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"source"},
		},
	}
	err := validator.Validate(strict, map[string]any{})
	if err == nil {
		t.Fatalf("expected redefined schema to require source")
	}
	if !strings.Contains(err.Error(), "metric widget demo.widget.redefined") {
		t.Fatalf("expected error to name the widget, got %v", err)
	}
	if len(validator.compiled) != 2 {
		t.Fatalf("expected one cache entry per schema, got %d", len(validator.compiled))
	}
}
