package dashboard

// Widget definition codes for the built-in metric widgets.
const (
	WidgetFunnel          = "kpi.widget.funnel"
	WidgetCohortRetention = "kpi.widget.cohort_retention"
	WidgetRevenue         = "kpi.widget.revenue"
	WidgetMargins         = "kpi.widget.margins"
	WidgetROI             = "kpi.widget.roi"
	WidgetScore           = "kpi.widget.score"
)

// providerKinds maps the provider kinds a manifest widget may reuse to the
// built-in widget whose provider serves it.
var providerKinds = map[string]string{
	"funnel":           WidgetFunnel,
	"cohort_retention": WidgetCohortRetention,
	"revenue":          WidgetRevenue,
	"margins":          WidgetMargins,
	"roi":              WidgetROI,
	"score":            WidgetScore,
}

var rangeEnum = []string{"7d", "14d", "30d", "90d", "180d", "365d"}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code:        WidgetFunnel,
		Name:        "Conversion Funnel",
		Description: "Stage conversion, drop-off and the worst bottleneck.",
		Category:    "analytics",
		Bands:       "rate",
		Schema: sourceSchema(map[string]any{
			"goal": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		}),
	},
	{
		Code:        WidgetCohortRetention,
		Name:        "Cohort Retention",
		Description: "Monthly new vs retained users with retention badges.",
		Category:    "analytics",
		Bands:       "rate",
		Schema: sourceSchema(map[string]any{
			"window":         map[string]any{"type": "integer", "minimum": 1, "maximum": 120},
			"high_threshold": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"low_threshold":  map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		}),
	},
	{
		Code:        WidgetRevenue,
		Name:        "Revenue per User",
		Description: "ARPU, ARPPU, paying conversion, order value and segment CLV.",
		Category:    "finance",
		Bands:       "rate",
		Schema: sourceSchema(map[string]any{
			"arpu_bands": map[string]any{"type": "string", "minLength": 1},
			"clv_bands":  map[string]any{"type": "string", "minLength": 1},
		}),
	},
	{
		Code:        WidgetMargins,
		Name:        "Margins",
		Description: "Gross, operating and net margin.",
		Category:    "finance",
		Bands:       "rate",
		Schema:      sourceSchema(nil),
	},
	{
		Code:        WidgetROI,
		Name:        "Return on Investment",
		Description: "Return relative to the invested amount.",
		Category:    "finance",
		Bands:       "rate",
		Schema:      sourceSchema(nil),
	},
	{
		Code:        WidgetScore,
		Name:        "Score",
		Description: "Classifies a single score such as uptime, health or risk.",
		Category:    "status",
		Schema:      sourceSchema(nil, "bands"),
	},
}

// DefaultWidgetDefinitions returns a copy of the built-in metric widget
// definitions. Schemas are deep copied and safe to modify.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	for i, def := range defaultWidgetDefinitions {
		def.Schema = cloneSchemaMap(def.Schema)
		out[i] = def
	}
	return out
}

func cloneSchemaMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = cloneSchemaValue(v)
	}
	return out
}

func cloneSchemaValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneSchemaMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneSchemaValue(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return v
	}
}

func sourceSchema(extra map[string]any, required ...string) map[string]any {
	props := map[string]any{
		"source":  map[string]any{"type": "string", "minLength": 1},
		"range":   map[string]any{"type": "string", "enum": rangeEnum},
		"segment": map[string]any{"type": "string", "minLength": 1},
		"bands":   map[string]any{"type": "string", "minLength": 1},
	}
	for key, value := range extra {
		props[key] = value
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
