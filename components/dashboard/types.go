package dashboard

// ProviderRegistry stores widget definitions and their providers.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// WidgetDefinition describes a metric widget and its configuration schema.
// Bands names the default band set used to classify the widget's headline value.
type WidgetDefinition struct {
	Code        string         `json:"code" yaml:"code"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Category    string         `json:"category,omitempty" yaml:"category,omitempty"`
	Bands       string         `json:"bands,omitempty" yaml:"bands,omitempty"`
}

// WidgetInstance is a configured widget placed on a dashboard.
type WidgetInstance struct {
	ID            string         `json:"id" yaml:"id"`
	DefinitionID  string         `json:"definition" yaml:"definition"`
	Configuration map[string]any `json:"configuration,omitempty" yaml:"configuration,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ViewerContext captures the user the dashboard is resolved for.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}
