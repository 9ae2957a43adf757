package analytics

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	dashboard "github.com/goliatone/go-kpi/components/dashboard"
	"github.com/goliatone/go-kpi/components/metrics"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Fixtures is a file-backed dataset. Every section is keyed by the dataset
// name widgets select through their "source" configuration.
type Fixtures struct {
	Funnels     map[string][]StageFixture    `yaml:"funnels" validate:"dive,min=1,dive"`
	Cohorts     map[string][]CohortFixture   `yaml:"cohorts" validate:"dive,dive"`
	Revenue     map[string]RevenueFixture    `yaml:"revenue" validate:"dive"`
	Margins     map[string]MarginFixture     `yaml:"margins" validate:"dive"`
	Investments map[string]InvestmentFixture `yaml:"investments" validate:"dive"`
	Scores      map[string]ScoreFixture      `yaml:"scores" validate:"dive"`
	Widgets     []WidgetFixture              `yaml:"widgets" validate:"dive"`
}

// StageFixture is one funnel stage.
type StageFixture struct {
	Name  string `yaml:"name" validate:"required"`
	Count int    `yaml:"count" validate:"min=0"`
}

// CohortFixture is one monthly cohort. Period uses the "2006-01" layout.
type CohortFixture struct {
	Period   string `yaml:"period" validate:"required,period"`
	New      int    `yaml:"new" validate:"min=0"`
	Retained int    `yaml:"retained" validate:"min=0"`
}

// RevenueFixture is revenue over a user base plus optional order and
// segment data.
type RevenueFixture struct {
	Total        float64          `yaml:"total" validate:"gte=0"`
	Users        int              `yaml:"users" validate:"min=0"`
	Paying       int              `yaml:"paying" validate:"min=0,ltefield=Users"`
	Previous     float64          `yaml:"previous" validate:"gte=0"`
	Orders       int              `yaml:"orders" validate:"min=0"`
	OrderRevenue float64          `yaml:"order_revenue" validate:"gte=0"`
	Segments     []SegmentFixture `yaml:"segments" validate:"dive"`
}

// SegmentFixture holds CLV drivers for a customer segment.
type SegmentFixture struct {
	Name              string  `yaml:"name" validate:"required"`
	AverageOrderValue float64 `yaml:"average_order_value" validate:"gte=0"`
	PurchaseFrequency float64 `yaml:"purchase_frequency" validate:"gte=0"`
	LifespanMonths    float64 `yaml:"lifespan_months" validate:"gte=0"`
}

// MarginFixture carries a revenue and cost basis.
type MarginFixture struct {
	Revenue       float64 `yaml:"revenue" validate:"gte=0"`
	COGS          float64 `yaml:"cogs" validate:"gte=0"`
	Opex          float64 `yaml:"opex" validate:"gte=0"`
	TotalExpenses float64 `yaml:"total_expenses" validate:"gte=0"`
}

// InvestmentFixture is an investment and the value it returned.
type InvestmentFixture struct {
	Investment float64 `yaml:"investment" validate:"gte=0"`
	Value      float64 `yaml:"value" validate:"gte=0"`
}

// ScoreFixture is a named score. Previous is optional.
type ScoreFixture struct {
	Value    float64  `yaml:"value"`
	Previous *float64 `yaml:"previous"`
}

// WidgetFixture describes a widget instance to resolve against the dataset.
type WidgetFixture struct {
	ID            string         `yaml:"id"`
	Definition    string         `yaml:"definition" validate:"required"`
	Configuration map[string]any `yaml:"configuration"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func fixtureValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("period", func(fl validator.FieldLevel) bool {
			_, err := metrics.ParsePeriod(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// LoadFixtures reads and validates a fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("analytics: open fixtures %s: %w", path, err)
	}
	defer f.Close()
	fixtures, err := DecodeFixtures(f)
	if err != nil {
		return nil, fmt.Errorf("analytics: %s: %w", path, err)
	}
	return fixtures, nil
}

// DecodeFixtures parses YAML fixtures from any reader. Unknown fields are rejected.
func DecodeFixtures(r io.Reader) (*Fixtures, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var fixtures Fixtures
	if err := decoder.Decode(&fixtures); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("analytics: fixtures are empty")
		}
		return nil, fmt.Errorf("analytics: parse fixtures: %w", err)
	}
	if err := fixtures.Validate(); err != nil {
		return nil, err
	}
	return &fixtures, nil
}

// Validate checks every record against its struct tags.
func (f *Fixtures) Validate() error {
	err := fixtureValidator().Struct(f)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("analytics: validate fixtures: %w", err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describeFieldError(fe))
	}
	return fmt.Errorf("analytics: invalid fixtures: %s", strings.Join(messages, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "period":
		return fmt.Sprintf("%s must be a YYYY-MM period, got %v", field, fe.Value())
	case "min", "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// Instances converts widget fixtures into dashboard instances. Widgets
// without an id get a random UUID.
func (f *Fixtures) Instances() []dashboard.WidgetInstance {
	instances := make([]dashboard.WidgetInstance, 0, len(f.Widgets))
	for _, widget := range f.Widgets {
		id := widget.ID
		if id == "" {
			id = uuid.NewString()
		}
		config := make(map[string]any, len(widget.Configuration))
		for k, v := range widget.Configuration {
			config[k] = v
		}
		instances = append(instances, dashboard.WidgetInstance{
			ID:            id,
			DefinitionID:  widget.Definition,
			Configuration: config,
		})
	}
	return instances
}
