package metrics

import (
	"math"
	"sort"

	"github.com/ettle/strcase"
)

// BandFamily tags the kind of metric a band set applies to.
type BandFamily string

const (
	// FamilyRate covers percentages where higher is better (conversion, uptime).
	FamilyRate BandFamily = "rate"
	// FamilyCurrency covers money values; thresholds are metric specific.
	FamilyCurrency BandFamily = "currency"
	// FamilyRisk covers scores where higher is worse (churn risk, fraud score).
	FamilyRisk BandFamily = "risk"
)

// Valid reports whether f is a known family.
func (f BandFamily) Valid() bool {
	switch f {
	case FamilyRate, FamilyCurrency, FamilyRisk:
		return true
	}
	return false
}

// BandSet is a named, ordered list of bands for one metric family.
type BandSet struct {
	Name   string          `json:"name" yaml:"name"`
	Family BandFamily      `json:"family" yaml:"family"`
	Bands  []ThresholdBand `json:"bands" yaml:"bands"`
}

// Validate checks the family, name and band ordering.
func (s BandSet) Validate() error {
	if s.Name == "" {
		return configErrorf("band set name is required")
	}
	if !s.Family.Valid() {
		return configErrorf("band set %s has unknown family %q", s.Name, s.Family)
	}
	if err := ValidateBands(s.Bands); err != nil {
		return configErrorf("band set %s: %v", s.Name, err)
	}
	return nil
}

// Classify classifies value and prefixes the category key with the family,
// e.g. "rate.good".
func (s BandSet) Classify(value float64) (Classification, error) {
	class, err := Classify(value, s.Bands)
	if err != nil {
		return Classification{}, err
	}
	class.CategoryKey = s.Key() + "." + class.CategoryKey
	return class, nil
}

// Key returns the family key, or the snake-cased name when no family is set.
func (s BandSet) Key() string {
	if s.Family != "" {
		return string(s.Family)
	}
	return strcase.ToSnake(s.Name)
}

// Clone returns a deep copy so callers can adjust bands without sharing.
func (s BandSet) Clone() BandSet {
	out := s
	out.Bands = append([]ThresholdBand(nil), s.Bands...)
	return out
}

// RateBands is the default set for percentages: 0 Poor, 40 Fair, 60 Good,
// 80 Excellent.
func RateBands() BandSet {
	return BandSet{
		Name:   "rate",
		Family: FamilyRate,
		Bands: []ThresholdBand{
			{MinInclusive: 0, Level: LevelPoor},
			{MinInclusive: 40, Level: LevelFair},
			{MinInclusive: 60, Level: LevelGood},
			{MinInclusive: 80, Level: LevelExcellent},
		},
	}
}

// RiskBands is the inverted set for risk scores: under 40 is Excellent and 80
// or more is Poor.
func RiskBands() BandSet {
	return BandSet{
		Name:   "risk",
		Family: FamilyRisk,
		Bands: []ThresholdBand{
			{MinInclusive: math.Inf(-1), Level: LevelExcellent},
			{MinInclusive: 40, Level: LevelGood},
			{MinInclusive: 60, Level: LevelFair},
			{MinInclusive: 80, Level: LevelPoor},
		},
	}
}

// NewCurrencyBands builds a currency set from caller thresholds. Values below
// fair, including negatives, classify as Poor.
func NewCurrencyBands(name string, fair, good, excellent float64) (BandSet, error) {
	set := BandSet{
		Name:   name,
		Family: FamilyCurrency,
		Bands: []ThresholdBand{
			{MinInclusive: math.Inf(-1), Level: LevelPoor},
			{MinInclusive: fair, Level: LevelFair},
			{MinInclusive: good, Level: LevelGood},
			{MinInclusive: excellent, Level: LevelExcellent},
		},
	}
	if err := set.Validate(); err != nil {
		return BandSet{}, err
	}
	return set, nil
}

// BandCatalog indexes band sets by name. Populate it before sharing it;
// Add and Merge must not run concurrently with lookups.
type BandCatalog struct {
	sets map[string]BandSet
}

// NewBandCatalog validates and indexes the provided sets. Later sets replace
// earlier ones with the same name.
func NewBandCatalog(sets ...BandSet) (*BandCatalog, error) {
	catalog := &BandCatalog{sets: make(map[string]BandSet, len(sets))}
	for _, set := range sets {
		if err := catalog.Add(set); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// DefaultBandCatalog holds the rate and risk defaults. Currency sets are
// metric specific and must be added by the caller.
func DefaultBandCatalog() *BandCatalog {
	return &BandCatalog{sets: map[string]BandSet{
		"rate": RateBands(),
		"risk": RiskBands(),
	}}
}

// Add validates and stores a set.
func (c *BandCatalog) Add(set BandSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	c.sets[set.Name] = set.Clone()
	return nil
}

// Lookup returns a copy of the named set.
func (c *BandCatalog) Lookup(name string) (BandSet, bool) {
	if c == nil {
		return BandSet{}, false
	}
	set, ok := c.sets[name]
	if !ok {
		return BandSet{}, false
	}
	return set.Clone(), true
}

// Classify classifies value with the named set.
func (c *BandCatalog) Classify(name string, value float64) (Classification, error) {
	set, ok := c.Lookup(name)
	if !ok {
		return Classification{}, configErrorf("band set %q not registered", name)
	}
	return set.Classify(value)
}

// Names returns the registered set names in sorted order.
func (c *BandCatalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.sets))
	for name := range c.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies every set of other into c, replacing sets with the same name.
func (c *BandCatalog) Merge(other *BandCatalog) {
	if other == nil {
		return
	}
	for name, set := range other.sets {
		c.sets[name] = set.Clone()
	}
}
