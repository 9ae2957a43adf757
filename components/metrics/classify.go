package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/ettle/strcase"
)

// Level is an ordered qualitative band. The zero value is not a valid level.
type Level int

// Levels from worst to best.
const (
	LevelPoor Level = iota + 1
	LevelFair
	LevelGood
	LevelExcellent
)

var levelNames = map[Level]string{
	LevelPoor:      "Poor",
	LevelFair:      "Fair",
	LevelGood:      "Good",
	LevelExcellent: "Excellent",
}

// Levels lists every valid level from worst to best.
func Levels() []Level {
	return []Level{LevelPoor, LevelFair, LevelGood, LevelExcellent}
}

// ParseLevel accepts a level name in any case.
func ParseLevel(value string) (Level, error) {
	needle := strings.TrimSpace(value)
	for _, level := range Levels() {
		if strings.EqualFold(levelNames[level], needle) {
			return level, nil
		}
	}
	return 0, configErrorf("unknown level %q", value)
}

// Valid reports whether l is one of the declared levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Key returns the stable snake_case key for the level ("excellent").
func (l Level) Key() string {
	if !l.Valid() {
		return ""
	}
	return strcase.ToSnake(levelNames[l])
}

// MarshalText encodes the level by key.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, configErrorf("cannot encode invalid level %d", int(l))
	}
	return []byte(l.Key()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Classification is the classifier output. CategoryKey is stable across
// locales and themes so presentation can map it to labels and colors.
type Classification struct {
	Level       Level  `json:"level" yaml:"level"`
	CategoryKey string `json:"category_key" yaml:"category_key"`
}

// ThresholdBand assigns Level to every value >= MinInclusive up to the next band.
type ThresholdBand struct {
	MinInclusive float64 `json:"min" yaml:"min"`
	Level        Level   `json:"level" yaml:"level"`
}

// Classify returns the level of the highest band whose MinInclusive <= value.
// Bands must be sorted ascending and the lowest band must cover value.
func Classify(value float64, bands []ThresholdBand) (Classification, error) {
	if err := ValidateBands(bands); err != nil {
		return Classification{}, err
	}
	if math.IsNaN(value) {
		return Classification{}, rangeError("classified value", value)
	}
	idx := -1
	for i, band := range bands {
		if band.MinInclusive <= value {
			idx = i
			continue
		}
		break
	}
	if idx < 0 {
		return Classification{}, configErrorf("value %v below lowest band minimum %v", value, bands[0].MinInclusive)
	}
	level := bands[idx].Level
	return Classification{Level: level, CategoryKey: level.Key()}, nil
}

// ValidateBands checks that bands are non-empty, sorted strictly ascending
// and carry valid levels.
func ValidateBands(bands []ThresholdBand) error {
	if len(bands) == 0 {
		return configErrorf("threshold bands are empty")
	}
	for i, band := range bands {
		if math.IsNaN(band.MinInclusive) {
			return configErrorf("band %d has NaN minimum", i)
		}
		if !band.Level.Valid() {
			return configErrorf("band %d has invalid level %d", i, int(band.Level))
		}
		if i > 0 && !(band.MinInclusive > bands[i-1].MinInclusive) {
			return configErrorf("band %d minimum %v not above previous %v", i, band.MinInclusive, bands[i-1].MinInclusive)
		}
	}
	return nil
}
