package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDefaultRateBandBoundaries(t *testing.T) {
	bands := RateBands().Bands
	cases := []struct {
		value float64
		want  Level
	}{
		{0, LevelPoor},
		{39.999, LevelPoor},
		{40, LevelFair},
		{59.99, LevelFair},
		{60, LevelGood},
		{79.999, LevelGood},
		{80, LevelExcellent},
		{250, LevelExcellent},
	}
	for _, tc := range cases {
		class, err := Classify(tc.value, bands)
		require.NoError(t, err)
		assert.Equal(t, tc.want, class.Level, "value %v", tc.value)
		assert.Equal(t, tc.want.Key(), class.CategoryKey)
	}
}

func TestClassifyRejectsBadConfiguration(t *testing.T) {
	_, err := Classify(10, nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = Classify(-1, RateBands().Bands)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Reason, "below lowest band")

	_, err = Classify(10, []ThresholdBand{{MinInclusive: 50, Level: LevelGood}, {MinInclusive: 0, Level: LevelPoor}})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = Classify(10, []ThresholdBand{{MinInclusive: 0}})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestClassifyRejectsNaN(t *testing.T) {
	_, err := Classify(math.NaN(), RateBands().Bands)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestBandSetClassifyPrefixesFamily(t *testing.T) {
	class, err := RateBands().Classify(65)
	require.NoError(t, err)
	assert.Equal(t, LevelGood, class.Level)
	assert.Equal(t, "rate.good", class.CategoryKey)
}

func TestRiskBandsAreInverted(t *testing.T) {
	risk := RiskBands()
	for value, want := range map[float64]Level{-5: LevelExcellent, 10: LevelExcellent, 45: LevelGood, 61: LevelFair, 95: LevelPoor} {
		class, err := risk.Classify(value)
		require.NoError(t, err)
		assert.Equal(t, want, class.Level, "value %v", value)
	}
}

func TestCurrencyBandsRequireCallerThresholds(t *testing.T) {
	arpu, err := NewCurrencyBands("arpu", 20, 50, 100)
	require.NoError(t, err)
	class, err := arpu.Classify(100)
	require.NoError(t, err)
	assert.Equal(t, "currency.excellent", class.CategoryKey)

	class, err = arpu.Classify(-30)
	require.NoError(t, err)
	assert.Equal(t, LevelPoor, class.Level)

	_, err = NewCurrencyBands("clv", 500, 300, 1000)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLevelTextRoundTrip(t *testing.T) {
	for _, level := range Levels() {
		text, err := level.MarshalText()
		require.NoError(t, err)
		var decoded Level
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, level, decoded)
	}
	_, err := ParseLevel("stellar")
	assert.ErrorIs(t, err, ErrConfiguration)
	level, err := ParseLevel(" EXCELLENT ")
	require.NoError(t, err)
	assert.Equal(t, LevelExcellent, level)
	assert.Equal(t, "Level(0)", Level(0).String())
}

func TestBandCatalog(t *testing.T) {
	catalog := DefaultBandCatalog()
	assert.Equal(t, []string{"rate", "risk"}, catalog.Names())

	arpu, err := NewCurrencyBands("arpu", 20, 50, 100)
	require.NoError(t, err)
	require.NoError(t, catalog.Add(arpu))

	class, err := catalog.Classify("arpu", 60)
	require.NoError(t, err)
	assert.Equal(t, LevelGood, class.Level)

	_, err = catalog.Classify("missing", 1)
	assert.ErrorIs(t, err, ErrConfiguration)

	set, ok := catalog.Lookup("rate")
	require.True(t, ok)
	set.Bands[0].Level = LevelExcellent
	again, _ := catalog.Lookup("rate")
	assert.Equal(t, LevelPoor, again.Bands[0].Level)

	assert.Error(t, catalog.Add(BandSet{Name: "broken", Family: FamilyRate}))
}

func TestClassifyIsIdempotent(t *testing.T) {
	bands := RateBands().Bands
	first, err := Classify(72.5, bands)
	require.NoError(t, err)
	second, err := Classify(72.5, bands)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
