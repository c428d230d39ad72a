package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLibraryLocales(t *testing.T) {
	lib := MustNewDefaultLibrary()

	locales := lib.Locales()
	assert.Contains(t, locales, "US")
	assert.Contains(t, locales, "DE")
	assert.Contains(t, locales, "FR")
	assert.Contains(t, locales, "IT")
}

func TestCategoriesFor(t *testing.T) {
	lib := MustNewDefaultLibrary()

	universal, err := lib.CategoriesFor(nil)
	require.NoError(t, err)
	assert.Contains(t, universal, "email")
	assert.Contains(t, universal, "credit_card")
	assert.NotContains(t, universal, "ssn", "locale-scoped categories must not leak into universal scans")

	us, err := lib.CategoriesFor([]string{"US"})
	require.NoError(t, err)
	assert.Contains(t, us, "ssn")
	assert.Contains(t, us, "email")
	assert.NotContains(t, us, "national_id")
}

func TestPatternsForNormalizesLocales(t *testing.T) {
	lib := MustNewDefaultLibrary()

	lower, err := lib.PatternsFor([]string{" de "})
	require.NoError(t, err)
	upper, err := lib.PatternsFor([]string{"DE"})
	require.NoError(t, err)
	assert.Len(t, lower, len(upper))

	// Duplicates collapse instead of doubling the pattern set.
	dup, err := lib.PatternsFor([]string{"DE", "de"})
	require.NoError(t, err)
	assert.Len(t, dup, len(upper))
}

func TestPatternsForUnknownLocale(t *testing.T) {
	lib := MustNewDefaultLibrary()

	_, err := lib.PatternsFor([]string{"ZZ"})
	var unknown *UnknownLocaleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ZZ", unknown.Locale)
}

func TestRegisterSwapsSnapshot(t *testing.T) {
	lib, err := NewLibrary([]RecognizerConfig{{
		Name:     "Ticket",
		Category: "ticket",
		Patterns: []PatternConfig{{Name: "v1", Regex: `\bTKT-\d{4}\b`, Score: 0.9}},
	}})
	require.NoError(t, err)

	before, err := lib.PatternsFor(nil)
	require.NoError(t, err)
	require.Len(t, before, 1)

	err = lib.Register(RecognizerConfig{
		Name:     "Badge",
		Category: "badge",
		Patterns: []PatternConfig{{Name: "v1", Regex: `\bBDG-\d{4}\b`, Score: 0.9}},
	})
	require.NoError(t, err)

	after, err := lib.PatternsFor(nil)
	require.NoError(t, err)
	assert.Len(t, after, 2)

	// The snapshot taken before registration is unaffected.
	assert.Len(t, before, 1)
}

func TestRegisterOverridesByName(t *testing.T) {
	lib, err := NewLibrary([]RecognizerConfig{{
		Name:     "Ticket",
		Category: "ticket",
		Patterns: []PatternConfig{{Name: "v1", Regex: `\bTKT-\d{4}\b`, Score: 0.9}},
	}})
	require.NoError(t, err)

	err = lib.Register(RecognizerConfig{
		Name:     "Ticket",
		Category: "ticket",
		Patterns: []PatternConfig{{Name: "v2", Regex: `\bTKT-\d{6}\b`, Score: 0.9}},
	})
	require.NoError(t, err)

	detector := NewDetector(lib, DetectorConfig{})
	result, err := detector.Detect("see TKT-1234 and TKT-123456", nil, 0.5)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "TKT-123456", result.Matches[0].Value)
}

func TestRegisterInvalidRegexRejected(t *testing.T) {
	lib := MustNewDefaultLibrary()
	before := len(lib.Recognizers())

	err := lib.Register(RecognizerConfig{
		Name:     "Broken",
		Category: "broken",
		Patterns: []PatternConfig{{Name: "bad", Regex: `[unclosed`, Score: 0.5}},
	})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Broken", cfgErr.Recognizer)
	assert.Len(t, lib.Recognizers(), before, "failed registration must not change the library")
}

func TestRegisterScoreOutOfRange(t *testing.T) {
	lib := MustNewDefaultLibrary()

	err := lib.Register(RecognizerConfig{
		Name:     "Hot",
		Category: "hot",
		Patterns: []PatternConfig{{Name: "p", Regex: `x`, Score: 1.5}},
	})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestMixedScopingRejected(t *testing.T) {
	_, err := NewLibrary([]RecognizerConfig{
		{
			Name:     "Universal ID",
			Category: "id",
			Patterns: []PatternConfig{{Name: "p", Regex: `\d+`, Score: 0.5}},
		},
		{
			Name:      "German ID",
			Category:  "id",
			Countries: []string{"DE"},
			Patterns:  []PatternConfig{{Name: "p", Regex: `\d+`, Score: 0.5}},
		},
	})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestDisabledRecognizerSkipped(t *testing.T) {
	disabled := false
	lib, err := NewLibrary([]RecognizerConfig{{
		Name:     "Off",
		Category: "off",
		Enabled:  &disabled,
		Patterns: []PatternConfig{{Name: "p", Regex: `\bOFF\b`, Score: 0.9}},
	}})
	require.NoError(t, err)

	patterns, err := lib.PatternsFor(nil)
	require.NoError(t, err)
	assert.Empty(t, patterns)
}
