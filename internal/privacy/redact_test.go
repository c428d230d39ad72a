package privacy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactMask(t *testing.T) {
	detector := NewDetector(MustNewDefaultLibrary(), DetectorConfig{})
	text := "Contact John at john.doe@example.com or 555-123-4567"

	scan, err := detector.Detect(text, nil, DefaultMinConfidence)
	require.NoError(t, err)

	redacted, err := Redact(text, scan, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, "Contact John at [REDACTED:email] or [REDACTED:phone]", redacted)
}

func TestRedactRoundTrip(t *testing.T) {
	detector := NewDetector(MustNewDefaultLibrary(), DetectorConfig{})
	text := "SSN 123-45-6789, card 4111111111111111, mail me at a.b@example.org"
	locales := []string{"US"}

	for _, mode := range []RedactionMode{ModeMask, ModeRemove, ModeTokenize} {
		t.Run(string(mode), func(t *testing.T) {
			scan, err := detector.Detect(text, locales, DefaultMinConfidence)
			require.NoError(t, err)
			require.True(t, scan.HasPII)

			policy := DefaultPolicy()
			policy.Mode = mode
			redacted, err := Redact(text, scan, policy)
			require.NoError(t, err)

			rescan, err := detector.Detect(redacted, locales, DefaultMinConfidence)
			require.NoError(t, err)
			assert.False(t, rescan.HasPII, "mode %s left detectable PII: %v", mode, rescan.Counts)

			// A second pass over already-clean text must be the identity.
			again, err := detector.Detect(redacted, locales, DefaultMinConfidence)
			require.NoError(t, err)
			twice, err := Redact(redacted, again, policy)
			require.NoError(t, err)
			assert.Equal(t, redacted, twice)
		})
	}
}

func TestRedactPreserveLength(t *testing.T) {
	detector := NewDetector(MustNewDefaultLibrary(), DetectorConfig{})
	text := "mail: user@example.com ok"

	scan, err := detector.Detect(text, nil, DefaultMinConfidence)
	require.NoError(t, err)
	require.Len(t, scan.Matches, 1)

	policy := Policy{Mode: ModeMask, PreserveLength: true}
	redacted, err := Redact(text, scan, policy)
	require.NoError(t, err)

	assert.Len(t, redacted, len(text))
	assert.Equal(t, "mail: **************** ok", redacted)
}

func TestRedactTokenizeDeterministic(t *testing.T) {
	detector := NewDetector(MustNewDefaultLibrary(), DetectorConfig{})
	policy := Policy{Mode: ModeTokenize}

	first := "reach me at shared@example.com today"
	second := "or shared@example.com works too"

	scanA, err := detector.Detect(first, nil, DefaultMinConfidence)
	require.NoError(t, err)
	redactedA, err := Redact(first, scanA, policy)
	require.NoError(t, err)

	scanB, err := detector.Detect(second, nil, DefaultMinConfidence)
	require.NoError(t, err)
	redactedB, err := Redact(second, scanB, policy)
	require.NoError(t, err)

	tokenA := redactedA[strings.Index(redactedA, "[email#"):strings.Index(redactedA, "]")+1]
	assert.Contains(t, redactedB, tokenA, "equal values must produce equal tokens across documents")
}

func TestRedactRemove(t *testing.T) {
	detector := NewDetector(MustNewDefaultLibrary(), DetectorConfig{})
	text := "before user@example.com after"

	scan, err := detector.Detect(text, nil, DefaultMinConfidence)
	require.NoError(t, err)

	redacted, err := Redact(text, scan, Policy{Mode: ModeRemove})
	require.NoError(t, err)
	assert.Equal(t, "before  after", redacted)
}

func TestRedactMergesAdjacentSpans(t *testing.T) {
	// Hand-built matches abutting each other: removal must not leave a
	// fragment between them that re-forms a detectable value.
	text := "4111111111111111"
	scan := &ScanResult{
		HasPII: true,
		Matches: []Match{
			{Category: "credit_card", Start: 0, End: 8, Value: text[:8]},
			{Category: "credit_card", Start: 8, End: 16, Value: text[8:]},
		},
		Counts: map[string]int{"credit_card": 2},
	}

	redacted, err := Redact(text, scan, Policy{Mode: ModeMask, PlaceholderFormat: "[X]"})
	require.NoError(t, err)
	assert.Equal(t, "[X]", redacted, "touching spans collapse into a single replacement")
}

func TestRedactNoMatches(t *testing.T) {
	text := "nothing sensitive here"
	redacted, err := Redact(text, &ScanResult{Matches: []Match{}}, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, text, redacted)

	redacted, err = Redact(text, nil, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, text, redacted)
}

func TestRedactRejectsUnknownMode(t *testing.T) {
	_, err := Redact("text", &ScanResult{}, Policy{Mode: "scramble"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scramble")
}

func TestRedactRejectsOutOfRangeSpan(t *testing.T) {
	scan := &ScanResult{
		HasPII:  true,
		Matches: []Match{{Category: "email", Start: 0, End: 99}},
	}
	_, err := Redact("short", scan, DefaultPolicy())
	require.Error(t, err)
}
