package privacy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecognizerFile(t *testing.T) {
	data := []byte(`
recognizers:
  - name: "Employee ID"
    category: employee_id
    countries: [US]
    context: [employee, badge]
    validate: ""
    patterns:
      - name: "standard"
        regex: '\bEMP-\d{6}\b'
        score: 0.85
`)
	rf, err := ParseRecognizerFile(data)
	require.NoError(t, err)
	require.Len(t, rf.Recognizers, 1)

	rec := rf.Recognizers[0]
	assert.Equal(t, "Employee ID", rec.Name)
	assert.Equal(t, "employee_id", rec.Category)
	assert.Equal(t, []string{"US"}, rec.Countries)
	require.Len(t, rec.Patterns, 1)
	assert.Equal(t, 0.85, rec.Patterns[0].Score)
}

func TestParseRecognizerFileBadYAML(t *testing.T) {
	_, err := ParseRecognizerFile([]byte("recognizers: [unclosed"))
	assert.Error(t, err)
}

func TestLoadRecognizerFileMissing(t *testing.T) {
	rf, err := LoadRecognizerFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, rf)
}

func TestLoadRecognizerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	content := []byte(`
recognizers:
  - name: "Order Number"
    category: order_number
    patterns:
      - name: "standard"
        regex: 'ORD-\d{8}'
        score: 0.9
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	rf, err := LoadRecognizerFile(path)
	require.NoError(t, err)
	require.NotNil(t, rf)
	assert.Len(t, rf.Recognizers, 1)
}

func TestMergeRecognizersOverridesByName(t *testing.T) {
	base := []RecognizerConfig{
		{Name: "A", Category: "a", Patterns: []PatternConfig{{Name: "p", Regex: `a`, Score: 0.5}}},
		{Name: "B", Category: "b", Patterns: []PatternConfig{{Name: "p", Regex: `b`, Score: 0.5}}},
	}
	overlay := []RecognizerConfig{
		{Name: "B", Category: "b", Patterns: []PatternConfig{{Name: "p2", Regex: `bb`, Score: 0.7}}},
		{Name: "C", Category: "c", Patterns: []PatternConfig{{Name: "p", Regex: `c`, Score: 0.5}}},
	}

	merged := MergeRecognizers(base, overlay)
	require.Len(t, merged, 3)
	assert.Equal(t, "A", merged[0].Name)
	assert.Equal(t, "B", merged[1].Name)
	assert.Equal(t, "p2", merged[1].Patterns[0].Name, "overlay replaces the base recognizer wholesale")
	assert.Equal(t, "C", merged[2].Name)
}

func TestOverrideFileLayersOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	content := []byte(`
recognizers:
  - name: "Email Address"
    enabled: false
    category: email
    patterns:
      - name: "email"
        regex: 'unused'
        score: 0.5
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	lib, err := NewDefaultLibrary(path)
	require.NoError(t, err)

	categories, err := lib.CategoriesFor(nil)
	require.NoError(t, err)
	assert.NotContains(t, categories, "email", "override file can disable a built-in recognizer")
	assert.Contains(t, categories, "phone")
}

func TestCompileRejectsMissingCategory(t *testing.T) {
	_, err := NewLibrary([]RecognizerConfig{{
		Name:     "Anonymous",
		Patterns: []PatternConfig{{Name: "p", Regex: `x`, Score: 0.5}},
	}})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "category")
}

func TestCompileRejectsEmptyPatterns(t *testing.T) {
	_, err := NewLibrary([]RecognizerConfig{{Name: "Empty", Category: "empty"}})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestCompileRejectsUnknownValidator(t *testing.T) {
	_, err := NewLibrary([]RecognizerConfig{{
		Name:     "Gated",
		Category: "gated",
		Validate: "mod11",
		Patterns: []PatternConfig{{Name: "p", Regex: `x`, Score: 0.5}},
	}})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "mod11")
}
