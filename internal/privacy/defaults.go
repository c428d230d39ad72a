package privacy

import (
	"fmt"

	"github.com/devdocai/piiguard/patterns"
)

// DefaultRecognizers returns the built-in recognizer set parsed from the
// embedded YAML files: universal categories plus US and EU member state
// recognizers.
func DefaultRecognizers() ([]RecognizerConfig, error) {
	universal, err := ParseRecognizerFile(patterns.UniversalYAML())
	if err != nil {
		return nil, fmt.Errorf("parsing embedded universal patterns: %w", err)
	}
	eu, err := ParseRecognizerFile(patterns.EUYAML())
	if err != nil {
		return nil, fmt.Errorf("parsing embedded EU patterns: %w", err)
	}
	return MergeRecognizers(universal.Recognizers, eu.Recognizers), nil
}

// NewDefaultLibrary builds a library from the embedded defaults, optionally
// layering an override file on top (missing file is a no-op).
func NewDefaultLibrary(overridePath string) (*Library, error) {
	defaults, err := DefaultRecognizers()
	if err != nil {
		return nil, err
	}
	if overridePath != "" {
		overrides, err := LoadRecognizerFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("loading pattern overrides: %w", err)
		}
		if overrides != nil {
			defaults = MergeRecognizers(defaults, overrides.Recognizers)
		}
	}
	return NewLibrary(defaults)
}

// MustNewDefaultLibrary is like NewDefaultLibrary without overrides but
// panics on error. The embedded defaults are expected to always compile.
func MustNewDefaultLibrary() *Library {
	lib, err := NewDefaultLibrary("")
	if err != nil {
		panic(fmt.Sprintf("privacy.NewDefaultLibrary: %v", err))
	}
	return lib
}
