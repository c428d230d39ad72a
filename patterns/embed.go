// Package patterns provides the embedded default recognizer definitions.
// YAML files in this directory use the recognizer registry format parsed by
// internal/privacy: per-category regex patterns with base scores, context
// words, locale scoping, and named validation gates.
package patterns

import _ "embed"

//go:embed pii_universal.yaml
var universalYAML []byte

//go:embed pii_eu.yaml
var euYAML []byte

// UniversalYAML returns the universal and US recognizer definitions.
func UniversalYAML() []byte { return universalYAML }

// EUYAML returns the EU member state national-ID and VAT recognizers.
func EUYAML() []byte { return euYAML }
