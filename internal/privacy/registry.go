package privacy

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// RecognizerFile is the top-level YAML structure for a recognizer config file.
type RecognizerFile struct {
	Recognizers []RecognizerConfig `yaml:"recognizers"`
}

// RecognizerConfig describes one PII category recognizer: its regex patterns,
// base scores, context words, locale scoping, and validation gate.
type RecognizerConfig struct {
	Name            string          `yaml:"name" json:"name"`
	Category        string          `yaml:"category" json:"category"`
	Enabled         *bool           `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Patterns        []PatternConfig `yaml:"patterns" json:"patterns"`
	Context         []string        `yaml:"context,omitempty" json:"context,omitempty"`
	NegativeContext []string        `yaml:"negative_context,omitempty" json:"negative_context,omitempty"`
	// Countries scopes the recognizer to ISO 3166-1 alpha-2 locales.
	// Empty means universal: the recognizer applies to every scan.
	Countries []string `yaml:"countries,omitempty" json:"countries,omitempty"`
	// Validate names a hard validation gate: "luhn", "iban", "us_ssn",
	// or "entropy". Matches failing the gate are discarded outright.
	Validate string `yaml:"validate,omitempty" json:"validate,omitempty"`
}

// PatternConfig is a single regex pattern within a recognizer.
type PatternConfig struct {
	Name  string  `yaml:"name" json:"name"`
	Regex string  `yaml:"regex" json:"regex"`
	Score float64 `yaml:"score" json:"score"`
}

func (r *RecognizerConfig) isEnabled() bool {
	if r.Enabled == nil {
		return true
	}
	return *r.Enabled
}

// ParseRecognizerFile parses recognizer YAML bytes into a RecognizerFile.
func ParseRecognizerFile(data []byte) (*RecognizerFile, error) {
	var rf RecognizerFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing recognizer YAML: %w", err)
	}
	return &rf, nil
}

// LoadRecognizerFile reads and parses a recognizer YAML file from disk.
// Returns nil (not an error) if the file does not exist, so callers can
// treat a missing override file as a no-op.
func LoadRecognizerFile(path string) (*RecognizerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading recognizer file %s: %w", path, err)
	}
	return ParseRecognizerFile(data)
}

// MergeRecognizers layers recognizer lists: later layers override earlier
// ones by matching on Name; new recognizers are appended.
func MergeRecognizers(layers ...[]RecognizerConfig) []RecognizerConfig {
	index := make(map[string]int)
	var merged []RecognizerConfig

	for _, layer := range layers {
		for _, rc := range layer {
			if idx, exists := index[rc.Name]; exists {
				merged[idx] = rc
			} else {
				index[rc.Name] = len(merged)
				merged = append(merged, rc)
			}
		}
	}

	return merged
}

// compiledPattern is one runtime matcher produced from a recognizer config.
type compiledPattern struct {
	recognizer      string
	category        string
	regex           *regexp.Regexp
	score           float64
	context         []string
	negativeContext []string
	countries       []string
	validate        validator
}

func (p *compiledPattern) universal() bool { return len(p.countries) == 0 }

// compileRecognizers turns recognizer configs into runtime patterns.
// Disabled recognizers are skipped. Invalid configs surface as
// ConfigurationError so registration failures stay a startup concern.
func compileRecognizers(recognizers []RecognizerConfig) ([]compiledPattern, error) {
	var compiled []compiledPattern

	for _, rec := range recognizers {
		if !rec.isEnabled() {
			continue
		}
		if rec.Category == "" {
			return nil, &ConfigurationError{Recognizer: rec.Name, Reason: "missing category"}
		}
		if len(rec.Patterns) == 0 {
			return nil, &ConfigurationError{Recognizer: rec.Name, Reason: "no patterns defined"}
		}
		gate, err := validatorByName(rec.Validate)
		if err != nil {
			return nil, &ConfigurationError{Recognizer: rec.Name, Reason: err.Error()}
		}
		countries := make([]string, 0, len(rec.Countries))
		for _, c := range rec.Countries {
			countries = append(countries, strings.ToUpper(c))
		}
		for _, p := range rec.Patterns {
			if p.Score < 0 || p.Score > 1 {
				return nil, &ConfigurationError{
					Recognizer: rec.Name,
					Reason:     fmt.Sprintf("pattern %q score %v outside [0,1]", p.Name, p.Score),
				}
			}
			re, err := regexp.Compile(p.Regex)
			if err != nil {
				return nil, &ConfigurationError{
					Recognizer: rec.Name,
					Reason:     fmt.Sprintf("pattern %q does not compile: %v", p.Name, err),
				}
			}
			compiled = append(compiled, compiledPattern{
				recognizer:      rec.Name,
				category:        rec.Category,
				regex:           re,
				score:           p.Score,
				context:         lowerAll(rec.Context),
				negativeContext: lowerAll(rec.NegativeContext),
				countries:       countries,
				validate:        gate,
			})
		}
	}

	return compiled, nil
}

func lowerAll(words []string) []string {
	if len(words) == 0 {
		return nil
	}
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
