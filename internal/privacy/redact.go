package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// RedactionMode selects how detected spans are rewritten.
type RedactionMode string

const (
	// ModeMask replaces each span with a placeholder.
	ModeMask RedactionMode = "mask"
	// ModeRemove deletes each span outright.
	ModeRemove RedactionMode = "remove"
	// ModeTokenize replaces each span with a deterministic token derived
	// from the value, so equal values map to equal tokens across documents.
	ModeTokenize RedactionMode = "tokenize"
)

// Policy configures redaction output.
type Policy struct {
	Mode RedactionMode `json:"mode" yaml:"mode" mapstructure:"mode"`
	// PreserveLength masks spans with a same-length run of '*' instead of
	// the placeholder. Only meaningful for ModeMask.
	PreserveLength bool `json:"preserve_length" yaml:"preserve_length" mapstructure:"preserve_length"`
	// PlaceholderFormat is the ModeMask template; "{category}" is replaced
	// with the match category.
	PlaceholderFormat string `json:"placeholder_format" yaml:"placeholder_format" mapstructure:"placeholder_format"`
}

// DefaultPolicy is the masking policy used when the caller supplies none.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeMask, PlaceholderFormat: "[REDACTED:{category}]"}
}

func (p Policy) validate() error {
	switch p.Mode {
	case ModeMask, ModeRemove, ModeTokenize:
		return nil
	default:
		return fmt.Errorf("unknown redaction mode %q", p.Mode)
	}
}

// Redact produces a sanitized copy of text given a scan result. The output
// contains zero matches when re-scanned with the same detector
// configuration, and redaction never expands the set of PII present: spans
// are replaced whole, at or beyond the full match, so partial fragments can
// never re-form a valid pattern. text must be the same document the scan
// was produced from; it is normalized identically so offsets line up.
func Redact(text string, scan *ScanResult, policy Policy) (string, error) {
	if err := policy.validate(); err != nil {
		return "", err
	}
	normalized, err := Normalize(text)
	if err != nil {
		return "", err
	}
	if scan == nil || len(scan.Matches) == 0 {
		return normalized, nil
	}

	spans := mergeSpans(scan.Matches)
	for _, s := range spans {
		if s.start < 0 || s.end > len(normalized) || s.start > s.end {
			return "", fmt.Errorf("match span [%d,%d) outside document of %d bytes", s.start, s.end, len(normalized))
		}
	}

	// Replace right to left so earlier offsets stay valid.
	out := []byte(normalized)
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		replacement := policy.replacement(s.category, string(out[s.start:s.end]))
		out = append(out[:s.start], append([]byte(replacement), out[s.end:]...)...)
	}
	return string(out), nil
}

func (p Policy) replacement(category, value string) string {
	switch p.Mode {
	case ModeRemove:
		return ""
	case ModeTokenize:
		sum := sha256.Sum256([]byte(value))
		return fmt.Sprintf("[%s#%s]", category, hex.EncodeToString(sum[:])[:8])
	default:
		if p.PreserveLength {
			return strings.Repeat("*", len(value))
		}
		format := p.PlaceholderFormat
		if format == "" {
			format = "[REDACTED:{category}]"
		}
		return strings.ReplaceAll(format, "{category}", category)
	}
}

type redactSpan struct {
	start    int
	end      int
	category string
}

// mergeSpans coalesces overlapping or touching matches into single spans so
// adjacent redactions cannot leave a reconstructable fragment between them.
// Matches arrive ordered by start offset from the detector; the merge keeps
// the dominant (first-seen, highest-ranked) category per region.
func mergeSpans(matches []Match) []redactSpan {
	var merged []redactSpan
	for _, m := range matches {
		if len(merged) > 0 && m.Start <= merged[len(merged)-1].end {
			last := &merged[len(merged)-1]
			if m.End > last.end {
				last.end = m.End
			}
			continue
		}
		merged = append(merged, redactSpan{start: m.Start, end: m.End, category: m.Category})
	}
	return merged
}
