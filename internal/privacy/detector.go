package privacy

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMinConfidence is the minimum confidence threshold applied when
	// the caller passes a non-positive value. Matches below it are discarded
	// unless boosted by context words.
	DefaultMinConfidence = 0.5

	// contextBoost is added to a match's base score when a context word
	// appears near the span, and subtracted when a negative-context word
	// does.
	contextBoost = 0.35

	// contextWindowChars is the number of characters searched before and
	// after a span when looking for context words.
	contextWindowChars = 100

	// DefaultMaxDocumentBytes bounds scan input size. Oversized documents
	// fail fast with ContentTooLargeError instead of degrading silently.
	DefaultMaxDocumentBytes = 1 << 20
)

// Detector applies a pattern library to input text. Detect is a pure
// function of its inputs and the library snapshot: no I/O, no logging of
// content, safe to call concurrently from any number of goroutines.
type Detector struct {
	library  *Library
	maxBytes int
}

// DetectorConfig carries detector tuning knobs.
type DetectorConfig struct {
	// MaxDocumentBytes overrides DefaultMaxDocumentBytes when positive.
	MaxDocumentBytes int
}

// NewDetector creates a detector over the given pattern library.
func NewDetector(library *Library, cfg DetectorConfig) *Detector {
	maxBytes := cfg.MaxDocumentBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}
	return &Detector{library: library, maxBytes: maxBytes}
}

// Library exposes the detector's pattern library.
func (d *Detector) Library() *Library { return d.library }

// MaxDocumentBytes reports the configured input size bound.
func (d *Detector) MaxDocumentBytes() int { return d.maxBytes }

// Detect scans text with the patterns applicable to the requested locales
// and returns every match at or above minConfidence. Input is normalized to
// Unicode NFC before matching; match offsets refer to the normalized form
// (see Normalize). Repeated calls with identical inputs produce identical
// results, down to match ordering.
func (d *Detector) Detect(text string, locales []string, minConfidence float64) (*ScanResult, error) {
	if len(text) > d.maxBytes {
		return nil, &ContentTooLargeError{Size: len(text), Limit: d.maxBytes}
	}
	normalized, err := Normalize(text)
	if err != nil {
		return nil, err
	}
	patterns, err := d.library.PatternsFor(locales)
	if err != nil {
		return nil, err
	}
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}

	var candidates []Match

	for i := range patterns {
		p := &patterns[i]
		for _, span := range p.regex.FindAllStringIndex(normalized, -1) {
			value := normalized[span[0]:span[1]]
			if p.validate != nil && !p.validate(value) {
				continue
			}
			confidence := scoreWithContext(normalized, span[0], span[1], p)
			if confidence < minConfidence {
				continue
			}
			candidates = append(candidates, Match{
				Category:   p.category,
				Start:      span[0],
				End:        span[1],
				Value:      value,
				Confidence: confidence,
			})
		}
	}

	matches := resolveOverlaps(candidates)
	result := &ScanResult{
		HasPII:  len(matches) > 0,
		Matches: matches,
		Counts:  make(map[string]int, 4),
	}
	for i := range result.Matches {
		result.Matches[i].Tags = Classify(result.Matches[i].Category)
		result.Counts[result.Matches[i].Category]++
	}
	return result, nil
}

// Normalize brings text to Unicode NFC form. Input that is not valid UTF-8
// is rejected with EncodingNormalizationError rather than mis-scanned.
func Normalize(text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", &EncodingNormalizationError{Length: len(text)}
	}
	return norm.NFC.String(text), nil
}

// DetectBatch scans documents in parallel, bounded by the caller-supplied
// concurrency limit. Each scan is independent; results are returned in
// input order. The first error cancels outstanding scans.
func (d *Detector) DetectBatch(ctx context.Context, documents []string, locales []string, minConfidence float64, concurrency int) ([]*ScanResult, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]*ScanResult, len(documents))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range documents {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := d.Detect(documents[i], locales, minConfidence)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// scoreWithContext computes the final confidence for a span: the pattern's
// base score, plus contextBoost if any context word appears within
// contextWindowChars of the span, minus contextBoost if a negative-context
// word does. The result is clamped to [0,1]. start and end index text, so
// the window is cut from text and lowercased afterwards; lowercasing the
// whole document up front would shift byte offsets for case pairs whose
// UTF-8 encodings differ in length.
func scoreWithContext(text string, start, end int, p *compiledPattern) float64 {
	confidence := p.score
	if len(p.context) > 0 || len(p.negativeContext) > 0 {
		wStart := start - contextWindowChars
		if wStart < 0 {
			wStart = 0
		}
		wEnd := end + contextWindowChars
		if wEnd > len(text) {
			wEnd = len(text)
		}
		window := strings.ToLower(text[wStart:wEnd])

		for _, cw := range p.context {
			if strings.Contains(window, cw) {
				confidence += contextBoost
				break
			}
		}
		for _, nw := range p.negativeContext {
			if strings.Contains(window, nw) {
				confidence -= contextBoost
				break
			}
		}
	}
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// resolveOverlaps keeps at most one match per overlapping region: highest
// confidence wins, ties go to the longer span, remaining ties to the
// earlier start and then the lexically smaller category so the outcome is
// deterministic. Survivors are returned in start-offset order.
func resolveOverlaps(candidates []Match) []Match {
	if len(candidates) == 0 {
		return []Match{}
	}

	ranked := make([]Match, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		if ranked[i].Len() != ranked[j].Len() {
			return ranked[i].Len() > ranked[j].Len()
		}
		if ranked[i].Start != ranked[j].Start {
			return ranked[i].Start < ranked[j].Start
		}
		return ranked[i].Category < ranked[j].Category
	})

	var kept []Match
	for _, candidate := range ranked {
		overlaps := false
		for _, winner := range kept {
			if candidate.Start < winner.End && winner.Start < candidate.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, candidate)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Start != kept[j].Start {
			return kept[i].Start < kept[j].Start
		}
		if kept[i].End != kept[j].End {
			return kept[i].End < kept[j].End
		}
		return kept[i].Category < kept[j].Category
	})
	return kept
}
