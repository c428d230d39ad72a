package accuracy

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/devdocai/piiguard/internal/privacy"
)

// DefaultIoUThreshold is the minimum intersection-over-union between a
// predicted span and an annotation for the pair to count as a true
// positive. 0.5 tolerates small boundary disagreements (trailing
// punctuation, separators) without crediting spurious overlaps.
const DefaultIoUThreshold = 0.5

// Harness evaluates a detector against a labeled corpus.
type Harness struct {
	detector      *privacy.Detector
	iouThreshold  float64
	minConfidence float64
	logger        *zap.Logger
}

// HarnessConfig tunes an evaluation run.
type HarnessConfig struct {
	// IoUThreshold overrides DefaultIoUThreshold when positive.
	IoUThreshold float64
	// MinConfidence is passed through to every Detect call; zero selects
	// the detector default.
	MinConfidence float64
}

// NewHarness creates an evaluation harness over the given detector.
func NewHarness(detector *privacy.Detector, cfg HarnessConfig, logger *zap.Logger) *Harness {
	threshold := cfg.IoUThreshold
	if threshold <= 0 {
		threshold = DefaultIoUThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harness{
		detector:      detector,
		iouThreshold:  threshold,
		minConfidence: cfg.MinConfidence,
		logger:        logger,
	}
}

// Evaluate scans every corpus document and scores predictions against the
// annotations. A prediction and an annotation pair up when categories match
// and span IoU meets the threshold; each annotation pairs with at most one
// prediction. Leftover predictions are false positives, leftover
// annotations false negatives.
func (h *Harness) Evaluate(ctx context.Context, corpus *Corpus) (*Report, error) {
	start := time.Now()
	report := &Report{
		Documents:  len(corpus.Documents),
		ByCategory: make(map[string]Metrics),
	}

	for i, doc := range corpus.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := h.detector.Detect(doc.Text, doc.Locales, h.minConfidence)
		if err != nil {
			return nil, fmt.Errorf("scanning corpus document %d: %w", i+1, err)
		}

		h.scoreDocument(report, doc.Entities, result.Matches)
	}

	finalizeReport(report)
	h.logger.Info("evaluation completed",
		zap.Int("documents", report.Documents),
		zap.Float64("precision", report.Overall.Precision),
		zap.Float64("recall", report.Overall.Recall),
		zap.Float64("f1", report.Overall.F1),
		zap.Duration("duration", time.Since(start)))
	return report, nil
}

func (h *Harness) scoreDocument(report *Report, expected []Annotation, predicted []privacy.Match) {
	matchedPrediction := make([]bool, len(predicted))

	for _, annotation := range expected {
		best := -1
		bestIoU := 0.0
		for i, match := range predicted {
			if matchedPrediction[i] || match.Category != annotation.Category {
				continue
			}
			if iou := spanIoU(annotation.Start, annotation.End, match.Start, match.End); iou >= h.iouThreshold && iou > bestIoU {
				best, bestIoU = i, iou
			}
		}
		if best >= 0 {
			matchedPrediction[best] = true
			bump(report, annotation.Category, func(m *Metrics) { m.TruePositives++ })
		} else {
			bump(report, annotation.Category, func(m *Metrics) { m.FalseNegatives++ })
		}
	}

	for i, match := range predicted {
		if !matchedPrediction[i] {
			bump(report, match.Category, func(m *Metrics) { m.FalsePositives++ })
		}
	}
}

func bump(report *Report, category string, apply func(*Metrics)) {
	apply(&report.Overall)
	m := report.ByCategory[category]
	apply(&m)
	report.ByCategory[category] = m
}

func finalizeReport(report *Report) {
	report.Overall.finalize()
	for category, m := range report.ByCategory {
		m.finalize()
		report.ByCategory[category] = m
	}

	predicted := report.Overall.TruePositives + report.Overall.FalsePositives
	expected := report.Overall.TruePositives + report.Overall.FalseNegatives
	if predicted > 0 {
		report.FalsePositiveRate = float64(report.Overall.FalsePositives) / float64(predicted)
	}
	if expected > 0 {
		report.FalseNegativeRate = float64(report.Overall.FalseNegatives) / float64(expected)
	}
}

// spanIoU computes intersection-over-union of two byte ranges.
func spanIoU(aStart, aEnd, bStart, bEnd int) float64 {
	interStart := max(aStart, bStart)
	interEnd := min(aEnd, bEnd)
	if interEnd <= interStart {
		return 0
	}
	union := max(aEnd, bEnd) - min(aStart, bStart)
	if union <= 0 {
		return 0
	}
	return float64(interEnd-interStart) / float64(union)
}
