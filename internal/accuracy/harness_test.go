package accuracy

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devdocai/piiguard/internal/privacy"
)

func newTestHarness(t *testing.T) *Harness {
	t.Helper()
	detector := privacy.NewDetector(privacy.MustNewDefaultLibrary(), privacy.DetectorConfig{})
	return NewHarness(detector, HarnessConfig{}, nil)
}

func TestEvaluateBundledCorpus(t *testing.T) {
	corpus, err := LoadCorpus(filepath.Join("testdata", "pii_corpus.jsonl"))
	require.NoError(t, err)
	require.Len(t, corpus.Documents, 10)

	report, err := newTestHarness(t).Evaluate(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, 10, report.Documents)
	assert.Less(t, report.FalsePositiveRate, 0.05, "FP rate too high: %+v", report.Overall)
	assert.Less(t, report.FalseNegativeRate, 0.05, "FN rate too high: %+v", report.Overall)
	assert.Greater(t, report.Overall.F1, 0.95)
	assert.Equal(t, 9, report.Overall.TruePositives)

	email := report.ByCategory["email"]
	assert.Equal(t, 1, email.TruePositives)
	assert.Equal(t, 1.0, email.Precision)
	assert.Equal(t, 1.0, email.Recall)
}

func TestEvaluateScoresMisses(t *testing.T) {
	corpus := &Corpus{Documents: []LabeledDocument{
		{
			// The detector finds the email but not the annotated name.
			Text: "Alice wrote to bob@example.com",
			Entities: []Annotation{
				{Category: "email", Start: 15, End: 30},
				{Category: "person", Start: 0, End: 5},
			},
		},
	}}

	report, err := newTestHarness(t).Evaluate(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Overall.TruePositives)
	assert.Equal(t, 1, report.Overall.FalseNegatives)
	assert.Equal(t, 0, report.Overall.FalsePositives)
	assert.Equal(t, 1, report.ByCategory["person"].FalseNegatives)
	assert.Equal(t, 0.5, report.FalseNegativeRate)
}

func TestEvaluateScoresFalsePositives(t *testing.T) {
	corpus := &Corpus{Documents: []LabeledDocument{
		// Unannotated text containing something the detector flags.
		{Text: "ping the server 10.1.2.3 please"},
	}}

	report, err := newTestHarness(t).Evaluate(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Overall.FalsePositives)
	assert.Equal(t, 1.0, report.FalsePositiveRate)
	assert.Zero(t, report.Overall.Precision)
}

func TestEvaluateIoUBoundary(t *testing.T) {
	text := "mail: user@example.com ok"
	// The email span is [6,22). An annotation covering only a sliver of it
	// falls below the IoU threshold and must not pair up.
	corpus := &Corpus{Documents: []LabeledDocument{
		{
			Text:     text,
			Entities: []Annotation{{Category: "email", Start: 6, End: 10}},
		},
	}}

	report, err := newTestHarness(t).Evaluate(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Overall.TruePositives)
	assert.Equal(t, 1, report.Overall.FalsePositives)
	assert.Equal(t, 1, report.Overall.FalseNegatives)
}

func TestEvaluateToleratesBoundarySlack(t *testing.T) {
	text := "mail: user@example.com ok"
	// Annotation off by two bytes on each side still clears IoU 0.5.
	corpus := &Corpus{Documents: []LabeledDocument{
		{
			Text:     text,
			Entities: []Annotation{{Category: "email", Start: 8, End: 22}},
		},
	}}

	report, err := newTestHarness(t).Evaluate(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Overall.TruePositives)
	assert.Zero(t, report.Overall.FalsePositives)
}

func TestSpanIoU(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     int
		want                           float64
	}{
		{"identical", 0, 10, 0, 10, 1.0},
		{"disjoint", 0, 5, 5, 10, 0.0},
		{"half overlap", 0, 10, 5, 15, 1.0 / 3.0},
		{"contained", 0, 10, 2, 8, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, spanIoU(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd), 1e-9)
		})
	}
}

func TestEvaluateContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	corpus := &Corpus{Documents: []LabeledDocument{{Text: "hello"}}}
	_, err := newTestHarness(t).Evaluate(ctx, corpus)
	require.ErrorIs(t, err, context.Canceled)
}
