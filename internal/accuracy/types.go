package accuracy

// Annotation is one expected PII span in a labeled document. Offsets are
// byte positions into the NFC-normalized document text.
type Annotation struct {
	Category string `json:"category" parquet:"category"`
	Start    int    `json:"start" parquet:"start"`
	End      int    `json:"end" parquet:"end"`
}

// LabeledDocument is a single ground-truth corpus entry.
type LabeledDocument struct {
	Text     string       `json:"text"`
	Locales  []string     `json:"locales,omitempty"`
	Entities []Annotation `json:"entities"`
}

// Corpus is a labeled evaluation dataset.
type Corpus struct {
	Documents []LabeledDocument
}

// Metrics holds detection quality counters and the derived rates for one
// category or for a whole evaluation run.
type Metrics struct {
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

func (m *Metrics) finalize() {
	predicted := m.TruePositives + m.FalsePositives
	expected := m.TruePositives + m.FalseNegatives
	if predicted > 0 {
		m.Precision = float64(m.TruePositives) / float64(predicted)
	}
	if expected > 0 {
		m.Recall = float64(m.TruePositives) / float64(expected)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
}

// Report is the outcome of evaluating a detector against a corpus.
type Report struct {
	Documents  int                `json:"documents"`
	Overall    Metrics            `json:"overall"`
	ByCategory map[string]Metrics `json:"by_category"`
	// FalsePositiveRate is the share of predicted spans with no matching
	// annotation; FalseNegativeRate the share of annotations the detector
	// missed.
	FalsePositiveRate float64 `json:"false_positive_rate"`
	FalseNegativeRate float64 `json:"false_negative_rate"`
}
