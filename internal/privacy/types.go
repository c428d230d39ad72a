package privacy

// ComplianceTag identifies a regulatory framework a PII category falls under.
type ComplianceTag string

const (
	// TagGDPR marks personal data under EU GDPR Article 4.
	TagGDPR ComplianceTag = "GDPR"
	// TagCCPA marks personal information under CCPA §1798.140.
	TagCCPA ComplianceTag = "CCPA"
)

// Match is a single detection result. Matches live only for the duration of
// a scan; callers must never persist Value to long-term storage.
type Match struct {
	Category   string          `json:"category"`
	Start      int             `json:"start"`
	End        int             `json:"end"`
	Value      string          `json:"value"`
	Confidence float64         `json:"confidence"`
	Tags       []ComplianceTag `json:"tags,omitempty"`
}

// Len returns the span length in bytes.
func (m Match) Len() int { return m.End - m.Start }

// ScanResult aggregates one document scan. Matches are ordered by start
// offset, then end offset, for deterministic output across repeated scans.
type ScanResult struct {
	HasPII  bool           `json:"has_pii"`
	Matches []Match        `json:"matches"`
	Counts  map[string]int `json:"counts"`
}

// Metadata strips a ScanResult down to the non-sensitive aggregates that are
// safe to cache, log, or persist: counts and frameworks, never raw values.
func (r *ScanResult) Metadata() *ScanMetadata {
	meta := &ScanMetadata{
		HasPII: r.HasPII,
		Counts: make(map[string]int, len(r.Counts)),
	}
	for category, n := range r.Counts {
		meta.Counts[category] = n
	}
	tagSet := make(map[ComplianceTag]bool)
	for _, m := range r.Matches {
		for _, tag := range m.Tags {
			tagSet[tag] = true
		}
	}
	for tag := range tagSet {
		meta.Frameworks = append(meta.Frameworks, tag)
	}
	sortTags(meta.Frameworks)
	return meta
}

// ScanMetadata is the persistable projection of a ScanResult.
type ScanMetadata struct {
	HasPII     bool            `json:"has_pii"`
	Counts     map[string]int  `json:"counts"`
	Frameworks []ComplianceTag `json:"frameworks,omitempty"`
}

func sortTags(tags []ComplianceTag) {
	for i := 1; i < len(tags); i++ {
		for j := i; j > 0 && tags[j] < tags[j-1]; j-- {
			tags[j], tags[j-1] = tags[j-1], tags[j]
		}
	}
}
