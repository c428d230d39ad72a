package reporting

import "time"

// ScanReport is one persisted scan outcome. It carries aggregates only:
// the document itself and the matched values are never written to the
// database.
type ScanReport struct {
	ID            int64     `db:"id" json:"id"`
	RequestID     string    `db:"request_id" json:"request_id"`
	DocumentBytes int       `db:"document_bytes" json:"document_bytes"`
	HasPII        bool      `db:"has_pii" json:"has_pii"`
	MatchCount    int       `db:"match_count" json:"match_count"`
	Categories    string    `db:"categories" json:"categories"` // JSON object: category -> count
	Frameworks    string    `db:"frameworks" json:"frameworks"` // JSON array of framework names
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Summary aggregates scan reports over a time window.
type Summary struct {
	TotalScans    int64   `db:"total_scans" json:"total_scans"`
	ScansWithPII  int64   `db:"scans_with_pii" json:"scans_with_pii"`
	TotalMatches  int64   `db:"total_matches" json:"total_matches"`
	AvgDocumentKB float64 `db:"avg_document_kb" json:"avg_document_kb"`
}
