package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		category string
		want     []ComplianceTag
	}{
		{"email", []ComplianceTag{TagGDPR, TagCCPA}},
		{"phone", []ComplianceTag{TagGDPR, TagCCPA}},
		{"credit_card", []ComplianceTag{TagGDPR, TagCCPA}},
		{"ssn", []ComplianceTag{TagCCPA}},
		{"ip_address", []ComplianceTag{TagGDPR}},
		{"iban", []ComplianceTag{TagGDPR}},
		{"national_id", []ComplianceTag{TagGDPR}},
		{"api_key", []ComplianceTag{}},
		{"custom_category", []ComplianceTag{TagGDPR}},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.category))
		})
	}
}

func TestClassifyReturnsCopy(t *testing.T) {
	tags := Classify("email")
	tags[0] = "MUTATED"
	assert.Equal(t, []ComplianceTag{TagGDPR, TagCCPA}, Classify("email"))
}

func TestClassifyMatch(t *testing.T) {
	m := ClassifyMatch(Match{Category: "iban"})
	assert.Equal(t, []ComplianceTag{TagGDPR}, m.Tags)
}

func TestCategoriesCoverTable(t *testing.T) {
	categories := Categories()
	assert.Contains(t, categories, "email")
	assert.Contains(t, categories, "vat_id")
	assert.Len(t, categories, 13)
}
