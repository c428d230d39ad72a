package privacy

// complianceTable maps each PII category to the regulatory frameworks it
// falls under. Categories are not 1:1 with legal definitions: an IP
// address is personal data under GDPR Article 4 but not enumerated in
// CCPA §1798.140, and credentials identify systems rather than people.
// The mapping stays an explicit table so it can be tested directly.
var complianceTable = map[string][]ComplianceTag{
	"email":          {TagGDPR, TagCCPA},
	"phone":          {TagGDPR, TagCCPA},
	"credit_card":    {TagGDPR, TagCCPA},
	"date_of_birth":  {TagGDPR, TagCCPA},
	"street_address": {TagGDPR, TagCCPA},
	"passport":       {TagGDPR, TagCCPA},
	"ssn":            {TagCCPA},
	"ip_address":     {TagGDPR},
	"mac_address":    {TagGDPR},
	"iban":           {TagGDPR},
	"vat_id":         {TagGDPR},
	"national_id":    {TagGDPR},
	"api_key":        {},
}

// Classify returns the compliance tags for a PII category. Unknown
// categories (custom recognizers) default to GDPR, the broader framework,
// so custom patterns are never silently untagged.
func Classify(category string) []ComplianceTag {
	if tags, ok := complianceTable[category]; ok {
		out := make([]ComplianceTag, len(tags))
		copy(out, tags)
		return out
	}
	return []ComplianceTag{TagGDPR}
}

// ClassifyMatch tags a match in place and returns it.
func ClassifyMatch(m Match) Match {
	m.Tags = Classify(m.Category)
	return m
}

// Categories lists every category present in the compliance table.
func Categories() []string {
	out := make([]string, 0, len(complianceTable))
	for category := range complianceTable {
		out = append(out, category)
	}
	return out
}
