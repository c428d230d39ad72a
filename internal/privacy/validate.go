package privacy

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// validator is a hard gate applied to a raw regex hit before scoring.
// Returning false discards the hit regardless of confidence.
type validator func(value string) bool

func validatorByName(name string) (validator, error) {
	switch name {
	case "":
		return nil, nil
	case "luhn":
		return validateLuhn, nil
	case "iban":
		return validateIBAN, nil
	case "us_ssn":
		return validateUSSSN, nil
	case "entropy":
		return validateEntropy, nil
	default:
		return nil, fmt.Errorf("unknown validator %q", name)
	}
}

// validateLuhn strips separators and checks the digits against the Luhn
// algorithm (ISO/IEC 7812). Filters out random 16-digit sequences that
// happen to look like card numbers.
func validateLuhn(value string) bool {
	number := stripNonDigits(value)
	n := len(number)
	if n < 12 {
		return false
	}
	sum := 0
	alt := false
	for i := n - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if alt {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		alt = !alt
	}
	return sum%10 == 0
}

// ibanLengths maps IBAN country codes to their fixed total length per
// ISO 13616. Countries not listed here are rejected.
var ibanLengths = map[string]int{
	"AD": 24, "AT": 20, "BE": 16, "BG": 22, "CH": 21, "CY": 28, "CZ": 24,
	"DE": 22, "DK": 18, "EE": 20, "ES": 24, "FI": 18, "FR": 27, "GB": 22,
	"GR": 27, "HR": 21, "HU": 28, "IE": 22, "IT": 27, "LI": 21, "LT": 20,
	"LU": 20, "LV": 21, "MC": 27, "MT": 31, "NL": 18, "NO": 15, "PL": 28,
	"PT": 25, "RO": 24, "SE": 24, "SI": 19, "SK": 24,
}

// validateIBAN checks country-specific length and the MOD-97 check digits
// per ISO 13616: the IBAN is rearranged (country+check moved to the end),
// letters converted to digits (A=10..Z=35), and the remainder must be 1.
func validateIBAN(value string) bool {
	iban := strings.ToUpper(strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, value))
	if len(iban) < 5 {
		return false
	}
	expected, ok := ibanLengths[iban[:2]]
	if !ok || len(iban) != expected {
		return false
	}

	rearranged := iban[4:] + iban[:4]
	var digits strings.Builder
	for _, ch := range rearranged {
		switch {
		case ch >= '0' && ch <= '9':
			digits.WriteRune(ch)
		case ch >= 'A' && ch <= 'Z':
			fmt.Fprintf(&digits, "%d", ch-'A'+10)
		default:
			return false
		}
	}
	n := new(big.Int)
	if _, ok := n.SetString(digits.String(), 10); !ok {
		return false
	}
	return new(big.Int).Mod(n, big.NewInt(97)).Int64() == 1
}

// validateUSSSN applies SSA allocation rules: area 000, 666, and 900-999
// are never issued, group 00 and serial 0000 are invalid.
func validateUSSSN(value string) bool {
	digits := stripNonDigits(value)
	if len(digits) != 9 {
		return false
	}
	area := digits[:3]
	group := digits[3:5]
	serial := digits[5:]
	if area == "000" || area == "666" || area[0] == '9' {
		return false
	}
	if group == "00" || serial == "0000" {
		return false
	}
	return true
}

// entropyBitsThreshold is the minimum Shannon entropy (bits per character)
// for a candidate secret. Natural-language words sit well below 3 bits;
// generated keys and tokens sit above it.
const entropyBitsThreshold = 3.0

// validateEntropy gates generic credential matches on the randomness of
// their longest token, filtering prose that matched a keyword pattern.
func validateEntropy(value string) bool {
	token := longestToken(value)
	if len(token) < 16 {
		return false
	}
	return shannonEntropy(token) >= entropyBitsThreshold
}

// shannonEntropy returns the Shannon entropy of s in bits per character.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// longestToken extracts the longest run of key-material characters from s.
func longestToken(s string) string {
	isKeyChar := func(r rune) bool {
		return r == '-' || r == '_' || r == '.' ||
			(r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
	}
	best, start := "", -1
	for i, r := range s {
		if isKeyChar(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start > len(best) {
			best = s[start:i]
		}
		start = -1
	}
	if start >= 0 && len(s)-start > len(best) {
		best = s[start:]
	}
	return best
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
