package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLuhn(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"4111111111111111", true},
		{"4111-1111-1111-1111", true},
		{"4111 1111 1111 1111", true},
		{"378282246310005", true},
		{"4111111111111112", false},
		{"1234567890123456", false},
		{"4111", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validateLuhn(tt.value), "luhn(%s)", tt.value)
	}
}

func TestValidateIBAN(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"DE89370400440532013000", true},
		{"DE89 3704 0044 0532 0130 00", true},
		{"GB82WEST12345698765432", true},
		{"FR1420041010050500013M02606", true},
		{"DE89370400440532013001", false},
		{"DE8937040044053201300", false},
		{"XX89370400440532013000", false},
		{"DE", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validateIBAN(tt.value), "iban(%s)", tt.value)
	}
}

func TestValidateUSSSN(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"123-45-6789", true},
		{"123456789", true},
		{"000-45-6789", false},
		{"666-45-6789", false},
		{"923-45-6789", false},
		{"123-00-6789", false},
		{"123-45-0000", false},
		{"12345678", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validateUSSSN(tt.value), "ssn(%s)", tt.value)
	}
}

func TestValidateEntropy(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"generated secret", "token: xK9mP2qL8vN4jR7w", true},
		{"repeated characters", "token: aaaaaaaaaaaaaaaa", false},
		{"short token", "token: xK9mP2q", false},
		{"prose after keyword", "password password keep it safe", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateEntropy(tt.value))
		})
	}
}

func TestValidatorByNameUnknown(t *testing.T) {
	_, err := validatorByName("crc32")
	assert.Error(t, err)

	v, err := validatorByName("")
	assert.NoError(t, err)
	assert.Nil(t, v)
}
