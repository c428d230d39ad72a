package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key("some document", []string{"US", "DE"}, 0.5)
	b := Key("some document", []string{"US", "DE"}, 0.5)
	assert.Equal(t, a, b)
}

func TestKeyNormalizesLocaleOrder(t *testing.T) {
	a := Key("doc", []string{"US", "DE"}, 0.5)
	b := Key("doc", []string{"de", " us "}, 0.5)
	assert.Equal(t, a, b, "locale order and casing must not change the key")
}

func TestKeyVariesByInput(t *testing.T) {
	base := Key("doc", []string{"US"}, 0.5)
	assert.NotEqual(t, base, Key("other doc", []string{"US"}, 0.5))
	assert.NotEqual(t, base, Key("doc", []string{"DE"}, 0.5))
	assert.NotEqual(t, base, Key("doc", []string{"US"}, 0.7))
}

func TestKeyLeaksNoContent(t *testing.T) {
	key := Key("alice@example.com", nil, 0.5)
	assert.True(t, strings.HasPrefix(key, "piiguard:scan:"))
	assert.NotContains(t, key, "alice")
}
