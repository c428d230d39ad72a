package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devdocai/piiguard/internal/privacy"
)

func TestGetDefaults(t *testing.T) {
	cfg := GetDefaults()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, privacy.DefaultMinConfidence, cfg.Detection.MinConfidence)
	assert.Equal(t, privacy.DefaultMaxDocumentBytes, cfg.Detection.MaxDocumentBytes)
	assert.Equal(t, string(privacy.ModeMask), cfg.Redaction.Mode)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Reporting.Enabled)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.WebSocket.Enabled)

	require.NoError(t, validateConfig(cfg))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "negative min confidence",
			mutate:  func(c *Config) { c.Detection.MinConfidence = -0.1 },
			wantErr: "invalid min confidence",
		},
		{
			name:    "min confidence above one",
			mutate:  func(c *Config) { c.Detection.MinConfidence = 1.5 },
			wantErr: "invalid min confidence",
		},
		{
			name:    "zero max document bytes",
			mutate:  func(c *Config) { c.Detection.MaxDocumentBytes = 0 },
			wantErr: "invalid max document bytes",
		},
		{
			name:    "unknown redaction mode",
			mutate:  func(c *Config) { c.Redaction.Mode = "scramble" },
			wantErr: "invalid redaction mode",
		},
		{
			name:   "tokenize mode passes",
			mutate: func(c *Config) { c.Redaction.Mode = string(privacy.ModeTokenize) },
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid log format",
		},
		{
			name:    "rate limit enabled without rate",
			mutate:  func(c *Config) { c.RateLimit.RequestsPerSecond = 0 },
			wantErr: "invalid rate limit",
		},
		{
			name: "rate limit disabled ignores rate",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = false
				c.RateLimit.RequestsPerSecond = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRedactionConfigPolicy(t *testing.T) {
	rc := RedactionConfig{
		Mode:              "remove",
		PreserveLength:    true,
		PlaceholderFormat: "<{category}>",
	}

	policy := rc.Policy()
	assert.Equal(t, privacy.ModeRemove, policy.Mode)
	assert.True(t, policy.PreserveLength)
	assert.Equal(t, "<{category}>", policy.PlaceholderFormat)
}
