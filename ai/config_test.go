package ai

import (
	"testing"
	"time"

	"github.com/poiesic/marketfeed/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/openai", cfg.Host)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
	assert.Equal(t, core.VocabularyMarket, cfg.Vocabulary)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.False(t, cfg.Enabled(), "no credential by default")
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://localhost:8080/v1"),
		WithModel("custom"),
		WithAPIKey("secret"),
		WithVocabulary(core.VocabularyTrading),
		WithTimeout(5*time.Second),
	)

	assert.Equal(t, "http://localhost:8080/v1", cfg.Host)
	assert.Equal(t, "custom", cfg.Model)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, core.VocabularyTrading, cfg.Vocabulary)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Enabled())
}

func TestConfigEnabled(t *testing.T) {
	var nilCfg *Config
	assert.False(t, nilCfg.Enabled())
	assert.False(t, NewConfig(WithAPIKey("   ")).Enabled())
	assert.True(t, NewConfig(WithAPIKey("k")).Enabled())
}

func TestConfigNormalize(t *testing.T) {
	cfg := &Config{Host: " http://host/v1/ ", Model: " m ", APIKey: " k "}
	cfg.Normalize()

	assert.Equal(t, "http://host/v1", cfg.Host)
	assert.Equal(t, "m", cfg.Model)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, core.VocabularyMarket, cfg.Vocabulary)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"missing host", NewConfig(WithHost("")), true},
		{"missing model", NewConfig(WithModel(" ")), true},
		{"bad vocabulary", NewConfig(WithVocabulary(core.Vocabulary(9))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSummaryItemIndex(t *testing.T) {
	_, ok := SummaryItem{}.Index()
	assert.False(t, ok)

	three := 3
	idx, ok := SummaryItem{ItemIndex: &three}.Index()
	assert.True(t, ok)
	assert.Equal(t, 3, idx)
}
