// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/marketfeed/core"
)

// Config holds configuration for the summarization service.
type Config struct {
	// Host is the base URL of an OpenAI-compatible chat endpoint.
	// Example: "https://generativelanguage.googleapis.com/v1beta/openai"
	Host string

	// Model is the chat model identifier.
	// Example: "gemini-2.0-flash"
	Model string

	// APIKey authenticates against Host. An empty key disables enrichment;
	// articles are then stored with pending fallback enrichment.
	APIKey string

	// Vocabulary selects the sentiment labels requested and persisted.
	Vocabulary core.Vocabulary

	// Timeout bounds a single sub-batch request.
	// Default: 60s
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the service credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithVocabulary sets the sentiment vocabulary.
func WithVocabulary(v core.Vocabulary) ConfigOption {
	return func(c *Config) {
		c.Vocabulary = v
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// DefaultConfig returns a Config pointed at Gemini's OpenAI-compatible endpoint
// without a credential.
func DefaultConfig() *Config {
	return &Config{
		Host:       "https://generativelanguage.googleapis.com/v1beta/openai",
		Model:      "gemini-2.0-flash",
		Vocabulary: core.VocabularyMarket,
		Timeout:    60 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    WithVocabulary(core.VocabularyTrading),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Enabled reports whether enrichment can run. A missing credential is a
// recognized degraded mode, not an error.
func (c *Config) Enabled() bool {
	return c != nil && strings.TrimSpace(c.APIKey) != ""
}

// Normalize trims whitespace and trailing slashes from the host and fills
// zero values with defaults.
func (c *Config) Normalize() {
	c.Host = strings.TrimSuffix(strings.TrimSpace(c.Host), "/")
	c.Model = strings.TrimSpace(c.Model)
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.Vocabulary == 0 {
		c.Vocabulary = core.VocabularyMarket
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}

// Validate checks that the configuration is complete enough to build a client.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return fmt.Errorf("%w: Host is required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: Model is required", ErrInvalidConfig)
	}
	if c.Vocabulary != core.VocabularyMarket && c.Vocabulary != core.VocabularyTrading {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, core.ErrUnknownVocabulary)
	}
	return nil
}
