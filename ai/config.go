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
	"errors"
	"strings"
)

// ModelVariants maps short variant keys to embedding model identifiers.
// Variants trade accuracy against inference cost.
var ModelVariants = map[string]string{
	"default":      "all-minilm-l12-v2",
	"fast":         "all-minilm-l6-v2",
	"accurate":     "all-mpnet-base-v2",
	"multilingual": "paraphrase-multilingual-mpnet-base-v2",
}

// Config holds configuration for embedding service providers.
type Config struct {
	// Host is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	Host string

	// Model is the primary embedding model identifier or a ModelVariants key.
	// Example: "default", "all-minilm-l12-v2", "text-embedding-3-small"
	Model string

	// FallbackModel is attempted when the primary model cannot be loaded.
	// Defaults to the "fast" variant. Empty disables the fallback attempt.
	FallbackModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the primary embedding model identifier or variant key.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithFallbackModel sets the fallback embedding model identifier or variant key.
func WithFallbackModel(model string) ConfigOption {
	return func(c *Config) {
		c.FallbackModel = model
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		Host:          "http://localhost:11434/v1",
		Model:         ModelVariants["default"],
		FallbackModel: ModelVariants["fast"],
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// ResolveModel resolves a model identifier or ModelVariants key to a concrete
// model identifier. Unknown keys are returned unchanged.
func ResolveModel(model string) string {
	if resolved, ok := ModelVariants[model]; ok {
		return resolved
	}
	return model
}

// Validate checks the configuration and normalizes model variant keys.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("embedding host cannot be empty")
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("embedding model cannot be empty")
	}
	c.Model = ResolveModel(c.Model)
	c.FallbackModel = ResolveModel(c.FallbackModel)
	return nil
}
