// Package config provides configuration structures for the food search
// engine: tuning knobs for retrieval, debounce and pagination, plus the yaml
// server configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings contains the tuning options of the search engine. The zero value
// is not usable directly; call ApplyDefaults.
type Settings struct {
	// DebounceInterval is how long a search request waits before resolving,
	// as hysteresis against rapid retyping.
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// PageSize is the number of records per result page.
	PageSize int `yaml:"page_size"`

	// CancelCheckStride is how many records a long loop processes between
	// cancellation checks.
	CancelCheckStride int `yaml:"cancel_check_stride"`

	// FallbackSeedCap bounds the pre-ranked id list used to seed a search
	// that has nutrient goals but no text tokens.
	FallbackSeedCap int `yaml:"fallback_seed_cap"`

	// SemanticNeighbors is how many embedding neighbors to consider per
	// token when the semantic tier runs.
	SemanticNeighbors int `yaml:"semantic_neighbors"`

	// MinTokenLenForSemantic gates the semantic tier per token.
	MinTokenLenForSemantic int `yaml:"min_token_len_for_semantic"`

	// MinTokensForFuzzy is the query token count at which the semantic
	// tier becomes eligible at all.
	MinTokensForFuzzy int `yaml:"min_tokens_for_fuzzy"`
}

// ApplyDefaults fills unset fields with their default values.
func (s *Settings) ApplyDefaults() {
	if s.DebounceInterval == 0 {
		s.DebounceInterval = 150 * time.Millisecond
	}
	if s.PageSize == 0 {
		s.PageSize = 40
	}
	if s.CancelCheckStride == 0 {
		s.CancelCheckStride = 500
	}
	if s.FallbackSeedCap == 0 {
		s.FallbackSeedCap = 300
	}
	if s.SemanticNeighbors == 0 {
		s.SemanticNeighbors = 8
	}
	if s.MinTokenLenForSemantic == 0 {
		s.MinTokenLenForSemantic = 3
	}
	if s.MinTokensForFuzzy == 0 {
		s.MinTokensForFuzzy = 3
	}
}

// Validate reports configuration mistakes as a list of messages, matching
// how handler validation surfaces them.
func (s *Settings) Validate() []string {
	var problems []string
	if s.DebounceInterval < 0 {
		problems = append(problems, "debounce_interval cannot be negative")
	}
	if s.PageSize < 0 {
		problems = append(problems, "page_size cannot be negative")
	}
	if s.CancelCheckStride < 0 {
		problems = append(problems, "cancel_check_stride cannot be negative")
	}
	if s.FallbackSeedCap < 0 {
		problems = append(problems, "fallback_seed_cap cannot be negative")
	}
	return problems
}

// PrefixExpansionCap returns the candidate cap for prefix expansion of a
// token of the given length. Short tokens expand to many words, so the caps
// are uneven on purpose.
func (s *Settings) PrefixExpansionCap(tokenLen int) int {
	switch tokenLen {
	case 1:
		return 80
	case 2:
		return 200
	case 3:
		return 80
	default:
		return 40
	}
}

// ServerConfig holds the yaml configuration of the HTTP server.
type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	DataDir string `yaml:"data_dir"`

	Engine Settings `yaml:"engine"`
}

// LoadServerConfig reads and parses a yaml config file, applying defaults.
func LoadServerConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator, not request input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg ServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// DefaultServerConfig returns a usable configuration without a config file.
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *ServerConfig) applyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	c.Engine.ApplyDefaults()
}
