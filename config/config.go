// Package config loads the service configuration from YAML or JSON with
// optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/qdispatch/core/costmodel"
	"github.com/kilianp07/qdispatch/core/metrics"
	"github.com/kilianp07/qdispatch/core/quantum"
	"github.com/kilianp07/qdispatch/infra/geo"
)

// Config gathers every tunable of the dispatcher. Nothing the optimizer
// uses is hard-coded: evolution parameters, cost weights, worker counts
// and the provider selection all live here.
type Config struct {
	Engine   quantum.Config `json:"engine"`
	Cost     CostConfig     `json:"cost"`
	Provider geo.Config     `json:"provider"`
	Metrics  metrics.Config `json:"metrics"`
}

// CostConfig groups the cost-model settings.
type CostConfig struct {
	Weights costmodel.Weights `json:"weights"`
	// Workers sizes the pool for per-pair energy computation and
	// per-driver route refinement. 0 means all available cores.
	Workers int `json:"workers"`
}

// SetDefaults applies defaults to zero-valued sections.
func (c *CostConfig) SetDefaults() {
	if c.Weights == (costmodel.Weights{}) {
		c.Weights = costmodel.DefaultWeights()
	}
}

// Load reads the configuration file and applies QD_-prefixed environment
// overrides (QD_ENGINE__ROUNDS=10 sets engine.rounds).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("QD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "qd_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Engine.SetDefaults()
	cfg.Cost.SetDefaults()
	cfg.Provider.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if err := cfg.Cost.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("cost: %w", err)
	}
	if err := cfg.Provider.Validate(); err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	return &cfg, nil
}
