package config

import (
	"fmt"
	"strings"
)

// minRecencyDays floors the decay constant; zero or negative values
// would divide by zero or invert the decay.
const minRecencyDays = 0.1

var validBackends = []string{"sqlite-vec", "chromem"}
var validProviders = []string{"openai", "mock"}

// Validate checks configuration values and clamps the ones with safe
// fallbacks.
func Validate(cfg *Config) error {
	if !contains(validBackends, cfg.Vector.Backend) {
		return fmt.Errorf("invalid vector backend: %s (must be one of: %s)",
			cfg.Vector.Backend, strings.Join(validBackends, ", "))
	}
	if !contains(validProviders, cfg.Embedding.Provider) {
		return fmt.Errorf("invalid embedding provider: %s (must be one of: %s)",
			cfg.Embedding.Provider, strings.Join(validProviders, ", "))
	}
	if cfg.Embedding.Provider == "openai" && cfg.Embedding.APIKey == "" {
		return fmt.Errorf("openai embedding provider requires an API key (set embedding.api_key or OPENAI_API_KEY)")
	}

	if cfg.Retrieval.Limit <= 0 {
		cfg.Retrieval.Limit = 20
	}
	if cfg.Retrieval.MaxK <= 0 {
		cfg.Retrieval.MaxK = 100
	}
	if cfg.Retrieval.BudgetTokens <= 0 {
		cfg.Retrieval.BudgetTokens = 2000
	}
	if cfg.Retrieval.RecencyBoostDays == 0 {
		cfg.Retrieval.RecencyBoostDays = 30
	} else if cfg.Retrieval.RecencyBoostDays < minRecencyDays {
		cfg.Retrieval.RecencyBoostDays = minRecencyDays
	}

	if cfg.Prune.Days < 0 {
		return fmt.Errorf("prune days cannot be negative, got %d", cfg.Prune.Days)
	}

	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing sample ratio must be in (0,1], got %g", cfg.Tracing.SampleRatio)
	}

	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
