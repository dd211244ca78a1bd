package config

// Config represents the main moltiq configuration
type Config struct {
	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Database holds relational store settings
	Database DatabaseConfig `json:"database" mapstructure:"database"`

	// Vector holds vector index settings
	Vector VectorConfig `json:"vector" mapstructure:"vector"`

	// Embedding holds embedding provider settings
	Embedding EmbeddingConfig `json:"embedding" mapstructure:"embedding"`

	// Retrieval holds ranking and budgeting defaults
	Retrieval RetrievalConfig `json:"retrieval" mapstructure:"retrieval"`

	// Prune holds retention settings
	Prune PruneConfig `json:"prune" mapstructure:"prune"`

	// Tracing holds span sampling settings
	Tracing TracingConfig `json:"tracing" mapstructure:"tracing"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// DatabaseConfig holds relational store configuration
type DatabaseConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// VectorConfig holds vector index configuration
type VectorConfig struct {
	// Backend selects the index implementation: sqlite-vec, chromem
	Backend string `json:"backend" mapstructure:"backend"`
	// Optional degrades vector failures to empty results instead of errors
	Optional   bool   `json:"optional" mapstructure:"optional"`
	Path       string `json:"path" mapstructure:"path"`
	Collection string `json:"collection" mapstructure:"collection"`
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	// Provider selects the embedder: openai, mock
	Provider     string `json:"provider" mapstructure:"provider"`
	APIKey       string `json:"api_key" mapstructure:"api_key"`
	Model        string `json:"model" mapstructure:"model"`
	CacheEntries int64  `json:"cache_entries" mapstructure:"cache_entries"`
}

// RetrievalConfig holds ranking and budgeting defaults
type RetrievalConfig struct {
	Limit            int     `json:"limit" mapstructure:"limit"`
	MaxK             int     `json:"max_k" mapstructure:"max_k"`
	BudgetTokens     int     `json:"budget_tokens" mapstructure:"budget_tokens"`
	RecencyBoostDays float64 `json:"recency_boost_days" mapstructure:"recency_boost_days"`
}

// PruneConfig holds retention configuration
type PruneConfig struct {
	Days int `json:"days" mapstructure:"days"`
	// Schedule is a cron spec; empty disables scheduled pruning
	Schedule string `json:"schedule" mapstructure:"schedule"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	// SampleRatio is the head-sampling ratio in (0,1]; 0 means sample
	// everything
	SampleRatio float64 `json:"sample_ratio" mapstructure:"sample_ratio"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{},
		Vector: VectorConfig{
			Backend:    "sqlite-vec",
			Optional:   true,
			Collection: "moltiq_memories",
		},
		Embedding: EmbeddingConfig{
			Provider:     "openai",
			Model:        "text-embedding-3-small",
			CacheEntries: 10000,
		},
		Retrieval: RetrievalConfig{
			Limit:            20,
			MaxK:             100,
			BudgetTokens:     2000,
			RecencyBoostDays: 30,
		},
		Prune: PruneConfig{
			Days:     0, // disabled
			Schedule: "0 3 * * *",
		},
		Tracing: TracingConfig{
			SampleRatio: 1.0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
	}
}
