package types

import "time"

// HTTPConfig holds shared HTTP settings used when a source is a URL.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "trial-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestsPerSecond limits requests per source host. Zero is unlimited.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// SourcesConfig locates the two raw registry exports. Each path is either a
// local file or an http(s) URL.
type SourcesConfig struct {
	// CTGPath is the ClinicalTrials.gov CSV export.
	CTGPath string `json:"ctg_path" yaml:"ctg_path" mapstructure:"ctg_path"`

	// EudraCTPath is the EU Clinical Trials Register text dump.
	EudraCTPath string `json:"eudract_path" yaml:"eudract_path" mapstructure:"eudract_path"`

	// EudraCTLinkBase derives a record URL from its EudraCT number when the
	// dump carries no Link line. Empty disables derivation.
	EudraCTLinkBase string `json:"eudract_link_base" yaml:"eudract_link_base" mapstructure:"eudract_link_base"`

	// Token is an optional bearer token sent to URL sources. Loaded from
	// the secrets directory, never from the config file.
	Token string `json:"-" yaml:"-" mapstructure:"-"`
}

// IngestConfig holds settings for the ingestion stage.
type IngestConfig struct {
	HTTPConfig    `yaml:",inline" mapstructure:",squash"`
	SourcesConfig `yaml:",inline" mapstructure:",squash"`
}

// StoreConfig holds settings for the snapshot store.
type StoreConfig struct {
	// Dir is the directory holding the SQLite database and exports.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// ClassifyConfig holds settings for the title classifier.
type ClassifyConfig struct {
	// PatternsFile replaces the built-in pattern tables when set.
	PatternsFile string `json:"patterns_file" yaml:"patterns_file" mapstructure:"patterns_file"`
}

// ServerConfig configures the HTTP query server.
type ServerConfig struct {
	Port           int      `json:"port" yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "json" or "console".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Sources    SourcesConfig  `json:"sources" yaml:"sources" mapstructure:"sources"`
	HTTP       HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Store      StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Classify   ClassifyConfig `json:"classify" yaml:"classify" mapstructure:"classify"`
	Server     ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Log        LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
	SecretsDir string         `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`
}

// Ingest assembles the ingestion stage settings.
func (c PipelineConfig) Ingest() IngestConfig {
	return IngestConfig{HTTPConfig: c.HTTP, SourcesConfig: c.Sources}
}
