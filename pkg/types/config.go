// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-vault/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// AIConfig holds shared settings for calls to a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.0-flash").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ScoreWeights are the tunable constants of the relevance scorer.
type ScoreWeights struct {
	Base                float64 `json:"base" yaml:"base" mapstructure:"base"`
	AcademicDomainBonus float64 `json:"academic_domain_bonus" yaml:"academic_domain_bonus" mapstructure:"academic_domain_bonus"`
	VisitStep           float64 `json:"visit_step" yaml:"visit_step" mapstructure:"visit_step"`
	VisitCap            float64 `json:"visit_cap" yaml:"visit_cap" mapstructure:"visit_cap"`
	TitleKeywordBonus   float64 `json:"title_keyword_bonus" yaml:"title_keyword_bonus" mapstructure:"title_keyword_bonus"`
	URLKeywordBonus     float64 `json:"url_keyword_bonus" yaml:"url_keyword_bonus" mapstructure:"url_keyword_bonus"`

	// AcademicThreshold is the Domain sub-score at which an entry counts
	// as academic.
	AcademicThreshold float64 `json:"academic_threshold" yaml:"academic_threshold" mapstructure:"academic_threshold"`

	// FrequentVisits is the visit count above which an entry is labelled
	// a frequently visited site.
	FrequentVisits int `json:"frequent_visits" yaml:"frequent_visits" mapstructure:"frequent_visits"`
}

// ScorerConfig holds settings for the relevance scorer.
type ScorerConfig struct {
	// TablesPath is an optional YAML file overriding the built-in domain
	// and keyword tables.
	TablesPath string `json:"tables_path,omitempty" yaml:"tables_path,omitempty" mapstructure:"tables_path"`

	// Locale selects the reason wording: "en" or "ja".
	Locale string `json:"locale" yaml:"locale" mapstructure:"locale"`

	Weights ScoreWeights `json:"weights" yaml:"weights" mapstructure:"weights"`
}

// ScanConfig holds settings for the history scan.
type ScanConfig struct {
	// Limit caps the number of candidates returned (default 50).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`

	// MinConfidence drops candidates whose total score is lower.
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence" mapstructure:"min_confidence"`

	// Workers bounds the number of concurrent scoring goroutines.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// CitationConfig holds settings for citation generation.
type CitationConfig struct {
	// DefaultStyle is used when a request names no style.
	DefaultStyle CitationStyle `json:"default_style" yaml:"default_style" mapstructure:"default_style"`

	// Locale selects placeholder and access-date wording: "en" or "ja".
	Locale string `json:"locale" yaml:"locale" mapstructure:"locale"`
}

// StoreConfig holds settings for the candidate store.
type StoreConfig struct {
	// DataDir is the directory containing vault.db and exports.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// PDFMetaConfig holds settings for the PDF metadata collaborator.
type PDFMetaConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`
	AIConfig   `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the base URL of the generative-language API.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// RateLimit caps extraction requests per second. Zero disables the cap.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Address         string        `json:"address" yaml:"address" mapstructure:"address"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// MaxBodyBytes bounds request bodies; PDF uploads dominate.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum level (trace, debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output is stdout or stderr.
	Output string `json:"output" yaml:"output" mapstructure:"output"`
}

// Config groups all component configurations.
type Config struct {
	Scorer   ScorerConfig   `json:"scorer" yaml:"scorer" mapstructure:"scorer"`
	Scan     ScanConfig     `json:"scan" yaml:"scan" mapstructure:"scan"`
	Citation CitationConfig `json:"citation" yaml:"citation" mapstructure:"citation"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	PDFMeta  PDFMetaConfig  `json:"pdfmeta" yaml:"pdfmeta" mapstructure:"pdfmeta"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// DefaultConfig returns the configuration used when no file or
// environment override is present.
func DefaultConfig() Config {
	return Config{
		Scorer: ScorerConfig{
			Locale: "en",
			Weights: ScoreWeights{
				Base:                0.3,
				AcademicDomainBonus: 0.4,
				VisitStep:           0.1,
				VisitCap:            0.3,
				TitleKeywordBonus:   0.2,
				URLKeywordBonus:     0.1,
				AcademicThreshold:   0.7,
				FrequentVisits:      3,
			},
		},
		Scan: ScanConfig{
			Limit:   50,
			Workers: 4,
		},
		Citation: CitationConfig{
			DefaultStyle: StyleAPA,
			Locale:       "en",
		},
		Store: StoreConfig{
			DataDir: "vault",
		},
		PDFMeta: PDFMetaConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "research-vault/0.1",
			},
			AIConfig: AIConfig{
				Model:      "gemini-2.0-flash",
				MaxRetries: 3,
			},
			Endpoint:  "https://generativelanguage.googleapis.com/v1beta",
			RateLimit: 0.25,
		},
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    25 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}
