package model

import "time"

// RuntimeConfig tunes the ambient behavior of a scan run: BOLA prober
// concurrency, retry count, user agent and logging verbosity. It is loaded
// from YAML, separately from the JSON ScanTarget document, mirroring the
// split the teacher draws between scan-scope and tool-behavior
// configuration. RequestDelay, Timeout, MaxDepth and DatabaseURL are loaded
// but not applied: the probers use their own fixed timeouts, 50 ms pause and
// depth, and the CLI takes its database connection string from -db or
// DATABASE_URL.
type RuntimeConfig struct {
	Concurrency  int           `yaml:"concurrency"`
	RequestDelay time.Duration `yaml:"request_delay"`
	MaxRetries   int           `yaml:"max_retries"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxDepth     int           `yaml:"max_depth"`
	UserAgent    string        `yaml:"user_agent"`
	LogLevel     string        `yaml:"log_level"`
	DatabaseURL  string        `yaml:"database_url,omitempty"`
}

// DefaultRuntimeConfig mirrors the teacher's zero-value defaulting in
// LoadConfig. Concurrency defaults to 1 (fully sequential) and is clamped
// to a maximum of 5 by LoadRuntimeConfig, per the bounded worker pool sizing
// probers use.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Concurrency:  1,
		RequestDelay: 50 * time.Millisecond,
		MaxRetries:   2,
		Timeout:      15 * time.Second,
		MaxDepth:     15,
		UserAgent:    "gqlbola/1.0",
		LogLevel:     "info",
	}
}
