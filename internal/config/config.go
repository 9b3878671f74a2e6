// Package config loads the two independent configuration documents a scan
// run needs: the mandated JSON ScanTarget wire format, and an optional YAML
// RuntimeConfig document tuning ambient behavior, in the teacher's
// YAML-based configuration idiom.
package config

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roomkangali/gqlbola/internal/model"
)

// LoadScanTarget decodes the JSON ScanTarget document at path. The wire
// format is a hard external contract, so it is decoded with the standard
// library directly into the wire struct rather than through a third-party
// JSON library (see DESIGN.md).
func LoadScanTarget(path string) (model.ScanTarget, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.ScanTarget{}, err
	}
	var target model.ScanTarget
	if err := json.Unmarshal(raw, &target); err != nil {
		return model.ScanTarget{}, err
	}
	return target, nil
}

// runtimeDoc mirrors the shape of the optional YAML document, expressed in
// milliseconds/seconds the way the teacher's own YAML config does for
// human-editable duration fields.
type runtimeDoc struct {
	Concurrency     int    `yaml:"concurrency"`
	RequestDelayMs  int    `yaml:"request_delay_ms"`
	MaxRetries      int    `yaml:"max_retries"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxDepth        int    `yaml:"max_depth"`
	UserAgent       string `yaml:"user_agent"`
	LogLevel        string `yaml:"log_level"`
	DatabaseURL     string `yaml:"database_url"`
}

// LoadRuntimeConfig reads the YAML tuning document at path, falling back to
// model.DefaultRuntimeConfig when the file does not exist, mirroring the
// teacher's LoadConfig "missing file is not an error" behavior.
func LoadRuntimeConfig(path string) (model.RuntimeConfig, error) {
	cfg := model.DefaultRuntimeConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var doc runtimeDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return cfg, err
	}

	if doc.Concurrency > 0 {
		cfg.Concurrency = doc.Concurrency
	}
	if doc.RequestDelayMs > 0 {
		cfg.RequestDelay = msToDuration(doc.RequestDelayMs)
	}
	if doc.MaxRetries > 0 {
		cfg.MaxRetries = doc.MaxRetries
	}
	if doc.TimeoutSeconds > 0 {
		cfg.Timeout = secToDuration(doc.TimeoutSeconds)
	}
	if doc.MaxDepth > 0 {
		cfg.MaxDepth = doc.MaxDepth
	}
	if doc.UserAgent != "" {
		cfg.UserAgent = doc.UserAgent
	}
	if doc.LogLevel != "" {
		cfg.LogLevel = doc.LogLevel
	}
	if doc.DatabaseURL != "" {
		cfg.DatabaseURL = doc.DatabaseURL
	}

	if cfg.Concurrency > 5 {
		cfg.Concurrency = 5
	}

	return cfg, nil
}
