package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr            string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir       string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	DefaultModel    string `json:"default_model" yaml:"default_model" toml:"default_model"`
	MaxQueueDepth   int    `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitSec      int    `json:"max_wait_sec" yaml:"max_wait_sec" toml:"max_wait_sec"`
	IdleTTLSec      int    `json:"idle_ttl_sec" yaml:"idle_ttl_sec" toml:"idle_ttl_sec"`
	DrainTimeoutSec int    `json:"drain_timeout_sec" yaml:"drain_timeout_sec" toml:"drain_timeout_sec"`
	GenTimeoutSec   int    `json:"gen_timeout_sec" yaml:"gen_timeout_sec" toml:"gen_timeout_sec"`
	MaxBodyBytes    int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	LlamaCtx        int    `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads    int    `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
	LogLevel        string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
