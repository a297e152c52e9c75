package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// maxConfigFileSize guards against a runaway config file.
	maxConfigFileSize = 1024 * 1024

	envPrefix      = "GOTO_"
	configFileName = "config.yaml"
)

// Load loads configuration with the usual precedence:
//
//  1. GOTO_* environment variables
//  2. YAML config file (~/.config/goto/config.yaml by default)
//  3. Defaults
//
// configPath overrides the file location when non-empty. A missing file is
// not an error; the defaults apply and the file is created on first Save.
//
// Environment variables map to config keys by stripping the prefix and
// lowercasing; the embedding section nests after the first underscore:
//
//	GOTO_MAX_DEPTH            -> max_depth
//	GOTO_POST_COMMAND         -> post_command
//	GOTO_EMBEDDING_PROVIDER   -> embedding.provider
//	GOTO_EMBEDDING_BASE_URL   -> embedding.base_url
func Load(configPath string) (*Config, error) {
	cfg := Default()

	configDir, dataDir, err := resolveDirs()
	if err != nil {
		return nil, err
	}
	cfg.configDir = configDir
	cfg.dataDir = dataDir

	if configPath == "" {
		configPath = filepath.Join(configDir, configFileName)
	}

	k := koanf.New(".")

	if f, err := os.Open(configPath); err == nil {
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", configPath, maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open config file: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envTransform maps a GOTO_* variable name to a config key.
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range []string{"embedding"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// applyDefaults fills zero values left by a sparse config file.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = def.Embedding.Provider
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = def.Embedding.Model
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = def.Embedding.Timeout
	}
}

// Save writes the configuration back to its YAML file atomically.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	scanPaths := make([]map[string]interface{}, 0, len(c.ScanPaths))
	for _, sp := range c.ScanPaths {
		entry := map[string]interface{}{
			"path":      sp.Path,
			"recursive": sp.Recursive,
		}
		if sp.MaxDepth > 0 {
			entry["max_depth"] = sp.MaxDepth
		}
		if len(sp.Exclude) > 0 {
			entry["exclude"] = sp.Exclude
		}
		scanPaths = append(scanPaths, entry)
	}

	doc := map[string]interface{}{
		"scan_paths":       scanPaths,
		"discovery_assist": c.DiscoveryAssist,
		"max_depth":        c.MaxDepth,
		"post_command":     c.PostCommand,
		"log_level":        c.LogLevel,
		"embedding": map[string]interface{}{
			"provider": c.Embedding.Provider,
			"model":    c.Embedding.Model,
			"base_url": c.Embedding.BaseURL,
			"timeout":  c.Embedding.Timeout.String(),
			"disabled": c.Embedding.Disabled,
		},
	}

	data, err := yaml.Parser().Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := filepath.Join(c.configDir, configFileName)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// resolveDirs determines the config and data directories. GOTO_CONFIG_DIR
// and GOTO_DATA_DIR override the defaults, which keeps tests hermetic.
func resolveDirs() (configDir, dataDir string, err error) {
	if configDir = os.Getenv("GOTO_CONFIG_DIR"); configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", fmt.Errorf("resolving home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "goto")
	}
	if dataDir = os.Getenv("GOTO_DATA_DIR"); dataDir == "" {
		dataDir = configDir
	}
	return configDir, dataDir, nil
}
