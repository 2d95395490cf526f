package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig is the optional YAML configuration for sessauthd. Flags
// override file values.
type ServerConfig struct {
	ListenAddr string      `yaml:"listen_addr"`
	PublicDir  string      `yaml:"public_dir"`
	Metrics    bool        `yaml:"metrics"`
	Audit      AuditConfig `yaml:"audit"`
}

// AuditConfig selects the audit sink backend.
//
// Backend is one of "stdout" (JSON lines on stdout), "redis" (LPUSH to
// RedisAddr), or "embedded" (an in-process miniredis, useful for demos
// without infrastructure).
type AuditConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr"`
	RedisKey  string `yaml:"redis_key"`
	MaxLen    int64  `yaml:"max_len"`
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr: "127.0.0.1:8080",
		PublicDir:  "public",
		Metrics:    true,
		Audit: AuditConfig{
			Backend: "stdout",
			MaxLen:  10000,
		},
	}
}

// LoadServerConfig reads and decodes the YAML config at configPath on top of
// the defaults.
func LoadServerConfig(configPath string) (ServerConfig, error) {
	config := defaultServerConfig()

	file, err := os.Open(configPath)
	if err != nil {
		return config, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("failed to decode config: %w", err)
	}

	return config, nil
}
