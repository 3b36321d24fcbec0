// Package config loads the console client's credentials file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the credentials file is looked up when no path is given.
const DefaultPath = "./config.toml"

// Config holds the credentials for one exaroton server.
type Config struct {
	Token  string `toml:"token" yaml:"token"`
	Server string `toml:"server" yaml:"server"`
}

// Load reads the credentials file at path. YAML is used for .yaml/.yml files,
// TOML for everything else.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Server = NormalizeServer(cfg.Server)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// NormalizeServer strips every '#' so IDs copied from a dashboard URL
// fragment (e.g. "#abc123") can be pasted as-is.
func NormalizeServer(server string) string {
	return strings.ReplaceAll(server, "#", "")
}

func (c *Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.Token) == "" {
		errs = append(errs, errors.New("token is required"))
	}
	if strings.TrimSpace(c.Server) == "" {
		errs = append(errs, errors.New("server is required"))
	}
	return errors.Join(errs...)
}
