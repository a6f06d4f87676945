// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the CLI's YAML configuration.
type Config struct {
	Archive struct {
		// Path is the directory for the snapshot archive's database.
		Path string `yaml:"path"`
	} `yaml:"archive"`
	Log struct {
		// Level is the minimum log level: debug, info, warn, or error.
		Level string `yaml:"level"`
		// Dir enables file logging to the given directory.
		Dir string `yaml:"dir"`
	} `yaml:"log"`
}

// defaultConfig returns the configuration used when no file is present.
func defaultConfig() Config {
	var cfg Config
	cfg.Archive.Path = "~/.vargraph/archive"
	cfg.Log.Level = "info"
	return cfg
}

// LoadConfig reads the YAML config at path. With an empty path it tries
// ~/.vargraph/config.yaml and silently falls back to defaults when that
// file does not exist; an explicit path must exist.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return defaultConfig(), nil
		}
		path = filepath.Join(home, ".vargraph", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return defaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// expandHome resolves a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
