package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadWithSources loads configuration with source tracking.
// Load order (later sources override earlier):
//  1. Built-in defaults
//  2. User config (~/.finch/config.yaml) - optional
//  3. Project config (.finch/config.yaml) - optional
//  4. Environment variables (FINCH_*)
//
// When explicitPath is set it replaces steps 2 and 3 and must exist.
func LoadWithSources(explicitPath string) (*TrackedConfig, error) {
	tc := NewTrackedConfig()

	if explicitPath != "" {
		if err := mergeFromFile(tc, explicitPath, SourceFile); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(home, FinchDir, ConfigFileName)
			if _, err := os.Stat(userPath); err == nil {
				if err := mergeFromFile(tc, userPath, SourceUser); err != nil {
					slog.Warn("failed to load user config", "path", userPath, "error", err)
				}
			}
		}

		projectPath := filepath.Join(FinchDir, ConfigFileName)
		if _, err := os.Stat(projectPath); err == nil {
			if err := mergeFromFile(tc, projectPath, SourceProject); err != nil {
				return nil, err // Project config errors are fatal
			}
		}
	}

	ApplyEnvVars(tc)

	return tc, nil
}

// Load loads and validates configuration from the standard locations.
func Load() (*Config, error) {
	tc, err := LoadWithSources("")
	if err != nil {
		return nil, err
	}
	if err := tc.Config.Validate(); err != nil {
		return nil, err
	}
	return tc.Config, nil
}

// mergeFromFile merges configuration from a file into tc. Only keys present
// in the file are overwritten; each one is recorded with source.
func mergeFromFile(tc *TrackedConfig, path string, source ConfigSource) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	// yaml.v3 leaves fields absent from the document untouched.
	if err := yaml.Unmarshal(data, tc.Config); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	for _, key := range leafPaths("", raw) {
		tc.SetSourceWithPath(key, source, path)
	}
	return nil
}

// leafPaths returns the dotted paths of every scalar or list value in raw.
func leafPaths(prefix string, raw map[string]any) []string {
	var out []string
	for k, v := range raw {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			out = append(out, leafPaths(key, nested)...)
			continue
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
