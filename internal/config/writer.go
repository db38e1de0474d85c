package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteDefault writes cfg as YAML to path. An existing file is only replaced
// when overwrite is set.
func WriteDefault(path string, cfg *Config, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := *cfg
	out.Security.JWTSecret = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	header := []byte("# FinBot configuration. Environment variables (FINBOT_*) override these values.\n")
	return os.WriteFile(path, append(header, data...), 0600)
}
