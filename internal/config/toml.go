// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
	Backup  BackupConfig  `toml:"backup"`
}

// StorageConfig maps persistence settings.
type StorageConfig struct {
	Backend  *string `toml:"backend"`
	Path     *string `toml:"path"`
	Key      *string `toml:"key"`
	MemoryMB *int    `toml:"memory-mb"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	File   *string `toml:"file"`
	JSON   *bool   `toml:"json"`
	Stderr *bool   `toml:"stderr"`
}

// BackupConfig maps export settings.
type BackupConfig struct {
	Dir *string `toml:"dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// DefaultTemplate is written by `ptrack config` when no file exists.
func DefaultTemplate() string {
	return fmt.Sprintf(`# ptrack configuration
# Uncomment a value to enable it. Flags and PTRACK_* variables override it.

[storage]
# backend = %q        # "sqlite" or "memory"
# path = %q
# key = %q
# memory-mb = %d            # Memory backend size; the saved state may use 1/1024 of it

[log]
# level = %q            # trace, debug, info, warn, error
# file = %q
# json = false
# stderr = false            # Also write logs to stderr

[backup]
# dir = %q                 # Where export writes backups
`,
		DefaultBackend,
		DefaultDBPath(),
		DefaultStorageKey,
		DefaultMemoryMB,
		DefaultLogLevel,
		DefaultLogPath(),
		DefaultBackupDir,
	)
}
