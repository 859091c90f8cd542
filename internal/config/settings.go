package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Built-in defaults.
const (
	DefaultBackend    = BackendSQLite
	DefaultStorageKey = "pt_tracker_data"
	// DefaultMemoryMB sizes the memory backend. freecache caps one entry at
	// 1/1024 of the cache, so the whole state must stay under 16 KiB here;
	// larger states fail to save until memory-mb is raised.
	DefaultMemoryMB  = 16
	DefaultLogLevel  = "info"
	DefaultBackupDir = "."
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Setting keys. Each maps to a flag of the same name and a PTRACK_ variable
// with dashes replaced by underscores.
const (
	KeyStorage    = "storage"
	KeyDB         = "db"
	KeyStorageKey = "storage-key"
	KeyMemoryMB   = "memory-mb"
	KeyLogLevel   = "log-level"
	KeyLogFile    = "log-file"
	KeyLogJSON    = "log-json"
	KeyLogStderr  = "log-stderr"
	KeyBackupDir  = "backup-dir"
)

// Settings are the resolved runtime options.
type Settings struct {
	Backend   string
	DBPath    string
	Key       string
	MemoryMB  int
	LogLevel  string
	LogFile   string
	LogJSON   bool
	LogStderr bool
	BackupDir string
}

// NewViper returns a viper instance reading PTRACK_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Resolve merges settings as flag > environment > file > default. Flags
// must already be bound to v.
func Resolve(v *viper.Viper, file FileConfig) (Settings, error) {
	v.SetDefault(KeyStorage, DefaultBackend)
	v.SetDefault(KeyDB, DefaultDBPath())
	v.SetDefault(KeyStorageKey, DefaultStorageKey)
	v.SetDefault(KeyMemoryMB, DefaultMemoryMB)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFile, DefaultLogPath())
	v.SetDefault(KeyLogJSON, false)
	v.SetDefault(KeyLogStderr, false)
	v.SetDefault(KeyBackupDir, DefaultBackupDir)

	setFromFile(v, KeyStorage, file.Storage.Backend)
	setFromFile(v, KeyDB, file.Storage.Path)
	setFromFile(v, KeyStorageKey, file.Storage.Key)
	setFromFile(v, KeyMemoryMB, file.Storage.MemoryMB)
	setFromFile(v, KeyLogLevel, file.Log.Level)
	setFromFile(v, KeyLogFile, file.Log.File)
	setFromFile(v, KeyLogJSON, file.Log.JSON)
	setFromFile(v, KeyLogStderr, file.Log.Stderr)
	setFromFile(v, KeyBackupDir, file.Backup.Dir)

	s := Settings{
		Backend:   strings.ToLower(strings.TrimSpace(v.GetString(KeyStorage))),
		DBPath:    v.GetString(KeyDB),
		Key:       v.GetString(KeyStorageKey),
		MemoryMB:  v.GetInt(KeyMemoryMB),
		LogLevel:  v.GetString(KeyLogLevel),
		LogFile:   v.GetString(KeyLogFile),
		LogJSON:   v.GetBool(KeyLogJSON),
		LogStderr: v.GetBool(KeyLogStderr),
		BackupDir: v.GetString(KeyBackupDir),
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// setFromFile registers a file value beneath flags and environment.
func setFromFile[T any](v *viper.Viper, key string, value *T) {
	if value == nil {
		return
	}
	v.SetDefault(key, *value)
}

func (s Settings) validate() error {
	switch s.Backend {
	case BackendSQLite:
		if s.DBPath == "" {
			return fmt.Errorf("--db must not be empty")
		}
	case BackendMemory:
		if s.MemoryMB <= 0 {
			return fmt.Errorf("--memory-mb must be > 0")
		}
	default:
		return fmt.Errorf("--storage must be %q or %q, got %q", BackendSQLite, BackendMemory, s.Backend)
	}
	if s.Key == "" {
		return fmt.Errorf("--storage-key must not be empty")
	}
	return nil
}
