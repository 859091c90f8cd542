package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/verte-zerg/ptrack/internal/model"
)

// BackupFileName returns the export file name for a date key.
func BackupFileName(date string) string {
	return fmt.Sprintf("pt_tracker_backup_%s.json", date)
}

// Export writes state as indented JSON to dir and returns the file path.
func Export(state model.State, dir, date string) (string, error) {
	raw, err := json.MarshalIndent(state.Normalized(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}
	path := filepath.Join(dir, BackupFileName(date))
	if err := writeFileAtomic(path, raw); err != nil {
		return "", err
	}
	return path, nil
}

// Import decodes a backup. It returns nil unless exercises and history are
// arrays and currentDate is a string. Ill-typed elements are repaired or
// dropped rather than rejecting the file.
func Import(data []byte) *model.State {
	state, err := decodeState(data)
	if err != nil {
		log.WithError(err).Warn("rejecting backup")
		return nil
	}
	state = state.Normalized()
	return &state
}

func writeFileAtomic(path string, data []byte) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create backup dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "backup-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp backup: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			// Best-effort close; the file may already be closed.
			_ = tmpFile.Close()
			err = multierr.Append(err, os.Remove(tmpPath))
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close backup: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}
