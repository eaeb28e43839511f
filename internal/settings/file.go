package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

// Compile-time interface check.
var _ domain.SettingsStore = (*FileStore)(nil)

// FileStore keeps settings in a JSON file. Writes go to a temp file in the
// same directory and are renamed over the old one.
type FileStore struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

// NewFileStore creates a store backed by path. The file and its directory
// are created on first save.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Path returns the backing file.
func (f *FileStore) Path() string { return f.path }

// Load reads the file. A missing file yields the defaults; a corrupt one
// yields the defaults and a warning.
func (f *FileStore) Load(ctx context.Context) (*domain.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.log.Debug("no settings file at %s, using defaults", f.path)
		d := domain.DefaultSettings()
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	s, err := Decode(data, f.log)
	if err != nil {
		f.log.Warn("settings file %s is corrupt, using defaults: %v", f.path, err)
	}
	return s, nil
}

// Save writes every key to the file.
func (f *FileStore) Save(ctx context.Context, s *domain.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	f.log.Debug("settings written to %s", f.path)
	return nil
}

// Reset deletes the file.
func (f *FileStore) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove settings: %w", err)
	}
	f.log.Info("settings reset (%s removed)", f.path)
	return nil
}
