package settings

import (
	"context"
	"sync"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

// Compile-time interface check.
var _ domain.SettingsStore = (*MemoryStore)(nil)

// MemoryStore keeps settings in memory. Safe for concurrent access.
type MemoryStore struct {
	mu    sync.RWMutex
	saved *domain.Settings
	log   *logger.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{log: log}
}

// Load returns a copy of the saved settings, or the defaults.
func (m *MemoryStore) Load(ctx context.Context) (*domain.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.saved == nil {
		m.log.Debug("no saved settings, using defaults")
		d := domain.DefaultSettings()
		return &d, nil
	}
	cp := *m.saved
	return &cp, nil
}

// Save replaces the saved settings with a copy of s.
func (m *MemoryStore) Save(ctx context.Context, s *domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.saved = &cp
	m.log.Debug("settings saved (stove=%s, bp=%.1f)", s.StoveType, s.BoilingPoint)
	return nil
}

// Reset forgets the saved settings.
func (m *MemoryStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saved = nil
	m.log.Debug("settings reset")
	return nil
}
