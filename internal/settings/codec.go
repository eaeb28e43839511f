package settings

import (
	"encoding/json"
	"fmt"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

// Merge builds Settings from stored raw values laid over the defaults.
// Unknown keys are ignored. A value that does not decode keeps its default
// and is logged.
func Merge(stored map[string]json.RawMessage, log *logger.Logger) *domain.Settings {
	s := domain.DefaultSettings()
	for _, k := range registry {
		raw, ok := stored[k.name]
		if !ok || string(raw) == "null" {
			continue
		}
		field := k.ptr(&s)
		if err := json.Unmarshal(raw, field); err != nil {
			log.Warn("stored setting %s ignored: %v", k.name, err)
			// A failed decode can leave the field half-written.
			def := domain.DefaultSettings()
			restore, _ := json.Marshal(k.ptr(&def))
			_ = json.Unmarshal(restore, field)
		}
	}
	return &s
}

// Decode parses a stored JSON object and merges it over the defaults. A
// payload that is not a JSON object yields the defaults and an error.
func Decode(data []byte, log *logger.Logger) (*domain.Settings, error) {
	var stored map[string]json.RawMessage
	if err := json.Unmarshal(data, &stored); err != nil {
		d := domain.DefaultSettings()
		return &d, fmt.Errorf("decode settings: %w", err)
	}
	return Merge(stored, log), nil
}

// Split renders s as one raw JSON value per key.
func Split(s *domain.Settings) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(registry))
	for _, k := range registry {
		raw, err := json.Marshal(k.ptr(s))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k.name, err)
		}
		out[k.name] = raw
	}
	return out, nil
}
