package settings

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

func quiet() *logger.Logger { return logger.New(logger.LevelOff, nil) }

func TestSetAndGet(t *testing.T) {
	s := domain.DefaultSettings()

	if err := Set(&s, "weight", "68"); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	if got, _ := Get(&s, "weight"); got != "68" {
		t.Fatalf("weight = %q, want 68", got)
	}

	if err := Set(&s, "stoveType", "gas"); err != nil {
		t.Fatalf("set stoveType: %v", err)
	}
	if s.StoveEfficiency != 0.50 || s.StovePower != 2500 {
		t.Fatalf("gas should apply efficiency and power, got %v/%v", s.StoveEfficiency, s.StovePower)
	}

	if err := Set(&s, "consistency", "hard"); err != nil {
		t.Fatalf("set consistency: %v", err)
	}
	if s.TargetTemp != 77 {
		t.Fatalf("hard should target 77, got %v", s.TargetTemp)
	}

	if err := Set(&s, "tempUnit", "F"); err != nil {
		t.Fatalf("set tempUnit: %v", err)
	}
	if got, _ := Get(&s, "tempUnit"); got != "F" {
		t.Fatalf("tempUnit = %q", got)
	}
}

func TestSetRejects(t *testing.T) {
	tests := []struct {
		key, value string
		want       error
	}{
		{"colour", "red", domain.ErrUnknownSetting},
		{"weight", "heavy", domain.ErrInvalidValue},
		{"weight", "-3", domain.ErrInvalidValue},
		{"stoveEfficiency", "1.5", domain.ErrInvalidValue},
		{"eggCount", "2.5", domain.ErrInvalidValue},
		{"stoveType", "wood", domain.ErrUnknownPreset},
		{"potMaterial", "glass", domain.ErrUnknownPreset},
		{"pressureUnit", "psi", domain.ErrInvalidValue},
		{"pressureSource", "guess", domain.ErrInvalidValue},
		{"startTemp", "NaN", domain.ErrInvalidValue},
		{"targetTemp", "+Inf", domain.ErrInvalidValue},
		{"waterStartTemp", "nan", domain.ErrInvalidValue},
		{"ambientTemp", "-inf", domain.ErrInvalidValue},
		{"boilingPoint", "Inf", domain.ErrInvalidValue},
		{"weight", "Inf", domain.ErrInvalidValue},
	}
	for _, tt := range tests {
		s := domain.DefaultSettings()
		err := Set(&s, tt.key, tt.value)
		if !errors.Is(err, tt.want) {
			t.Errorf("Set(%s, %s) error = %v, want %v", tt.key, tt.value, err, tt.want)
		}
		if s != domain.DefaultSettings() {
			t.Errorf("Set(%s, %s) changed settings on error", tt.key, tt.value)
		}
	}
}

func TestKeysCoverEveryField(t *testing.T) {
	d := domain.DefaultSettings()
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatal(err)
	}
	if len(fields) != len(Keys()) {
		t.Fatalf("%d fields but %d keys", len(fields), len(Keys()))
	}
	for _, k := range Keys() {
		if _, ok := fields[k]; !ok {
			t.Errorf("key %s has no field", k)
		}
	}
}

func TestDecodeMergesOverDefaults(t *testing.T) {
	s, err := Decode([]byte(`{"weight": 53, "stoveType": "gas", "unknown": true, "locationName": null}`), quiet())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Weight != 53 || s.StoveType != "gas" {
		t.Fatalf("stored keys should win, got %+v", s)
	}
	if s.BoilingPoint != 100 || s.TargetTemp != 67 {
		t.Fatalf("missing keys should keep defaults, got %+v", s)
	}

	s, err = Decode([]byte(`{"weight": "heavy", "eggCount": 3}`), quiet())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Weight != 60 || s.EggCount != 3 {
		t.Fatalf("bad value should fall back per key, got weight=%v eggs=%d", s.Weight, s.EggCount)
	}

	s, err = Decode([]byte(`not json`), quiet())
	if err == nil {
		t.Fatal("expected an error for a corrupt payload")
	}
	if *s != domain.DefaultSettings() {
		t.Fatal("corrupt payload should yield defaults")
	}
}

func TestSplitRoundTrip(t *testing.T) {
	s := domain.DefaultSettings()
	s.LocationName = "Zermatt"
	s.Altitude = 1608

	parts, err := Split(&s)
	if err != nil {
		t.Fatal(err)
	}
	if got := Merge(parts, quiet()); *got != s {
		t.Fatalf("merge(split(s)) = %+v, want %+v", got, s)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(quiet())

	s, err := store.Load(ctx)
	if err != nil || *s != domain.DefaultSettings() {
		t.Fatalf("empty store should load defaults: %+v, %v", s, err)
	}

	s.Weight = 78
	if err := store.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	s.Weight = 1 // the store keeps its own copy

	got, _ := store.Load(ctx)
	if got.Weight != 78 {
		t.Fatalf("weight = %v, want 78", got.Weight)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	got, _ = store.Load(ctx)
	if got.Weight != 60 {
		t.Fatalf("after reset weight = %v, want 60", got.Weight)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	store := NewFileStore(path, quiet())

	s, err := store.Load(ctx)
	if err != nil || *s != domain.DefaultSettings() {
		t.Fatalf("missing file should load defaults: %v", err)
	}

	s.PotMaterial = "copper"
	s.EggCount = 4
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := NewFileStore(path, quiet()).Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *got != *s {
		t.Fatalf("reloaded %+v, want %+v", got, s)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}

	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = store.Load(ctx)
	if err != nil || *got != domain.DefaultSettings() {
		t.Fatalf("corrupt file should load defaults, got %+v, %v", got, err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file still present after reset: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("second reset: %v", err)
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("OTTOEGG_TEST_DSN")
	if dsn == "" {
		t.Skip("OTTOEGG_TEST_DSN not set")
	}
	ctx := context.Background()
	store, err := OpenPostgres(ctx, dsn, quiet())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	defer store.Reset(ctx)

	if err := store.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	s := domain.DefaultSettings()
	s.StoveType = "camping"
	s.LocationName = "Chamonix"
	if err := store.Save(ctx, &s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != s {
		t.Fatalf("loaded %+v, want %+v", got, s)
	}
}
