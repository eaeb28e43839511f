package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/web"
)

// run executes the CLI against a config whose settings live in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(dir, "ottoegg.yaml")
	if _, err := os.Stat(cfgPath); err != nil {
		cfg := "log:\n  level: off\n  file: stderr\nsettings:\n  backend: file\n  path: " +
			filepath.Join(dir, "settings.json") + "\ntimer:\n  sound: false\n"
		if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	argv := append([]string{"ottoegg", "--config", cfgPath, "--quiet", "--lang", "en"}, args...)
	err := app.RunContext(context.Background(), argv)
	return out.String(), err
}

func TestCalcJSON(t *testing.T) {
	out, err := run(t, t.TempDir(), "calc", "--json")
	if err != nil {
		t.Fatalf("calc: %v", err)
	}
	var resp web.CalculateResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !resp.Valid || resp.Display == nil || resp.Display.CookingTime != "5:34" {
		t.Fatalf("unexpected response: %s", out)
	}
}

func TestCalcInvalid(t *testing.T) {
	out, err := run(t, t.TempDir(), "calc", "--start-temp", "80")
	if !errors.Is(err, domain.ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
	if !strings.Contains(out, "Cooking Time: --:--") {
		t.Fatalf("output = %q", out)
	}
}

func TestCalcOverrides(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "calc", "--json", "--pressure", "900", "--consistency", "hard")
	if err != nil {
		t.Fatalf("calc: %v", err)
	}
	var resp web.CalculateResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Params.BoilingPointC != 95.8 || resp.Params.TargetTempC != 77 {
		t.Fatalf("params = %+v", resp.Params)
	}

	// Without --save nothing is stored.
	got, err := run(t, dir, "settings", "get", "pressure")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(got) != "1013.25" {
		t.Fatalf("pressure = %q, want 1013.25", got)
	}
}

func TestCalcBadFlag(t *testing.T) {
	_, err := run(t, t.TempDir(), "calc", "--stove", "fusion")
	if !errors.Is(err, domain.ErrUnknownPreset) {
		t.Fatalf("err = %v, want ErrUnknownPreset", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, dir, "settings", "set", "eggCount", "4"); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, err := run(t, dir, "settings", "get", "eggCount")
	if err != nil || strings.TrimSpace(out) != "4" {
		t.Fatalf("get = %q, %v", out, err)
	}

	out, err = run(t, dir, "settings", "show", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var all map[string]string
	if err := json.Unmarshal([]byte(out), &all); err != nil {
		t.Fatal(err)
	}
	if all["eggCount"] != "4" || all["consistency"] != "medium" {
		t.Fatalf("show = %v", all)
	}

	if _, err := run(t, dir, "settings", "reset"); err != nil {
		t.Fatal(err)
	}
	out, _ = run(t, dir, "settings", "get", "eggCount")
	if strings.TrimSpace(out) != "1" {
		t.Fatalf("after reset eggCount = %q", out)
	}

	if _, err := run(t, dir, "settings", "get", "colour"); !errors.Is(err, domain.ErrUnknownSetting) {
		t.Fatalf("err = %v, want ErrUnknownSetting", err)
	}
}

func TestAtmosphere(t *testing.T) {
	tests := []struct {
		args []string
		want web.AtmosphereView
	}{
		{[]string{"--pressure", "900"}, web.AtmosphereView{PressureHPa: 900, BoilingPointC: 95.8, AltitudeM: 989}},
		{[]string{"--altitude", "0"}, web.AtmosphereView{PressureHPa: 1013.3, BoilingPointC: 100, AltitudeM: 0}},
		{nil, web.AtmosphereView{PressureHPa: 1013.25, BoilingPointC: 100, AltitudeM: 0}},
	}
	for _, tt := range tests {
		args := append([]string{"atmosphere", "--json"}, tt.args...)
		out, err := run(t, t.TempDir(), args...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		var got web.AtmosphereView
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("%v: got %+v, want %+v", tt.args, got, tt.want)
		}
	}

	if _, err := run(t, t.TempDir(), "atmosphere", "--pressure", "900", "--altitude", "10"); err == nil {
		t.Fatal("expected error for two conversions")
	}
}

func TestNonFiniteInputsRejected(t *testing.T) {
	tests := [][]string{
		{"calc", "--pressure", "NaN"},
		{"calc", "--pressure", "+Inf"},
		{"calc", "--boiling-point", "inf"},
		{"calc", "--water-temp", "NaN"},
		{"atmosphere", "--pressure", "NaN"},
		{"atmosphere", "--boiling-point", "-Inf"},
		{"atmosphere", "--altitude", "1e9"},
	}
	for _, args := range tests {
		_, err := run(t, t.TempDir(), args...)
		if !errors.Is(err, domain.ErrInvalidValue) {
			t.Errorf("%v: err = %v, want ErrInvalidValue", args, err)
		}
	}
}
