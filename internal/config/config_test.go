package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/ottoegg/internal/logger"
)

func TestParse_Valid(t *testing.T) {
	cfg, err := Parse([]byte(`
log:
  level: verbose
  file: stderr
settings:
  backend: postgres
  dsn_env: OTTOEGG_DSN
http:
  addr: "127.0.0.1:9000"
timer:
  tick: 500ms
  cooldown: 20s
  max_escalation: 5
  sound: false
mqtt:
  broker: tcp://localhost:1883
language: de
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Log.Level != "verbose" || cfg.Log.File != "stderr" {
		t.Errorf("log: got %+v", cfg.Log)
	}
	if cfg.Settings.Backend != "postgres" {
		t.Errorf("backend: got %q", cfg.Settings.Backend)
	}
	if cfg.Timer.Tick != 500*time.Millisecond || cfg.Timer.Cooldown != 20*time.Second {
		t.Errorf("timer: got %+v", cfg.Timer)
	}
	if cfg.Timer.Sound {
		t.Error("sound should be off")
	}
	if !cfg.MQTT.Enabled() || cfg.MQTT.Topic != DefaultMQTTTopic {
		t.Errorf("mqtt: got %+v", cfg.MQTT)
	}
	if cfg.Language != "de" {
		t.Errorf("language: got %q", cfg.Language)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("language: fr\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Timer.Tick != DefaultTick || cfg.Timer.Cooldown != DefaultCooldown {
		t.Errorf("timer defaults: got %+v", cfg.Timer)
	}
	if cfg.Timer.MaxEscalation != DefaultMaxEscalation || cfg.Timer.AlmostDone != DefaultAlmostDone {
		t.Errorf("timer defaults: got %+v", cfg.Timer)
	}
	if cfg.Weather.Endpoint != DefaultWeatherEndpoint || cfg.Geocoding.Endpoint != DefaultGeocodeEndpoint {
		t.Errorf("endpoint defaults: got %q, %q", cfg.Weather.Endpoint, cfg.Geocoding.Endpoint)
	}
	if cfg.Settings.Backend != "file" || cfg.Settings.Path != DefaultSettingsPath {
		t.Errorf("settings defaults: got %+v", cfg.Settings)
	}
	if cfg.MQTT.Enabled() {
		t.Error("mqtt should be off by default")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name, yaml, want string
	}{
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad backend", "settings:\n  backend: redis\n", "settings.backend"},
		{"postgres without dsn", "settings:\n  backend: postgres\n", "dsn_env"},
		{"zero tick", "timer:\n  tick: 0s\n", "timer.tick"},
		{"negative escalation", "timer:\n  max_escalation: -1\n", "max_escalation"},
		{"broken yaml", "log: [", "parse yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if cfg.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("addr: got %q", cfg.HTTP.Addr)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load should fail on a missing file")
	}
}

func TestEnvSecrets(t *testing.T) {
	t.Setenv("OTTOEGG_TEST_PW", "hunter2")
	m := MQTTConfig{PasswordEnv: "OTTOEGG_TEST_PW"}
	if m.Password() != "hunter2" {
		t.Errorf("password: got %q", m.Password())
	}
	if (MQTTConfig{}).Password() != "" {
		t.Error("unset env name should yield empty password")
	}
	s := SettingsConfig{DSNEnv: "OTTOEGG_TEST_PW"}
	if s.DSN() != "hunter2" {
		t.Errorf("dsn: got %q", s.DSN())
	}
}

func TestWatch_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ottoegg.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: normal\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, logger.New(logger.LevelOff, nil), func(c *Config) { got <- c })
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	// Broken YAML must not be delivered.
	if err := os.WriteFile(path, []byte("log: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("log:\n  level: verbose\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-got:
			if c.Log.Level == "verbose" {
				cancel()
				if err := <-done; err != nil {
					t.Fatalf("watch: %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
