package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default logs config
	if cfg.Logs.Channel != "DEK.CFC" {
		t.Errorf("Logs.Channel = %q, want %q", cfg.Logs.Channel, "DEK.CFC")
	}
	if cfg.Logs.MaxAgeDays != 7 {
		t.Errorf("Logs.MaxAgeDays = %d, want 7", cfg.Logs.MaxAgeDays)
	}
	if cfg.Logs.ChatEncoding != "utf16le" {
		t.Errorf("Logs.ChatEncoding = %q, want utf16le", cfg.Logs.ChatEncoding)
	}
	if cfg.Logs.GameEncoding != "utf8" {
		t.Errorf("Logs.GameEncoding = %q, want utf8", cfg.Logs.GameEncoding)
	}
	if filepath.Base(cfg.Logs.ChatDir) != "Chatlogs" {
		t.Errorf("Logs.ChatDir = %q, want .../Chatlogs", cfg.Logs.ChatDir)
	}

	// Verify default watch config
	if !cfg.Watch.Mangle {
		t.Error("Watch.Mangle should be true by default")
	}
	if cfg.Watch.Topology != "" {
		t.Errorf("Watch.Topology = %q, want empty", cfg.Watch.Topology)
	}

	// Verify default combat config
	if cfg.Combat.Profile != "short" {
		t.Errorf("Combat.Profile = %q, want short", cfg.Combat.Profile)
	}
	if cfg.Combat.ThrottleSeconds != 30 {
		t.Errorf("Combat.ThrottleSeconds = %d, want 30", cfg.Combat.ThrottleSeconds)
	}
	if cfg.Combat.SingleHit != 150 {
		t.Errorf("Combat.SingleHit = %d, want 150", cfg.Combat.SingleHit)
	}
	if len(cfg.Combat.RareNames) != 1 || cfg.Combat.RareNames[0] != "Dread Gurista" {
		t.Errorf("Combat.RareNames = %v", cfg.Combat.RareNames)
	}

	// Verify timing defaults
	if cfg.Intel.ThrottleSeconds != 5 {
		t.Errorf("Intel.ThrottleSeconds = %d, want 5", cfg.Intel.ThrottleSeconds)
	}
	if cfg.Loop.WakeIntervalSeconds != 5 {
		t.Errorf("Loop.WakeIntervalSeconds = %d, want 5", cfg.Loop.WakeIntervalSeconds)
	}

	// Verify notify defaults
	if cfg.Notify.Command != "notify-send" {
		t.Errorf("Notify.Command = %q, want notify-send", cfg.Notify.Command)
	}
	if cfg.Notify.SoundCommand != "aplay" {
		t.Errorf("Notify.SoundCommand = %q, want aplay", cfg.Notify.SoundCommand)
	}

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default() should validate, got %v", ValidationErrors(errs))
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"max age", cfg.Logs.MaxAge(), 7 * 24 * time.Hour},
		{"wake interval", cfg.Loop.WakeInterval(), 5 * time.Second},
		{"intel throttle", cfg.Intel.Throttle(), 5 * time.Second},
		{"combat throttle", cfg.Combat.Throttle(), 30 * time.Second},
		{"no incoming", cfg.Combat.NoIncoming(), 20 * time.Second},
		{"no outgoing", cfg.Combat.NoOutgoing(), 40 * time.Second},
		{"under attack", cfg.Combat.UnderAttack(), 20 * time.Second},
		{"idle", cfg.Combat.Idle(), 20 * time.Second},
		{"idle repeat", cfg.Combat.IdleRepeat(), 2 * time.Minute},
		{"rare repeat", cfg.Combat.RareRepeat(), 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLookupProfile(t *testing.T) {
	tests := []struct {
		name       string
		wantOK     bool
		wantWindow time.Duration
		wantDPS    float64
	}{
		{"short", true, 10 * time.Second, 50},
		{"long", true, 40 * time.Second, 60},
		{"LONG", true, 40 * time.Second, 60},
		{"medium", false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := LookupProfile(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("LookupProfile(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if p.Window != tt.wantWindow || p.DPSThreshold != tt.wantDPS {
				t.Errorf("LookupProfile(%q) = %+v", tt.name, p)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		result := ConfigDir()
		expected := "/custom/config/eve-log-alert"
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		result := ConfigDir()

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "eve-log-alert")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	result := ConfigFile()
	expected := "/custom/config/eve-log-alert/config.yaml"
	if result != expected {
		t.Errorf("ConfigFile() = %q, want %q", result, expected)
	}
}

func TestGet(t *testing.T) {
	// Set defaults in viper first (normally done by cmd init)
	SetDefaults()

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if cfg.Combat.Profile != "short" {
		t.Errorf("Get().Combat.Profile = %q, want short", cfg.Combat.Profile)
	}
}

func TestLoad_FromFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
watch:
  characters: ["Some Pilot"]
  names: ["UQ-PWD", "Jita+2"]
combat:
  profile: long
  single_hit: 300
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Combat.Profile != "long" || cfg.Combat.SingleHit != 300 {
		t.Errorf("combat = %+v", cfg.Combat)
	}
	if cfg.Combat.ThrottleSeconds != 30 {
		t.Errorf("unset field should keep default, got %d", cfg.Combat.ThrottleSeconds)
	}
	if len(cfg.Watch.Names) != 2 || cfg.Watch.Names[1] != "Jita+2" {
		t.Errorf("watch.names = %v", cfg.Watch.Names)
	}
}

func TestLoad_Invalid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()
	viper.Set("combat.profile", "medium")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail for unknown profile")
	}
	var verrs ValidationErrors
	if ve, ok := err.(ValidationErrors); ok {
		verrs = ve
	}
	if len(verrs) != 1 || verrs[0].Field != "combat.profile" {
		t.Errorf("Load() error = %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/EVE/logs", filepath.Join(home, "EVE", "logs")},
		{"/abs/path", "/abs/path"},
		{"rel/~path", "rel/~path"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExpandHome(tt.in); got != tt.want {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
