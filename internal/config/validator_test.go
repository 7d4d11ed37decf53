package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "empty chat dir",
			mutate:    func(c *Config) { c.Logs.ChatDir = "" },
			wantField: "logs.chat_dir",
		},
		{
			name:      "empty channel",
			mutate:    func(c *Config) { c.Logs.Channel = "  " },
			wantField: "logs.channel",
		},
		{
			name:      "zero max age",
			mutate:    func(c *Config) { c.Logs.MaxAgeDays = 0 },
			wantField: "logs.max_age_days",
		},
		{
			name:      "unknown chat encoding",
			mutate:    func(c *Config) { c.Logs.ChatEncoding = "utf32" },
			wantField: "logs.chat_encoding",
		},
		{
			name:      "blank character",
			mutate:    func(c *Config) { c.Watch.Characters = []string{"Pilot", ""} },
			wantField: "watch.characters[1]",
		},
		{
			name:      "malformed distance spec",
			mutate:    func(c *Config) { c.Watch.Names = []string{"Jita+x"} },
			wantField: "watch.names[0]",
		},
		{
			name:      "unknown profile",
			mutate:    func(c *Config) { c.Combat.Profile = "medium" },
			wantField: "combat.profile",
		},
		{
			name:      "negative throttle",
			mutate:    func(c *Config) { c.Combat.ThrottleSeconds = -1 },
			wantField: "combat.throttle_seconds",
		},
		{
			name:      "negative single hit",
			mutate:    func(c *Config) { c.Combat.SingleHit = -5 },
			wantField: "combat.single_hit",
		},
		{
			name:      "negative intel throttle",
			mutate:    func(c *Config) { c.Intel.ThrottleSeconds = -1 },
			wantField: "intel.throttle_seconds",
		},
		{
			name:      "zero wake interval",
			mutate:    func(c *Config) { c.Loop.WakeIntervalSeconds = 0 },
			wantField: "loop.wake_interval_seconds",
		},
		{
			name: "no notification commands",
			mutate: func(c *Config) {
				c.Notify.Command = ""
				c.Notify.SoundCommand = ""
			},
			wantField: "notify.command",
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.Logging.Level = "verbose" },
			wantField: "logging.level",
		},
		{
			name:      "negative backups",
			mutate:    func(c *Config) { c.Logging.MaxBackups = -1 },
			wantField: "logging.max_backups",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), ValidationErrors(errs))
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}
}

func TestConfig_Validate_Accepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"distance spec", func(c *Config) { c.Watch.Names = []string{"UQ-PWD", "Jita+3"} }},
		{"notifications disabled without commands", func(c *Config) {
			c.Notify.Enabled = false
			c.Notify.Command = ""
			c.Notify.SoundCommand = ""
		}},
		{"sound only", func(c *Config) { c.Notify.Command = "" }},
		{"upper case encoding", func(c *Config) { c.Logs.GameEncoding = "LATIN1" }},
		{"zero throttle", func(c *Config) { c.Combat.ThrottleSeconds = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if errs := cfg.Validate(); len(errs) != 0 {
				t.Errorf("Validate() = %v, want none", ValidationErrors(errs))
			}
		})
	}
}
