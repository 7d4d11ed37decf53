package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "combat.throttle_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// watchSpecRegex matches "NAME" or "NAME+N"
var watchSpecRegex = regexp.MustCompile(`^[^\s+]+(\+\d+)?$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidEncodings returns the list of supported log encodings
func ValidEncodings() []string {
	return []string{"utf8", "utf16le", "latin1"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Logs config
	errors = append(errors, c.validateLogs()...)

	// Validate Watch config
	errors = append(errors, c.validateWatch()...)

	// Validate Combat config
	errors = append(errors, c.validateCombat()...)

	// Validate Intel and Loop config
	errors = append(errors, c.validateTiming()...)

	// Validate Notify config
	errors = append(errors, c.validateNotify()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateLogs() []ValidationError {
	var errors []ValidationError

	if c.Logs.ChatDir == "" {
		errors = append(errors, ValidationError{
			Field:   "logs.chat_dir",
			Value:   c.Logs.ChatDir,
			Message: "must not be empty",
		})
	}
	if c.Logs.GameDir == "" {
		errors = append(errors, ValidationError{
			Field:   "logs.game_dir",
			Value:   c.Logs.GameDir,
			Message: "must not be empty",
		})
	}
	if strings.TrimSpace(c.Logs.Channel) == "" {
		errors = append(errors, ValidationError{
			Field:   "logs.channel",
			Value:   c.Logs.Channel,
			Message: "must not be empty",
		})
	}
	if c.Logs.MaxAgeDays < 1 {
		errors = append(errors, ValidationError{
			Field:   "logs.max_age_days",
			Value:   c.Logs.MaxAgeDays,
			Message: "must be at least 1",
		})
	}
	if !slices.Contains(ValidEncodings(), strings.ToLower(c.Logs.ChatEncoding)) {
		errors = append(errors, ValidationError{
			Field:   "logs.chat_encoding",
			Value:   c.Logs.ChatEncoding,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidEncodings(), ", ")),
		})
	}
	if !slices.Contains(ValidEncodings(), strings.ToLower(c.Logs.GameEncoding)) {
		errors = append(errors, ValidationError{
			Field:   "logs.game_encoding",
			Value:   c.Logs.GameEncoding,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidEncodings(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	for i, name := range c.Watch.Characters {
		if strings.TrimSpace(name) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("watch.characters[%d]", i),
				Value:   name,
				Message: "must not be empty",
			})
		}
	}
	for i, spec := range c.Watch.Names {
		if !watchSpecRegex.MatchString(spec) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("watch.names[%d]", i),
				Value:   spec,
				Message: "must be NAME or NAME+N",
			})
		}
	}

	return errors
}

func (c *Config) validateCombat() []ValidationError {
	var errors []ValidationError

	if _, ok := LookupProfile(c.Combat.Profile); !ok {
		errors = append(errors, ValidationError{
			Field:   "combat.profile",
			Value:   c.Combat.Profile,
			Message: "must be one of: long, short",
		})
	}

	nonNegative := []struct {
		field string
		value int
	}{
		{"combat.throttle_seconds", c.Combat.ThrottleSeconds},
		{"combat.no_incoming_seconds", c.Combat.NoIncomingSeconds},
		{"combat.no_outgoing_seconds", c.Combat.NoOutgoingSeconds},
		{"combat.under_attack_seconds", c.Combat.UnderAttackSeconds},
		{"combat.single_hit", c.Combat.SingleHit},
		{"combat.idle_seconds", c.Combat.IdleSeconds},
		{"combat.idle_repeat_seconds", c.Combat.IdleRepeatSeconds},
		{"combat.rare_repeat_seconds", c.Combat.RareRepeatSeconds},
	}
	for _, nn := range nonNegative {
		if nn.value < 0 {
			errors = append(errors, ValidationError{
				Field:   nn.field,
				Value:   nn.value,
				Message: "must be non-negative",
			})
		}
	}

	return errors
}

func (c *Config) validateTiming() []ValidationError {
	var errors []ValidationError

	if c.Intel.ThrottleSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "intel.throttle_seconds",
			Value:   c.Intel.ThrottleSeconds,
			Message: "must be non-negative",
		})
	}
	if c.Loop.WakeIntervalSeconds < 1 || c.Loop.WakeIntervalSeconds > 60 {
		errors = append(errors, ValidationError{
			Field:   "loop.wake_interval_seconds",
			Value:   c.Loop.WakeIntervalSeconds,
			Message: "must be between 1 and 60",
		})
	}

	return errors
}

func (c *Config) validateNotify() []ValidationError {
	var errors []ValidationError

	if c.Notify.Enabled && strings.TrimSpace(c.Notify.Command) == "" && strings.TrimSpace(c.Notify.SoundCommand) == "" {
		errors = append(errors, ValidationError{
			Field:   "notify.command",
			Value:   c.Notify.Command,
			Message: "command or sound_command is required when notifications are enabled",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
