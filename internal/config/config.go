package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete eve-log-alert configuration
type Config struct {
	Logs    LogsConfig    `mapstructure:"logs"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Combat  CombatConfig  `mapstructure:"combat"`
	Intel   IntelConfig   `mapstructure:"intel"`
	Loop    LoopConfig    `mapstructure:"loop"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogsConfig controls where game client logs are discovered
type LogsConfig struct {
	// ChatDir holds chat channel logs (default: ~/EVE/logs/Chatlogs)
	ChatDir string `mapstructure:"chat_dir"`
	// GameDir holds per-session game logs (default: ~/EVE/logs/Gamelogs)
	GameDir string `mapstructure:"game_dir"`
	// Channel is the intel channel file name prefix (default: "DEK.CFC")
	Channel string `mapstructure:"channel"`
	// MaxAgeDays ignores log files older than this (default: 7)
	MaxAgeDays int `mapstructure:"max_age_days"`
	// ChatEncoding is the chat log encoding: "utf16le", "utf8" or "latin1" (default: "utf16le")
	ChatEncoding string `mapstructure:"chat_encoding"`
	// GameEncoding is the game log encoding (default: "utf8")
	GameEncoding string `mapstructure:"game_encoding"`
}

// WatchConfig lists who is monitored and what intel names to react to
type WatchConfig struct {
	// Characters are the listener names whose game logs are tailed
	Characters []string `mapstructure:"characters"`
	// Names are watch names, either "NAME" or "NAME+N" (N jumps around NAME)
	Names []string `mapstructure:"names"`
	// Mangle derives tolerant patterns from names (default: true)
	Mangle bool `mapstructure:"mangle"`
	// Topology is the path of the jump graph database; empty disables NAME+N
	Topology string `mapstructure:"topology"`
}

// CombatConfig tunes the per-character combat state machine.
// All durations are in seconds.
type CombatConfig struct {
	// Profile selects the damage window: "short" (10s, 50 dps) or "long" (40s, 60 dps)
	Profile string `mapstructure:"profile"`
	// ThrottleSeconds is the minimum gap between ordinary alerts for one character
	ThrottleSeconds int `mapstructure:"throttle_seconds"`
	// NoIncomingSeconds is the gap after which outgoing-only combat alerts
	NoIncomingSeconds int `mapstructure:"no_incoming_seconds"`
	// NoOutgoingSeconds is the gap after which incoming-only combat alerts
	NoOutgoingSeconds int `mapstructure:"no_outgoing_seconds"`
	// UnderAttackSeconds is how long incoming damage must last before the no-outgoing alert
	UnderAttackSeconds int `mapstructure:"under_attack_seconds"`
	// SingleHit is the damage above which one hit alerts
	SingleHit int `mapstructure:"single_hit"`
	// IdleSeconds is the inactivity gap that counts as idling
	IdleSeconds int `mapstructure:"idle_seconds"`
	// IdleRepeatSeconds is the minimum gap between idle alerts
	IdleRepeatSeconds int `mapstructure:"idle_repeat_seconds"`
	// RareRepeatSeconds is the minimum gap between rare spawn alerts
	RareRepeatSeconds int `mapstructure:"rare_repeat_seconds"`
	// RareNames are NPC names worth an immediate alert
	RareNames []string `mapstructure:"rare_names"`
}

// IntelConfig tunes broadcast alerting
type IntelConfig struct {
	// ThrottleSeconds is the minimum gap between two intel alerts (default: 5)
	ThrottleSeconds int `mapstructure:"throttle_seconds"`
}

// LoopConfig tunes the event loop
type LoopConfig struct {
	// WakeIntervalSeconds is the idle tick period (default: 5)
	WakeIntervalSeconds int `mapstructure:"wake_interval_seconds"`
}

// NotifyConfig controls how alerts reach the operator
type NotifyConfig struct {
	// Enabled controls whether notifications are sent at all (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Command is the desktop notification program, called with the message as its last argument
	Command string `mapstructure:"command"`
	// SoundCommand plays SoundPath (default: "aplay")
	SoundCommand string `mapstructure:"sound_command"`
	// SoundPath is the alert sound file (default: "alertsound")
	SoundPath string `mapstructure:"sound_path"`
	// PanicSoundPath is looped on player attacks; empty reuses SoundPath
	PanicSoundPath string `mapstructure:"panic_sound_path"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// File is the log file; empty logs to stderr
	File string `mapstructure:"file"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress"`
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the endpoint
	Addr string `mapstructure:"addr"`
}

// Profile is a damage accounting window and the DPS that counts as sustained damage.
type Profile struct {
	Name         string
	Window       time.Duration
	DPSThreshold float64
}

// Profiles returns the built-in damage profiles keyed by name.
func Profiles() map[string]Profile {
	return map[string]Profile{
		"short": {Name: "short", Window: 10 * time.Second, DPSThreshold: 50},
		"long":  {Name: "long", Window: 40 * time.Second, DPSThreshold: 60},
	}
}

// LookupProfile returns the named profile.
func LookupProfile(name string) (Profile, bool) {
	p, ok := Profiles()[strings.ToLower(name)]
	return p, ok
}

// Default returns a Config with sensible default values
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		Logs: LogsConfig{
			ChatDir:      filepath.Join(home, "EVE", "logs", "Chatlogs"),
			GameDir:      filepath.Join(home, "EVE", "logs", "Gamelogs"),
			Channel:      "DEK.CFC",
			MaxAgeDays:   7,
			ChatEncoding: "utf16le",
			GameEncoding: "utf8",
		},
		Watch: WatchConfig{
			Characters: []string{},
			Names:      []string{},
			Mangle:     true,
			Topology:   "",
		},
		Combat: CombatConfig{
			Profile:            "short",
			ThrottleSeconds:    30,
			NoIncomingSeconds:  20,
			NoOutgoingSeconds:  40,
			UnderAttackSeconds: 20,
			SingleHit:          150,
			IdleSeconds:        20,
			IdleRepeatSeconds:  120,
			RareRepeatSeconds:  300,
			RareNames:          []string{"Dread Gurista"},
		},
		Intel: IntelConfig{
			ThrottleSeconds: 5,
		},
		Loop: LoopConfig{
			WakeIntervalSeconds: 5,
		},
		Notify: NotifyConfig{
			Enabled:        true,
			Command:        "notify-send",
			SoundCommand:   "aplay",
			SoundPath:      "alertsound",
			PanicSoundPath: "",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
	}
}

// MaxAge returns the discovery age limit as a time.Duration
func (c *LogsConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeDays) * 24 * time.Hour
}

// WakeInterval returns the tick period as a time.Duration
func (c *LoopConfig) WakeInterval() time.Duration {
	return time.Duration(c.WakeIntervalSeconds) * time.Second
}

// Throttle returns the intel throttle as a time.Duration
func (c *IntelConfig) Throttle() time.Duration {
	return time.Duration(c.ThrottleSeconds) * time.Second
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Throttle returns the per-character alert throttle.
func (c *CombatConfig) Throttle() time.Duration { return seconds(c.ThrottleSeconds) }

// NoIncoming returns the outgoing-only gap.
func (c *CombatConfig) NoIncoming() time.Duration { return seconds(c.NoIncomingSeconds) }

// NoOutgoing returns the incoming-only gap.
func (c *CombatConfig) NoOutgoing() time.Duration { return seconds(c.NoOutgoingSeconds) }

// UnderAttack returns the minimum attack duration for the no-outgoing alert.
func (c *CombatConfig) UnderAttack() time.Duration { return seconds(c.UnderAttackSeconds) }

// Idle returns the inactivity gap.
func (c *CombatConfig) Idle() time.Duration { return seconds(c.IdleSeconds) }

// IdleRepeat returns the minimum gap between idle alerts.
func (c *CombatConfig) IdleRepeat() time.Duration { return seconds(c.IdleRepeatSeconds) }

// RareRepeat returns the minimum gap between rare spawn alerts.
func (c *CombatConfig) RareRepeat() time.Duration { return seconds(c.RareRepeatSeconds) }

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Logs defaults
	viper.SetDefault("logs.chat_dir", defaults.Logs.ChatDir)
	viper.SetDefault("logs.game_dir", defaults.Logs.GameDir)
	viper.SetDefault("logs.channel", defaults.Logs.Channel)
	viper.SetDefault("logs.max_age_days", defaults.Logs.MaxAgeDays)
	viper.SetDefault("logs.chat_encoding", defaults.Logs.ChatEncoding)
	viper.SetDefault("logs.game_encoding", defaults.Logs.GameEncoding)

	// Watch defaults
	viper.SetDefault("watch.characters", defaults.Watch.Characters)
	viper.SetDefault("watch.names", defaults.Watch.Names)
	viper.SetDefault("watch.mangle", defaults.Watch.Mangle)
	viper.SetDefault("watch.topology", defaults.Watch.Topology)

	// Combat defaults
	viper.SetDefault("combat.profile", defaults.Combat.Profile)
	viper.SetDefault("combat.throttle_seconds", defaults.Combat.ThrottleSeconds)
	viper.SetDefault("combat.no_incoming_seconds", defaults.Combat.NoIncomingSeconds)
	viper.SetDefault("combat.no_outgoing_seconds", defaults.Combat.NoOutgoingSeconds)
	viper.SetDefault("combat.under_attack_seconds", defaults.Combat.UnderAttackSeconds)
	viper.SetDefault("combat.single_hit", defaults.Combat.SingleHit)
	viper.SetDefault("combat.idle_seconds", defaults.Combat.IdleSeconds)
	viper.SetDefault("combat.idle_repeat_seconds", defaults.Combat.IdleRepeatSeconds)
	viper.SetDefault("combat.rare_repeat_seconds", defaults.Combat.RareRepeatSeconds)
	viper.SetDefault("combat.rare_names", defaults.Combat.RareNames)

	// Intel defaults
	viper.SetDefault("intel.throttle_seconds", defaults.Intel.ThrottleSeconds)

	// Loop defaults
	viper.SetDefault("loop.wake_interval_seconds", defaults.Loop.WakeIntervalSeconds)

	// Notify defaults
	viper.SetDefault("notify.enabled", defaults.Notify.Enabled)
	viper.SetDefault("notify.command", defaults.Notify.Command)
	viper.SetDefault("notify.sound_command", defaults.Notify.SoundCommand)
	viper.SetDefault("notify.sound_path", defaults.Notify.SoundPath)
	viper.SetDefault("notify.panic_sound_path", defaults.Notify.PanicSoundPath)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	// Metrics defaults
	viper.SetDefault("metrics.addr", defaults.Metrics.Addr)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "eve-log-alert")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".eve-log-alert"
	}
	return filepath.Join(home, ".config", "eve-log-alert")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
