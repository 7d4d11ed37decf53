package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ben0x539/eve-log-alert/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View the eve-log-alert configuration",
	Long: `View the eve-log-alert configuration.

Without arguments, displays the effective configuration after defaults,
the config file, environment variables and flags are merged.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a config file holding every default value at the default path.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "# Config file: (none - using defaults)\n")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(settingsOf(cfg))
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(settingsOf(config.Default()))
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", config.ConfigFile())
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: EVEALERT_* (e.g., EVEALERT_LOGS_CHANNEL)")
	return nil
}

// settingsOf lays cfg out with the same keys the config file uses.
func settingsOf(cfg *config.Config) map[string]any {
	return map[string]any{
		"logs": map[string]any{
			"chat_dir":      cfg.Logs.ChatDir,
			"game_dir":      cfg.Logs.GameDir,
			"channel":       cfg.Logs.Channel,
			"max_age_days":  cfg.Logs.MaxAgeDays,
			"chat_encoding": cfg.Logs.ChatEncoding,
			"game_encoding": cfg.Logs.GameEncoding,
		},
		"watch": map[string]any{
			"characters": cfg.Watch.Characters,
			"names":      cfg.Watch.Names,
			"mangle":     cfg.Watch.Mangle,
			"topology":   cfg.Watch.Topology,
		},
		"combat": map[string]any{
			"profile":              cfg.Combat.Profile,
			"throttle_seconds":     cfg.Combat.ThrottleSeconds,
			"no_incoming_seconds":  cfg.Combat.NoIncomingSeconds,
			"no_outgoing_seconds":  cfg.Combat.NoOutgoingSeconds,
			"under_attack_seconds": cfg.Combat.UnderAttackSeconds,
			"single_hit":           cfg.Combat.SingleHit,
			"idle_seconds":         cfg.Combat.IdleSeconds,
			"idle_repeat_seconds":  cfg.Combat.IdleRepeatSeconds,
			"rare_repeat_seconds":  cfg.Combat.RareRepeatSeconds,
			"rare_names":           cfg.Combat.RareNames,
		},
		"intel": map[string]any{
			"throttle_seconds": cfg.Intel.ThrottleSeconds,
		},
		"loop": map[string]any{
			"wake_interval_seconds": cfg.Loop.WakeIntervalSeconds,
		},
		"notify": map[string]any{
			"enabled":          cfg.Notify.Enabled,
			"command":          cfg.Notify.Command,
			"sound_command":    cfg.Notify.SoundCommand,
			"sound_path":       cfg.Notify.SoundPath,
			"panic_sound_path": cfg.Notify.PanicSoundPath,
		},
		"logging": map[string]any{
			"level":       cfg.Logging.Level,
			"file":        cfg.Logging.File,
			"max_size_mb": cfg.Logging.MaxSizeMB,
			"max_backups": cfg.Logging.MaxBackups,
			"compress":    cfg.Logging.Compress,
		},
		"metrics": map[string]any{
			"addr": cfg.Metrics.Addr,
		},
	}
}
