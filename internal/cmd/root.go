package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ben0x539/eve-log-alert/internal/config"
	"github.com/ben0x539/eve-log-alert/internal/errors"
	"github.com/ben0x539/eve-log-alert/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "eve-log-alert",
	Short: "Desktop alerts from EVE Online chat and game logs",
	Long: `eve-log-alert tails the intel channel log and the game logs of one or
more characters, and raises desktop notifications when a watched system is
reported, when a character takes or stops dealing damage, or when it sits
idle in space.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// Process exit statuses.
const (
	ExitOK      = 0
	ExitFailure = 1
	// ExitFatal reports a startup failure: a missing log, nothing to watch,
	// an unusable topology database.
	ExitFatal = 2
)

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsFatal(err):
		return ExitFatal
	default:
		return ExitFailure
	}
}

// Diagnostic renders err for stderr.
func Diagnostic(err error) string {
	if !errors.IsUserFacing(err) {
		return "Error: " + err.Error()
	}
	msg := fmt.Sprintf("%s: %v", errors.GetSeverity(err), err)
	if errors.Is(err, errors.ErrLogNotFound) {
		msg += "\nCheck logs.chat_dir, logs.game_dir and the character names; logs older than logs.max_age_days are ignored."
	}
	return msg
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/eve-log-alert/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().String("log-level", "", "log level: "+strings.Join(logging.ValidLevels(), ", "))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("EVEALERT")
	// e.g. EVEALERT_LOGS_CHANNEL for logs.channel
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newLogger builds the process logger from the logging section.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.NewLogger(logging.Options{
		Level: cfg.Logging.Level,
		File:  config.ExpandHome(cfg.Logging.File),
		Rotation: logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   cfg.Logging.Compress,
		},
	})
}
