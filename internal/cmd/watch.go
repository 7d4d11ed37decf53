package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	"github.com/ben0x539/eve-log-alert/internal/config"
	"github.com/ben0x539/eve-log-alert/internal/engine"
	"github.com/ben0x539/eve-log-alert/internal/event"
	"github.com/ben0x539/eve-log-alert/internal/logging"
	"github.com/ben0x539/eve-log-alert/internal/metrics"
	"github.com/ben0x539/eve-log-alert/internal/notify"
	"github.com/ben0x539/eve-log-alert/internal/topology"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] NAME[+N]...",
	Short: "Tail the logs and raise alerts",
	Long: `Tail the intel channel log and the game log of every character, and
notify on intel mentioning a watched name, on combat trouble and on idling.

Watch names come from the arguments and from watch.names in the config file.
NAME+N watches every system within N jumps of NAME and needs a topology
database (see 'eve-log-alert topology import').

Press Ctrl-C once to silence a running panic alarm, otherwise to exit.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceP("character", "C", nil, "character whose game log is tailed (repeatable)")
	_ = viper.BindPFlag("watch.characters", watchCmd.Flags().Lookup("character"))

	watchCmd.Flags().String("profile", "", "damage profile: short or long")
	_ = viper.BindPFlag("combat.profile", watchCmd.Flags().Lookup("profile"))

	watchCmd.Flags().String("topology", "", "jump graph database for NAME+N watches")
	_ = viper.BindPFlag("watch.topology", watchCmd.Flags().Lookup("topology"))

	watchCmd.Flags().String("channel", "", "intel channel log name prefix")
	_ = viper.BindPFlag("logs.channel", watchCmd.Flags().Lookup("channel"))

	watchCmd.Flags().Bool("mangle", true, "match watch names tolerantly (misspellings, look-alike glyphs)")
	_ = viper.BindPFlag("watch.mangle", watchCmd.Flags().Lookup("mangle"))

	watchCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")
	_ = viper.BindPFlag("metrics.addr", watchCmd.Flags().Lookup("metrics-addr"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	names, err := resolveWatchNames(ctx, cfg, args)
	if err != nil {
		return err
	}

	bus := event.NewBus(logger.Slog())
	engine.LogEvents(bus, logger)

	notifier := notify.New(notify.Options{
		Enabled:        cfg.Notify.Enabled,
		Command:        cfg.Notify.Command,
		SoundCommand:   cfg.Notify.SoundCommand,
		SoundPath:      config.ExpandHome(cfg.Notify.SoundPath),
		PanicSoundPath: config.ExpandHome(cfg.Notify.PanicSoundPath),
	}, nil, logger)
	panicCtl := notify.NewPanicController(notifier, 0, logger)
	bus.SubscribePrefix(event.AlertPrefix, notifier.Handler(panicCtl))

	if cfg.Metrics.Addr != "" {
		collector := metrics.New()
		collector.Attach(bus)
		go func() {
			if err := collector.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	eng, err := engine.New(engine.Options{
		Config:     cfg,
		Characters: cfg.Watch.Characters,
		Names:      names,
		Bus:        bus,
		Logger:     logger,
		Panic:      panicCtl,
	})
	if err != nil {
		return err
	}

	handleSignals(ctx, cancel, eng.Panic(), logger)

	runErr := eng.Run(ctx)
	bus.Publish(exitAlert(runErr))
	return runErr
}

// exitAlert is the last notification of a run: plain "exiting" after a
// graceful shutdown, or the error that ended the loop.
func exitAlert(runErr error) event.AlertEvent {
	msg := "exiting"
	if runErr != nil {
		msg += ": " + runErr.Error()
	}
	return event.NewAlertEvent(event.KindLifecycle, "", msg, time.Time{})
}

// resolveWatchNames merges configured and argument watch specs and expands
// NAME+N through the topology database.
func resolveWatchNames(ctx context.Context, cfg *config.Config, args []string) ([]string, error) {
	specs := append(append([]string(nil), cfg.Watch.Names...), args...)

	var lookup topology.Lookup
	if cfg.Watch.Topology != "" {
		store, err := topology.Open(ctx, config.ExpandHome(cfg.Watch.Topology))
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		lookup = store
	}

	return topology.Resolve(ctx, specs, lookup)
}

// handleSignals cancels ctx on SIGTERM or SIGINT. A SIGINT that arrives
// while the panic alarm is running only silences the alarm.
func handleSignals(ctx context.Context, cancel context.CancelFunc, pc *notify.PanicController, logger *logging.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == unix.SIGINT && pc != nil {
					reason := pc.Reason()
					if pc.Stop() {
						logger.Info("panic alarm silenced", "reason", reason)
						continue
					}
				}
				logger.Info("shutting down", "signal", sig.String())
				cancel()
				return
			}
		}
	}()
}
