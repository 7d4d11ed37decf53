// Package notify delivers alerts to the operator's desktop.
//
// Ordinary alerts are fire-and-forget: the notification program and the
// sound player are started and never waited on, and their failures are
// only logged. The PanicController repeats the sound until told to stop,
// waiting for each cue to finish before starting the next.
package notify

import (
	"context"
	"os/exec"

	"github.com/ben0x539/eve-log-alert/internal/event"
	"github.com/ben0x539/eve-log-alert/internal/logging"
)

// Runner starts external programs.
type Runner interface {
	// Start launches the program without waiting for it.
	Start(name string, args ...string) error
	// Run launches the program and waits for it, killing it when ctx ends.
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

// Start implements Runner. The child is reaped in the background.
func (ExecRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Options configures a Notifier.
type Options struct {
	Enabled        bool
	Command        string // desktop notification program, e.g. notify-send
	SoundCommand   string // sound player, e.g. aplay
	SoundPath      string
	PanicSoundPath string // empty reuses SoundPath
}

// Notifier sends desktop notifications and plays the alert sound.
type Notifier struct {
	opts   Options
	runner Runner
	logger *logging.Logger
}

// New returns a Notifier. A nil runner uses ExecRunner.
func New(opts Options, runner Runner, logger *logging.Logger) *Notifier {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Notifier{opts: opts, runner: runner, logger: logger}
}

// Notify shows msg and plays the alert sound without waiting for either.
func (n *Notifier) Notify(msg string) {
	if !n.opts.Enabled {
		n.logger.Debug("notification disabled", "message", msg)
		return
	}
	n.show(msg)
	n.playSound(n.opts.SoundPath)
}

func (n *Notifier) show(msg string) {
	if !n.opts.Enabled || n.opts.Command == "" {
		return
	}
	if err := n.runner.Start(n.opts.Command, msg); err != nil {
		n.logger.Warn("notification failed", "command", n.opts.Command, "error", err)
	}
}

func (n *Notifier) playSound(path string) {
	if n.opts.SoundCommand == "" || path == "" {
		return
	}
	if err := n.runner.Start(n.opts.SoundCommand, path); err != nil {
		n.logger.Warn("alert sound failed", "command", n.opts.SoundCommand, "error", err)
	}
}

// Cue plays the panic sound and waits until it has finished.
func (n *Notifier) Cue(ctx context.Context) error {
	if !n.opts.Enabled || n.opts.SoundCommand == "" {
		return nil
	}
	path := n.opts.PanicSoundPath
	if path == "" {
		path = n.opts.SoundPath
	}
	if path == "" {
		return nil
	}
	return n.runner.Run(ctx, n.opts.SoundCommand, path)
}

// Handler returns an event.Handler delivering alert events. Panic alerts
// are shown once and handed to pc to repeat; a nil pc treats them as
// ordinary alerts.
func (n *Notifier) Handler(pc *PanicController) event.Handler {
	return func(e event.Event) {
		alert, ok := e.(event.AlertEvent)
		if !ok {
			return
		}
		if alert.Kind == event.KindPanic && pc != nil {
			n.show(alert.Text())
			pc.Trigger(alert.Text())
			return
		}
		n.Notify(alert.Text())
	}
}
