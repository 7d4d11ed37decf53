// Package engine runs the event loop that ties the tailers, the combat
// state machines and the intel matcher together.
//
// One goroutine owns all mutable state. It waits on three sources: file
// change notifications for the log directories, a periodic tick, and
// context cancellation. Alerts leave the engine only through the event bus.
package engine

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/ben0x539/eve-log-alert/internal/combat"
	"github.com/ben0x539/eve-log-alert/internal/config"
	"github.com/ben0x539/eve-log-alert/internal/errors"
	"github.com/ben0x539/eve-log-alert/internal/event"
	"github.com/ben0x539/eve-log-alert/internal/intel"
	"github.com/ben0x539/eve-log-alert/internal/logging"
	"github.com/ben0x539/eve-log-alert/internal/notify"
	"github.com/ben0x539/eve-log-alert/internal/tail"
)

// Stream names used in events and log fields.
const (
	StreamIntel = "intel"
	StreamGame  = "game"
)

// Options configures an Engine.
type Options struct {
	Config *config.Config
	// Characters whose game logs are tailed.
	Characters []string
	// Names are the resolved watch names for the intel channel.
	Names []string

	Bus    *event.Bus
	Logger *logging.Logger
	// Panic is closed together with the engine. May be nil.
	Panic *notify.PanicController
	// Fs is used for log discovery; nil means the OS filesystem.
	Fs afero.Fs
	// Now is the wall clock; nil means time.Now.
	Now func() time.Time
}

// session is the per-character part of the engine.
type session struct {
	character string
	machine   *combat.Machine
	tailer    *tail.Tailer // nil while the game log is being re-resolved
	prev      string       // last game log path, for rotation events
	logger    *logging.Logger
}

// Engine is the event loop. Create it with New, then call Run once.
type Engine struct {
	cfg      *config.Config
	bus      *event.Bus
	logger   *logging.Logger
	panic    *notify.PanicController
	fs       afero.Fs
	now      func() time.Time
	chatDir  string
	gameDir  string
	chatMode tail.Mode
	gameMode tail.Mode

	matcher     *intel.Matcher
	intel       *tail.Tailer // nil while disconnected
	intelPrev   string
	intelLogger *logging.Logger
	sessions    []*session

	// rejected holds game dir files whose header named no monitored
	// character, with the time they were rejected.
	rejected map[string]time.Time

	watcher *fsnotify.Watcher
}

// New resolves and opens every log, compiles the watch tokens and starts
// watching the log directories. Any error here is fatal: the caller should
// report it and exit without entering the loop.
func New(opts Options) (*Engine, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Bus == nil {
		opts.Bus = event.NewBus(opts.Logger.Slog())
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	cfg := opts.Config

	if len(opts.Characters) == 0 {
		return nil, errors.NewConfigError("no characters to monitor", errors.ErrNoCharacters).WithField("watch.characters")
	}
	if len(opts.Names) == 0 {
		return nil, errors.NewConfigError("nothing to watch", errors.ErrNoWatchNames).WithField("watch.names")
	}

	settings, err := CombatSettings(cfg.Combat)
	if err != nil {
		return nil, err
	}
	chatMode, err := tail.ParseMode(cfg.Logs.ChatEncoding)
	if err != nil {
		return nil, errors.NewConfigError("bad chat log encoding", err).WithField("logs.chat_encoding")
	}
	gameMode, err := tail.ParseMode(cfg.Logs.GameEncoding)
	if err != nil {
		return nil, errors.NewConfigError("bad game log encoding", err).WithField("logs.game_encoding")
	}
	tokens, err := intel.NewTokens(opts.Names, cfg.Watch.Mangle)
	if err != nil {
		return nil, errors.NewConfigError("bad watch name", err).WithField("watch.names")
	}

	e := &Engine{
		cfg:         cfg,
		bus:         opts.Bus,
		logger:      opts.Logger,
		panic:       opts.Panic,
		fs:          opts.Fs,
		now:         opts.Now,
		chatDir:     filepath.Clean(config.ExpandHome(cfg.Logs.ChatDir)),
		gameDir:     filepath.Clean(config.ExpandHome(cfg.Logs.GameDir)),
		chatMode:    chatMode,
		gameMode:    gameMode,
		matcher:     intel.NewMatcher(cfg.Logs.Channel, tokens, cfg.Intel.Throttle()),
		intelLogger: opts.Logger.WithStream(StreamIntel),
		rejected:    make(map[string]time.Time),
	}

	ok := false
	defer func() {
		if !ok {
			e.close()
		}
	}()

	start := e.now()
	for _, name := range opts.Characters {
		s := &session{
			character: name,
			machine:   combat.New(name, settings, start),
			logger:    opts.Logger.WithCharacter(name).WithStream(StreamGame),
		}
		e.sessions = append(e.sessions, s)

		path, err := e.resolveGame(name)
		if err != nil {
			return nil, fatal(err)
		}
		if s.tailer, err = tail.Open(path, gameMode); err != nil {
			return nil, fatal(err)
		}
		s.logger.Info("tailing game log", "path", path)
	}

	path, err := e.resolveIntel()
	if err != nil {
		return nil, fatal(err)
	}
	if e.intel, err = tail.Open(path, chatMode); err != nil {
		return nil, fatal(err)
	}
	e.intelLogger.Info("tailing intel log", "path", path, "watch", opts.Names)
	for _, tok := range e.matcher.Tokens() {
		e.intelLogger.Debug("watch pattern", "name", tok.Name, "pattern", tok.Pattern.String())
	}

	if e.watcher, err = fsnotify.NewWatcher(); err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}
	for _, dir := range e.watchDirs() {
		if err := e.watcher.Add(dir); err != nil {
			return nil, fatal(errors.NewLogFileError("failed to watch log directory", err).WithPath(dir))
		}
	}

	ok = true
	return e, nil
}

// fatal raises log file errors found at startup to critical severity.
func fatal(err error) error {
	var lfe *errors.LogFileError
	if errors.As(err, &lfe) {
		lfe.WithSeverity(errors.SeverityCritical).WithRetryable(false)
	}
	return err
}

func (e *Engine) watchDirs() []string {
	if e.chatDir == e.gameDir {
		return []string{e.chatDir}
	}
	return []string{e.chatDir, e.gameDir}
}

// Panic returns the panic controller, for the signal handler. May be nil.
func (e *Engine) Panic() *notify.PanicController { return e.panic }

// Run processes file events and ticks until ctx is done or the watcher
// fails. Every tailer, the watcher and the panic controller are closed
// before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	defer e.close()

	ticker := time.NewTicker(e.cfg.Loop.WakeInterval())
	defer ticker.Stop()

	e.logger.Info("event loop started",
		"characters", len(e.sessions),
		"wake_interval", e.cfg.Loop.WakeInterval().String(),
	)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("event loop stopped")
			return nil

		case ev, ok := <-e.watcher.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			e.handleFileEvent(ev)

		case err, ok := <-e.watcher.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			e.logger.Warn("file watcher error", "error", err)

		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *Engine) close() {
	if e.watcher != nil {
		_ = e.watcher.Close()
		e.watcher = nil
	}
	if e.intel != nil {
		_ = e.intel.Close()
		e.intel = nil
	}
	for _, s := range e.sessions {
		if s.tailer != nil {
			_ = s.tailer.Close()
			s.tailer = nil
		}
	}
	if e.panic != nil {
		e.panic.Close()
	}
}

// handleFileEvent dispatches one change notification.
func (e *Engine) handleFileEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)

	if e.intel != nil && path == e.intel.Path() {
		switch {
		case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
			e.rotateIntel()
		case ev.Op&fsnotify.Write != 0:
			e.readIntel()
		}
		return
	}

	for _, s := range e.sessions {
		if s.tailer != nil && path == s.tailer.Path() {
			switch {
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				e.rotateGame(s)
			case ev.Op&fsnotify.Write != 0:
				e.readGame(s)
			}
			return
		}
	}

	dir := filepath.Dir(path)
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		delete(e.rejected, path)
		return
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if dir == e.chatDir && ev.Op&fsnotify.Create != 0 {
		e.maybeSwitchIntel()
	}
	if dir == e.gameDir {
		e.checkNewGameLog(path)
	}
}

// tick runs idle detection and reconnects streams that lost their log.
func (e *Engine) tick() {
	now := e.now()
	for _, s := range e.sessions {
		if s.tailer == nil {
			e.reconnectGame(s)
		}
		e.emitCombat(s, s.machine.Tick(now))
	}
	if e.intel == nil {
		e.reconnectIntel()
	}
	e.pruneRejected(now)
}

// pruneRejected forgets rejections older than the discovery age limit. A
// file still being written after that has its header read again.
func (e *Engine) pruneRejected(now time.Time) {
	maxAge := e.cfg.Logs.MaxAge()
	for path, at := range e.rejected {
		if now.Sub(at) > maxAge {
			delete(e.rejected, path)
		}
	}
}

// allDocked reports whether intel alerts should be held back.
func (e *Engine) allDocked() bool {
	if len(e.sessions) == 0 {
		return false
	}
	for _, s := range e.sessions {
		if !s.machine.Docked() {
			return false
		}
	}
	return true
}
