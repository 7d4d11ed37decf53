package engine

import (
	"io"

	"github.com/ben0x539/eve-log-alert/internal/combat"
	"github.com/ben0x539/eve-log-alert/internal/discovery"
	"github.com/ben0x539/eve-log-alert/internal/errors"
	"github.com/ben0x539/eve-log-alert/internal/event"
	"github.com/ben0x539/eve-log-alert/internal/intel"
	"github.com/ben0x539/eve-log-alert/internal/tail"
)

// -----------------------------------------------------------------------------
// Intel stream
// -----------------------------------------------------------------------------

func (e *Engine) resolveIntel() (string, error) {
	return discovery.IntelLog(e.fs, e.chatDir, e.cfg.Logs.Channel, e.now(), e.cfg.Logs.MaxAge())
}

func (e *Engine) readIntel() {
	lines, err := e.intel.OnAppend()
	if errors.Is(err, errors.ErrRotated) {
		e.intelLogger.Warn("intel log truncated", "path", e.intel.Path())
		e.rotateIntel()
		return
	}
	if err != nil {
		e.intelLogger.Warn("failed to read intel log", "error", err)
		return
	}
	e.processIntel(lines)
}

func (e *Engine) processIntel(lines []string) {
	if len(lines) == 0 {
		return
	}
	e.bus.Publish(event.NewLinesReadEvent(StreamIntel, "", len(lines)))

	now := e.now()
	msg, outcome := e.matcher.Process(now, lines, e.allDocked())
	switch outcome {
	case intel.Alerted:
		e.bus.Publish(event.NewAlertEvent(event.KindIntel, "", msg, now))
	case intel.Throttled:
		e.bus.Publish(event.NewSuppressedEvent(event.KindIntel, "", "throttled", msg, now))
	case intel.Docked:
		e.bus.Publish(event.NewSuppressedEvent(event.KindIntel, "", "docked", msg, now))
	}
}

// finishIntel drains and closes the current intel log.
func (e *Engine) finishIntel() {
	old := e.intel
	e.intel = nil
	e.intelPrev = old.Path()

	lines, err := old.OnRotate()
	if err != nil {
		e.intelLogger.Warn("failed to drain intel log", "path", old.Path(), "error", err)
	}
	e.intelLogger.Debug("closed intel log", "path", old.Path(), "offset", old.Offset())
	e.processIntel(lines)
}

func (e *Engine) openIntel(path string) {
	t, err := tail.Open(path, e.chatMode)
	if err != nil {
		e.intelLogger.Warn("failed to open intel log", "path", path, "error", err)
		return
	}
	e.intel = t
	e.intelLogger.Info("tailing intel log", "path", path, "previous", e.intelPrev)
	e.bus.Publish(event.NewRotatedEvent(StreamIntel, "", e.intelPrev, path))
}

// rotateIntel handles removal or truncation of the intel log.
func (e *Engine) rotateIntel() {
	e.finishIntel()
	path, err := e.resolveIntel()
	if err != nil {
		e.intelLogger.Warn("intel log gone, will retry", "error", err)
		return
	}
	e.openIntel(path)
}

// maybeSwitchIntel follows the channel to a newer log, after a file was
// created in the chat directory.
func (e *Engine) maybeSwitchIntel() {
	path, err := e.resolveIntel()
	if err != nil {
		return
	}
	if e.intel != nil {
		if path == e.intel.Path() {
			return
		}
		e.finishIntel()
	}
	e.openIntel(path)
}

func (e *Engine) reconnectIntel() {
	path, err := e.resolveIntel()
	if err != nil {
		e.intelLogger.Debug("still no intel log", "error", err)
		return
	}
	e.openIntel(path)
}

// -----------------------------------------------------------------------------
// Game streams
// -----------------------------------------------------------------------------

func (e *Engine) resolveGame(character string) (string, error) {
	return discovery.GameLog(e.fs, e.gameDir, character, e.gameMode, e.now(), e.cfg.Logs.MaxAge())
}

func (e *Engine) readGame(s *session) {
	lines, err := s.tailer.OnAppend()
	if errors.Is(err, errors.ErrRotated) {
		s.logger.Warn("game log truncated", "path", s.tailer.Path())
		e.rotateGame(s)
		return
	}
	if err != nil {
		s.logger.Warn("failed to read game log", "error", err)
		return
	}
	e.feedGame(s, lines)
}

func (e *Engine) feedGame(s *session, lines []string) {
	if len(lines) == 0 {
		return
	}
	e.bus.Publish(event.NewLinesReadEvent(StreamGame, s.character, len(lines)))

	now := e.now()
	for _, line := range lines {
		e.emitCombat(s, s.machine.Feed(now, line))
	}
}

func (e *Engine) finishGame(s *session) {
	old := s.tailer
	s.tailer = nil
	s.prev = old.Path()

	lines, err := old.OnRotate()
	if err != nil {
		s.logger.Warn("failed to drain game log", "path", old.Path(), "error", err)
	}
	s.logger.Debug("closed game log", "path", old.Path(), "offset", old.Offset())
	e.feedGame(s, lines)
}

func (e *Engine) openGame(s *session, path string) {
	t, err := tail.Open(path, e.gameMode)
	if err != nil {
		s.logger.Warn("failed to open game log", "path", path, "error", err)
		return
	}
	s.tailer = t
	delete(e.rejected, path)
	s.logger.Info("tailing game log", "path", path, "previous", s.prev)
	e.bus.Publish(event.NewRotatedEvent(StreamGame, s.character, s.prev, path))
}

func (e *Engine) rotateGame(s *session) {
	e.finishGame(s)
	path, err := e.resolveGame(s.character)
	if err != nil {
		s.logger.Warn("game log gone, will retry", "error", err)
		return
	}
	e.openGame(s, path)
}

func (e *Engine) reconnectGame(s *session) {
	path, err := e.resolveGame(s.character)
	if err != nil {
		s.logger.Debug("still no game log", "error", err)
		return
	}
	e.openGame(s, path)
}

// checkNewGameLog switches a character to path when its header names
// them. A client session that starts writes a new file; the old one is
// left behind without being removed.
func (e *Engine) checkNewGameLog(path string) {
	if _, ok := e.rejected[path]; ok {
		return
	}
	listener, err := discovery.ListenerOf(e.fs, path, e.gameMode)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		// Header still being written.
		return
	}
	if err != nil {
		e.rejected[path] = e.now()
		return
	}

	for _, s := range e.sessions {
		if s.character != listener {
			continue
		}
		if s.tailer != nil {
			e.finishGame(s)
		}
		e.openGame(s, path)
		return
	}
	e.rejected[path] = e.now()
}

// emitCombat publishes the decisions of one machine.
func (e *Engine) emitCombat(s *session, alerts []combat.Alert) {
	for _, a := range alerts {
		kind := eventKind(a.Kind)
		if a.Suppressed {
			e.bus.Publish(event.NewSuppressedEvent(kind, s.character, "throttled", a.Message, a.At))
			continue
		}
		if a.Kind == combat.KindPanic {
			s.logger.Warn("probable player attack", "message", a.Message)
		}
		e.bus.Publish(event.NewAlertEvent(kind, s.character, a.Message, a.At))
	}
}

func eventKind(k combat.Kind) event.Kind {
	switch k {
	case combat.KindState:
		return event.KindState
	case combat.KindPanic:
		return event.KindPanic
	default:
		return event.KindCombat
	}
}
