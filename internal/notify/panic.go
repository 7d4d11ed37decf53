package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/ben0x539/eve-log-alert/internal/logging"
)

// Cuer plays one alert cue and returns when it has finished.
type Cuer interface {
	Cue(ctx context.Context) error
}

// DefaultCueGap is the pause between two panic cues.
const DefaultCueGap = 500 * time.Millisecond

// PanicController repeats an alert cue until stopped. It is safe for
// concurrent use; the engine triggers it and the signal handler stops it.
type PanicController struct {
	cuer   Cuer
	gap    time.Duration
	logger *logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	reason string
	closed bool
	wg     conc.WaitGroup
}

// NewPanicController returns an idle controller. A gap of zero uses DefaultCueGap.
func NewPanicController(cuer Cuer, gap time.Duration, logger *logging.Logger) *PanicController {
	if gap <= 0 {
		gap = DefaultCueGap
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &PanicController{cuer: cuer, gap: gap, logger: logger}
}

// Trigger starts the cue loop unless it is already running. It reports
// whether a new loop was started.
func (p *PanicController) Trigger(reason string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.reason = reason
	p.logger.Warn("panic alert started", "reason", reason)

	p.wg.Go(func() {
		defer close(done)
		p.loop(ctx)
	})
	return true
}

func (p *PanicController) loop(ctx context.Context) {
	for {
		if err := p.cuer.Cue(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("panic cue failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.gap):
		}
	}
}

// Stop ends the cue loop and waits for the current cue to be killed. It
// reports whether a loop was running.
func (p *PanicController) Stop() bool {
	p.mu.Lock()
	cancel, done, reason := p.cancel, p.done, p.reason
	p.cancel, p.done, p.reason = nil, nil, ""
	p.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	p.logger.Info("panic alert stopped", "reason", reason)
	return true
}

// Active reports whether the cue loop is running.
func (p *PanicController) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Reason returns the message of the running panic, if any.
func (p *PanicController) Reason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

// Close stops any running loop and refuses further triggers.
func (p *PanicController) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.Stop()
	p.wg.Wait()
}
