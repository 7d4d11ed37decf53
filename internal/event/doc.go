// Package event provides a pub-sub event bus that carries alerts from the
// engine to whatever sinks are attached.
//
// The engine decides what to alert about; it does not know how alerts are
// delivered. It publishes events, and the notifier, the structured log and
// the metrics collector subscribe to the ones they care about.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub dispatcher, safe for concurrent use
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// Alerts (all share [AlertPrefix]):
//   - alert.combat: throttled per-character alerts and rare spawns
//   - alert.intel: intel channel broadcasts
//   - alert.state: docking and undocking
//   - alert.panic: probable player attacks
//   - alert.lifecycle: process start and exit
//
// Bookkeeping:
//   - suppressed.alert: an alert held back by a throttle or docking
//   - log.lines: lines read from a log
//   - log.rotated: a tailed log was replaced
//
// # Basic Usage
//
//	bus := event.NewBus(logger.Slog())
//
//	bus.SubscribePrefix(event.AlertPrefix, func(e event.Event) {
//	    a := e.(event.AlertEvent)
//	    notifier.Notify(a.Text())
//	})
//
//	bus.Publish(event.NewAlertEvent(event.KindIntel, "", "DEK.CFC: UQ-PWD red", time.Now()))
package event
