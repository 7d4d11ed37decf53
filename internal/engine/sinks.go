package engine

import (
	"github.com/ben0x539/eve-log-alert/internal/event"
	"github.com/ben0x539/eve-log-alert/internal/logging"
)

// LogEvents records alerts, suppressions and rotations in the structured
// log. It returns the subscription ID.
func LogEvents(bus *event.Bus, logger *logging.Logger) string {
	return bus.SubscribeAll(func(ev event.Event) {
		switch e := ev.(type) {
		case event.AlertEvent:
			logger.Info("alert",
				"alert_id", e.ID,
				"kind", string(e.Kind),
				"character", e.Character,
				"message", e.Message,
			)
		case event.SuppressedEvent:
			logger.Debug("alert suppressed",
				"kind", string(e.Kind),
				"character", e.Character,
				"reason", e.Reason,
				"message", e.Message,
			)
		case event.RotatedEvent:
			logger.Info("log rotated",
				"stream", e.Stream,
				"character", e.Character,
				"old_path", e.OldPath,
				"new_path", e.NewPath,
			)
		}
	})
}
