package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "alert.combat", "log.rotated")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event types published by the engine.
const (
	TypeAlertCombat    = "alert.combat"
	TypeAlertIntel     = "alert.intel"
	TypeAlertState     = "alert.state"
	TypeAlertPanic     = "alert.panic"
	TypeAlertLifecycle = "alert.lifecycle"
	TypeSuppressed     = "suppressed.alert"
	TypeLinesRead      = "log.lines"
	TypeRotated        = "log.rotated"
)

// AlertPrefix is shared by every alert event type.
const AlertPrefix = "alert."

// Kind names what produced an alert.
type Kind string

const (
	KindCombat    Kind = "combat"
	KindIntel     Kind = "intel"
	KindState     Kind = "state"
	KindPanic     Kind = "panic"
	KindLifecycle Kind = "lifecycle"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string, at time.Time) baseEvent {
	if at.IsZero() {
		at = time.Now()
	}
	return baseEvent{
		eventType: eventType,
		timestamp: at,
	}
}

// -----------------------------------------------------------------------------
// Alert Events
// -----------------------------------------------------------------------------

// AlertEvent is a notification the operator should see.
type AlertEvent struct {
	baseEvent
	ID        string // Unique identifier, for correlating log entries
	Kind      Kind
	Character string // Empty for intel and lifecycle alerts
	Message   string
}

// NewAlertEvent creates an AlertEvent. A zero at means now.
func NewAlertEvent(kind Kind, character, message string, at time.Time) AlertEvent {
	return AlertEvent{
		baseEvent: newBaseEvent(AlertPrefix+string(kind), at),
		ID:        uuid.NewString(),
		Kind:      kind,
		Character: character,
		Message:   message,
	}
}

// Text returns the message as shown to the operator, prefixed with the
// character when there is one.
func (e AlertEvent) Text() string {
	if e.Character == "" {
		return e.Message
	}
	return e.Character + ": " + e.Message
}

// SuppressedEvent records an alert that was held back.
type SuppressedEvent struct {
	baseEvent
	Kind      Kind
	Character string
	Reason    string // "throttled" or "docked"
	Message   string
}

// NewSuppressedEvent creates a SuppressedEvent. A zero at means now.
func NewSuppressedEvent(kind Kind, character, reason, message string, at time.Time) SuppressedEvent {
	return SuppressedEvent{
		baseEvent: newBaseEvent(TypeSuppressed, at),
		Kind:      kind,
		Character: character,
		Reason:    reason,
		Message:   message,
	}
}

// -----------------------------------------------------------------------------
// Log Events
// -----------------------------------------------------------------------------

// LinesReadEvent reports complete lines read from one log.
type LinesReadEvent struct {
	baseEvent
	Stream    string // "intel" or "game"
	Character string
	Count     int
}

// NewLinesReadEvent creates a LinesReadEvent stamped now.
func NewLinesReadEvent(stream, character string, count int) LinesReadEvent {
	return LinesReadEvent{
		baseEvent: newBaseEvent(TypeLinesRead, time.Time{}),
		Stream:    stream,
		Character: character,
		Count:     count,
	}
}

// RotatedEvent reports that a tailed log was replaced. NewPath is empty
// while no successor has been found.
type RotatedEvent struct {
	baseEvent
	Stream    string
	Character string
	OldPath   string
	NewPath   string
}

// NewRotatedEvent creates a RotatedEvent stamped now.
func NewRotatedEvent(stream, character, oldPath, newPath string) RotatedEvent {
	return RotatedEvent{
		baseEvent: newBaseEvent(TypeRotated, time.Time{}),
		Stream:    stream,
		Character: character,
		OldPath:   oldPath,
		NewPath:   newPath,
	}
}
