// Package combat tracks one character's game log and decides when the
// operator should be told about it.
//
// A Machine is fed the lines of a character's game log and ticked
// periodically. It follows docking state, keeps a sliding window of
// incoming damage, and returns the alerts each input produces. Ordinary
// alerts share one throttle per character; docking, rare spawn and player
// attack alerts bypass it.
package combat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ben0x539/eve-log-alert/internal/logline"
	"github.com/ben0x539/eve-log-alert/internal/throttle"
)

// Kind classifies an Alert.
type Kind int

const (
	// KindCombat is an ordinary, throttled alert.
	KindCombat Kind = iota
	// KindState reports docking and undocking.
	KindState
	// KindRare reports a rare spawn.
	KindRare
	// KindPanic reports a probable player attack; it repeats until acknowledged.
	KindPanic
)

// String returns a lower-case label.
func (k Kind) String() string {
	switch k {
	case KindCombat:
		return "combat"
	case KindState:
		return "state"
	case KindRare:
		return "rare"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Alert is one decision of the machine. Suppressed alerts were throttled
// and must not reach the operator.
type Alert struct {
	Kind       Kind
	Message    string
	At         time.Time
	Suppressed bool
}

// Hit is one entry of the incoming damage window.
type Hit struct {
	At     time.Time
	Amount int
}

// Settings tunes a Machine.
type Settings struct {
	// Window and DPSThreshold form the damage profile.
	Window       time.Duration
	DPSThreshold float64

	Throttle    time.Duration
	NoIncoming  time.Duration
	NoOutgoing  time.Duration
	UnderAttack time.Duration
	SingleHit   int
	Idle        time.Duration
	IdleRepeat  time.Duration
	RareRepeat  time.Duration
	RareNames   []string
}

// DefaultSettings returns the short profile with the stock thresholds.
func DefaultSettings() Settings {
	return Settings{
		Window:       10 * time.Second,
		DPSThreshold: 50,
		Throttle:     30 * time.Second,
		NoIncoming:   20 * time.Second,
		NoOutgoing:   40 * time.Second,
		UnderAttack:  20 * time.Second,
		SingleHit:    150,
		Idle:         20 * time.Second,
		IdleRepeat:   120 * time.Second,
		RareRepeat:   300 * time.Second,
		RareNames:    []string{"Dread Gurista"},
	}
}

// Machine is the per-character combat state. It is not safe for
// concurrent use.
type Machine struct {
	character string
	settings  Settings

	docked           bool
	lastIncoming     time.Time
	lastOutgoing     time.Time
	lastIdle         time.Time
	lastRare         time.Time
	underAttackSince time.Time
	hits             []Hit
	throttle         *throttle.Throttle
}

// New returns an undocked Machine. The activity clocks and the throttle
// start at now, so nothing throttled fires during the first interval.
func New(character string, settings Settings, now time.Time) *Machine {
	return &Machine{
		character:    character,
		settings:     settings,
		lastIncoming: now,
		lastOutgoing: now,
		throttle:     throttle.New(now),
	}
}

// Character returns the listener name.
func (m *Machine) Character() string { return m.character }

// Docked reports whether the character is in a station.
func (m *Machine) Docked() bool { return m.docked }

// UnderAttackSince returns when the current engagement started, or the
// zero time.
func (m *Machine) UnderAttackSince() time.Time { return m.underAttackSince }

// Window returns a copy of the incoming damage window, oldest first.
func (m *Machine) Window() []Hit {
	return append([]Hit(nil), m.hits...)
}

// Feed processes one game log line observed at now.
func (m *Machine) Feed(now time.Time, line string) []Alert {
	gl, ok := logline.ParseGame(line)
	if !ok {
		return nil
	}

	switch {
	case dockPattern.MatchString(gl.Body):
		m.docked = true
		return []Alert{m.immediate(KindState, now, "docking up; disabling notifications")}
	case undockPattern.MatchString(gl.Body):
		m.undock(now)
		return []Alert{m.immediate(KindState, now, "undocking; enabling notifications")}
	}

	if m.docked || gl.Channel != "combat" {
		return nil
	}

	body := logline.StripMarkup(gl.Body)
	var alerts []Alert
	if a, ok := m.checkPlayer(now, body); ok {
		alerts = append(alerts, a)
	}
	if a, ok := m.checkRare(now, body); ok {
		alerts = append(alerts, a)
	}
	if a, ok := m.noteDamage(now, body); ok {
		alerts = append(alerts, a)
	}
	return alerts
}

// Tick runs idle detection at now. It does nothing while docked.
func (m *Machine) Tick(now time.Time) []Alert {
	if m.docked {
		return nil
	}
	last := m.lastIncoming
	if m.lastOutgoing.After(last) {
		last = m.lastOutgoing
	}
	if now.Sub(last) <= m.settings.Idle || now.Sub(m.lastIdle) < m.settings.IdleRepeat {
		return nil
	}
	a := m.notify(now, "idling")
	m.lastIdle = now
	m.underAttackSince = time.Time{}
	return []Alert{a}
}

func (m *Machine) undock(now time.Time) {
	m.docked = false
	m.lastIncoming = now
	m.lastOutgoing = now
	m.underAttackSince = time.Time{}
	m.hits = nil
}

func (m *Machine) checkPlayer(now time.Time, body string) (Alert, bool) {
	if tm := tacklePattern.FindStringSubmatch(body); tm != nil {
		msg := "tackled"
		if who := group(tacklePattern, tm, "who"); who != "" {
			msg = "tackled by " + who
		}
		return m.immediate(KindPanic, now, msg), true
	}

	var who string
	if hm := incomingHit.FindStringSubmatch(body); hm != nil {
		who = group(incomingHit, hm, "who")
	} else if mm := incomingMiss.FindStringSubmatch(body); mm != nil {
		who = group(incomingMiss, mm, "who")
	}
	if who != "" && looksLikePlayer(who) {
		return m.immediate(KindPanic, now, "attacked by "+who), true
	}
	return Alert{}, false
}

func (m *Machine) checkRare(now time.Time, body string) (Alert, bool) {
	for _, name := range m.settings.RareNames {
		if name == "" || !strings.Contains(body, name) {
			continue
		}
		if !m.lastRare.IsZero() && now.Sub(m.lastRare) < m.settings.RareRepeat {
			return Alert{}, false
		}
		m.lastRare = now
		return m.immediate(KindRare, now, name+" spotted"), true
	}
	return Alert{}, false
}

func (m *Machine) noteDamage(now time.Time, body string) (Alert, bool) {
	if hm := incomingHit.FindStringSubmatch(body); hm != nil {
		return m.incoming(now, atoi(group(incomingHit, hm, "amount")))
	}
	if incomingMiss.MatchString(body) {
		return m.incoming(now, 0)
	}
	if outgoingHit.MatchString(body) {
		return m.outgoing(now)
	}
	if outgoingMiss.MatchString(body) {
		return m.outgoing(now)
	}
	return Alert{}, false
}

func (m *Machine) incoming(now time.Time, amount int) (Alert, bool) {
	m.lastIncoming = now

	kept := m.hits[:0]
	for _, h := range m.hits {
		if now.Sub(h.At) <= m.settings.Window {
			kept = append(kept, h)
		}
	}
	m.hits = append(kept, Hit{At: now, Amount: amount})

	sum := 0
	for _, h := range m.hits {
		sum += h.Amount
	}
	if m.underAttackSince.IsZero() {
		m.underAttackSince = now
	}

	switch {
	case m.lastIncoming.Sub(m.lastOutgoing) > m.settings.NoOutgoing &&
		now.Sub(m.underAttackSince) > m.settings.UnderAttack:
		return m.notify(now, fmt.Sprintf("receiving damage, but none dealt for %ds", seconds(m.settings.NoOutgoing))), true
	case amount > m.settings.SingleHit:
		return m.notify(now, fmt.Sprintf("took %d in one shot", amount)), true
	case m.settings.Window > 0 && float64(sum)/m.settings.Window.Seconds() > m.settings.DPSThreshold:
		return m.notify(now, fmt.Sprintf("taking >%g dps", m.settings.DPSThreshold)), true
	}
	return Alert{}, false
}

func (m *Machine) outgoing(now time.Time) (Alert, bool) {
	m.lastOutgoing = now
	if m.lastOutgoing.Sub(m.lastIncoming) > m.settings.NoIncoming {
		return m.notify(now, fmt.Sprintf("dealing damage, but none received for %ds", seconds(m.settings.NoIncoming))), true
	}
	return Alert{}, false
}

// notify applies the per-character throttle.
func (m *Machine) notify(now time.Time, msg string) Alert {
	ok := m.throttle.Try(now, m.settings.Throttle)
	return Alert{Kind: KindCombat, Message: msg, At: now, Suppressed: !ok}
}

// immediate alerts bypass the throttle but still reset its clock.
func (m *Machine) immediate(kind Kind, now time.Time, msg string) Alert {
	m.throttle.Mark(now)
	return Alert{Kind: kind, Message: msg, At: now}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
