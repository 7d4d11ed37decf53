package combat

import (
	"strconv"
	"testing"
	"time"

	"github.com/ben0x539/eve-log-alert/internal/testutil"
)

var t0 = time.Date(2013, 4, 15, 14, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return t0.Add(time.Duration(sec) * time.Second)
}

func combatLine(body string) string {
	return testutil.GameLine(t0, "combat", body)
}

func hitFrom(amount int, who string) string {
	return combatLine("<color=0xffcc0000><b>" + strconv.Itoa(amount) + "</b> <color=0x77ffffff><font size=10>from</font> <b><color=0xffffffff>" + who + "</b><font size=10><color=0x77ffffff> - Hits")
}

func hitTo(amount int, who string) string {
	return combatLine("<color=0xff00ffff><b>" + strconv.Itoa(amount) + "</b> <color=0x77ffffff><font size=10>to</font> <b><color=0xffffffff>" + who + "</b><font size=10><color=0x77ffffff> - Smashes")
}

// emitted drops suppressed alerts.
func emitted(alerts []Alert) []Alert {
	var out []Alert
	for _, a := range alerts {
		if !a.Suppressed {
			out = append(out, a)
		}
	}
	return out
}

func TestFeed_SingleHitThreshold(t *testing.T) {
	m := New("Some Pilot", DefaultSettings(), t0)

	if got := m.Feed(at(60), hitFrom(150, "Hostile Guy")); len(got) != 0 {
		t.Errorf("150 damage should not alert, got %+v", got)
	}

	got := emitted(m.Feed(at(61), hitFrom(200, "Hostile Guy")))
	if len(got) != 1 || got[0].Message != "took 200 in one shot" {
		t.Fatalf("200 damage: got %+v", got)
	}
	if got[0].Kind != KindCombat {
		t.Errorf("Kind = %v, want combat", got[0].Kind)
	}

	// shared 30s throttle
	alerts := m.Feed(at(62), hitFrom(300, "Hostile Guy"))
	if len(alerts) != 1 || !alerts[0].Suppressed {
		t.Errorf("second big hit within 30s should be suppressed, got %+v", alerts)
	}
}

func TestFeed_SustainedDPS(t *testing.T) {
	tests := []struct {
		name     string
		settings func() Settings
		hits     []int
		want     string
	}{
		{
			name:     "short profile",
			settings: DefaultSettings,
			hits:     []int{100, 100, 100, 100, 110},
			want:     "taking >50 dps",
		},
		{
			name: "long profile",
			settings: func() Settings {
				s := DefaultSettings()
				s.Window = 40 * time.Second
				s.DPSThreshold = 60
				return s
			},
			hits: []int{150, 150, 150, 150, 150, 150, 150, 150, 150, 150, 150, 150, 150, 150, 150, 150, 150},
			want: "taking >60 dps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("Some Pilot", tt.settings(), t0)
			// keep outgoing damage recent so the no-outgoing alert stays quiet
			m.Feed(at(5), hitTo(10, "Hostile Guy"))

			var got []Alert
			for i, amount := range tt.hits {
				got = append(got, emitted(m.Feed(at(40+i), hitFrom(amount, "Hostile Guy")))...)
			}
			if len(got) != 1 || got[0].Message != tt.want {
				t.Errorf("alerts = %+v, want one %q", got, tt.want)
			}
		})
	}
}

func TestFeed_NoOutgoingDamage(t *testing.T) {
	m := New("Some Pilot", DefaultSettings(), t0)

	// attacked continuously from t=50 without shooting back
	var got []Alert
	for sec := 50; sec <= 75; sec++ {
		got = append(got, emitted(m.Feed(at(sec), hitFrom(5, "Hostile Guy")))...)
	}
	if len(got) != 1 || got[0].Message != "receiving damage, but none dealt for 40s" {
		t.Fatalf("alerts = %+v", got)
	}
	if !got[0].At.Equal(at(71)) {
		t.Errorf("alert at %v, want after 20s under attack", got[0].At)
	}
}

func TestFeed_NoIncomingDamage(t *testing.T) {
	m := New("Some Pilot", DefaultSettings(), t0)
	m.Feed(at(100), hitFrom(10, "Hostile Guy"))

	var all, got []Alert
	for sec := 101; sec <= 145; sec++ {
		alerts := m.Feed(at(sec), hitTo(50, "Hostile Guy"))
		all = append(all, alerts...)
		got = append(got, emitted(alerts)...)
	}
	if len(got) != 1 || got[0].Message != "dealing damage, but none received for 20s" {
		t.Fatalf("alerts = %+v", got)
	}
	if !got[0].At.Equal(at(121)) {
		t.Errorf("alert at %v, want t=121s", got[0].At)
	}
	if len(all) <= 1 {
		t.Error("repeats within the throttle should be reported as suppressed")
	}
}

func TestFeed_Misses(t *testing.T) {
	m := New("Some Pilot", DefaultSettings(), t0)

	m.Feed(at(10), combatLine("Hostile Guy misses you completely"))
	if !m.UnderAttackSince().Equal(at(10)) {
		t.Errorf("a miss should start the engagement, got %v", m.UnderAttackSince())
	}
	w := m.Window()
	if len(w) != 1 || w[0].Amount != 0 {
		t.Errorf("window = %+v, want one zero hit", w)
	}

	m.Feed(at(11), combatLine("Your Hobgoblin II misses Hostile Guy completely"))
	if got := m.Feed(at(40), combatLine("Your Hobgoblin II misses Hostile Guy completely")); len(emitted(got)) != 1 {
		t.Errorf("outgoing misses should count as outgoing activity, got %+v", got)
	}
}

func TestFeed_WindowInvariant(t *testing.T) {
	s := DefaultSettings()
	s.Throttle = 0
	m := New("Some Pilot", s, t0)

	offsets := []int{0, 1, 1, 3, 8, 10, 11, 12, 25, 26, 40, 41, 41, 55}
	for _, off := range offsets {
		now := at(off)
		m.Feed(now, hitFrom(1, "Hostile Guy"))

		w := m.Window()
		for i, h := range w {
			if now.Sub(h.At) > s.Window {
				t.Fatalf("t=%d: entry at %v is older than the window", off, h.At)
			}
			if i > 0 && h.At.Before(w[i-1].At) {
				t.Fatalf("t=%d: window out of order: %+v", off, w)
			}
		}
		if last := w[len(w)-1]; !last.At.Equal(now) {
			t.Fatalf("t=%d: newest entry at %v", off, last.At)
		}
	}
}

func TestFeed_Docking(t *testing.T) {
	m := New("Some Pilot", DefaultSettings(), t0)

	got := m.Feed(at(100), testutil.GameLine(t0, "notify", "Your docking request has been accepted. Your ship will be towed into the station."))
	if len(got) != 1 || got[0].Kind != KindState || got[0].Message != "docking up; disabling notifications" {
		t.Fatalf("dock: got %+v", got)
	}
	if !m.Docked() {
		t.Fatal("machine should be docked")
	}

	if got := m.Feed(at(200), hitFrom(500, "Hostile Guy")); len(got) != 0 {
		t.Errorf("docked machine should ignore combat, got %+v", got)
	}
	if got := m.Feed(at(200), hitFrom(50, "Bad[TICK](Rifter)")); len(got) != 0 {
		t.Errorf("docked machine should not panic, got %+v", got)
	}
	if got := m.Tick(at(1000)); len(got) != 0 {
		t.Errorf("docked machine should not idle, got %+v", got)
	}

	got = m.Feed(at(1100), testutil.GameLine(t0, "None", "Undocking from Jita IV - Moon 4 to Jita solar system."))
	if len(got) != 1 || got[0].Kind != KindState || got[0].Message != "undocking; enabling notifications" {
		t.Fatalf("undock: got %+v", got)
	}
	if m.Docked() {
		t.Fatal("machine should be undocked")
	}

	// undock resets the idle clock
	if got := m.Tick(at(1110)); len(got) != 0 {
		t.Errorf("idle right after undock: got %+v", got)
	}

	// the undock notification counts for the throttle
	if got := emitted(m.Feed(at(1120), hitFrom(200, "Hostile Guy"))); len(got) != 0 {
		t.Errorf("alert within 30s of undock notification: %+v", got)
	}
	if got := emitted(m.Feed(at(1131), hitFrom(200, "Hostile Guy"))); len(got) != 1 {
		t.Errorf("alert 31s after undock: %+v", got)
	}
}

func TestFeed_PlayerHeuristic(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"ticker in name", hitFrom(80, "Bad Guy[TICK](Rifter)"), "attacked by Bad Guy[TICK](Rifter)"},
		{"miss from player", combatLine("Bad Guy [TICK] misses you completely"), "attacked by Bad Guy [TICK]"},
		{"scramble", combatLine("Warp scramble attempt from Bad Guy to you!"), "tackled by Bad Guy"},
		{"disruption", combatLine("Warp disruption attempt from Bad Guy to you!"), "tackled by Bad Guy"},
		{"tackled", combatLine("You have been tackled"), "tackled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("Some Pilot", DefaultSettings(), t0)
			got := m.Feed(at(1), tt.line)
			if len(got) == 0 || got[0].Kind != KindPanic || got[0].Suppressed {
				t.Fatalf("got %+v, want panic alert", got)
			}
			if got[0].Message != tt.want {
				t.Errorf("Message = %q, want %q", got[0].Message, tt.want)
			}
		})
	}

	t.Run("npc is not a player", func(t *testing.T) {
		m := New("Some Pilot", DefaultSettings(), t0)
		for _, a := range m.Feed(at(100), hitFrom(80, "Guristas Eliminator")) {
			if a.Kind == KindPanic {
				t.Errorf("NPC hit raised panic: %+v", a)
			}
		}
	})
}

func TestFeed_RareSpawn(t *testing.T) {
	m := New("Some Pilot", DefaultSettings(), t0)
	line := combatLine("Dread Gurista Eliminator misses you completely")

	got := m.Feed(at(1), line)
	if len(got) == 0 || got[0].Kind != KindRare || got[0].Message != "Dread Gurista spotted" {
		t.Fatalf("got %+v", got)
	}

	for _, a := range m.Feed(at(200), line) {
		if a.Kind == KindRare {
			t.Errorf("rare spawn repeated within 300s: %+v", a)
		}
	}

	got = m.Feed(at(301), line)
	if len(got) == 0 || got[0].Kind != KindRare {
		t.Errorf("rare spawn after 300s: got %+v", got)
	}
}

func TestFeed_IgnoresOtherLines(t *testing.T) {
	m := New("Some Pilot", DefaultSettings(), t0)

	for _, line := range []string{
		"  Listener: Some Pilot",
		testutil.GameLine(t0, "notify", "200 from Hostile Guy - Hits"),
		testutil.GameLine(t0, "combat", "something unrelated"),
		"",
	} {
		if got := m.Feed(at(100), line); len(got) != 0 {
			t.Errorf("Feed(%q) = %+v, want nothing", line, got)
		}
	}
}

func TestTick_Idle(t *testing.T) {
	m := New("Some Pilot", DefaultSettings(), t0)

	if got := m.Tick(at(20)); len(got) != 0 {
		t.Errorf("20s without activity is not idle yet: %+v", got)
	}

	got := emitted(m.Tick(at(40)))
	if len(got) != 1 || got[0].Message != "idling" {
		t.Fatalf("t=40: got %+v", got)
	}

	if got := m.Tick(at(100)); len(got) != 0 {
		t.Errorf("idle repeated within 120s: %+v", got)
	}
	if got := emitted(m.Tick(at(160))); len(got) != 1 {
		t.Errorf("idle after 120s: %+v", got)
	}

	m.Feed(at(300), hitTo(10, "Hostile Guy"))
	if got := m.Tick(at(310)); len(got) != 0 {
		t.Errorf("recent activity: got %+v", got)
	}
}

func TestTick_ClearsEngagement(t *testing.T) {
	m := New("Some Pilot", DefaultSettings(), t0)

	m.Feed(at(50), hitFrom(1, "Hostile Guy"))
	if m.UnderAttackSince().IsZero() {
		t.Fatal("engagement should have started")
	}
	m.Tick(at(200))
	if !m.UnderAttackSince().IsZero() {
		t.Error("idle tick should clear the engagement")
	}
}

func TestKind_String(t *testing.T) {
	for k, want := range map[Kind]string{
		KindCombat: "combat",
		KindState:  "state",
		KindRare:   "rare",
		KindPanic:  "panic",
		Kind(9):    "unknown",
	} {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
