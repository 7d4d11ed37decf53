package intel

import (
	"slices"
	"testing"
	"time"

	"github.com/ben0x539/eve-log-alert/internal/testutil"
)

var t0 = time.Date(2013, 4, 15, 14, 53, 52, 0, time.UTC)

func mustTokens(t *testing.T, mangle bool, names ...string) []Token {
	t.Helper()

	tokens, err := NewTokens(names, mangle)
	if err != nil {
		t.Fatalf("NewTokens(%v) error = %v", names, err)
	}
	return tokens
}

func TestToken_Triggers(t *testing.T) {
	tok := mustTokens(t, false, "UQ-PWD")[0]

	tests := []struct {
		body string
		want bool
	}{
		{"UQ-PWD clear", false},
		{"UQ-PWD status?", false},
		{"UQ-PWD status", false},
		{"uq-pwd CLR", false},
		{"UQ-PWD blue", false},
		{"UQ-PWD, clear!", false},
		{"UQ-PWD hostiles", true},
		{"UQ-PWD", true},
		{"Bad Guy  UQ-PWD*", true},
		{"red in UQ-PWD nv", true},
		{"1-SMEB clear", false},
		{"nothing here", false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			if got := tok.Triggers(tt.body); got != tt.want {
				t.Errorf("Triggers(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestToken_WordBoundary(t *testing.T) {
	tok := mustTokens(t, false, "ABC")[0]

	if !tok.Triggers("ABC-123 reds") {
		t.Error("pattern built from ABC should match ABC-123")
	}
	if tok.Triggers("XABC-123 reds") {
		t.Error("pattern should only match at a word boundary")
	}
}

func TestNewTokens(t *testing.T) {
	t.Run("deduplicates", func(t *testing.T) {
		tokens := mustTokens(t, true, "J1G2-345", "J162-345", "Jita")
		if len(tokens) != 2 {
			t.Errorf("got %d tokens, want 2", len(tokens))
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		if _, err := NewTokens([]string{"Jita", " "}, false); err == nil {
			t.Error("expected error for blank name")
		}
	})

	t.Run("literal names are quoted", func(t *testing.T) {
		tok := mustTokens(t, false, "A.B")[0]
		if tok.Triggers("AxB hostile") {
			t.Error("dot should be literal")
		}
	})
}

func TestMatcher_Tokens(t *testing.T) {
	m := NewMatcher("DEK.CFC", mustTokens(t, true, "J1G2-345", "UQ-PWD"), 5*time.Second)

	tokens := m.Tokens()
	if len(tokens) != 2 || tokens[0].Name != "J1G2-345" || tokens[1].Name != "UQ-PWD" {
		t.Fatalf("Tokens() = %+v", tokens)
	}
	want := `(?i)\bJ[I1][G6]2\S*`
	if got := tokens[0].Pattern.String(); got != want {
		t.Errorf("pattern = %q, want %q", got, want)
	}
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher("DEK.CFC", mustTokens(t, true, "J1G2-345", "UQ-PWD"), 5*time.Second)

	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "body match",
			line: testutil.ChatLine(t0, "Scout", "J162 Bad Guy"),
			want: []string{"J1G2-345"},
		},
		{
			name: "speaker name is not body",
			line: testutil.ChatLine(t0, "UQ-PWD Scout", "all quiet"),
			want: nil,
		},
		{
			name: "two tokens",
			line: testutil.ChatLine(t0, "Scout", "UQ-PW gate camp, J1G2 too"),
			want: []string{"J1G2-345", "UQ-PWD"},
		},
		{
			name: "clear for one token only",
			line: testutil.ChatLine(t0, "Scout", "J1G2 clr"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(tt.line); !slices.Equal(got, tt.want) {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatcher_Process(t *testing.T) {
	lines := []string{
		"\ufeff" + testutil.ChatLine(t0, "Scout", "UQ-PWD red x2"),
		testutil.ChatLine(t0, "Scout", "UQ-PWD clear"),
		testutil.ChatLine(t0, "Other", "Jita nv"),
		testutil.ChatLine(t0, "Other", "uq-pwd Bad Guy"),
	}

	m := NewMatcher("DEK.CFC", mustTokens(t, true, "UQ-PWD"), 5*time.Second)

	msg, outcome := m.Process(t0, lines, false)
	if outcome != Alerted {
		t.Fatalf("outcome = %v, want alerted", outcome)
	}
	want := "DEK.CFC: Scout > UQ-PWD red x2\nOther > uq-pwd Bad Guy"
	if msg != want {
		t.Errorf("message = %q, want %q", msg, want)
	}

	if _, outcome := m.Process(t0.Add(4*time.Second), lines[:1], false); outcome != Throttled {
		t.Errorf("second alert within 5s: outcome = %v, want throttled", outcome)
	}
	if _, outcome := m.Process(t0.Add(5*time.Second), lines[:1], false); outcome != Alerted {
		t.Errorf("alert after 5s: outcome = %v, want alerted", outcome)
	}
	if _, outcome := m.Process(t0.Add(time.Minute), lines[1:3], false); outcome != Ignored {
		t.Errorf("benign lines: outcome = %v, want ignored", outcome)
	}
}

func TestMatcher_ProcessDocked(t *testing.T) {
	m := NewMatcher("DEK.CFC", mustTokens(t, false, "UQ-PWD"), 5*time.Second)
	line := testutil.ChatLine(t0, "Scout", "UQ-PWD hostiles")

	if _, outcome := m.Process(t0, []string{line}, true); outcome != Docked {
		t.Fatalf("outcome = %v, want docked", outcome)
	}
	// a suppressed alert does not start the throttle
	if _, outcome := m.Process(t0.Add(time.Second), []string{line}, false); outcome != Alerted {
		t.Errorf("outcome after undock = %v, want alerted", outcome)
	}
}

func TestOutcome_String(t *testing.T) {
	for o, want := range map[Outcome]string{
		Ignored:     "ignored",
		Alerted:     "alerted",
		Throttled:   "throttled",
		Docked:      "docked",
		Outcome(42): "unknown",
	} {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", o, got, want)
		}
	}
}
