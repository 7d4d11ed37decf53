// Package intel decides which intel channel broadcasts are worth an alert.
//
// Each watched name becomes a Token whose pattern matches the name at a word
// boundary followed by any non-space characters, so "UQ" also matches
// "UQ-PWD". With mangling enabled the name is first truncated and its
// ambiguous glyphs widened (see Mangle).
//
// A line triggers when some token matches its body and what is left after
// removing every match of that token and the punctuation is not an all-clear
// ("clear", "clr", "status?", "blue"). Lines that pass are forwarded without
// their timestamp prefix, joined under a "<channel>: " header.
package intel

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ben0x539/eve-log-alert/internal/logline"
	"github.com/ben0x539/eve-log-alert/internal/throttle"
)

// clearPattern matches the tail of a body that only reports a status.
var clearPattern = regexp.MustCompile(`(?i)(cl(ea)?r|status\??|blue)$`)

// noisePattern matches whitespace and punctuation ignored by the all-clear check.
var noisePattern = regexp.MustCompile(`[\s.,!]+`)

// Token is a watched name and its compiled pattern.
type Token struct {
	Name    string
	Pattern *regexp.Regexp
}

// NewToken compiles name into a Token, mangled or literal.
func NewToken(name string, mangle bool) (Token, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Token{}, fmt.Errorf("empty watch name")
	}
	frag := regexp.QuoteMeta(name)
	if mangle {
		frag = Mangle(name)
	}
	re, err := regexp.Compile(`(?i)\b` + frag + `\S*`)
	if err != nil {
		return Token{}, fmt.Errorf("failed to compile pattern for %q: %w", name, err)
	}
	return Token{Name: name, Pattern: re}, nil
}

// NewTokens compiles every name, skipping duplicates.
func NewTokens(names []string, mangle bool) ([]Token, error) {
	seen := make(map[string]bool, len(names))
	tokens := make([]Token, 0, len(names))
	for _, name := range names {
		tok, err := NewToken(name, mangle)
		if err != nil {
			return nil, err
		}
		key := tok.Pattern.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Triggers reports whether body mentions the token with something other
// than an all-clear.
func (t Token) Triggers(body string) bool {
	if !t.Pattern.MatchString(body) {
		return false
	}
	rest := t.Pattern.ReplaceAllString(body, "")
	rest = noisePattern.ReplaceAllString(rest, "")
	return !clearPattern.MatchString(rest)
}

// Outcome describes what Process did with a batch of lines.
type Outcome int

const (
	// Ignored means no line triggered.
	Ignored Outcome = iota
	// Alerted means a message should be sent.
	Alerted
	// Throttled means lines triggered within the throttle interval.
	Throttled
	// Docked means lines triggered while every character was docked.
	Docked
)

// String returns a lower-case label for logs and metrics.
func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Alerted:
		return "alerted"
	case Throttled:
		return "throttled"
	case Docked:
		return "docked"
	default:
		return "unknown"
	}
}

// Matcher filters intel lines and rate-limits the resulting alerts. It is
// not safe for concurrent use.
type Matcher struct {
	channel  string
	tokens   []Token
	interval time.Duration
	throttle *throttle.Throttle
}

// NewMatcher returns a Matcher over tokens that sends at most one alert
// per interval. The first alert is never throttled.
func NewMatcher(channel string, tokens []Token, interval time.Duration) *Matcher {
	return &Matcher{
		channel:  channel,
		tokens:   tokens,
		interval: interval,
		throttle: throttle.New(time.Time{}),
	}
}

// Tokens returns the compiled tokens.
func (m *Matcher) Tokens() []Token {
	return m.tokens
}

// Match returns the names of the tokens that line triggers.
func (m *Matcher) Match(line string) []string {
	body := logline.ParseChat(line).Body
	var names []string
	for _, tok := range m.tokens {
		if tok.Triggers(body) {
			names = append(names, tok.Name)
		}
	}
	return names
}

// Filter returns the triggering lines with their byte order mark and
// timestamp prefix removed.
func (m *Matcher) Filter(lines []string) []string {
	var out []string
	for _, line := range lines {
		if len(m.Match(line)) == 0 {
			continue
		}
		rest, _, _ := logline.StripStamp(line)
		out = append(out, rest)
	}
	return out
}

// Format joins forwarded lines under the channel header.
func (m *Matcher) Format(lines []string) string {
	return m.channel + ": " + strings.Join(lines, "\n")
}

// Process filters lines and decides whether to alert. The message is set
// whenever some line triggered, even if the alert was suppressed.
func (m *Matcher) Process(now time.Time, lines []string, allDocked bool) (string, Outcome) {
	forwarded := m.Filter(lines)
	if len(forwarded) == 0 {
		return "", Ignored
	}
	msg := m.Format(forwarded)
	if allDocked {
		return msg, Docked
	}
	if !m.throttle.Try(now, m.interval) {
		return msg, Throttled
	}
	return msg, Alerted
}
