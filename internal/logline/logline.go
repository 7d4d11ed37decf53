// Package logline parses the fixed line formats written by the game client.
//
// Every line starts with a timestamp prefix "[ YYYY.MM.DD HH:MM:SS ] " of
// StampWidth bytes. Chat logs follow it with "speaker > body", game logs
// with "(channel) body". Chat logs are UTF-16 and may carry a byte order
// mark in front of the first line.
package logline

import (
	"regexp"
	"strings"
	"time"
)

// StampWidth is the byte width of the timestamp prefix including its trailing space.
const StampWidth = 24

// StampLayout is the time layout inside the prefix brackets.
const StampLayout = "2006.01.02 15:04:05"

const bom = "\ufeff"

// stampPattern captures the timestamp (group "stamp") of a prefixed line.
var stampPattern = regexp.MustCompile(`^\[ (?P<stamp>\d{4}\.\d\d\.\d\d \d\d:\d\d:\d\d) \] `)

// gamePattern splits the text after the prefix into the channel tag
// (group "channel", e.g. combat, notify, None) and the rest (group "body").
var gamePattern = regexp.MustCompile(`^\((?P<channel>[^)]+)\) (?P<body>.*)$`)

// markupPattern matches the inline font and color tags of combat lines.
var markupPattern = regexp.MustCompile(`<[^>]+>`)

// GameLine is a parsed game log line.
type GameLine struct {
	At      time.Time
	Channel string
	Body    string
}

// ChatLine is a parsed chat log line. Speaker is empty when the line has
// no "speaker >" delimiter.
type ChatLine struct {
	At      time.Time
	Speaker string
	Body    string
}

// StripBOM removes a leading byte order mark.
func StripBOM(line string) string {
	return strings.TrimPrefix(line, bom)
}

// StripStamp removes the byte order mark and the timestamp prefix. The
// second result is false when the line carries no prefix.
func StripStamp(line string) (string, time.Time, bool) {
	line = StripBOM(line)
	m := stampPattern.FindStringSubmatch(line)
	if m == nil {
		return line, time.Time{}, false
	}
	at, err := time.Parse(StampLayout, m[stampPattern.SubexpIndex("stamp")])
	if err != nil {
		return line, time.Time{}, false
	}
	return line[StampWidth:], at, true
}

// ParseGame parses a game log line.
func ParseGame(line string) (GameLine, bool) {
	rest, at, ok := StripStamp(line)
	if !ok {
		return GameLine{}, false
	}
	m := gamePattern.FindStringSubmatch(rest)
	if m == nil {
		return GameLine{}, false
	}
	return GameLine{
		At:      at,
		Channel: m[gamePattern.SubexpIndex("channel")],
		Body:    m[gamePattern.SubexpIndex("body")],
	}, true
}

// ParseChat parses a chat log line. Lines without a timestamp prefix are
// returned whole as the body.
func ParseChat(line string) ChatLine {
	rest, at, _ := StripStamp(line)
	speaker, body, found := strings.Cut(rest, ">")
	if !found {
		return ChatLine{At: at, Body: rest}
	}
	return ChatLine{
		At:      at,
		Speaker: strings.TrimSpace(speaker),
		Body:    strings.TrimLeft(body, " "),
	}
}

// StripMarkup removes inline markup tags.
func StripMarkup(s string) string {
	return markupPattern.ReplaceAllString(s, "")
}
