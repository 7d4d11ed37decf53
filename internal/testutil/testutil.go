// Package testutil provides log file fixtures for eve-log-alert tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// Stamp formats t the way the game client prefixes log lines.
func Stamp(t time.Time) string {
	return t.UTC().Format("[ 2006.01.02 15:04:05 ]")
}

// ChatLine renders a chat log line: "[ stamp ] speaker > body".
func ChatLine(at time.Time, speaker, body string) string {
	return fmt.Sprintf("%s %s > %s", Stamp(at), speaker, body)
}

// GameLine renders a game log line: "[ stamp ] (channel) body".
func GameLine(at time.Time, channel, body string) string {
	return fmt.Sprintf("%s (%s) %s", Stamp(at), channel, body)
}

// GameLogHeader returns the header the client writes at the top of a game log.
// The listener name appears on the third line.
func GameLogHeader(listener string) string {
	return "------------------------------------------------------------\r\n" +
		"  Gamelog\r\n" +
		fmt.Sprintf("  Listener: %s\r\n", listener) +
		"  Session Started: 2013.04.15 14:00:00\r\n" +
		"------------------------------------------------------------\r\n"
}

// ChatLogHeader returns the header of a chat channel log.
func ChatLogHeader(channel, listener string) string {
	return "\ufeff\r\n\r\n" +
		"---------------------------------------------------------------\r\n" +
		fmt.Sprintf("  Channel Name:    %s\r\n", channel) +
		fmt.Sprintf("  Listener:        %s\r\n", listener) +
		"---------------------------------------------------------------\r\n"
}

// EncodeUTF16LE encodes s as little-endian UTF-16 without a byte order mark.
func EncodeUTF16LE(t *testing.T, s string) []byte {
	t.Helper()

	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("failed to encode UTF-16LE: %v", err)
	}
	return b
}

// WriteFile creates path (and its parents) with data.
func WriteFile(t *testing.T, path string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// AppendFile appends data to an existing file.
func AppendFile(t *testing.T, path string, data []byte) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("failed to open %s for append: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(data); err != nil {
		t.Fatalf("failed to append to %s: %v", path, err)
	}
}

// AppendLines appends CRLF-terminated lines, UTF-16LE encoded when utf16 is set.
func AppendLines(t *testing.T, path string, utf16 bool, lines ...string) {
	t.Helper()

	var text string
	for _, line := range lines {
		text += line + "\r\n"
	}
	data := []byte(text)
	if utf16 {
		data = EncodeUTF16LE(t, text)
	}
	AppendFile(t, path, data)
}
