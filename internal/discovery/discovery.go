// Package discovery finds the log file to tail for a stream.
//
// The game client starts a new log file for every session and every chat
// channel join, so the file to tail is the most recently modified one that
// matches a set of predicates. All lookups go through an afero.Fs so they
// can be exercised against an in-memory filesystem.
package discovery

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/ben0x539/eve-log-alert/internal/errors"
	"github.com/ben0x539/eve-log-alert/internal/tail"
)

// Candidate is a regular file considered by Latest.
type Candidate struct {
	Path string
	Info os.FileInfo
}

// Predicate decides whether a candidate file qualifies.
type Predicate func(c Candidate) bool

// listenerLine is the 1-based header line naming the character that wrote a game log.
const listenerLine = 3

// headerLimit bounds how much of a file ListenerIs reads.
const headerLimit = 4096

// Latest returns the most recently modified regular file in dir accepted
// by pred. Files with equal modification times are ordered by name.
func Latest(fs afero.Fs, dir string, pred Predicate) (string, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return "", errors.NewLogFileError("failed to list log directory", err).
			WithPath(dir).
			WithRetryable(true)
	}

	var best Candidate
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		c := Candidate{Path: filepath.Join(dir, info.Name()), Info: info}
		if pred != nil && !pred(c) {
			continue
		}
		if best.Info == nil || newer(c.Info, best.Info) {
			best = c
		}
	}

	if best.Info == nil {
		return "", errors.NewLogFileError("no matching log file", errors.ErrLogNotFound).
			WithPath(dir).
			WithRetryable(true)
	}
	return best.Path, nil
}

func newer(a, b os.FileInfo) bool {
	if !a.ModTime().Equal(b.ModTime()) {
		return a.ModTime().After(b.ModTime())
	}
	return a.Name() > b.Name()
}

// All accepts a candidate only if every predicate does. Predicates are
// evaluated in order and stop at the first rejection, so cheap checks
// should come before ones that read the file.
func All(preds ...Predicate) Predicate {
	return func(c Candidate) bool {
		for _, p := range preds {
			if !p(c) {
				return false
			}
		}
		return true
	}
}

// ModifiedWithin accepts files modified less than d before now.
func ModifiedWithin(now time.Time, d time.Duration) Predicate {
	return func(c Candidate) bool {
		return now.Sub(c.Info.ModTime()) < d
	}
}

// NamePrefix accepts files whose base name starts with prefix.
func NamePrefix(prefix string) Predicate {
	return func(c Candidate) bool {
		return strings.HasPrefix(c.Info.Name(), prefix)
	}
}

// NameSuffix accepts files whose base name ends with suffix.
func NameSuffix(suffix string) Predicate {
	return func(c Candidate) bool {
		return strings.HasSuffix(c.Info.Name(), suffix)
	}
}

// ListenerIs accepts game logs whose third header line names the character.
// Unreadable files are rejected.
func ListenerIs(fs afero.Fs, name string, mode tail.Mode) Predicate {
	needle := "Listener: " + name
	return func(c Candidate) bool {
		line, err := headerLine(fs, c.Path, mode, listenerLine)
		if err != nil {
			return false
		}
		return strings.Contains(line, needle)
	}
}

// ListenerOf returns the character named on the third header line of a
// game log. A header that is not fully written yet yields io.ErrUnexpectedEOF.
func ListenerOf(fs afero.Fs, path string, mode tail.Mode) (string, error) {
	line, err := headerLine(fs, path, mode, listenerLine)
	if err != nil {
		return "", err
	}
	_, name, ok := strings.Cut(line, "Listener:")
	if !ok {
		return "", errors.NewLogFileError("header names no listener", errors.ErrLogNotFound).WithPath(path)
	}
	return strings.TrimSpace(name), nil
}

// headerLine returns the n-th line of the file, decoded in mode. The line
// must be terminated; a partially written header is not trusted.
func headerLine(fs afero.Fs, path string, mode tail.Mode, n int) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	head, err := io.ReadAll(io.LimitReader(f, headerLimit))
	if err != nil {
		return "", err
	}

	lines := strings.Split(tail.Decode(mode, head), "\n")
	if len(lines) <= n {
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(lines[n-1], "\r"), nil
}

// GameLog returns the newest game log written for character.
func GameLog(fs afero.Fs, dir, character string, mode tail.Mode, now time.Time, maxAge time.Duration) (string, error) {
	path, err := Latest(fs, dir, All(
		NameSuffix(".txt"),
		ModifiedWithin(now, maxAge),
		ListenerIs(fs, character, mode),
	))
	if err != nil {
		var lfe *errors.LogFileError
		if errors.As(err, &lfe) {
			lfe.WithStream("game").WithCharacter(character)
		}
		return "", err
	}
	return path, nil
}

// IntelLog returns the newest log of the chat channel named channel.
func IntelLog(fs afero.Fs, dir, channel string, now time.Time, maxAge time.Duration) (string, error) {
	path, err := Latest(fs, dir, All(
		NamePrefix(channel),
		NameSuffix(".txt"),
		ModifiedWithin(now, maxAge),
	))
	if err != nil {
		var lfe *errors.LogFileError
		if errors.As(err, &lfe) {
			lfe.WithStream("intel")
		}
		return "", err
	}
	return path, nil
}
