// Package tail follows growing log files and reassembles complete lines.
//
// A Tailer starts at the end of its file and never seeks backward. Each call
// to OnAppend reads whatever the producer has written since the last call,
// decodes it, and returns only whole lines; the trailing fragment stays
// pending until its terminator arrives.
package tail

import (
	"io"
	"os"
	"strings"

	"github.com/ben0x539/eve-log-alert/internal/errors"
)

const readChunk = 32 * 1024

// Tailer reads lines appended to a single file. It is not safe for
// concurrent use; the event loop owns it.
type Tailer struct {
	path    string
	mode    Mode
	file    *os.File
	offset  int64
	dec     *decoder
	pending string
	buf     []byte
}

// Open opens path positioned at end-of-file.
func Open(path string, mode Mode) (*Tailer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewLogFileError("failed to open log", err).WithPath(path)
	}
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		_ = f.Close()
		return nil, errors.NewLogFileError("failed to seek to end of log", err).WithPath(path)
	}
	return &Tailer{
		path:   path,
		mode:   mode,
		file:   f,
		offset: offset,
		dec:    newDecoder(mode),
		buf:    make([]byte, readChunk),
	}, nil
}

// Path returns the tailed file path.
func (t *Tailer) Path() string { return t.path }

// Mode returns the decode mode.
func (t *Tailer) Mode() Mode { return t.mode }

// Offset returns the number of bytes consumed so far.
func (t *Tailer) Offset() int64 { return t.offset }

// Pending returns the incomplete trailing line held back so far.
func (t *Tailer) Pending() string { return t.pending }

// OnAppend reads all newly available bytes and returns the complete lines
// they finish, without terminators. A file that shrank below the read
// position returns errors.ErrRotated.
func (t *Tailer) OnAppend() ([]string, error) {
	if t.file == nil {
		return nil, errors.ErrTailerClosed
	}

	info, err := t.file.Stat()
	if err != nil {
		return nil, errors.NewLogFileError("failed to stat log", err).WithPath(t.path)
	}
	if info.Size() < t.offset {
		return nil, errors.NewLogFileError("log truncated", errors.ErrRotated).
			WithPath(t.path).WithSeverity(errors.SeverityWarning)
	}

	var text strings.Builder
	for {
		n, err := t.file.Read(t.buf)
		if n > 0 {
			t.offset += int64(n)
			text.WriteString(t.dec.decode(t.buf[:n]))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewLogFileError("failed to read log", err).WithPath(t.path)
		}
		if n == 0 {
			break
		}
	}

	return t.split(text.String()), nil
}

// OnRotate drains the file one last time, then returns the remaining lines
// including an unterminated final fragment, and closes the file. The
// caller resolves and opens the successor.
func (t *Tailer) OnRotate() ([]string, error) {
	if t.file == nil {
		return nil, errors.ErrTailerClosed
	}

	lines, err := t.OnAppend()
	if err != nil && !errors.Is(err, errors.ErrRotated) {
		_ = t.Close()
		return nil, err
	}

	last := t.pending + t.dec.flush()
	t.pending = ""
	if last != "" {
		lines = append(lines, strings.TrimSuffix(last, "\r"))
	}
	return lines, t.Close()
}

// Close releases the file handle. It is safe to call more than once.
func (t *Tailer) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

// split appends text to the pending buffer and cuts off complete lines.
func (t *Tailer) split(text string) []string {
	if text == "" {
		return nil
	}
	t.pending += text

	idx := strings.LastIndexByte(t.pending, '\n')
	if idx < 0 {
		return nil
	}
	complete := t.pending[:idx]
	t.pending = t.pending[idx+1:]

	lines := strings.Split(complete, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
