package tail

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/ben0x539/eve-log-alert/internal/errors"
)

// Mode selects how raw log bytes are turned into text.
type Mode int

const (
	// ModeUTF8 is used for game logs.
	ModeUTF8 Mode = iota
	// ModeLatin1 is the single-byte Windows-1252 encoding.
	ModeLatin1
	// ModeUTF16LE is the two-byte little-endian encoding used for chat logs.
	ModeUTF16LE
)

// String returns the config name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeUTF8:
		return "utf8"
	case ModeLatin1:
		return "latin1"
	case ModeUTF16LE:
		return "utf16le"
	default:
		return "unknown"
	}
}

// ParseMode maps a config encoding name to a Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "utf8", "":
		return ModeUTF8, nil
	case "latin1", "windows1252", "cp1252":
		return ModeLatin1, nil
	case "utf16le", "utf16":
		return ModeUTF16LE, nil
	default:
		return 0, errors.Wrapf(errors.ErrUnknownEncoding, "%q", name)
	}
}

// decoder converts a stream of byte chunks to text. Bytes that may belong
// to a sequence completed by the next chunk are held back.
type decoder struct {
	mode  Mode
	carry []byte
	enc   encoding.Encoding
}

func newDecoder(mode Mode) *decoder {
	d := &decoder{mode: mode}
	switch mode {
	case ModeLatin1:
		d.enc = charmap.Windows1252
	case ModeUTF16LE:
		// BOMs stay in the text as U+FEFF; line parsers strip them.
		d.enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	}
	return d
}

// decode returns the text for chunk plus any carried bytes.
func (d *decoder) decode(chunk []byte) string {
	buf := append(d.carry, chunk...)
	d.carry = nil

	var complete []byte
	switch d.mode {
	case ModeLatin1:
		complete = buf
	case ModeUTF16LE:
		complete, d.carry = splitUTF16(buf)
	default:
		complete, d.carry = splitUTF8(buf)
	}
	if len(complete) == 0 {
		return ""
	}

	if d.enc == nil {
		return strings.ToValidUTF8(string(complete), "\uFFFD")
	}
	// x/text decoders substitute U+FFFD for malformed input instead of failing.
	out, err := d.enc.NewDecoder().Bytes(complete)
	if err != nil {
		return strings.ToValidUTF8(string(complete), "\uFFFD")
	}
	return string(out)
}

// flush returns whatever is still held back, replacing it if it never completed.
func (d *decoder) flush() string {
	if len(d.carry) == 0 {
		return ""
	}
	rest := d.carry
	d.carry = nil
	if d.mode != ModeUTF16LE {
		return strings.ToValidUTF8(string(rest), "\uFFFD")
	}

	var sb strings.Builder
	if even := rest[:len(rest)&^1]; len(even) > 0 {
		out, err := d.enc.NewDecoder().Bytes(even)
		if err != nil {
			out = []byte("\uFFFD")
		}
		sb.Write(out)
	}
	if len(rest)%2 == 1 {
		sb.WriteString("\uFFFD")
	}
	return sb.String()
}

// splitUTF8 holds back a trailing rune prefix that is still missing bytes.
func splitUTF8(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax+1; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if !utf8.FullRune(b[i:]) {
			return b[:i], append([]byte(nil), b[i:]...)
		}
		break
	}
	return b, nil
}

// splitUTF16 holds back an odd trailing byte and a trailing high surrogate.
func splitUTF16(b []byte) (complete, rest []byte) {
	n := len(b) &^ 1
	if n >= 2 {
		unit := uint16(b[n-2]) | uint16(b[n-1])<<8
		if unit >= 0xD800 && unit <= 0xDBFF {
			n -= 2
		}
	}
	return b[:n], append([]byte(nil), b[n:]...)
}

// Decode converts a complete buffer, such as a file header, to text.
func Decode(mode Mode, b []byte) string {
	d := newDecoder(mode)
	return d.decode(b) + d.flush()
}
