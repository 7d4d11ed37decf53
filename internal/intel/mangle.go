package intel

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// glyphClasses pairs characters that operators and screen readers confuse.
var glyphClasses = map[rune]string{
	'I': "[I1]", '1': "[I1]",
	'O': "[O0]", '0': "[O0]",
	'S': "[S5]", '5': "[S5]",
	'G': "[G6]", '6': "[G6]",
}

const (
	// longPrefix is the shortest part before a hyphen kept on its own.
	longPrefix = 4
	// shortSuffix is how much of the part after a short prefix's hyphen is kept.
	shortSuffix = 2
	// plainWidth is the kept length of a name without hyphen.
	plainWidth = 4
)

// Truncate shortens a canonical name to the part operators reliably type.
//
//	J1G2-345 -> J1G2   (long prefix: cut at the hyphen)
//	UQ-PWD   -> UQ-PW  (short prefix: keep a little of the suffix)
//	Amarr    -> Amar   (no hyphen: first four characters)
func Truncate(name string) string {
	if i := strings.IndexByte(name, '-'); i >= 0 {
		if utf8.RuneCountInString(name[:i]) >= longPrefix {
			return name[:i]
		}
		if i > 0 {
			return takeRunes(name, utf8.RuneCountInString(name[:i])+1+shortSuffix)
		}
	}
	return takeRunes(name, plainWidth)
}

// Mangle returns a regexp fragment matching the truncated name with
// ambiguous glyphs widened to both alternatives.
func Mangle(name string) string {
	var sb strings.Builder
	for _, r := range Truncate(name) {
		if class, ok := glyphClasses[toUpper(r)]; ok {
			sb.WriteString(class)
			continue
		}
		sb.WriteString(regexp.QuoteMeta(string(r)))
	}
	return sb.String()
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

func takeRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
