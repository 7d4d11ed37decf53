package combat

import (
	"regexp"
	"strings"
)

// Line classification patterns. All are applied to the body of a game log
// line, after the timestamp prefix and channel tag are gone and, for combat
// lines, after markup is stripped.
var (
	// dockPattern matches the station's answer to a docking request.
	dockPattern = regexp.MustCompile(`(?i)docking request (has been )?accepted`)

	// undockPattern matches the undock session change.
	undockPattern = regexp.MustCompile(`(?i)undocking from`)

	// incomingHit: "57 from Guristas Eliminator - Hits".
	// Groups: "amount" damage taken, "who" attacker.
	incomingHit = regexp.MustCompile(`^(?P<amount>\d+) from (?P<who>.*?) -`)

	// incomingMiss: "Guristas Eliminator misses you completely".
	// Groups: "who" attacker.
	incomingMiss = regexp.MustCompile(`^(?P<who>.*?) misses you completely`)

	// outgoingHit: "312 to Guristas Eliminator - Wrecks".
	// Groups: "amount" damage dealt, "who" target.
	outgoingHit = regexp.MustCompile(`^(?P<amount>\d+) to (?P<who>.*?) -`)

	// outgoingMiss: "Your Hobgoblin II misses Guristas Eliminator completely".
	// Groups: "what" own weapon or drone, "who" target.
	outgoingMiss = regexp.MustCompile(`^Your (?P<what>.*?) misses (?P<who>.*?) completely`)

	// tacklePattern matches warp scrambling and disruption aimed at the
	// listener, and any line reporting the listener as tackled.
	// Groups: "who" tackler, empty for the generic form.
	tacklePattern = regexp.MustCompile(`(?i)^warp (?:scramble|disruption) attempt from (?P<who>.*?) to you|\btackled\b`)
)

// playerTagChars are characters that show up in the overview labels of
// player ships (corporation tickers, ship type in parentheses) and not in
// NPC names.
const playerTagChars = "[]-&;()"

// looksLikePlayer is a best-effort guess; plain-named players are missed.
func looksLikePlayer(who string) bool {
	return strings.ContainsAny(who, playerTagChars)
}

func group(re *regexp.Regexp, m []string, name string) string {
	if i := re.SubexpIndex(name); i >= 0 && i < len(m) {
		return m[i]
	}
	return ""
}
