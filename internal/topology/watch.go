package topology

import (
	"context"
	"strconv"
	"strings"

	"github.com/ben0x539/eve-log-alert/internal/errors"
)

// WatchSpec is a parsed watch argument: a bare name, or a name plus a jump radius.
type WatchSpec struct {
	Name      string
	Radius    int
	HasRadius bool
}

func (w WatchSpec) String() string {
	if !w.HasRadius {
		return w.Name
	}
	return w.Name + "+" + strconv.Itoa(w.Radius)
}

// ParseSpec parses "NAME" or "NAME+N".
func ParseSpec(s string) (WatchSpec, error) {
	s = strings.TrimSpace(s)
	name, radius, found := strings.Cut(s, "+")
	if name == "" {
		return WatchSpec{}, errors.NewConfigError("watch name is empty", errors.ErrInvalidWatchSpec).
			WithField("watch").
			WithValue(s)
	}
	if !found {
		return WatchSpec{Name: name}, nil
	}
	n, err := strconv.Atoi(radius)
	if err != nil || n < 0 {
		return WatchSpec{}, errors.NewConfigError("jump radius must be a non-negative integer", errors.ErrInvalidWatchSpec).
			WithField("watch").
			WithValue(s)
	}
	return WatchSpec{Name: name, Radius: n, HasRadius: true}, nil
}

// Lookup answers radius queries. *Store implements it.
type Lookup interface {
	Within(ctx context.Context, name string, radius int) ([]Reachable, error)
}

// Resolve expands watch arguments to the list of names to watch, in
// argument order without duplicates. Radius specs need lookup; a nil
// lookup fails them with ErrTopologyUnavailable.
func Resolve(ctx context.Context, args []string, lookup Lookup) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			names = append(names, name)
		}
	}

	for _, arg := range args {
		spec, err := ParseSpec(arg)
		if err != nil {
			return nil, err
		}
		if !spec.HasRadius {
			add(spec.Name)
			continue
		}
		if lookup == nil {
			return nil, errors.NewTopologyError("distance watch needs a topology database", errors.ErrTopologyUnavailable).
				WithSystem(spec.Name)
		}
		reach, err := lookup.Within(ctx, spec.Name, spec.Radius)
		if err != nil {
			return nil, err
		}
		for _, r := range reach {
			add(r.Name)
		}
	}

	if len(names) == 0 {
		return nil, errors.NewConfigError("nothing to watch", errors.ErrNoWatchNames).WithField("watch")
	}
	return names, nil
}
