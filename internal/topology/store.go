// Package topology stores the jump graph between star systems and answers
// "which systems are within N jumps of X" for watch specifications.
//
// The graph lives in a SQLite database so that a large map export only has
// to be imported once. Jumps are undirected; Import stores both directions.
package topology

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ben0x539/eve-log-alert/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS systems (
	name TEXT PRIMARY KEY COLLATE NOCASE
);
CREATE TABLE IF NOT EXISTS jumps (
	from_name TEXT NOT NULL COLLATE NOCASE REFERENCES systems(name),
	to_name   TEXT NOT NULL COLLATE NOCASE REFERENCES systems(name),
	PRIMARY KEY (from_name, to_name)
);
`

// Reachable is a system found by a radius lookup.
type Reachable struct {
	Name     string
	Distance int
}

// Stats summarizes an import.
type Stats struct {
	Systems int
	Jumps   int
}

// Store is a jump graph backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewTopologyError("failed to open database", err).WithDatabase(path)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.NewTopologyError("failed to open database", err).WithDatabase(path)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, errors.NewTopologyError("failed to set busy_timeout", err).WithDatabase(path)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.NewTopologyError("failed to create schema", err).WithDatabase(path)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Import adds every system and jump of g. Existing rows are kept, so
// importing the same graph twice is harmless.
func (s *Store) Import(ctx context.Context, g Graph) (Stats, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, errors.NewTopologyError("failed to begin import", err).WithDatabase(s.path)
	}
	defer func() { _ = tx.Rollback() }()

	var stats Stats
	addSystem := func(name string) error {
		res, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO systems(name) VALUES (?)", name)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		stats.Systems += int(n)
		return nil
	}
	addJump := func(from, to string) error {
		res, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO jumps(from_name, to_name) VALUES (?, ?)", from, to)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		stats.Jumps += int(n)
		return nil
	}

	for _, name := range g.Names() {
		if err := addSystem(name); err != nil {
			return Stats{}, errors.NewTopologyError("failed to import system", err).WithSystem(name).WithDatabase(s.path)
		}
		for _, to := range g.Systems[name] {
			if err := addSystem(to); err != nil {
				return Stats{}, errors.NewTopologyError("failed to import system", err).WithSystem(to).WithDatabase(s.path)
			}
			if err := addJump(name, to); err != nil {
				return Stats{}, errors.NewTopologyError("failed to import jump", err).WithSystem(name).WithDatabase(s.path)
			}
			if err := addJump(to, name); err != nil {
				return Stats{}, errors.NewTopologyError("failed to import jump", err).WithSystem(to).WithDatabase(s.path)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, errors.NewTopologyError("failed to commit import", err).WithDatabase(s.path)
	}
	return stats, nil
}

// canonical returns the stored spelling of name.
func (s *Store) canonical(ctx context.Context, name string) (string, error) {
	var stored string
	err := s.db.QueryRowContext(ctx, "SELECT name FROM systems WHERE name = ?", name).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.NewTopologyError("unknown system", errors.ErrSystemNotFound).
			WithSystem(name).
			WithDatabase(s.path)
	}
	if err != nil {
		return "", errors.NewTopologyError("failed to look up system", err).WithSystem(name).WithDatabase(s.path)
	}
	return stored, nil
}

func (s *Store) neighbors(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT to_name FROM jumps WHERE from_name = ? ORDER BY to_name", name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var to string
		if err := rows.Scan(&to); err != nil {
			return nil, err
		}
		out = append(out, to)
	}
	return out, rows.Err()
}

// Within returns every system at most radius jumps from name, including
// name itself at distance 0, ordered by distance and then name.
func (s *Store) Within(ctx context.Context, name string, radius int) ([]Reachable, error) {
	if radius < 0 {
		return nil, errors.NewTopologyError(fmt.Sprintf("negative radius %d", radius), nil).WithSystem(name)
	}
	origin, err := s.canonical(ctx, name)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{strings.ToLower(origin): true}
	result := []Reachable{{Name: origin, Distance: 0}}
	frontier := []string{origin}

	for dist := 1; dist <= radius && len(frontier) > 0; dist++ {
		var next []string
		for _, from := range frontier {
			tos, err := s.neighbors(ctx, from)
			if err != nil {
				return nil, errors.NewTopologyError("failed to walk jumps", err).WithSystem(from).WithDatabase(s.path)
			}
			for _, to := range tos {
				key := strings.ToLower(to)
				if seen[key] {
					continue
				}
				seen[key] = true
				result = append(result, Reachable{Name: to, Distance: dist})
				next = append(next, to)
			}
		}
		frontier = next
	}

	slices.SortFunc(result, func(a, b Reachable) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}
