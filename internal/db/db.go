package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Connection settings applied on open. WAL keeps redirect-path reads from
// stalling behind the click recorder's writes; foreign_keys is required for
// the click-event cascade on link delete; the busy timeout covers the brief
// writer contention between the recorder and the retention sweep.
var pragmas = [...][2]string{
	{"journal_mode", "WAL"},
	{"busy_timeout", "5000"},
	{"synchronous", "NORMAL"},
	{"foreign_keys", "ON"},
	{"cache_size", "-20000"},
}

// Open opens (or creates) the SQLite database at path, applies the
// connection settings, and brings the schema up to date. The handle is
// capped at a single connection: SQLite serializes writers anyway, and one
// connection guarantees every statement sees the pragmas set here.
func Open(path string) (*sql.DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	d.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := d.Exec("PRAGMA " + p[0] + "=" + p[1]); err != nil {
			d.Close()
			return nil, fmt.Errorf("pragma %s: %w", p[0], err)
		}
	}

	if err := Migrate(d); err != nil {
		d.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}
