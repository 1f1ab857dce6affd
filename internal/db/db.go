package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/swelljoe/clima/internal/weather"
)

const maxSearchResults = 5

// DB wraps the sqlite gazetteer connection
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the gazetteer at path
func NewDB(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS places (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			name      TEXT NOT NULL,
			state     TEXT NOT NULL DEFAULT '',
			country   TEXT NOT NULL DEFAULT '',
			zip       TEXT NOT NULL DEFAULT '',
			latitude  REAL NOT NULL,
			longitude REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_places_name ON places (name COLLATE NOCASE);
	`)
	return err
}

// SearchPlaces finds places whose name starts with the query. A query of the
// form "Springfield, IL" also filters on state or country.
func (d *DB) SearchPlaces(ctx context.Context, query string) ([]weather.Place, error) {
	if d == nil || d.DB == nil {
		return nil, errors.New("database not initialized")
	}

	name, region, _ := strings.Cut(query, ",")
	name = strings.TrimSpace(sanitizeLikeTerm(name))
	region = strings.TrimSpace(sanitizeLikeTerm(region))
	if name == "" {
		return nil, nil
	}

	q := `SELECT name, state, country, latitude, longitude FROM places
		WHERE name LIKE ? ESCAPE '\'`
	args := []any{name + "%"}
	if region != "" {
		q += ` AND (state = ? COLLATE NOCASE OR country = ? COLLATE NOCASE)`
		args = append(args, region, region)
	}
	q += ` ORDER BY length(name), name LIMIT ?`
	args = append(args, maxSearchResults)

	rows, err := d.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search places %q: %w", query, err)
	}
	defer rows.Close()

	var places []weather.Place
	for rows.Next() {
		var p weather.Place
		if err := rows.Scan(&p.Name, &p.State, &p.Country, &p.Lat, &p.Lon); err != nil {
			return nil, fmt.Errorf("search places %q: %w", query, err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// Entry is one gazetteer row
type Entry struct {
	weather.Place
	Zip string
}

// Import inserts entries in a single transaction and returns how many were written
func (d *DB) Import(ctx context.Context, entries iter.Seq[Entry]) (int, error) {
	if d == nil || d.DB == nil {
		return 0, errors.New("database not initialized")
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO places (name, state, country, zip, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Name, e.State, e.Country, e.Zip, e.Lat, e.Lon); err != nil {
			return count, fmt.Errorf("insert %q: %w", e.Name, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// sanitizeLikeTerm strips LIKE wildcards and query syntax characters
func sanitizeLikeTerm(term string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '%', '_', '\\', '"', '(', ')', '^', '*':
			return -1
		}
		return r
	}, term)
}
