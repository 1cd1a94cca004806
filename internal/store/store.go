// Package store persists per-origin theming overrides in SQLite. It is
// the durable counterpart to the [origins] section of the config file:
// overrides set through the CLI land here and are merged over the file's
// settings at load time.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite

	"github.com/bnema/umbra/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS origin_overrides (
	origin         TEXT PRIMARY KEY,
	enabled        INTEGER,
	strategy       TEXT NOT NULL DEFAULT '',
	brightness     INTEGER,
	contrast       INTEGER,
	sepia          INTEGER,
	grayscale      INTEGER,
	blue_shift     INTEGER,
	amoled         INTEGER,
	force_override INTEGER,
	updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// Store is a per-origin override repository backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the override database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces the override for origin. The origin is
// normalized before storage.
func (s *Store) Put(ctx context.Context, origin string, o config.OriginOverride) error {
	origin = config.NormalizeOrigin(origin)
	if origin == "" {
		return fmt.Errorf("origin cannot be empty")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO origin_overrides (
			origin, enabled, strategy, brightness, contrast,
			sepia, grayscale, blue_shift, amoled, force_override, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(origin) DO UPDATE SET
			enabled = excluded.enabled,
			strategy = excluded.strategy,
			brightness = excluded.brightness,
			contrast = excluded.contrast,
			sepia = excluded.sepia,
			grayscale = excluded.grayscale,
			blue_shift = excluded.blue_shift,
			amoled = excluded.amoled,
			force_override = excluded.force_override,
			updated_at = excluded.updated_at`,
		origin,
		nullBool(o.Enabled), o.Strategy,
		nullInt(o.Brightness), nullInt(o.Contrast),
		nullInt(o.Sepia), nullInt(o.Grayscale), nullInt(o.BlueShift),
		nullBool(o.AMOLED), nullBool(o.ForceOverride),
	)
	if err != nil {
		return fmt.Errorf("failed to save override for %s: %w", origin, err)
	}
	return nil
}

// Get returns the override for origin, ok=false when none is stored.
func (s *Store) Get(ctx context.Context, origin string) (config.OriginOverride, bool, error) {
	origin = config.NormalizeOrigin(origin)

	row := s.db.QueryRowContext(ctx, `
		SELECT enabled, strategy, brightness, contrast,
		       sepia, grayscale, blue_shift, amoled, force_override
		FROM origin_overrides WHERE origin = ?`, origin)

	o, err := scanOverride(row)
	if err == sql.ErrNoRows {
		return config.OriginOverride{}, false, nil
	}
	if err != nil {
		return config.OriginOverride{}, false, fmt.Errorf("failed to load override for %s: %w", origin, err)
	}
	return o, true, nil
}

// Delete removes the override for origin. Deleting a missing origin is
// not an error.
func (s *Store) Delete(ctx context.Context, origin string) error {
	origin = config.NormalizeOrigin(origin)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM origin_overrides WHERE origin = ?`, origin); err != nil {
		return fmt.Errorf("failed to delete override for %s: %w", origin, err)
	}
	return nil
}

// List returns all stored overrides keyed by origin.
func (s *Store) List(ctx context.Context) (map[string]config.OriginOverride, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT origin, enabled, strategy, brightness, contrast,
		       sepia, grayscale, blue_shift, amoled, force_override
		FROM origin_overrides ORDER BY origin`)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	overrides := make(map[string]config.OriginOverride)
	for rows.Next() {
		var origin string
		var enabled, amoled, force sql.NullBool
		var strategy string
		var brightness, contrast, sepia, grayscale, blueShift sql.NullInt64

		if err := rows.Scan(&origin, &enabled, &strategy, &brightness, &contrast,
			&sepia, &grayscale, &blueShift, &amoled, &force); err != nil {
			return nil, fmt.Errorf("failed to scan override row: %w", err)
		}
		overrides[origin] = buildOverride(enabled, strategy, brightness, contrast,
			sepia, grayscale, blueShift, amoled, force)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overrides: %w", err)
	}
	return overrides, nil
}

// MergeInto overlays all stored overrides onto the settings' Origins map.
// File-configured overrides win over stored ones for the same origin.
func (s *Store) MergeInto(ctx context.Context, settings *config.Settings) error {
	stored, err := s.List(ctx)
	if err != nil {
		return err
	}
	if settings.Origins == nil {
		settings.Origins = make(map[string]config.OriginOverride, len(stored))
	}
	for origin, o := range stored {
		if _, exists := settings.Origins[origin]; !exists {
			settings.Origins[origin] = o
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOverride(row rowScanner) (config.OriginOverride, error) {
	var enabled, amoled, force sql.NullBool
	var strategy string
	var brightness, contrast, sepia, grayscale, blueShift sql.NullInt64

	if err := row.Scan(&enabled, &strategy, &brightness, &contrast,
		&sepia, &grayscale, &blueShift, &amoled, &force); err != nil {
		return config.OriginOverride{}, err
	}
	return buildOverride(enabled, strategy, brightness, contrast,
		sepia, grayscale, blueShift, amoled, force), nil
}

func buildOverride(enabled sql.NullBool, strategy string,
	brightness, contrast, sepia, grayscale, blueShift sql.NullInt64,
	amoled, force sql.NullBool) config.OriginOverride {

	return config.OriginOverride{
		Enabled:       boolPtr(enabled),
		Strategy:      strategy,
		Brightness:    intPtr(brightness),
		Contrast:      intPtr(contrast),
		Sepia:         intPtr(sepia),
		Grayscale:     intPtr(grayscale),
		BlueShift:     intPtr(blueShift),
		AMOLED:        boolPtr(amoled),
		ForceOverride: boolPtr(force),
	}
}

func nullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func boolPtr(n sql.NullBool) *bool {
	if !n.Valid {
		return nil
	}
	v := n.Bool
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
