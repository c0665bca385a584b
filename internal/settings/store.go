// Package settings persists WiFi credentials and clock preferences in a
// small sqlite database so they survive restarts and power loss.
package settings

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/sweeney/wifi-clock/internal/logic"
)

const (
	nsWiFi  = "wifi"
	nsClock = "clock"
)

// Store is the on-disk configuration store. Values are namespaced
// string pairs; typed accessors below own the encoding.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS config (
			ns    TEXT NOT NULL,
			key   TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (ns, key)
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create config table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(ns, key string) (string, bool) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM config WHERE ns = ? AND key = ?`, ns, key,
	).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *Store) set(ns, key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config(ns, key, value) VALUES(?, ?, ?)
		ON CONFLICT(ns, key) DO UPDATE SET value = excluded.value
	`, ns, key, value)
	if err != nil {
		return fmt.Errorf("set %s.%s: %w", ns, key, err)
	}
	return nil
}

// Credentials returns the saved WiFi credentials, if any.
func (s *Store) Credentials() (ssid, password string, ok bool) {
	ssid, ok = s.get(nsWiFi, "ssid")
	if !ok || ssid == "" {
		return "", "", false
	}
	password, _ = s.get(nsWiFi, "password")
	return ssid, password, true
}

// SaveCredentials replaces the saved WiFi credentials.
func (s *Store) SaveCredentials(ssid, password string) error {
	if err := s.set(nsWiFi, "ssid", ssid); err != nil {
		return err
	}
	return s.set(nsWiFi, "password", password)
}

// LoadClock returns the persisted clock preferences, falling back to the
// defaults for anything missing or unreadable.
func (s *Store) LoadClock() logic.Settings {
	out := logic.DefaultSettings()
	if v, ok := s.get(nsClock, "brightness"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= logic.BrightnessMin && n <= logic.BrightnessMax {
			out.Brightness = n
		}
	}
	if v, ok := s.get(nsClock, "hour24"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			out.Hour24 = b
		}
	}
	if v, ok := s.get(nsClock, "utc_offset_sec"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			out.UTCOffsetSec = int32(n)
			out.HasZone = true
		}
	}
	if v, ok := s.get(nsClock, "dst_offset_sec"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			out.DSTOffsetSec = int32(n)
		}
	}
	return out
}

// SaveSettings persists the clock preferences. The zone offsets are only
// written once a zone has been inferred, so a restart before inference
// still falls back to defaults.
func (s *Store) SaveSettings(cfg logic.Settings) error {
	if err := s.set(nsClock, "brightness", strconv.Itoa(cfg.Brightness)); err != nil {
		return err
	}
	if err := s.set(nsClock, "hour24", strconv.FormatBool(cfg.Hour24)); err != nil {
		return err
	}
	if !cfg.HasZone {
		return nil
	}
	if err := s.set(nsClock, "utc_offset_sec", strconv.Itoa(int(cfg.UTCOffsetSec))); err != nil {
		return err
	}
	return s.set(nsClock, "dst_offset_sec", strconv.Itoa(int(cfg.DSTOffsetSec)))
}

// EraseAll removes every stored value. Used by factory reset.
func (s *Store) EraseAll() error {
	if _, err := s.db.Exec(`DELETE FROM config`); err != nil {
		return fmt.Errorf("erase config: %w", err)
	}
	return nil
}
