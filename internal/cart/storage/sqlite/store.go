package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/panelkit/dealerpanel/internal/cart"
	cartstorage "github.com/panelkit/dealerpanel/internal/cart/storage"
	"github.com/panelkit/dealerpanel/internal/cart/storage/sqlite/migrations"
	sqlitemigrate "github.com/panelkit/dealerpanel/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for per-user cart slots.
type Store struct {
	sqlDB *sql.DB
}

// slotEnvelope is the persisted JSON layout. It mirrors the browser
// panel's localStorage envelope so payloads stay interchangeable.
type slotEnvelope struct {
	State   slotState `json:"state"`
	Version int       `json:"version"`
}

type slotState struct {
	Items        []cart.Item `json:"items"`
	UserID       string      `json:"userId"`
	LastSyncedAt *time.Time  `json:"lastSyncedAt"`
}

// Open opens and migrates a cart slot store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadSlot loads the cart slot for a user namespace.
func (s *Store) LoadSlot(ctx context.Context, userID string) (cartstorage.Slot, bool, error) {
	if s == nil || s.sqlDB == nil {
		return cartstorage.Slot{}, false, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT payload_json FROM cart_slots WHERE slot_key = ?`,
		cartstorage.SlotKey(userID),
	)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return cartstorage.Slot{}, false, nil
		}
		return cartstorage.Slot{}, false, fmt.Errorf("load cart slot: %w", err)
	}

	var envelope slotEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return cartstorage.Slot{}, false, fmt.Errorf("decode cart slot: %w", err)
	}

	slot := cartstorage.Slot{
		Items:        envelope.State.Items,
		UserID:       envelope.State.UserID,
		LastSyncedAt: envelope.State.LastSyncedAt,
	}
	if slot.Items == nil {
		slot.Items = []cart.Item{}
	}
	return slot, true, nil
}

// SaveSlot upserts the cart slot for a user namespace.
func (s *Store) SaveSlot(ctx context.Context, userID string, slot cartstorage.Slot) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	if slot.Items == nil {
		slot.Items = []cart.Item{}
	}
	payload, err := json.Marshal(slotEnvelope{
		State: slotState{
			Items:        slot.Items,
			UserID:       slot.UserID,
			LastSyncedAt: slot.LastSyncedAt,
		},
		Version: cartstorage.EnvelopeVersion,
	})
	if err != nil {
		return fmt.Errorf("encode cart slot: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO cart_slots (slot_key, payload_json, version, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(slot_key) DO UPDATE SET
		    payload_json = excluded.payload_json,
		    version = excluded.version,
		    updated_at = excluded.updated_at`,
		cartstorage.SlotKey(userID),
		payload,
		cartstorage.EnvelopeVersion,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save cart slot: %w", err)
	}
	return nil
}
