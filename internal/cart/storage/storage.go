// Package storage defines the durable local slot contract for cart state.
package storage

import (
	"context"
	"time"

	"github.com/panelkit/dealerpanel/internal/cart"
)

// EnvelopeVersion is written into every persisted slot so a future
// layout change can migrate old payloads in place.
const EnvelopeVersion = 0

// Slot is the durable cart state for one user namespace.
//
// Slot data is a mirror of in-memory state: a failed write must never
// be treated as fatal by callers, and a missing slot is simply the
// empty cart.
type Slot struct {
	Items        []cart.Item
	UserID       string
	LastSyncedAt *time.Time
}

// SlotStore persists per-user cart slots. The slot for a user survives
// logout; only explicit writes change it.
type SlotStore interface {
	// LoadSlot returns the slot for userID. A missing slot is
	// (zero, false, nil). Absence is the empty state, not an error.
	LoadSlot(ctx context.Context, userID string) (Slot, bool, error)

	// SaveSlot replaces the slot for userID.
	SaveSlot(ctx context.Context, userID string, slot Slot) error

	Close() error
}

// SlotKey returns the storage namespace for a username, falling back to
// the shared guest namespace when no user is known.
func SlotKey(username string) string {
	if username == "" {
		username = "guest"
	}
	return "cart-storage-" + username
}
