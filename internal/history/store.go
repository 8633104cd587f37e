// Package history records online/offline transitions of tracked devices in
// the shared SQLite store and serves them over the status API.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HerbHall/fleetpulse/internal/store"
)

// Transition is one recorded flip of a device's reconciled online state.
type Transition struct {
	ID            string    `json:"id" example:"8f14e45f-ceea-4672-a1b5-0f9f40c44bd1"`
	DeviceID      string    `json:"device_id"`
	ContactID     string    `json:"contact_id,omitempty"` // empty for own devices
	DeviceName    string    `json:"device_name,omitempty"`
	WasOnline     bool      `json:"was_online"`
	IsOnline      bool      `json:"is_online"`
	MQTTConnected bool      `json:"mqtt_connected"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Store persists and queries status transitions.
type Store struct {
	db *sql.DB
}

// NewStore creates a history store and applies its migrations.
func NewStore(ctx context.Context, s *store.SQLiteStore) (*Store, error) {
	if err := s.Migrate(ctx, "history", migrations()); err != nil {
		return nil, fmt.Errorf("history migrations: %w", err)
	}
	return &Store{db: s.DB()}, nil
}

// Insert records one transition.
func (s *Store) Insert(ctx context.Context, t *Transition) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history_transitions
			(id, device_id, contact_id, device_name, was_online, is_online, mqtt_connected, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.DeviceID, t.ContactID, t.DeviceName,
		boolInt(t.WasOnline), boolInt(t.IsOnline), boolInt(t.MQTTConnected),
		t.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert transition for %s: %w", t.DeviceID, err)
	}
	return nil
}

// ListByDevice returns the most recent transitions for one device, newest
// first, capped at limit.
func (s *Store) ListByDevice(ctx context.Context, deviceID string, limit int) ([]Transition, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, device_id, contact_id, device_name, was_online, is_online, mqtt_connected, occurred_at
		FROM history_transitions
		WHERE device_id = ?
		ORDER BY occurred_at DESC
		LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transitions for %s: %w", deviceID, err)
	}
	defer rows.Close()

	out := make([]Transition, 0, limit)
	for rows.Next() {
		var t Transition
		var was, on, mqtt int
		if err := rows.Scan(&t.ID, &t.DeviceID, &t.ContactID, &t.DeviceName, &was, &on, &mqtt, &t.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.WasOnline = was != 0
		t.IsOnline = on != 0
		t.MQTTConnected = mqtt != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

// Prune deletes transitions older than the retention period and returns the
// number of rows removed.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC()
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM history_transitions WHERE occurred_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune transitions: %w", err)
	}
	return res.RowsAffected()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
