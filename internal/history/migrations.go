package history

import (
	"database/sql"

	"github.com/HerbHall/fleetpulse/internal/store"
)

func migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create status transition log",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS history_transitions (
						id TEXT PRIMARY KEY,
						device_id TEXT NOT NULL,
						contact_id TEXT NOT NULL DEFAULT '',
						device_name TEXT NOT NULL DEFAULT '',
						was_online INTEGER NOT NULL,
						is_online INTEGER NOT NULL,
						mqtt_connected INTEGER NOT NULL DEFAULT 0,
						occurred_at DATETIME NOT NULL
					)`,
					`CREATE INDEX IF NOT EXISTS idx_history_device_time ON history_transitions(device_id, occurred_at)`,
					`CREATE INDEX IF NOT EXISTS idx_history_time ON history_transitions(occurred_at)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
