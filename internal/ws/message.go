package ws

import (
	"time"

	"github.com/HerbHall/fleetpulse/internal/status"
	"github.com/HerbHall/fleetpulse/pkg/models"
)

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	MessageSnapshot      MessageType = "status.snapshot"
	MessageDeviceUpdated MessageType = "status.device_updated"
	MessageCleared       MessageType = "status.cleared"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data,omitempty"`
}

// SnapshotData is the payload for status.snapshot messages, sent once on
// connect.
type SnapshotData struct {
	OwnDevices []models.DeviceStatusInfo            `json:"own_devices"`
	Contacts   map[string][]models.DeviceStatusInfo `json:"contacts"`
}

// DeviceUpdatedData is the payload for status.device_updated messages.
type DeviceUpdatedData struct {
	ContactID string                  `json:"contact_id,omitempty"`
	Device    models.DeviceStatusInfo `json:"device"`
	Flipped   bool                    `json:"flipped"`
}

func snapshotData(snap status.Snapshot) SnapshotData {
	return SnapshotData{
		OwnDevices: snap.OwnDevices,
		Contacts:   snap.Contacts,
	}
}
