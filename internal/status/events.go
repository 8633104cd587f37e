package status

import "github.com/HerbHall/fleetpulse/pkg/models"

// Event bus topics published by the status cache.
const (
	TopicDeviceUpdated = "status.device_updated"
	TopicCleared       = "status.cleared"
)

// DeviceUpdatedEvent is the payload for TopicDeviceUpdated.
type DeviceUpdatedEvent struct {
	// ContactID is empty for the local account's own devices.
	ContactID string
	Info      models.DeviceStatusInfo
	// Flipped is true when the device's online verdict changed from the
	// previously cached entry (first observations never count as flips).
	Flipped   bool
	WasOnline bool
}
