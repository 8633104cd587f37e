// Package testutil provides shared test fixtures.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/fleetpulse/pkg/models"
)

// NewDeviceRecord returns a DeviceRecord with sensible defaults, suitable for
// test fixtures. Override individual fields via options or after creation.
func NewDeviceRecord(opts ...func(*models.DeviceRecord)) models.DeviceRecord {
	now := time.Now().UnixMilli()
	rec := models.DeviceRecord{
		ID:         uuid.New().String(),
		Name:       "Hall Sensor",
		DeviceName: "hall-sensor-01",
		Type:       models.DeviceTypeIoT,
		Owner:      "acct-1",
		Status:     models.DeviceStatusOnline,
		CreatedAt:  now,
		UpdatedAt:  now,
		LastSeen:   now,
	}
	for _, opt := range opts {
		opt(&rec)
	}
	return rec
}

// WithID sets the record's ID instead of a random UUID.
func WithID(id string) func(*models.DeviceRecord) {
	return func(r *models.DeviceRecord) { r.ID = id }
}

// WithName sets the record's display name.
func WithName(name string) func(*models.DeviceRecord) {
	return func(r *models.DeviceRecord) { r.Name = name }
}

// WithDeviceName sets the record's cloud device name.
func WithDeviceName(name string) func(*models.DeviceRecord) {
	return func(r *models.DeviceRecord) { r.DeviceName = name }
}

// WithOwner sets the record's owner account.
func WithOwner(owner string) func(*models.DeviceRecord) {
	return func(r *models.DeviceRecord) { r.Owner = owner }
}

// WithStatus sets the record's stored status.
func WithStatus(s models.DeviceStatus) func(*models.DeviceRecord) {
	return func(r *models.DeviceRecord) { r.Status = s }
}

// WithLastSeen sets the record's last-seen timestamp (milliseconds).
func WithLastSeen(ms int64) func(*models.DeviceRecord) {
	return func(r *models.DeviceRecord) { r.LastSeen = ms }
}

// NewLiveStatus returns an online LiveStatus fixture.
func NewLiveStatus(opts ...func(*models.LiveStatus)) *models.LiveStatus {
	ls := &models.LiveStatus{
		Online:          true,
		BrokerConnected: true,
		LastOnlineTime:  time.Now().UnixMilli(),
		ClientIP:        "192.168.1.50",
	}
	for _, opt := range opts {
		opt(ls)
	}
	return ls
}

// Offline marks the live status fixture offline.
func Offline() func(*models.LiveStatus) {
	return func(ls *models.LiveStatus) {
		ls.Online = false
		ls.BrokerConnected = false
	}
}
