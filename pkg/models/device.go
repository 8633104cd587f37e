package models

import "time"

// DeviceType categorizes a companion device.
type DeviceType string

const (
	DeviceTypeMobile   DeviceType = "mobile"
	DeviceTypeDesktop  DeviceType = "desktop"
	DeviceTypeServer   DeviceType = "server"
	DeviceTypeIoT      DeviceType = "iot"
	DeviceTypeEmbedded DeviceType = "embedded"
	DeviceTypeOther    DeviceType = "other"
)

// DeviceStatus is the canonical status stored in the upstream registry.
type DeviceStatus string

const (
	DeviceStatusOnline      DeviceStatus = "online"
	DeviceStatusOffline     DeviceStatus = "offline"
	DeviceStatusMaintenance DeviceStatus = "maintenance"
	DeviceStatusDisabled    DeviceStatus = "disabled"
)

// DeviceRecord is the persisted device record owned by the upstream registry.
// Timestamps are milliseconds since epoch, as served by the registry API.
// Deleted devices keep their record; deletion is a flag flip upstream.
type DeviceRecord struct {
	ID           string            `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name         string            `json:"name" example:"living-room-companion"`
	DeviceName   string            `json:"device_name,omitempty" example:"companion-v1-8f2a"` // machine-facing name used by the IoT cloud
	Type         DeviceType        `json:"type" example:"iot"`
	Owner        string            `json:"owner" example:"acct-4f21"`
	Status       DeviceStatus      `json:"status" example:"online"`
	Capabilities []string          `json:"capabilities,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    int64             `json:"created_at" example:"1756600000000"`
	UpdatedAt    int64             `json:"updated_at" example:"1756600000000"`
	LastSeen     int64             `json:"last_seen" example:"1756600000000"`
	Deleted      bool              `json:"deleted,omitempty"`
}

// LiveStatus is one successful IoT-cloud probe result. It is never persisted
// and only exists attached to a device ID for one reconciliation pass.
type LiveStatus struct {
	Online          bool   `json:"online"`
	BrokerConnected bool   `json:"broker_connected"`
	LastOnlineTime  int64  `json:"last_online_time"` // ms since epoch, 0 if the cloud omitted it
	ClientIP        string `json:"client_ip,omitempty"`
}

// DeviceStatusInfo is the reconciled per-device status held by the status
// cache. LastUpdated marks when this reconciliation happened (cache
// freshness), regardless of whether the live probe succeeded.
type DeviceStatusInfo struct {
	DeviceID      string       `json:"device_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name          string       `json:"name" example:"living-room-companion"`
	ProductID     string       `json:"product_id" example:"fp1drrqbkvmd0dlo"`
	Owner         string       `json:"owner" example:"acct-4f21"`
	Status        DeviceStatus `json:"status" example:"online"`
	IsOnline      bool         `json:"is_online"`
	MQTTConnected bool         `json:"mqtt_connected"`
	LastSeen      int64        `json:"last_seen" example:"1756600000000"`
	LastUpdated   time.Time    `json:"last_updated" example:"2026-08-31T10:30:00Z"`
	ClientIP      string       `json:"client_ip,omitempty"`
	Signal        *int         `json:"signal,omitempty"`
	Battery       *int         `json:"battery,omitempty"`
}
