package packets

import "github.com/Glowcast-Media/glowcast/internal/model"

// RESPONSES FOR /api/device/*

// Device lifecycle statuses as they appear on the wire.
const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

type RegisterDeviceResponse struct {
	DeviceID    string `json:"device_id"`
	PairingCode string `json:"pairing_code"`
}

type PairingStatusResponse struct {
	Status string `json:"status"`
	Token  string `json:"token,omitempty"`
}

type ScreenInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type PlayerConfig struct {
	LoopIntervalSeconds   int `json:"loop_interval_seconds"`
	ReportIntervalSeconds int `json:"report_interval_seconds"`
}

type HeartbeatResponse struct {
	Status   string               `json:"status"`
	Screen   *ScreenInfo          `json:"screen,omitempty"`
	Schedule []model.PlaylistItem `json:"schedule,omitempty"`
	Config   *PlayerConfig        `json:"config,omitempty"`
}
