package packets

import "time"

// REQUESTS FOR /api/device/*

type RegisterDeviceRequest struct {
	// DeviceID is empty on a device's very first boot; the server assigns one.
	DeviceID string `json:"device_id"`
}

type HeartbeatRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	Token    string `json:"token" binding:"required"`
}

type PlayLogEntry struct {
	ScreenID       int       `json:"screen_id"`
	BookingID      int       `json:"booking_id" binding:"required"`
	Timestamp      time.Time `json:"timestamp" binding:"required"`
	DurationPlayed int       `json:"duration_played"`
}

type ReportLogsRequest struct {
	DeviceID string         `json:"device_id" binding:"required"`
	Token    string         `json:"token" binding:"required"`
	Logs     []PlayLogEntry `json:"logs" binding:"required"`
}
