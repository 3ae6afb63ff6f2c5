package packets

import (
	"time"

	devicepackets "github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
	"github.com/Glowcast-Media/glowcast/internal/model"
)

// SHAPES FOR /api/web/* (browser-based player)

type PlaylistResponse struct {
	Screen    string               `json:"screen"`
	Timestamp time.Time            `json:"timestamp"`
	Playlist  []model.PlaylistItem `json:"playlist"`
}

type ReportLogsRequest struct {
	Logs []devicepackets.PlayLogEntry `json:"logs" binding:"required"`
}
