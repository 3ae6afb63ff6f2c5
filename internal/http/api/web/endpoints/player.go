package endpoints

import (
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Glowcast-Media/glowcast/internal/db"
	"github.com/Glowcast-Media/glowcast/internal/http/api"
	"github.com/Glowcast-Media/glowcast/internal/http/api/web/packets"
	"github.com/Glowcast-Media/glowcast/internal/model"
)

// WebPlayerController serves the browser-based player, which runs inside an
// operator's dashboard session instead of holding a device token.
type WebPlayerController struct {
	store db.Store
}

func NewWebPlayerController(store db.Store) *WebPlayerController {
	return &WebPlayerController{store: store}
}

func WebPlayerModule(store db.Store) api.Module {
	ctl := NewWebPlayerController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/playlist", ctl.getPlaylist)
		c.POST("/logs", ctl.reportLogs)
	})
}

// GET /api/web/playlist?screen_id=
func (w *WebPlayerController) getPlaylist(ctx *gin.Context) (any, *api.APIError) {
	screenID, err := strconv.Atoi(ctx.Query("screen_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid screen_id"}
	}

	screen, err := w.store.GetScreenByID(screenID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not look up screen"}
	}

	bookings, err := w.store.ListActiveBookings(screen.ID, time.Now())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not compose playlist"}
	}

	items := model.PlaylistFromBookings(bookings)
	for i := range items {
		if items[i].MediaType == "" {
			items[i].MediaType = InferMediaType(items[i].MediaURL)
		}
	}

	return packets.PlaylistResponse{
		Screen:    screen.Name,
		Timestamp: time.Now().UTC(),
		Playlist:  items,
	}, nil
}

// POST /api/web/logs
func (w *WebPlayerController) reportLogs(ctx *gin.Context) (any, *api.APIError) {
	var request packets.ReportLogsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	logs := make([]model.PlayLog, 0, len(request.Logs))
	for _, entry := range request.Logs {
		if entry.ScreenID == 0 {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "screen_id is required in web mode"}
		}
		logs = append(logs, model.PlayLog{
			ScreenID:       entry.ScreenID,
			BookingID:      entry.BookingID,
			PlayedAt:       entry.Timestamp,
			DurationPlayed: entry.DurationPlayed,
		})
	}

	if err := w.store.InsertPlayLogs(logs); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store play logs"}
	}

	log.Debug().Int("count", len(logs)).Msg("web player logs stored")
	return nil, nil
}

// InferMediaType classifies a creative by its URL's file extension. Used
// for legacy bookings stored before media_type became a column.
func InferMediaType(mediaURL string) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(mediaURL, "?", 2)[0]))
	switch ext {
	case ".mp4", ".webm", ".mov", ".avi", ".mkv", ".m3u8":
		return model.MediaVideo
	default:
		return model.MediaImage
	}
}
