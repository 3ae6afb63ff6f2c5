package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/Glowcast-Media/glowcast/internal/db"
	"github.com/Glowcast-Media/glowcast/internal/http/api"
	"github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
	"github.com/Glowcast-Media/glowcast/internal/http/middleware"
	"github.com/Glowcast-Media/glowcast/internal/model"
	"github.com/Glowcast-Media/glowcast/internal/pairing"
)

// scheduleCacheTTL bounds how stale a heartbeat's schedule may be. Short,
// because a whole fleet heartbeats against the same composed lineup.
const scheduleCacheTTL = 10 * time.Second

type DeviceController struct {
	store  db.Store
	secret string
	config packets.PlayerConfig
	cache  *gocache.Cache
}

func NewDeviceController(store db.Store, secret string, config packets.PlayerConfig) *DeviceController {
	return &DeviceController{
		store:  store,
		secret: secret,
		config: config,
		cache:  gocache.New(scheduleCacheTTL, time.Minute),
	}
}

func DeviceModule(store db.Store, secret string, config packets.PlayerConfig) api.Module {
	return DeviceModuleFromController(NewDeviceController(store, secret, config))
}

// DeviceModuleFromController mounts an already-built controller, so the
// caller can also hand it to moderation as a schedule-cache invalidator.
func DeviceModuleFromController(ctl *DeviceController) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/register", ctl.registerDevice)
		c.GET("/pairing/status", ctl.pairingStatus)
		c.POST("/heartbeat", ctl.heartbeat)
		c.POST("/logs", ctl.reportLogs)
	})
}

// POST /api/device/register
//
// A device with no identity gets one assigned; a device re-registering while
// a pairing code is outstanding gets the same code back.
func (d *DeviceController) registerDevice(ctx *gin.Context) (any, *api.APIError) {
	var request packets.RegisterDeviceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	deviceID := request.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	if screen, err := d.store.GetScreenByDeviceID(deviceID); err == nil && screen.Paired {
		log.Warn().Str("device_id", deviceID).Msg("register rejected, device already paired")
		return nil, &api.APIError{Code: http.StatusConflict, Message: "device already paired"}
	}

	code, err := pairing.EnsureSession(ctx, deviceID)
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Msg("could not create pairing session")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create pairing session"}
	}

	log.Info().Str("device_id", deviceID).Msg("device registered, awaiting pairing")
	return packets.RegisterDeviceResponse{DeviceID: deviceID, PairingCode: code}, nil
}

// GET /api/device/pairing/status?device_id=
//
// The token is minted here, not at pair time, so the device only ever
// learns it over its own polling channel.
func (d *DeviceController) pairingStatus(ctx *gin.Context) (any, *api.APIError) {
	deviceID := ctx.Query("device_id")
	if deviceID == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "device_id is required"}
	}

	screen, err := d.store.GetScreenByDeviceID(deviceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return packets.PairingStatusResponse{Status: packets.StatusPending}, nil
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not look up device"}
	}
	if !screen.Paired {
		return packets.PairingStatusResponse{Status: packets.StatusPending}, nil
	}
	if screen.Blocked {
		return packets.PairingStatusResponse{Status: packets.StatusBlocked}, nil
	}

	token, err := middleware.GenerateDeviceJWT(deviceID, d.secret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}
	return packets.PairingStatusResponse{Status: packets.StatusActive, Token: token}, nil
}

// POST /api/device/heartbeat
//
// The device's liveness record and its schedule fetch in one call.
func (d *DeviceController) heartbeat(ctx *gin.Context) (any, *api.APIError) {
	var request packets.HeartbeatRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, apiErr := d.authorizeDevice(request.DeviceID, request.Token)
	if apiErr != nil {
		return nil, apiErr
	}
	if screen.Blocked {
		log.Warn().Str("device_id", request.DeviceID).Msg("blocked device heartbeat")
		return packets.HeartbeatResponse{Status: packets.StatusBlocked}, nil
	}

	if err := d.store.TouchScreenLastSeen(screen.ID, time.Now()); err != nil {
		// liveness bookkeeping must not fail a heartbeat
		log.Warn().Err(err).Int("screen_id", screen.ID).Msg("could not record last seen")
	}

	schedule, err := d.scheduleForScreen(screen.ID)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screen.ID).Msg("could not compose schedule")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not compose schedule"}
	}

	return packets.HeartbeatResponse{
		Status: packets.StatusActive,
		Screen: &packets.ScreenInfo{
			ID:   screen.ID,
			Name: screen.Name,
			Type: screen.ScreenType,
		},
		Schedule: schedule,
		Config:   &d.config,
	}, nil
}

// POST /api/device/logs
func (d *DeviceController) reportLogs(ctx *gin.Context) (any, *api.APIError) {
	var request packets.ReportLogsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, apiErr := d.authorizeDevice(request.DeviceID, request.Token)
	if apiErr != nil {
		return nil, apiErr
	}

	logs := make([]model.PlayLog, 0, len(request.Logs))
	for _, entry := range request.Logs {
		logs = append(logs, model.PlayLog{
			ScreenID:       screen.ID,
			BookingID:      entry.BookingID,
			PlayedAt:       entry.Timestamp,
			DurationPlayed: entry.DurationPlayed,
		})
	}

	if err := d.store.InsertPlayLogs(logs); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store play logs"}
	}

	log.Debug().Str("device_id", request.DeviceID).Int("count", len(logs)).Msg("play logs stored")
	return nil, nil
}

// authorizeDevice checks the token matches the claimed device and resolves
// its screen. A vanished screen row means the device was unpaired.
func (d *DeviceController) authorizeDevice(deviceID, token string) (model.Screen, *api.APIError) {
	sub, err := middleware.ParseDeviceToken(token, d.secret)
	if err != nil || sub != deviceID {
		return model.Screen{}, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid device token"}
	}

	screen, err := d.store.GetScreenByDeviceID(deviceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return model.Screen{}, &api.APIError{Code: http.StatusUnauthorized, Message: "unknown device"}
		}
		return model.Screen{}, &api.APIError{Code: http.StatusInternalServerError, Message: "could not look up device"}
	}
	return screen, nil
}

func (d *DeviceController) scheduleForScreen(screenID int) ([]model.PlaylistItem, error) {
	key := fmt.Sprintf("schedule:%d", screenID)
	if cached, found := d.cache.Get(key); found {
		return cached.([]model.PlaylistItem), nil
	}

	bookings, err := d.store.ListActiveBookings(screenID, time.Now())
	if err != nil {
		return nil, err
	}
	items := model.PlaylistFromBookings(bookings)
	d.cache.Set(key, items, gocache.DefaultExpiration)
	return items, nil
}

// InvalidateSchedule drops the cached lineup for a screen. Called when a
// booking's moderation state changes so pushes don't race a stale cache.
func (d *DeviceController) InvalidateSchedule(screenID int) {
	d.cache.Delete(fmt.Sprintf("schedule:%d", screenID))
}
