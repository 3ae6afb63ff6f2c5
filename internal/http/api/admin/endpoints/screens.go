package endpoints

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Glowcast-Media/glowcast/internal/db"
	"github.com/Glowcast-Media/glowcast/internal/http/api"
	"github.com/Glowcast-Media/glowcast/internal/http/api/admin/packets"
	"github.com/Glowcast-Media/glowcast/internal/http/middleware"
	"github.com/Glowcast-Media/glowcast/internal/model"
	"github.com/Glowcast-Media/glowcast/internal/pairing"
)

type ScreenController struct {
	store    db.Store
	notifier *middleware.Notifier
}

func NewScreenController(store db.Store, notifier *middleware.Notifier) *ScreenController {
	return &ScreenController{store: store, notifier: notifier}
}

func ScreenModule(store db.Store, notifier *middleware.Notifier) api.Module {
	ctl := NewScreenController(store, notifier)
	return api.ModuleFunc(func(c *api.Controller) {
		c.AuthGET("/screens", ctl.listScreens)
		c.AuthPOST("/screens", ctl.createScreen)
		c.AuthGET("/screens/:id", ctl.getScreen)

		// pairing
		c.AuthPOST("/screens/pair", ctl.pairScreen)

		// moderation
		c.AuthPOST("/screens/:id/block", ctl.blockScreen)
		c.AuthPOST("/screens/:id/unblock", ctl.unblockScreen)
	})
}

// GET /api/admin/screens
func (s *ScreenController) listScreens(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := s.store.ListScreens(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list screens"}
	}

	response := make([]packets.ScreenResponse, 0, len(all))
	for _, screen := range all {
		response = append(response, screenResponse(screen))
	}
	return response, nil
}

// POST /api/admin/screens
func (s *ScreenController) createScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateScreenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screenType := request.ScreenType
	if screenType == "" {
		screenType = "landscape"
	}

	screen, err := s.store.CreateScreen(request.Name, request.Location, screenType, user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create screen"}
	}
	return screenResponse(screen), nil
}

// GET /api/admin/screens/:id
func (s *ScreenController) getScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := s.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return screenResponse(*screen), nil
}

// POST /api/admin/screens/pair
//
// The operator types the code shown on the device; this is the out-of-band
// half of the pairing protocol. The device itself learns the outcome on its
// next status poll, and a refresh push shortens that wait when MQTT is up.
func (s *ScreenController) pairScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.PairScreenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, err := s.store.GetScreenByID(request.ScreenID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	if screen.CreatedBy != user.ID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	if screen.Paired {
		return nil, &api.APIError{Code: http.StatusConflict, Message: "screen already paired"}
	}

	deviceID, err := pairing.ClaimSession(ctx, request.PairingCode)
	if err != nil {
		if errors.Is(err, pairing.ErrCodeNotFound) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "pairing code not found or expired"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not resolve pairing code"}
	}

	if err := s.store.PairScreen(request.ScreenID, deviceID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not pair screen"}
	}

	log.Info().Int("screen_id", request.ScreenID).Str("device_id", deviceID).Msg("screen paired")
	s.notifier.NotifyRefresh(deviceID)

	return gin.H{"success": "screen paired successfully"}, nil
}

// POST /api/admin/screens/:id/block
func (s *ScreenController) blockScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return s.setBlocked(ctx, user, true)
}

// POST /api/admin/screens/:id/unblock
func (s *ScreenController) unblockScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return s.setBlocked(ctx, user, false)
}

func (s *ScreenController) setBlocked(ctx *gin.Context, user *model.User, blocked bool) (any, *api.APIError) {
	screen, apiErr := s.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := s.store.SetScreenBlocked(screen.ID, blocked); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update screen"}
	}

	log.Info().Int("screen_id", screen.ID).Bool("blocked", blocked).Msg("screen moderation state changed")
	if screen.DeviceID != nil {
		s.notifier.NotifyRefresh(*screen.DeviceID)
	}

	updated, err := s.store.GetScreenByID(screen.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not fetch updated screen"}
	}
	return screenResponse(updated), nil
}

// ownedScreen resolves :id and enforces ownership.
func (s *ScreenController) ownedScreen(ctx *gin.Context, user *model.User) (*model.Screen, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	screen, err := s.store.GetScreenByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	if screen.CreatedBy != user.ID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return &screen, nil
}

func screenResponse(s model.Screen) packets.ScreenResponse {
	var lastSeen *string
	if s.LastSeenAt != nil {
		formatted := s.LastSeenAt.Format(time.RFC3339)
		lastSeen = &formatted
	}
	return packets.ScreenResponse{
		ID:         s.ID,
		DeviceID:   s.DeviceID,
		Name:       s.Name,
		Location:   s.Location,
		ScreenType: s.ScreenType,
		Paired:     s.Paired,
		Blocked:    s.Blocked,
		LastSeenAt: lastSeen,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  s.UpdatedAt.Format(time.RFC3339),
	}
}
