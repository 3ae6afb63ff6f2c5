package endpoints

import (
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
)

// ScheduleInvalidator lets moderation drop a cached lineup the moment a
// booking's state changes, so devices never replay a stale cache entry.
type ScheduleInvalidator interface {
	InvalidateSchedule(screenID int)
}

type BookingController struct {
	store       db.Store
	notifier    *middleware.Notifier
	invalidator ScheduleInvalidator
}

func NewBookingController(store db.Store, notifier *middleware.Notifier, invalidator ScheduleInvalidator) *BookingController {
	return &BookingController{store: store, notifier: notifier, invalidator: invalidator}
}

func BookingModule(store db.Store, notifier *middleware.Notifier, invalidator ScheduleInvalidator) api.Module {
	ctl := NewBookingController(store, notifier, invalidator)
	return api.ModuleFunc(func(c *api.Controller) {
		c.AuthPOST("/bookings", ctl.createBooking)
		c.AuthGET("/screens/:id/bookings", ctl.listBookingsForScreen)

		// moderation: approval is what admits a booking into playlists
		c.AuthPOST("/bookings/:id/approve", ctl.approveBooking)
		c.AuthPOST("/bookings/:id/reject", ctl.rejectBooking)
	})
}

// POST /api/admin/bookings
func (b *BookingController) createBooking(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateBookingRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if !request.EndTime.After(request.StartTime) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "end_time must be after start_time"}
	}

	if _, err := b.store.GetScreenByID(request.ScreenID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}

	booking, err := b.store.CreateBooking(model.Booking{
		ScreenID:        request.ScreenID,
		MediaURL:        request.MediaURL,
		MediaType:       request.MediaType,
		DurationSeconds: request.DurationSeconds,
		StartTime:       request.StartTime,
		EndTime:         request.EndTime,
		Status:          model.BookingPending,
		CreatedBy:       user.ID,
	})
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create booking"}
	}
	return bookingResponse(booking), nil
}

// GET /api/admin/screens/:id/bookings
func (b *BookingController) listBookingsForScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screenID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	screen, err := b.store.GetScreenByID(screenID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	if screen.CreatedBy != user.ID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	bookings, err := b.store.ListBookingsForScreen(screenID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list bookings"}
	}

	response := make([]packets.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		response = append(response, bookingResponse(booking))
	}
	return response, nil
}

// POST /api/admin/bookings/:id/approve
func (b *BookingController) approveBooking(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return b.setStatus(ctx, user, model.BookingApproved)
}

// POST /api/admin/bookings/:id/reject
func (b *BookingController) rejectBooking(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return b.setStatus(ctx, user, model.BookingRejected)
}

func (b *BookingController) setStatus(ctx *gin.Context, user *model.User, status string) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	booking, err := b.store.GetBookingByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "booking not found"}
	}

	screen, err := b.store.GetScreenByID(booking.ScreenID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	if screen.CreatedBy != user.ID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	if err := b.store.SetBookingStatus(id, status); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update booking"}
	}

	log.Info().Int("booking_id", id).Str("status", status).Msg("booking moderation state changed")

	if b.invalidator != nil {
		b.invalidator.InvalidateSchedule(booking.ScreenID)
	}
	if screen.DeviceID != nil {
		b.notifier.NotifyRefresh(*screen.DeviceID)
	}

	updated, err := b.store.GetBookingByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not fetch updated booking"}
	}
	return bookingResponse(updated), nil
}

func bookingResponse(b model.Booking) packets.BookingResponse {
	return packets.BookingResponse{
		ID:              b.ID,
		ScreenID:        b.ScreenID,
		MediaURL:        b.MediaURL,
		MediaType:       b.MediaType,
		DurationSeconds: b.DurationSeconds,
		StartTime:       b.StartTime.Format(time.RFC3339),
		EndTime:         b.EndTime.Format(time.RFC3339),
		Status:          b.Status,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
}
