package packets

import "time"

// REQUESTS FOR /api/admin/*

type SignupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     *string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateScreenRequest struct {
	Name       string  `json:"name" binding:"required"`
	Location   *string `json:"location"`
	ScreenType string  `json:"screen_type"`
}

type PairScreenRequest struct {
	ScreenID    int    `json:"screen_id" binding:"required"`
	PairingCode string `json:"code" binding:"required"`
}

type CreateBookingRequest struct {
	ScreenID        int       `json:"screen_id" binding:"required"`
	MediaURL        string    `json:"media_url" binding:"required"`
	MediaType       string    `json:"media_type" binding:"required,oneof=image video"`
	DurationSeconds int       `json:"duration_seconds" binding:"required,min=1"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required"`
}
