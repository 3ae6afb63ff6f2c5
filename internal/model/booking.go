package model

import "time"

// Moderation states a booking moves through. Only approved bookings are
// ever composed into a screen's playlist.
const (
	BookingPending  = "pending"
	BookingApproved = "approved"
	BookingRejected = "rejected"
)

// Media types a booking's creative can carry.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Booking is one advertiser's slot on one screen: a creative plus the
// validity window in which it is allowed to play.
type Booking struct {
	ID              int       `db:"id"               json:"id"`
	ScreenID        int       `db:"screen_id"        json:"screen_id"`
	MediaURL        string    `db:"media_url"        json:"media_url"`
	MediaType       string    `db:"media_type"       json:"media_type"`
	DurationSeconds int       `db:"duration_seconds" json:"duration_seconds"`
	StartTime       time.Time `db:"start_time"       json:"start_time"`
	EndTime         time.Time `db:"end_time"         json:"end_time"`
	Status          string    `db:"status"           json:"status"`
	CreatedBy       int       `db:"created_by"       json:"created_by"`
	CreatedAt       time.Time `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"       json:"updated_at"`
}
