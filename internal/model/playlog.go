package model

import "time"

// PlayLog is one proof-of-play record: this booking's creative started on
// this screen at this time. Billing reconciles duplicates downstream.
type PlayLog struct {
	ID             int       `db:"id"              json:"id"`
	ScreenID       int       `db:"screen_id"       json:"screen_id"`
	BookingID      int       `db:"booking_id"      json:"booking_id"`
	PlayedAt       time.Time `db:"played_at"       json:"played_at"`
	DurationPlayed int       `db:"duration_played" json:"duration_played"`
}
