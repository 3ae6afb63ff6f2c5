package model

import "time"

// Screen represents one bookable display in the marketplace. A screen row
// exists before any physical device is attached to it; pairing fills in
// DeviceID and flips Paired.
type Screen struct {
	ID         int        `db:"id"           json:"id"`
	DeviceID   *string    `db:"device_id"    json:"device_id"`
	Name       string     `db:"name"         json:"name"`
	Location   *string    `db:"location"     json:"location"`
	ScreenType string     `db:"screen_type"  json:"screen_type"`
	Paired     bool       `db:"paired"       json:"paired"`
	Blocked    bool       `db:"blocked"      json:"blocked"`
	LastSeenAt *time.Time `db:"last_seen_at" json:"last_seen_at"`
	CreatedBy  int        `db:"created_by"   json:"created_by"`
	CreatedAt  time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"   json:"updated_at"`
}
