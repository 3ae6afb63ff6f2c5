package packets

// RESPONSES FOR /api/admin/*

type ProfileResponse struct {
	ID        int     `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// ScreenResponse mirrors model.Screen but flattens times to RFC3339.
type ScreenResponse struct {
	ID         int     `json:"id"`
	DeviceID   *string `json:"device_id"`
	Name       string  `json:"name"`
	Location   *string `json:"location"`
	ScreenType string  `json:"screen_type"`
	Paired     bool    `json:"paired"`
	Blocked    bool    `json:"blocked"`
	LastSeenAt *string `json:"last_seen_at"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type BookingResponse struct {
	ID              int    `json:"id"`
	ScreenID        int    `json:"screen_id"`
	MediaURL        string `json:"media_url"`
	MediaType       string `json:"media_type"`
	DurationSeconds int    `json:"duration_seconds"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}
