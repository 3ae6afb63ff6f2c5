package model

import "time"

// PlaylistItem is the wire shape a player consumes: one playable creative
// with its timing rule. Duration is authoritative for images only; videos
// play to their natural end.
type PlaylistItem struct {
	BookingID int        `json:"booking_id"`
	MediaURL  string     `json:"media_url"`
	MediaType string     `json:"type"`
	Duration  int        `json:"duration"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// PlaylistFromBookings flattens approved bookings into the wire playlist.
func PlaylistFromBookings(bookings []Booking) []PlaylistItem {
	items := make([]PlaylistItem, 0, len(bookings))
	for _, b := range bookings {
		start, end := b.StartTime, b.EndTime
		items = append(items, PlaylistItem{
			BookingID: b.ID,
			MediaURL:  b.MediaURL,
			MediaType: b.MediaType,
			Duration:  b.DurationSeconds,
			StartTime: &start,
			EndTime:   &end,
		})
	}
	return items
}
