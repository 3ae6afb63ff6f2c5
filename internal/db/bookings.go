package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Glowcast-Media/glowcast/internal/model"
)

func (s *pgStore) CreateBooking(b model.Booking) (model.Booking, error) {
	var created model.Booking
	q := `
	INSERT INTO bookings (screen_id, media_url, media_type, duration_seconds, start_time, end_time, status, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	RETURNING id, screen_id, media_url, media_type, duration_seconds, start_time, end_time, status, created_by, created_at, updated_at;`
	if err := s.db.Get(&created, q,
		b.ScreenID, b.MediaURL, b.MediaType, b.DurationSeconds,
		b.StartTime, b.EndTime, b.Status, b.CreatedBy); err != nil {
		log.Error().Err(err).Msg("failed to create booking")
		return model.Booking{}, err
	}
	return created, nil
}

func (s *pgStore) GetBookingByID(id int) (model.Booking, error) {
	var b model.Booking
	err := s.db.Get(&b, `
		SELECT id, screen_id, media_url, media_type, duration_seconds, start_time, end_time, status, created_by, created_at, updated_at
		FROM bookings
		WHERE id = $1
		`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

func (s *pgStore) ListBookingsForScreen(screenID int) ([]model.Booking, error) {
	var bookings []model.Booking
	err := s.db.Select(&bookings, `
		SELECT id, screen_id, media_url, media_type, duration_seconds, start_time, end_time, status, created_by, created_at, updated_at
		FROM bookings
		WHERE screen_id = $1
		ORDER BY id
		`, screenID)
	return bookings, err
}

func (s *pgStore) SetBookingStatus(bookingID int, status string) error {
	res, err := s.db.Exec(`
		UPDATE bookings
		SET status = $2,
		updated_at = now()
		WHERE id = $1
		`, bookingID, status)
	if err != nil {
		log.Error().Err(err).Int("booking_id", bookingID).Msg("failed to set booking status")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveBookings returns the bookings allowed to play on a screen right
// now: approved moderation state and a validity window containing `at`.
// Ordered by id so the loop order is stable across heartbeats.
func (s *pgStore) ListActiveBookings(screenID int, at time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := s.db.Select(&bookings, `
		SELECT id, screen_id, media_url, media_type, duration_seconds, start_time, end_time, status, created_by, created_at, updated_at
		FROM bookings
		WHERE screen_id = $1
		AND status = $2
		AND start_time <= $3
		AND end_time > $3
		ORDER BY id
		`, screenID, model.BookingApproved, at)
	return bookings, err
}
