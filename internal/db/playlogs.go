package db

import (
	"github.com/rs/zerolog/log"

	"github.com/Glowcast-Media/glowcast/internal/model"
)

// InsertPlayLogs writes a batch of proof-of-play records in one transaction.
// Delivery from devices is at-least-once; duplicate rows are tolerated and
// reconciled downstream at billing time.
func (s *pgStore) InsertPlayLogs(logs []model.PlayLog) error {
	if len(logs) == 0 {
		return nil
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}

	for _, entry := range logs {
		if _, err := tx.Exec(`
			INSERT INTO play_logs (screen_id, booking_id, played_at, duration_played)
			VALUES ($1, $2, $3, $4)
			`, entry.ScreenID, entry.BookingID, entry.PlayedAt, entry.DurationPlayed); err != nil {
			tx.Rollback()
			log.Error().Err(err).Int("booking_id", entry.BookingID).Msg("failed to insert play log")
			return err
		}
	}

	return tx.Commit()
}
