package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Glowcast-Media/glowcast/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

func (s *pgStore) CreateScreen(name string, location *string, screenType string, createdBy int) (model.Screen, error) {
	var screen model.Screen
	q := `
	INSERT INTO screens (name, location, screen_type, paired, blocked, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, false, false, $4, now(), now())
	RETURNING id, device_id, name, location, screen_type, paired, blocked, last_seen_at, created_by, created_at, updated_at;`
	if err := s.db.Get(&screen, q, name, location, screenType, createdBy); err != nil {
		log.Error().Err(err).Msg("failed to create screen")
		return model.Screen{}, err
	}
	return screen, nil
}

func (s *pgStore) GetScreenByID(id int) (model.Screen, error) {
	var screen model.Screen
	err := s.db.Get(&screen, `
		SELECT id, device_id, name, location, screen_type, paired, blocked, last_seen_at, created_by, created_at, updated_at
		FROM screens
		WHERE id = $1
		`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Screen{}, ErrNotFound
	}
	return screen, err
}

func (s *pgStore) GetScreenByDeviceID(deviceID string) (model.Screen, error) {
	var screen model.Screen
	err := s.db.Get(&screen, `
		SELECT id, device_id, name, location, screen_type, paired, blocked, last_seen_at, created_by, created_at, updated_at
		FROM screens
		WHERE device_id = $1
		`, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Screen{}, ErrNotFound
	}
	return screen, err
}

func (s *pgStore) ListScreens(createdBy int) ([]model.Screen, error) {
	var screens []model.Screen
	err := s.db.Select(&screens, `
		SELECT id, device_id, name, location, screen_type, paired, blocked, last_seen_at, created_by, created_at, updated_at
		FROM screens
		WHERE created_by = $1
		ORDER BY id
		`, createdBy)
	return screens, err
}

// PairScreen binds a device to a screen and marks it paired in one statement,
// so a crash between the two updates cannot leave a half-paired row.
func (s *pgStore) PairScreen(screenID int, deviceID string) error {
	res, err := s.db.Exec(`
		UPDATE screens
		SET device_id = $2,
		paired = TRUE,
		updated_at = now()
		WHERE id = $1
		`, screenID, deviceID)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("failed to pair screen")
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

func (s *pgStore) SetScreenBlocked(screenID int, blocked bool) error {
	res, err := s.db.Exec(`
		UPDATE screens
		SET blocked = $2,
		updated_at = now()
		WHERE id = $1
		`, screenID, blocked)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("failed to set screen blocked flag")
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

func (s *pgStore) TouchScreenLastSeen(screenID int, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET last_seen_at = $2
		WHERE id = $1
		`, screenID, at)
	return err
}
