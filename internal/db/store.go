// Package db exposes a Store interface that endpoint controllers depend on,
// backed by PostgreSQL in production and by in-memory fakes in tests.
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Glowcast-Media/glowcast/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)

	// screen functions
	CreateScreen(name string, location *string, screenType string, createdBy int) (model.Screen, error)
	GetScreenByID(id int) (model.Screen, error)
	GetScreenByDeviceID(deviceID string) (model.Screen, error)
	ListScreens(createdBy int) ([]model.Screen, error)
	PairScreen(screenID int, deviceID string) error
	SetScreenBlocked(screenID int, blocked bool) error
	TouchScreenLastSeen(screenID int, at time.Time) error

	// booking functions
	CreateBooking(b model.Booking) (model.Booking, error)
	GetBookingByID(id int) (model.Booking, error)
	ListBookingsForScreen(screenID int) ([]model.Booking, error)
	SetBookingStatus(bookingID int, status string) error
	ListActiveBookings(screenID int, at time.Time) ([]model.Booking, error)

	// proof-of-play functions
	InsertPlayLogs(logs []model.PlayLog) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore() Store {
	return &pgStore{db: DB}
}
