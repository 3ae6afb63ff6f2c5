// Package state is the player's local persistent store: the device's
// identity, its token once paired, and the last schedule it successfully
// fetched. Everything a player needs to come back up after a power cycle
// and keep showing ads while the network is down.
package state

import (
	"errors"
	"time"

	devicepackets "github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
	"github.com/Glowcast-Media/glowcast/internal/model"
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("state: not found")

// DeviceConfig is the durable device identity. Token is empty until the
// device has been paired to a screen.
type DeviceConfig struct {
	DeviceID string `json:"device_id"`
	Token    string `json:"token"`
}

// Paired reports whether this identity has completed pairing.
func (c DeviceConfig) Paired() bool {
	return c.DeviceID != "" && c.Token != ""
}

// CachedSchedule is the last-known-good playlist plus the screen binding it
// came with. Replaced wholesale on every successful heartbeat.
type CachedSchedule struct {
	Screen    devicepackets.ScreenInfo   `json:"screen"`
	Items     []model.PlaylistItem       `json:"items"`
	Config    devicepackets.PlayerConfig `json:"config"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Store persists the device's durable state. Implementations must be safe
// for concurrent use: the pairing, heartbeat, and reporting loops all touch
// it from their own goroutines.
type Store interface {
	Config() (DeviceConfig, error)
	SaveConfig(cfg DeviceConfig) error
	CachedSchedule() (CachedSchedule, error)
	SaveSchedule(s CachedSchedule) error
	Close() error
}
