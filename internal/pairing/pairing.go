// Package pairing manages the short-lived sessions that bind an unpaired
// device to a screen. A session lives in Redis under two keys: code -> device
// so the operator's typed code resolves to a device, and device -> code so a
// device that re-registers while a code is outstanding gets the same code
// back instead of minting a new one.
package pairing

import (
	"context"
	"errors"
	"math/rand"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisclient "github.com/Glowcast-Media/glowcast/internal/redis"
)

// SessionTTL bounds how long a pairing code stays claimable.
const SessionTTL = 10 * time.Minute

// ErrCodeNotFound is returned when a pairing code has expired or never existed.
var ErrCodeNotFound = errors.New("pairing code not found")

const (
	codeKeyPrefix   = "pairing:"
	deviceKeyPrefix = "pairing:device:"
)

// charset omits 0/O and 1/I so codes survive being read off a TV screen.
const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateCode() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// EnsureSession returns the outstanding pairing code for a device, creating
// a new session only when none exists. Registration is therefore idempotent
// per device while unpaired.
func EnsureSession(ctx context.Context, deviceID string) (string, error) {
	existing, err := redisclient.Rdb.Get(ctx, deviceKeyPrefix+deviceID).Result()
	if err == nil && existing != "" {
		// refresh both keys so an actively retrying device never sees
		// its code expire out from under it
		redisclient.Rdb.Expire(ctx, deviceKeyPrefix+deviceID, SessionTTL)
		redisclient.Rdb.Expire(ctx, codeKeyPrefix+existing, SessionTTL)
		return existing, nil
	}
	if err != nil && !errors.Is(err, goredis.Nil) {
		return "", err
	}

	code := generateCode()
	if err := redisclient.Set(ctx, codeKeyPrefix+code, deviceID, SessionTTL); err != nil {
		return "", err
	}
	if err := redisclient.Set(ctx, deviceKeyPrefix+deviceID, code, SessionTTL); err != nil {
		return "", err
	}
	return code, nil
}

// ClaimSession resolves a pairing code to its device and tears the session
// down. Each code is claimable exactly once.
func ClaimSession(ctx context.Context, code string) (string, error) {
	deviceID, err := redisclient.Rdb.Get(ctx, codeKeyPrefix+code).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}

	redisclient.Rdb.Del(ctx, codeKeyPrefix+code)
	redisclient.Rdb.Del(ctx, deviceKeyPrefix+deviceID)

	return deviceID, nil
}
