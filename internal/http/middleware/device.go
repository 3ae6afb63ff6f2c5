package middleware

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Device tokens carry the device ID in "sub". They are deliberately
// long-lived: an unattended screen cannot re-pair itself when a short token
// expires, and a blocked device is rejected by the screens table on every
// heartbeat regardless of token validity.
const deviceTokenLifetime = 365 * 24 * time.Hour

// GenerateDeviceJWT signs a token for a paired device.
func GenerateDeviceJWT(deviceID, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": deviceID,
		"aud": "device",
		"exp": time.Now().Add(deviceTokenLifetime).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseDeviceToken verifies a device token and returns the device ID.
// Device tokens ride in request bodies per the device wire contract, so
// verification is a helper rather than a gin middleware.
func ParseDeviceToken(tokenString, secret string) (string, error) {
	claims, err := parseHS256(tokenString, secret)
	if err != nil {
		return "", errors.New("invalid device token")
	}
	if aud, _ := claims["aud"].(string); aud != "device" {
		return "", errors.New("not a device token")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("invalid sub claim")
	}
	return sub, nil
}
