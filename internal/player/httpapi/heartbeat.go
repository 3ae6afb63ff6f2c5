package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	devicepackets "github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
	"github.com/Glowcast-Media/glowcast/internal/model"
)

// HeartbeatResult is exactly one of HeartbeatActive or HeartbeatBlocked.
// Transport failures and non-2xx responses surface as plain errors, which
// the caller treats as "offline".
type HeartbeatResult interface {
	heartbeatResult()
}

type HeartbeatActive struct {
	Screen   devicepackets.ScreenInfo
	Schedule []model.PlaylistItem
	Config   devicepackets.PlayerConfig
}

func (HeartbeatActive) heartbeatResult() {}

type HeartbeatBlocked struct{}

func (HeartbeatBlocked) heartbeatResult() {}

// Heartbeat checks in, reporting liveness and fetching the current schedule.
func (c *Client) Heartbeat(ctx context.Context, deviceID, token string) (HeartbeatResult, error) {
	var response devicepackets.HeartbeatResponse
	err := c.post(ctx, "/api/device/heartbeat", devicepackets.HeartbeatRequest{
		DeviceID: deviceID,
		Token:    token,
	}, &response)
	if err != nil {
		// a rejected token means the device was blocked or unpaired
		// server-side; transport and server errors mean offline
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			return HeartbeatBlocked{}, nil
		}
		return nil, fmt.Errorf("heartbeat: %w", err)
	}

	switch response.Status {
	case devicepackets.StatusBlocked:
		return HeartbeatBlocked{}, nil
	case devicepackets.StatusActive:
		active := HeartbeatActive{Schedule: response.Schedule}
		if response.Screen != nil {
			active.Screen = *response.Screen
		}
		if response.Config != nil {
			active.Config = *response.Config
		}
		return active, nil
	default:
		return nil, fmt.Errorf("heartbeat: unknown status %q", response.Status)
	}
}
