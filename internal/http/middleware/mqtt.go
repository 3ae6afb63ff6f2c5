package middleware

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Notifier pushes refresh signals to paired devices over MQTT so a screen
// picks up a lineup change without waiting out its heartbeat interval.
// Devices that never connect to the broker still converge via polling.
type Notifier struct {
	client mqtt.Client
}

// RefreshTopic is where a device listens for its commands.
func RefreshTopic(deviceID string) string {
	return fmt.Sprintf("screens/%s/commands", deviceID)
}

// NewNotifier connects to the broker. A connect failure is returned rather
// than fatal: the server runs fine without push.
func NewNotifier(brokerURL, clientID string) (*Notifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &Notifier{client: client}, nil
}

// NotifyRefresh tells one device to check in now. Fire-and-forget.
func (n *Notifier) NotifyRefresh(deviceID string) {
	if n == nil {
		return
	}
	token := n.client.Publish(RefreshTopic(deviceID), 1, false, "refresh")
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Warn().Err(token.Error()).Str("device_id", deviceID).Msg("failed to publish refresh")
		}
	}()
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	if n == nil {
		return
	}
	n.client.Disconnect(250)
}
