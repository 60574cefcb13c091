package relay

import "errors"

var (
	// ErrNoSinks is returned by New when neither MQTT nor Metrics is set.
	ErrNoSinks = errors.New("relay: no MQTT client or metrics writer configured")

	// ErrAlreadyStarted is returned by Start on a running relay.
	ErrAlreadyStarted = errors.New("relay: already started")

	// ErrInvalidQoS is returned by New for a QoS above 2.
	ErrInvalidQoS = errors.New("relay: invalid QoS level (must be 0, 1, or 2)")
)
