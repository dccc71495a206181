package config

import "time"

const (
	defaultHandshakeTimeoutMs = 10_000
	defaultPingIntervalMs     = 15_000
)

// Ledger defines how the ledger node is reached.
// When RequestTimeoutMs fires the session is dropped, and every later wallet in the run fails and reports FALSE.
type Ledger struct {
	WebsocketURL       string `yaml:"websocket_url"` // e.g. wss://xrplcluster.com
	HandshakeTimeoutMs int    `yaml:"handshake_timeout_ms"`
	RequestTimeoutMs   int    `yaml:"request_timeout_ms"` // 0 waits forever; a timeout ends the session
	PingIntervalMs     int    `yaml:"ping_interval_ms"`   // 0 disables keepalive
}

// HandshakeTimeout converts HandshakeTimeoutMs.
func (l Ledger) HandshakeTimeout() time.Duration {
	return time.Duration(l.HandshakeTimeoutMs) * time.Millisecond
}

// RequestTimeout converts RequestTimeoutMs.
func (l Ledger) RequestTimeout() time.Duration {
	return time.Duration(l.RequestTimeoutMs) * time.Millisecond
}

// PingInterval converts PingIntervalMs.
func (l Ledger) PingInterval() time.Duration {
	return time.Duration(l.PingIntervalMs) * time.Millisecond
}
