// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/absmach/wiremq/transport"
)

// Default values.
const (
	DefaultKeepAlive      = 60 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultWriteTimeout   = 5 * time.Second
	DefaultAckTimeout     = 10 * time.Second
	DefaultRetryInterval  = 10 * time.Second
	DefaultMaxRetries     = 3
	DefaultReconnectMin   = 1 * time.Second
	DefaultReconnectMax   = 2 * time.Minute
	DefaultMaxInflight    = 100
	DefaultOfflineQueue   = 100
)

// WillMessage represents a last will and testament message.
type WillMessage struct {
	Topic   string
	Payload []byte
	QoS     byte
	Retain  bool
}

// Options configures the MQTT client. Options are read-only once a
// connection attempt starts.
type Options struct {
	// Connection
	Servers        []string          // Broker addresses (host:port, or URLs for WebSocket)
	ClientID       string            // Client identifier; a UUID is generated when empty
	Username       string            // Optional username
	Password       string            // Optional password
	TLSConfig      *tls.Config       // TLS configuration (nil for plain TCP)
	Dialer         transport.Dialer  // Custom transport (nil selects TCP or TLS from TLSConfig)
	ConnectTimeout time.Duration     // Timeout for connection attempts
	WriteTimeout   time.Duration     // Timeout for write operations
	KeepAlive      time.Duration     // Keep-alive interval (0 to disable)

	// Session
	CleanSession bool // Discard session state on every connect

	// Will
	Will *WillMessage // Last will and testament

	// QoS
	AckTimeout    time.Duration // Timeout waiting for SUBACK/UNSUBACK
	RetryInterval time.Duration // Retransmission interval for unacknowledged QoS 1/2 sends
	MaxRetries    int           // Retransmissions before a delivery fails
	MaxInflight   int           // Maximum concurrently unacknowledged sends

	// Reconnection
	AutoReconnect        bool          // Enable automatic reconnection
	ReconnectBackoff     time.Duration // Initial reconnect delay
	MaxReconnectWait     time.Duration // Maximum reconnect delay
	MaxReconnectAttempts int           // 0 means unlimited

	// Offline queue; effective only with CleanSession=false and
	// AutoReconnect=true. QoS > 0 publishes issued while disconnected
	// are queued up to this bound and flushed after the next CONNACK.
	MaxOfflineQueue int

	// Events
	Sink EventSink // Lifecycle event sink (nil = NopSink)

	// Persistence for QoS 1/2 state (nil = in-memory).
	Store MessageStore

	Logger *slog.Logger // nil defaults to slog.Default()
}

// NewOptions creates Options with sensible defaults.
func NewOptions() *Options {
	return &Options{
		Servers:          []string{"localhost:1883"},
		CleanSession:     true,
		KeepAlive:        DefaultKeepAlive,
		ConnectTimeout:   DefaultConnectTimeout,
		WriteTimeout:     DefaultWriteTimeout,
		AckTimeout:       DefaultAckTimeout,
		RetryInterval:    DefaultRetryInterval,
		MaxRetries:       DefaultMaxRetries,
		AutoReconnect:    true,
		ReconnectBackoff: DefaultReconnectMin,
		MaxReconnectWait: DefaultReconnectMax,
		MaxInflight:      DefaultMaxInflight,
		MaxOfflineQueue:  DefaultOfflineQueue,
	}
}

// SetServers sets the broker addresses.
func (o *Options) SetServers(servers ...string) *Options {
	o.Servers = servers
	return o
}

// SetClientID sets the client identifier.
func (o *Options) SetClientID(id string) *Options {
	o.ClientID = id
	return o
}

// SetCredentials sets username and password.
func (o *Options) SetCredentials(username, password string) *Options {
	o.Username = username
	o.Password = password
	return o
}

// SetTLSConfig sets TLS configuration.
func (o *Options) SetTLSConfig(cfg *tls.Config) *Options {
	o.TLSConfig = cfg
	return o
}

// SetDialer sets a custom transport dialer.
func (o *Options) SetDialer(d transport.Dialer) *Options {
	o.Dialer = d
	return o
}

// SetCleanSession sets the clean session flag.
func (o *Options) SetCleanSession(clean bool) *Options {
	o.CleanSession = clean
	return o
}

// SetKeepAlive sets the keep-alive interval.
func (o *Options) SetKeepAlive(d time.Duration) *Options {
	o.KeepAlive = d
	return o
}

// SetConnectTimeout sets the connection timeout.
func (o *Options) SetConnectTimeout(d time.Duration) *Options {
	o.ConnectTimeout = d
	return o
}

// SetAckTimeout sets the acknowledgment timeout.
func (o *Options) SetAckTimeout(d time.Duration) *Options {
	o.AckTimeout = d
	return o
}

// SetRetryInterval sets the QoS retransmission interval.
func (o *Options) SetRetryInterval(d time.Duration) *Options {
	o.RetryInterval = d
	return o
}

// SetMaxRetries sets the retransmission ceiling.
func (o *Options) SetMaxRetries(n int) *Options {
	o.MaxRetries = n
	return o
}

// SetWill sets the last will and testament.
func (o *Options) SetWill(topic string, payload []byte, qos byte, retain bool) *Options {
	o.Will = &WillMessage{
		Topic:   topic,
		Payload: payload,
		QoS:     qos,
		Retain:  retain,
	}
	return o
}

// SetAutoReconnect enables or disables automatic reconnection.
func (o *Options) SetAutoReconnect(enable bool) *Options {
	o.AutoReconnect = enable
	return o
}

// SetMaxReconnectAttempts bounds automatic reconnection (0 = unlimited).
func (o *Options) SetMaxReconnectAttempts(n int) *Options {
	o.MaxReconnectAttempts = n
	return o
}

// SetMaxInflight sets the maximum number of inflight messages.
func (o *Options) SetMaxInflight(n int) *Options {
	o.MaxInflight = n
	return o
}

// SetSink sets the lifecycle event sink.
func (o *Options) SetSink(sink EventSink) *Options {
	o.Sink = sink
	return o
}

// SetStore sets the message store for QoS 1/2 persistence.
func (o *Options) SetStore(store MessageStore) *Options {
	o.Store = store
	return o
}

// SetLogger sets the logger.
func (o *Options) SetLogger(l *slog.Logger) *Options {
	o.Logger = l
	return o
}

// Validate checks the options for errors and fills derivable defaults.
func (o *Options) Validate() error {
	if len(o.Servers) == 0 {
		return ErrNoServers
	}
	if o.ClientID == "" {
		o.ClientID = "wiremq-" + uuid.NewString()
	}
	if o.MaxInflight <= 0 {
		o.MaxInflight = DefaultMaxInflight
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = DefaultRetryInterval
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.Sink == nil {
		o.Sink = NopSink{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return nil
}
