// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package config loads client configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/absmach/wiremq/client"
	wiretls "github.com/absmach/wiremq/pkg/tls"
)

// Config holds all configuration for the MQTT client.
type Config struct {
	Broker    BrokerConfig    `yaml:"broker"`
	Session   SessionConfig   `yaml:"session"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// BrokerConfig holds broker connection settings.
type BrokerConfig struct {
	Servers        []string       `yaml:"servers"` // host:port, or ws(s) URLs
	ClientID       string         `yaml:"client_id"`
	Username       string         `yaml:"username"`
	Password       string         `yaml:"password"`
	KeepAlive      time.Duration  `yaml:"keep_alive"`
	ConnectTimeout time.Duration  `yaml:"connect_timeout"`
	WriteTimeout   time.Duration  `yaml:"write_timeout"`
	TLS            wiretls.Config `yaml:"tls"`
	Will           *WillConfig    `yaml:"will,omitempty"`
}

// WillConfig holds the last will message registered at connect.
type WillConfig struct {
	Topic   string `yaml:"topic"`
	Payload string `yaml:"payload"`
	QoS     byte   `yaml:"qos"`
	Retain  bool   `yaml:"retain"`
}

// SessionConfig holds delivery and session settings.
type SessionConfig struct {
	CleanSession    bool          `yaml:"clean_session"`
	RetryInterval   time.Duration `yaml:"retry_interval"`
	MaxRetries      int           `yaml:"max_retries"`
	MaxInflight     int           `yaml:"max_inflight"`
	MaxOfflineQueue int           `yaml:"max_offline_queue"`
}

// ReconnectConfig holds automatic reconnection settings.
type ReconnectConfig struct {
	Enabled     bool          `yaml:"enabled"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	MaxAttempts int           `yaml:"max_attempts"` // 0 means unlimited
}

// StorageConfig holds message store backend configuration.
type StorageConfig struct {
	Type string `yaml:"type"` // memory, badger

	// BadgerDB settings
	BadgerDir string `yaml:"badger_dir"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			Servers:        []string{"localhost:1883"},
			KeepAlive:      client.DefaultKeepAlive,
			ConnectTimeout: client.DefaultConnectTimeout,
			WriteTimeout:   client.DefaultWriteTimeout,
		},
		Session: SessionConfig{
			CleanSession:    true,
			RetryInterval:   client.DefaultRetryInterval,
			MaxRetries:      client.DefaultMaxRetries,
			MaxInflight:     client.DefaultMaxInflight,
			MaxOfflineQueue: client.DefaultOfflineQueue,
		},
		Reconnect: ReconnectConfig{
			Enabled:     true,
			InitialWait: client.DefaultReconnectMin,
			MaxWait:     client.DefaultReconnectMax,
		},
		Storage: StorageConfig{
			Type: "memory",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
// If the file doesn't exist, returns default configuration.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Broker.Servers) == 0 {
		return fmt.Errorf("broker.servers cannot be empty")
	}
	for i, s := range c.Broker.Servers {
		if s == "" {
			return fmt.Errorf("broker.servers[%d] cannot be empty", i)
		}
	}
	if c.Broker.KeepAlive < 0 {
		return fmt.Errorf("broker.keep_alive cannot be negative")
	}
	if c.Broker.TLS.CertFile != "" && c.Broker.TLS.KeyFile == "" {
		return fmt.Errorf("broker.tls.key_file required when cert_file is set")
	}

	if c.Broker.Will != nil {
		if c.Broker.Will.Topic == "" {
			return fmt.Errorf("broker.will.topic cannot be empty")
		}
		if c.Broker.Will.QoS > 2 {
			return fmt.Errorf("broker.will.qos must be 0, 1, or 2")
		}
	}

	if c.Session.RetryInterval < time.Second {
		return fmt.Errorf("session.retry_interval must be at least 1 second")
	}
	if c.Session.MaxInflight < 1 {
		return fmt.Errorf("session.max_inflight must be at least 1")
	}

	if c.Reconnect.Enabled {
		if c.Reconnect.InitialWait <= 0 {
			return fmt.Errorf("reconnect.initial_wait must be positive")
		}
		if c.Reconnect.MaxWait < c.Reconnect.InitialWait {
			return fmt.Errorf("reconnect.max_wait cannot be below initial_wait")
		}
		if c.Reconnect.MaxAttempts < 0 {
			return fmt.Errorf("reconnect.max_attempts cannot be negative")
		}
	}

	validStorage := map[string]bool{"memory": true, "badger": true}
	if !validStorage[c.Storage.Type] {
		return fmt.Errorf("storage.type must be one of: memory, badger")
	}
	if c.Storage.Type == "badger" && c.Storage.BadgerDir == "" {
		return fmt.Errorf("storage.badger_dir required when type is badger")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("log.format must be one of: text, json")
	}

	return nil
}

// ClientOptions converts the configuration into client options. The
// message store, logger and event sink remain for the caller to set.
func (c *Config) ClientOptions() (*client.Options, error) {
	tlsCfg, err := c.Broker.TLS.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS configuration: %w", err)
	}

	opts := client.NewOptions().
		SetServers(c.Broker.Servers...).
		SetClientID(c.Broker.ClientID).
		SetCredentials(c.Broker.Username, c.Broker.Password).
		SetKeepAlive(c.Broker.KeepAlive).
		SetCleanSession(c.Session.CleanSession).
		SetAutoReconnect(c.Reconnect.Enabled)

	opts.ConnectTimeout = c.Broker.ConnectTimeout
	opts.WriteTimeout = c.Broker.WriteTimeout
	opts.RetryInterval = c.Session.RetryInterval
	opts.MaxRetries = c.Session.MaxRetries
	opts.MaxInflight = c.Session.MaxInflight
	opts.MaxOfflineQueue = c.Session.MaxOfflineQueue
	opts.ReconnectBackoff = c.Reconnect.InitialWait
	opts.MaxReconnectWait = c.Reconnect.MaxWait
	opts.MaxReconnectAttempts = c.Reconnect.MaxAttempts
	opts.TLSConfig = tlsCfg

	if c.Broker.Will != nil {
		opts.SetWill(c.Broker.Will.Topic, []byte(c.Broker.Will.Payload), c.Broker.Will.QoS, c.Broker.Will.Retain)
	}

	return opts, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
