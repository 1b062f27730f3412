// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"localhost:1883"}, cfg.Broker.Servers)
	assert.True(t, cfg.Session.CleanSession)
	assert.True(t, cfg.Reconnect.Enabled)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyFilenameReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FromFile(t *testing.T) {
	content := `
broker:
  servers:
    - broker1:1883
    - broker2:1883
  client_id: test-client
  username: alice
  keep_alive: 30s
session:
  clean_session: false
  max_inflight: 50
reconnect:
  enabled: true
  initial_wait: 2s
  max_wait: 1m
storage:
  type: badger
  badger_dir: /tmp/wiremq-test
log:
  level: debug
  format: json
`
	path := writeConfig(t, content)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:1883", "broker2:1883"}, cfg.Broker.Servers)
	assert.Equal(t, "test-client", cfg.Broker.ClientID)
	assert.Equal(t, "alice", cfg.Broker.Username)
	assert.Equal(t, 30*time.Second, cfg.Broker.KeepAlive)
	assert.False(t, cfg.Session.CleanSession)
	assert.Equal(t, 50, cfg.Session.MaxInflight)
	assert.Equal(t, 2*time.Second, cfg.Reconnect.InitialWait)
	assert.Equal(t, "badger", cfg.Storage.Type)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "broker: [not valid")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty servers", func(c *Config) { c.Broker.Servers = nil }, true},
		{"blank server entry", func(c *Config) { c.Broker.Servers = []string{""} }, true},
		{"negative keep alive", func(c *Config) { c.Broker.KeepAlive = -time.Second }, true},
		{"cert without key", func(c *Config) { c.Broker.TLS.CertFile = "cert.pem" }, true},
		{"will without topic", func(c *Config) { c.Broker.Will = &WillConfig{} }, true},
		{"will with bad qos", func(c *Config) { c.Broker.Will = &WillConfig{Topic: "t", QoS: 3} }, true},
		{"retry interval too small", func(c *Config) { c.Session.RetryInterval = 100 * time.Millisecond }, true},
		{"zero max inflight", func(c *Config) { c.Session.MaxInflight = 0 }, true},
		{"max wait below initial", func(c *Config) {
			c.Reconnect.InitialWait = time.Minute
			c.Reconnect.MaxWait = time.Second
		}, true},
		{"unknown storage type", func(c *Config) { c.Storage.Type = "postgres" }, true},
		{"badger without dir", func(c *Config) { c.Storage.Type = "badger" }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClientOptions(t *testing.T) {
	cfg := Default()
	cfg.Broker.Servers = []string{"broker:1883"}
	cfg.Broker.ClientID = "conv-test"
	cfg.Broker.Username = "bob"
	cfg.Broker.Password = "secret"
	cfg.Session.CleanSession = false
	cfg.Session.MaxInflight = 42
	cfg.Reconnect.MaxAttempts = 7
	cfg.Broker.Will = &WillConfig{Topic: "status/conv-test", Payload: "offline", QoS: 1, Retain: true}

	opts, err := cfg.ClientOptions()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker:1883"}, opts.Servers)
	assert.Equal(t, "conv-test", opts.ClientID)
	assert.Equal(t, "bob", opts.Username)
	assert.Equal(t, "secret", opts.Password)
	assert.False(t, opts.CleanSession)
	assert.Equal(t, 42, opts.MaxInflight)
	assert.Equal(t, 7, opts.MaxReconnectAttempts)
	require.NotNil(t, opts.Will)
	assert.Equal(t, "status/conv-test", opts.Will.Topic)
	assert.Equal(t, []byte("offline"), opts.Will.Payload)
	assert.Equal(t, byte(1), opts.Will.QoS)
	assert.True(t, opts.Will.Retain)
}

func TestSaveAndReload(t *testing.T) {
	cfg := Default()
	cfg.Broker.ClientID = "round-trip"
	cfg.Log.Level = "warn"

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "round-trip", loaded.Broker.ClientID)
	assert.Equal(t, "warn", loaded.Log.Level)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
