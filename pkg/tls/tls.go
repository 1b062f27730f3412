// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package tls loads client TLS material (certificate, key, trusted
// roots) from files into a tls.Config usable by the transport layer.
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
)

var (
	errLoadCerts  = errors.New("failed to load certificates")
	errLoadRootCA = errors.New("failed to load root CA")
	errAppendCA   = errors.New("failed to append root ca tls.Config")
)

// Config describes client TLS material.
type Config struct {
	CertFile   string `yaml:"cert_file"`    // client certificate (mutual TLS)
	KeyFile    string `yaml:"key_file"`     // client private key
	CAFile     string `yaml:"ca_file"`      // trusted broker roots
	ServerName string `yaml:"server_name"`  // override for certificate verification
	Insecure   bool   `yaml:"insecure"`     // skip broker certificate verification
}

// Load returns a TLS configuration for client connections. A nil
// result with nil error means no TLS material was configured.
func (c *Config) Load() (*tls.Config, error) {
	if c == nil || (c.CertFile == "" && c.CAFile == "" && !c.Insecure && c.ServerName == "") {
		return nil, nil
	}

	config := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         c.ServerName,
		InsecureSkipVerify: c.Insecure,
	}

	if c.CertFile != "" || c.KeyFile != "" {
		certificate, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, errors.Join(errLoadCerts, err)
		}
		config.Certificates = []tls.Certificate{certificate}
	}

	if c.CAFile != "" {
		rootCA, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, errors.Join(errLoadRootCA, err)
		}
		config.RootCAs = x509.NewCertPool()
		if !config.RootCAs.AppendCertsFromPEM(rootCA) {
			return nil, errAppendCA
		}
	}

	return config, nil
}
