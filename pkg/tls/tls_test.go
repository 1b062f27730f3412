// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEmpty(t *testing.T) {
	var nilCfg *Config
	if cfg, err := nilCfg.Load(); cfg != nil || err != nil {
		t.Fatalf("nil config: got (%v, %v), want (nil, nil)", cfg, err)
	}

	empty := &Config{}
	if cfg, err := empty.Load(); cfg != nil || err != nil {
		t.Fatalf("empty config: got (%v, %v), want (nil, nil)", cfg, err)
	}
}

func TestLoadInsecure(t *testing.T) {
	cfg, err := (&Config{Insecure: true}).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil || !cfg.InsecureSkipVerify {
		t.Fatal("InsecureSkipVerify not set")
	}
}

func TestLoadServerName(t *testing.T) {
	cfg, err := (&Config{ServerName: "broker.example.com"}).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerName != "broker.example.com" {
		t.Errorf("ServerName: got %q", cfg.ServerName)
	}
}

func TestLoadCA(t *testing.T) {
	caFile := writeTestCA(t)

	cfg, err := (&Config{CAFile: caFile}).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RootCAs == nil {
		t.Fatal("RootCAs not populated")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := (&Config{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}).Load(); err == nil {
		t.Error("expected error for missing key pair")
	}

	if _, err := (&Config{CAFile: "/nonexistent/ca.pem"}).Load(); err == nil {
		t.Error("expected error for missing CA file")
	}

	garbage := filepath.Join(t.TempDir(), "ca.pem")
	os.WriteFile(garbage, []byte("not a certificate"), 0o600)
	if _, err := (&Config{CAFile: garbage}).Load(); err == nil {
		t.Error("expected error for malformed CA file")
	}
}

func writeTestCA(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test-ca"},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ca.pem")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer out.Close()
	if err := pem.Encode(out, &pem.Block{Type: "CERTIFICATE", Bytes: der}); err != nil {
		t.Fatalf("failed to encode PEM: %v", err)
	}
	return path
}
