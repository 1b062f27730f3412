// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package topics

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		wantErr bool
	}{
		{"simple", "sensors/temperature", false},
		{"single level", "status", false},
		{"leading slash", "/status", false},
		{"trailing slash", "status/", false},
		{"empty level", "a//b", false},
		{"dollar topic", "$SYS/broker/uptime", false},
		{"empty", "", true},
		{"plus wildcard", "sensors/+/temperature", true},
		{"hash wildcard", "sensors/#", true},
		{"embedded nul", "sensors/\x00bad", true},
		{"over length prefix", strings.Repeat("a", 65536), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.topic)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q): got err=%v, wantErr=%v", tt.topic, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		wantErr bool
	}{
		{"exact", "sensors/temperature", false},
		{"plus middle", "sensors/+/temperature", false},
		{"plus only", "+", false},
		{"hash only", "#", false},
		{"hash last", "sensors/#", false},
		{"multiple plus", "+/+/+", false},
		{"plus then hash", "sensors/+/#", false},
		{"empty", "", true},
		{"hash not last", "sensors/#/temperature", true},
		{"hash joined", "sensors/data#", true},
		{"plus joined", "sensors/data+", true},
		{"plus prefix", "+data/x", true},
		{"embedded nul", "a/\x00/b", true},
		{"over length prefix", strings.Repeat("a", 65536), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilter(tt.filter)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilter(%q): got err=%v, wantErr=%v", tt.filter, err, tt.wantErr)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		topic  string
		want   bool
	}{
		{"exact match", "a/b/c", "a/b/c", true},
		{"exact mismatch", "a/b/c", "a/b/d", false},
		{"plus matches level", "a/+/c", "a/b/c", true},
		{"plus single level only", "a/+", "a/b/c", false},
		{"plus empty level", "a/+/c", "a//c", true},
		{"hash matches rest", "a/#", "a/b/c", true},
		{"hash matches parent", "a/#", "a", true},
		{"hash matches everything", "#", "a/b/c", true},
		{"plus then hash", "a/+/#", "a/b/c/d", true},
		{"shorter topic", "a/b/c", "a/b", false},
		{"longer topic", "a/b", "a/b/c", false},
		{"leading wildcard skips dollar", "#", "$SYS/broker", false},
		{"plus skips dollar", "+/broker", "$SYS/broker", false},
		{"explicit dollar matches", "$SYS/broker", "$SYS/broker", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.filter, tt.topic); got != tt.want {
				t.Errorf("Match(%q, %q): got %v, want %v", tt.filter, tt.topic, got, tt.want)
			}
		})
	}
}
