// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestVBIRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value uint32
		width int
	}{
		{"zero", 0, 1},
		{"one byte max", 127, 1},
		{"two byte min", 128, 2},
		{"two byte max", 16383, 2},
		{"three byte min", 16384, 3},
		{"three byte max", 2097151, 3},
		{"four byte min", 2097152, 4},
		{"four byte max", MaxRemainingLength, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeVBI(int(tt.value))
			if len(encoded) != tt.width {
				t.Fatalf("EncodeVBI(%d): got %d bytes, want %d", tt.value, len(encoded), tt.width)
			}

			decoded, err := DecodeVBI(bytes.NewReader(encoded))
			if err != nil {
				t.Fatalf("DecodeVBI failed: %v", err)
			}
			if decoded != int(tt.value) {
				t.Errorf("round trip: got %d, want %d", decoded, tt.value)
			}
		})
	}
}

func TestEncodeVBIOutOfRange(t *testing.T) {
	// Values the four byte form cannot carry produce no encoding at
	// all; packet writers reject the frame before it is built.
	tests := []struct {
		name  string
		value int
	}{
		{"above bound", MaxRemainingLength + 1},
		{"negative", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeVBI(tt.value); got != nil {
				t.Fatalf("EncodeVBI(%d): got %d bytes, want nil", tt.value, len(got))
			}
		})
	}
}

func TestDecodeVBIOverlong(t *testing.T) {
	// Five continuation bytes exceed the four byte limit.
	_, err := DecodeVBI(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x01}))
	if !errors.Is(err, ErrMaxLengthExceeded) {
		t.Fatalf("got %v, want ErrMaxLengthExceeded", err)
	}
}

func TestDecodeVBITruncated(t *testing.T) {
	// Continuation bit set but the stream ends.
	_, err := DecodeVBI(bytes.NewReader([]byte{0x80}))
	if err == nil {
		t.Fatal("expected error for truncated input")
	}
}

func TestStringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"ascii", "sensors/temperature"},
		{"utf8", "датчики/温度"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeString(tt.in)

			out, err := DecodeString(bytes.NewReader(encoded))
			if err != nil {
				t.Fatalf("DecodeString failed: %v", err)
			}
			if out != tt.in {
				t.Errorf("got %q, want %q", out, tt.in)
			}
		})
	}
}

func TestDecodeUTF8StringRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"invalid utf8", append([]byte{0x00, 0x02}, 0xC3, 0x28)},
		{"embedded nul", append([]byte{0x00, 0x03}, 'a', 0x00, 'b')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeUTF8String(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrInvalidUTF8) {
				t.Fatalf("got %v, want ErrInvalidUTF8", err)
			}
		})
	}
}

func TestDecodeStringTruncated(t *testing.T) {
	// Declared length 5, only 2 bytes present.
	_, err := DecodeString(bytes.NewReader([]byte{0x00, 0x05, 'a', 'b'}))
	if err == nil {
		t.Fatal("expected error for truncated string")
	}
}

func TestUint16RoundTrip(t *testing.T) {
	for _, v := range []uint16{0, 1, 255, 256, 65535} {
		encoded := EncodeUint16(v)
		decoded, err := DecodeUint16(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("DecodeUint16(%d) failed: %v", v, err)
		}
		if decoded != v {
			t.Errorf("got %d, want %d", decoded, v)
		}
	}
}
