// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package codec implements the primitive field encodings shared by all
// MQTT control packets: length-prefixed bytes and strings, big-endian
// integers and the variable byte integer used for remaining length.
package codec

// MaxRemainingLength is the largest value a variable byte integer can
// encode in the four bytes the protocol allows.
const MaxRemainingLength = 268_435_455

// MaxFieldLength is the largest length-prefixed field the 16-bit
// length prefix can describe.
const MaxFieldLength = 65_535

// Encode methods rewrite some of bigEndian methods
// to avoid unnecessary function calls and checks.

func EncodeBytes(field []byte) []byte {
	v := len(field)
	b := []byte{byte(v >> 8), byte(v)}
	return append(b, field...)
}

func EncodeUint16(num uint16) []byte {
	return []byte{byte(num >> 8), byte(num)}
}

func EncodeUint32(num uint32) []byte {
	b := make([]byte, 4)
	b[0] = byte(num >> 24)
	b[1] = byte(num >> 16)
	b[2] = byte(num >> 8)
	b[3] = byte(num)
	return b
}

// EncodeVBI is used for Variable Byte Integers used to
// encode length in a minimal way. Values outside the representable
// range return nil; packet writers reject those frames before they
// reach the wire.
func EncodeVBI(num int) []byte {
	if num < 0 || num > MaxRemainingLength {
		return nil
	}
	var x int
	ret := [4]byte{}
	v := uint32(num)
	for {
		b := byte(v & 0x7F) // take 7 least significant bits
		v >>= 7
		if v > 0 {
			b |= 0x80 // set continuation bit
		}
		ret[x] = b
		x++
		if v == 0 {
			return ret[:x]
		}
	}
}

func EncodeString(field string) []byte {
	return EncodeBytes([]byte(field))
}

func EncodeBool(b bool) byte {
	if b {
		return 1
	}
	return 0
}
