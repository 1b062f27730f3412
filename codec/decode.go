// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrMaxLengthExceeded represents an error for invalid length int size.
// Length is positive integer of variable bytes integer.
var ErrMaxLengthExceeded = errors.New("max length value exceeded")

// ErrInvalidUTF8 indicates a string field that is not well-formed UTF-8
// or contains an embedded NUL character.
var ErrInvalidUTF8 = errors.New("invalid UTF-8 string")

func DecodeByte(r io.Reader) (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(r, b[:])
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func DecodeUint16(r io.Reader) (uint16, error) {
	var num [2]byte
	_, err := io.ReadFull(r, num[:])
	if err != nil {
		return 0, err
	}

	return uint16(num[1]) | uint16(num[0])<<8, nil
}

func DecodeUint32(r io.Reader) (uint32, error) {
	var num [4]byte
	_, err := io.ReadFull(r, num[:])
	if err != nil {
		return 0, err
	}

	return uint32(num[3]) | uint32(num[2])<<8 | uint32(num[1])<<16 | uint32(num[0])<<24, nil
}

func DecodeBytes(r io.Reader) ([]byte, error) {
	fieldLength, err := DecodeUint16(r)
	if err != nil {
		return nil, err
	}
	field := make([]byte, fieldLength)
	_, err = io.ReadFull(r, field)
	if err != nil {
		return nil, err
	}

	return field, nil
}

func DecodeString(r io.Reader) (string, error) {
	buf, err := DecodeBytes(r)
	return string(buf), err
}

// DecodeUTF8String decodes a length-prefixed string and rejects values
// the protocol forbids: malformed UTF-8 and embedded NUL.
func DecodeUTF8String(r io.Reader) (string, error) {
	s, err := DecodeString(r)
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(s) || strings.ContainsRune(s, 0x0000) {
		return "", ErrInvalidUTF8
	}
	return s, nil
}

// DecodeVBI is used for Variable Byte Integers used to
// encode length in a minimal way. The continuation bit may extend the
// value over at most four bytes; a fourth byte with the continuation
// bit still set is malformed.
func DecodeVBI(r io.Reader) (int, error) {
	var vbi uint32
	var multiplier uint32
	var b [1]byte
	for {
		if multiplier > 21 {
			return 0, ErrMaxLengthExceeded
		}
		_, err := io.ReadFull(r, b[:])
		if err != nil {
			return 0, err
		}
		digit := b[0]
		vbi |= uint32(digit&0x7F) << multiplier
		if (digit & 0x80) == 0 {
			break
		}
		multiplier += 7
	}
	return int(vbi), nil
}
