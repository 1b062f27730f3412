// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package topics validates MQTT topic names and filters and matches
// topic names against wildcard filters.
package topics

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Common validation errors.
var (
	ErrInvalidTopicName   = errors.New("invalid topic name: contains wildcards or illegal characters")
	ErrInvalidTopicFilter = errors.New("invalid topic filter: misplaced wildcards or illegal characters")
)

// maxTopicLength is the 16-bit length prefix bound on UTF-8 encoded
// strings.
const maxTopicLength = 65_535

// ValidateName checks if the topic name is valid for PUBLISH (no wildcards).
func ValidateName(topic string) error {
	if topic == "" || len(topic) > maxTopicLength {
		return ErrInvalidTopicName
	}
	// "The Topic Name ... MUST NOT contain wildcard characters"
	if strings.ContainsAny(topic, "+#") {
		return ErrInvalidTopicName
	}
	if !utf8.ValidString(topic) || strings.ContainsRune(topic, 0x0000) {
		return ErrInvalidTopicName
	}
	return nil
}

// ValidateFilter checks if the topic filter is valid for SUBSCRIBE.
// '+' must occupy an entire level; '#' must occupy the last level.
func ValidateFilter(filter string) error {
	if filter == "" || len(filter) > maxTopicLength {
		return ErrInvalidTopicFilter
	}
	if !utf8.ValidString(filter) || strings.ContainsRune(filter, 0x0000) {
		return ErrInvalidTopicFilter
	}

	levels := strings.Split(filter, "/")
	for i, level := range levels {
		if strings.Contains(level, "#") {
			if level != "#" || i != len(levels)-1 {
				return ErrInvalidTopicFilter
			}
		}
		if strings.Contains(level, "+") && level != "+" {
			return ErrInvalidTopicFilter
		}
	}
	return nil
}
