// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/absmach/wiremq/codec"
)

// Topic is a single topic filter with its requested QoS.
type Topic struct {
	Name string
	QoS  byte
}

// Subscribe represents the MQTT V3.1.1 SUBSCRIBE packet.
// Its fixed header carries the mandated flag bits 0010.
type Subscribe struct {
	FixedHeader
	ID     uint16
	Topics []Topic
}

func (s *Subscribe) String() string {
	return fmt.Sprintf("%s\nPacketID: %d\nTopics: %v\n", s.FixedHeader, s.ID, s.Topics)
}

func (s *Subscribe) Type() byte {
	return SubscribeType
}

func (s *Subscribe) Encode() []byte {
	var body []byte
	body = append(body, codec.EncodeUint16(s.ID)...)
	for _, t := range s.Topics {
		body = append(body, codec.EncodeString(t.Name)...)
		body = append(body, t.QoS)
	}
	s.FixedHeader.RemainingLength = len(body)
	return append(s.FixedHeader.Encode(), body...)
}

func (s *Subscribe) Unpack(r io.Reader) error {
	var err error
	s.ID, err = codec.DecodeUint16(r)
	if err != nil {
		return truncated(err)
	}

	consumed := 2
	for consumed < s.RemainingLength {
		name, err := codec.DecodeUTF8String(r)
		if err != nil {
			return truncated(err)
		}
		qos, err := codec.DecodeByte(r)
		if err != nil {
			return truncated(err)
		}
		s.Topics = append(s.Topics, Topic{Name: name, QoS: qos})
		consumed += 2 + len(name) + 1
	}
	return nil
}

func (s *Subscribe) Pack(w io.Writer) error {
	size := 2
	for _, t := range s.Topics {
		if !fieldsFit(len(t.Name)) {
			return ErrPacketTooLarge
		}
		size += 2 + len(t.Name) + 1
	}
	if size > codec.MaxRemainingLength {
		return ErrPacketTooLarge
	}
	_, err := w.Write(s.Encode())
	return err
}

func (s *Subscribe) Details() Details {
	return Details{Type: SubscribeType, ID: s.ID, QoS: s.QoS}
}
