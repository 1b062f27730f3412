// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/absmach/wiremq/codec"
)

// Publish represents the MQTT V3.1.1 PUBLISH packet.
type Publish struct {
	FixedHeader
	TopicName string
	ID        uint16 // Packet identifier, present only for QoS > 0
	Payload   []byte
}

func (p *Publish) String() string {
	return fmt.Sprintf("%s\nTopic: %s\nPacketID: %d\nPayload: %s\n", p.FixedHeader, p.TopicName, p.ID, string(p.Payload))
}

func (p *Publish) Type() byte {
	return PublishType
}

func (p *Publish) Encode() []byte {
	var body []byte
	body = append(body, codec.EncodeString(p.TopicName)...)
	if p.QoS > 0 {
		body = append(body, codec.EncodeUint16(p.ID)...)
	}
	body = append(body, p.Payload...)
	p.FixedHeader.RemainingLength = len(body)
	return append(p.FixedHeader.Encode(), body...)
}

func (p *Publish) Unpack(r io.Reader) error {
	var err error
	p.TopicName, err = codec.DecodeUTF8String(r)
	if err != nil {
		return truncated(err)
	}
	if p.QoS > 0 {
		p.ID, err = codec.DecodeUint16(r)
		if err != nil {
			return truncated(err)
		}
	}
	p.Payload, err = io.ReadAll(r)
	return err
}

func (p *Publish) Pack(w io.Writer) error {
	if !fieldsFit(len(p.TopicName)) {
		return ErrPacketTooLarge
	}
	if len(p.Payload)+len(p.TopicName)+4 > codec.MaxRemainingLength {
		return ErrPacketTooLarge
	}
	_, err := w.Write(p.Encode())
	return err
}

func (p *Publish) Details() Details {
	return Details{Type: PublishType, ID: p.ID, QoS: p.QoS}
}
