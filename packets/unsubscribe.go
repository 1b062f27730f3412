// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/absmach/wiremq/codec"
)

// Unsubscribe represents the MQTT V3.1.1 UNSUBSCRIBE packet.
// Its fixed header carries the mandated flag bits 0010.
type Unsubscribe struct {
	FixedHeader
	ID     uint16
	Topics []string
}

func (u *Unsubscribe) String() string {
	return fmt.Sprintf("%s\nPacketID: %d\nTopics: %v\n", u.FixedHeader, u.ID, u.Topics)
}

func (u *Unsubscribe) Type() byte {
	return UnsubscribeType
}

func (u *Unsubscribe) Encode() []byte {
	var body []byte
	body = append(body, codec.EncodeUint16(u.ID)...)
	for _, topic := range u.Topics {
		body = append(body, codec.EncodeString(topic)...)
	}
	u.FixedHeader.RemainingLength = len(body)
	return append(u.FixedHeader.Encode(), body...)
}

func (u *Unsubscribe) Unpack(r io.Reader) error {
	var err error
	u.ID, err = codec.DecodeUint16(r)
	if err != nil {
		return truncated(err)
	}

	consumed := 2
	for consumed < u.RemainingLength {
		topic, err := codec.DecodeUTF8String(r)
		if err != nil {
			return truncated(err)
		}
		u.Topics = append(u.Topics, topic)
		consumed += 2 + len(topic)
	}
	return nil
}

func (u *Unsubscribe) Pack(w io.Writer) error {
	size := 2
	for _, topic := range u.Topics {
		if !fieldsFit(len(topic)) {
			return ErrPacketTooLarge
		}
		size += 2 + len(topic)
	}
	if size > codec.MaxRemainingLength {
		return ErrPacketTooLarge
	}
	_, err := w.Write(u.Encode())
	return err
}

func (u *Unsubscribe) Details() Details {
	return Details{Type: UnsubscribeType, ID: u.ID, QoS: u.QoS}
}
