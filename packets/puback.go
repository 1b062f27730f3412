// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/absmach/wiremq/codec"
)

// PubAck represents the MQTT V3.1.1 PUBACK packet.
type PubAck struct {
	FixedHeader
	ID uint16
}

func (p *PubAck) String() string {
	return fmt.Sprintf("%s\nPacketID: %d\n", p.FixedHeader, p.ID)
}

func (p *PubAck) Type() byte {
	return PubAckType
}

func (p *PubAck) Encode() []byte {
	body := codec.EncodeUint16(p.ID)
	p.FixedHeader.RemainingLength = len(body)
	return append(p.FixedHeader.Encode(), body...)
}

func (p *PubAck) Unpack(r io.Reader) error {
	var err error
	p.ID, err = codec.DecodeUint16(r)
	return truncated(err)
}

func (p *PubAck) Pack(w io.Writer) error {
	_, err := w.Write(p.Encode())
	return err
}

func (p *PubAck) Details() Details {
	return Details{Type: PubAckType, ID: p.ID}
}
