// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/absmach/wiremq/codec"
)

// PubComp represents the MQTT V3.1.1 PUBCOMP packet.
type PubComp struct {
	FixedHeader
	ID uint16
}

func (p *PubComp) String() string {
	return fmt.Sprintf("%s\nPacketID: %d\n", p.FixedHeader, p.ID)
}

func (p *PubComp) Type() byte {
	return PubCompType
}

func (p *PubComp) Encode() []byte {
	body := codec.EncodeUint16(p.ID)
	p.FixedHeader.RemainingLength = len(body)
	return append(p.FixedHeader.Encode(), body...)
}

func (p *PubComp) Unpack(r io.Reader) error {
	var err error
	p.ID, err = codec.DecodeUint16(r)
	return truncated(err)
}

func (p *PubComp) Pack(w io.Writer) error {
	_, err := w.Write(p.Encode())
	return err
}

func (p *PubComp) Details() Details {
	return Details{Type: PubCompType, ID: p.ID}
}
