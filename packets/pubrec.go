// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/absmach/wiremq/codec"
)

// PubRec represents the MQTT V3.1.1 PUBREC packet.
type PubRec struct {
	FixedHeader
	ID uint16
}

func (p *PubRec) String() string {
	return fmt.Sprintf("%s\nPacketID: %d\n", p.FixedHeader, p.ID)
}

func (p *PubRec) Type() byte {
	return PubRecType
}

func (p *PubRec) Encode() []byte {
	body := codec.EncodeUint16(p.ID)
	p.FixedHeader.RemainingLength = len(body)
	return append(p.FixedHeader.Encode(), body...)
}

func (p *PubRec) Unpack(r io.Reader) error {
	var err error
	p.ID, err = codec.DecodeUint16(r)
	return truncated(err)
}

func (p *PubRec) Pack(w io.Writer) error {
	_, err := w.Write(p.Encode())
	return err
}

func (p *PubRec) Details() Details {
	return Details{Type: PubRecType, ID: p.ID}
}
