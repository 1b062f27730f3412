// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/absmach/wiremq/codec"
)

// PubRel represents the MQTT V3.1.1 PUBREL packet.
// Its fixed header carries the mandated flag bits 0010.
type PubRel struct {
	FixedHeader
	ID uint16
}

func (p *PubRel) String() string {
	return fmt.Sprintf("%s\nPacketID: %d\n", p.FixedHeader, p.ID)
}

func (p *PubRel) Type() byte {
	return PubRelType
}

func (p *PubRel) Encode() []byte {
	body := codec.EncodeUint16(p.ID)
	p.FixedHeader.RemainingLength = len(body)
	return append(p.FixedHeader.Encode(), body...)
}

func (p *PubRel) Unpack(r io.Reader) error {
	var err error
	p.ID, err = codec.DecodeUint16(r)
	return truncated(err)
}

func (p *PubRel) Pack(w io.Writer) error {
	_, err := w.Write(p.Encode())
	return err
}

func (p *PubRel) Details() Details {
	return Details{Type: PubRelType, ID: p.ID, QoS: p.QoS}
}
