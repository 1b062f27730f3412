// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/absmach/wiremq/codec"
)

// SubAck return codes for MQTT V3.1.1.
const (
	SubAckGrantedQoS0 = 0x00
	SubAckGrantedQoS1 = 0x01
	SubAckGrantedQoS2 = 0x02
	SubAckFailure     = 0x80
)

// SubAck represents the MQTT V3.1.1 SUBACK packet.
type SubAck struct {
	FixedHeader
	ID          uint16
	ReturnCodes []byte
}

func (s *SubAck) String() string {
	return fmt.Sprintf("%s\nPacketID: %d\nReturnCodes: %v\n", s.FixedHeader, s.ID, s.ReturnCodes)
}

func (s *SubAck) Type() byte {
	return SubAckType
}

func (s *SubAck) Encode() []byte {
	var body []byte
	body = append(body, codec.EncodeUint16(s.ID)...)
	body = append(body, s.ReturnCodes...)
	s.FixedHeader.RemainingLength = len(body)
	return append(s.FixedHeader.Encode(), body...)
}

func (s *SubAck) Unpack(r io.Reader) error {
	var err error
	s.ID, err = codec.DecodeUint16(r)
	if err != nil {
		return truncated(err)
	}
	s.ReturnCodes, err = io.ReadAll(r)
	return err
}

func (s *SubAck) Pack(w io.Writer) error {
	_, err := w.Write(s.Encode())
	return err
}

func (s *SubAck) Details() Details {
	return Details{Type: SubAckType, ID: s.ID}
}
