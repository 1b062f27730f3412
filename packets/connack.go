// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"
	"io"

	"github.com/absmach/wiremq/codec"
)

// CONNACK return codes for MQTT V3.1.1.
const (
	Accepted           byte = 0x00
	RefusedProtocol    byte = 0x01
	RefusedIDRejected  byte = 0x02
	RefusedUnavailable byte = 0x03
	RefusedBadAuth     byte = 0x04
	RefusedNotAuth     byte = 0x05
)

// ConnAck represents the MQTT V3.1.1 CONNACK packet.
type ConnAck struct {
	FixedHeader
	SessionPresent bool
	ReturnCode     byte
}

func (c *ConnAck) String() string {
	return fmt.Sprintf("%s\nSessionPresent: %t\nReturnCode: %d\n", c.FixedHeader, c.SessionPresent, c.ReturnCode)
}

func (c *ConnAck) Type() byte {
	return ConnAckType
}

func (c *ConnAck) Encode() []byte {
	var body []byte
	var flags byte
	if c.SessionPresent {
		flags |= 0x01
	}
	body = append(body, flags)
	body = append(body, c.ReturnCode)

	c.FixedHeader.RemainingLength = len(body)
	return append(c.FixedHeader.Encode(), body...)
}

func (c *ConnAck) Unpack(r io.Reader) error {
	flags, err := codec.DecodeByte(r)
	if err != nil {
		return truncated(err)
	}
	c.SessionPresent = (flags & 0x01) > 0

	c.ReturnCode, err = codec.DecodeByte(r)
	if err != nil {
		return truncated(err)
	}
	return nil
}

func (c *ConnAck) Pack(w io.Writer) error {
	_, err := w.Write(c.Encode())
	return err
}

func (c *ConnAck) Details() Details {
	return Details{Type: ConnAckType}
}
