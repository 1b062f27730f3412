// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package packets implements the MQTT V3.1.1 control packet codec.
// Each packet type encodes to and decodes from the standard wire format:
// fixed header, variable header and payload.
package packets

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/absmach/wiremq/codec"
)

// ErrFailRemaining indicates remaining data does not match the size of sent data.
var ErrFailRemaining = errors.New("remaining data length does not match data size")

// ErrMalformedPacket indicates a packet that violates the wire format:
// unknown packet type, bad remaining-length encoding, reserved flag
// violations or a truncated variable header.
var ErrMalformedPacket = errors.New("malformed packet")

// ErrPacketTooLarge indicates an encoded packet whose remaining length
// exceeds the protocol maximum of 268,435,455 bytes, or a
// length-prefixed field that does not fit its 16-bit length prefix.
var ErrPacketTooLarge = errors.New("packet exceeds maximum remaining length")

// fieldsFit reports whether every length-prefixed field fits the
// 16-bit length prefix. Encoding an oversized field would silently
// truncate the prefix, so packet writers check before encoding.
func fieldsFit(lens ...int) bool {
	for _, l := range lens {
		if l > codec.MaxFieldLength {
			return false
		}
	}
	return true
}

// ErrInvalidUTF8 is returned for string fields containing malformed
// UTF-8 or embedded NUL.
var ErrInvalidUTF8 = codec.ErrInvalidUTF8

// Protocol version constant; this package speaks MQTT 3.1.1 only.
const V311 byte = 0x04

// Packet type constants.
const (
	ConnectType = iota + 1 // 0 value is forbidden
	ConnAckType
	PublishType
	PubAckType
	PubRecType
	PubRelType
	PubCompType
	SubscribeType
	SubAckType
	UnsubscribeType
	UnsubAckType
	PingReqType
	PingRespType
	DisconnectType
)

// PacketNames maps packet type constants to string names.
var PacketNames = map[byte]string{
	ConnectType:     "CONNECT",
	ConnAckType:     "CONNACK",
	PublishType:     "PUBLISH",
	PubAckType:      "PUBACK",
	PubRecType:      "PUBREC",
	PubRelType:      "PUBREL",
	PubCompType:     "PUBCOMP",
	SubscribeType:   "SUBSCRIBE",
	SubAckType:      "SUBACK",
	UnsubscribeType: "UNSUBSCRIBE",
	UnsubAckType:    "UNSUBACK",
	PingReqType:     "PINGREQ",
	PingRespType:    "PINGRESP",
	DisconnectType:  "DISCONNECT",
}

// ControlPacket is the interface for all MQTT control packets.
type ControlPacket interface {
	// Encode serializes the packet to bytes.
	Encode() []byte

	// Pack writes the encoded packet to the writer.
	Pack(w io.Writer) error

	// Unpack deserializes the packet from the reader.
	Unpack(r io.Reader) error

	// Type returns the packet type constant.
	Type() byte

	// String returns a human-readable representation.
	String() string
}

// FixedHeader represents the MQTT fixed header present in all packets.
type FixedHeader struct {
	PacketType      byte
	Dup             bool
	QoS             byte
	Retain          bool
	RemainingLength int
}

// Details contains packet metadata useful for QoS handling.
type Details struct {
	Type byte
	ID   uint16
	QoS  byte
}

// Detailer is an optional interface for packets that provide QoS details.
type Detailer interface {
	Details() Details
}

// String returns a human-readable representation of the fixed header.
func (fh FixedHeader) String() string {
	return fmt.Sprintf("type: %s dup: %t qos: %d retain: %t remaining_length: %d",
		PacketNames[fh.PacketType], fh.Dup, fh.QoS, fh.Retain, fh.RemainingLength)
}

// Encode serializes the fixed header to bytes.
func (fh FixedHeader) Encode() []byte {
	ret := []byte{fh.PacketType<<4 | codec.EncodeBool(fh.Dup)<<3 | fh.QoS<<1 | codec.EncodeBool(fh.Retain)}
	return append(ret, codec.EncodeVBI(fh.RemainingLength)...)
}

// Decode parses the fixed header from the type/flags byte and reader.
func (fh *FixedHeader) Decode(typeAndFlags byte, r io.Reader) error {
	fh.PacketType = typeAndFlags >> 4
	fh.Dup = (typeAndFlags>>3)&0x01 > 0
	fh.QoS = (typeAndFlags >> 1) & 0x03
	fh.Retain = typeAndFlags&0x01 > 0

	rl, err := codec.DecodeVBI(r)
	if err != nil {
		if errors.Is(err, codec.ErrMaxLengthExceeded) {
			return fmt.Errorf("%w: %v", ErrMalformedPacket, err)
		}
		return err
	}
	fh.RemainingLength = rl
	return nil
}

// NewControlPacket creates a new packet of the specified type with
// flag bits set to their mandated values.
func NewControlPacket(packetType byte) ControlPacket {
	switch packetType {
	case ConnectType:
		return &Connect{FixedHeader: FixedHeader{PacketType: ConnectType}}
	case ConnAckType:
		return &ConnAck{FixedHeader: FixedHeader{PacketType: ConnAckType}}
	case PublishType:
		return &Publish{FixedHeader: FixedHeader{PacketType: PublishType}}
	case PubAckType:
		return &PubAck{FixedHeader: FixedHeader{PacketType: PubAckType}}
	case PubRecType:
		return &PubRec{FixedHeader: FixedHeader{PacketType: PubRecType}}
	case PubRelType:
		return &PubRel{FixedHeader: FixedHeader{PacketType: PubRelType, QoS: 1}}
	case PubCompType:
		return &PubComp{FixedHeader: FixedHeader{PacketType: PubCompType}}
	case SubscribeType:
		return &Subscribe{FixedHeader: FixedHeader{PacketType: SubscribeType, QoS: 1}}
	case SubAckType:
		return &SubAck{FixedHeader: FixedHeader{PacketType: SubAckType}}
	case UnsubscribeType:
		return &Unsubscribe{FixedHeader: FixedHeader{PacketType: UnsubscribeType, QoS: 1}}
	case UnsubAckType:
		return &UnsubAck{FixedHeader: FixedHeader{PacketType: UnsubAckType}}
	case PingReqType:
		return &PingReq{FixedHeader: FixedHeader{PacketType: PingReqType}}
	case PingRespType:
		return &PingResp{FixedHeader: FixedHeader{PacketType: PingRespType}}
	case DisconnectType:
		return &Disconnect{FixedHeader: FixedHeader{PacketType: DisconnectType}}
	}
	return nil
}

// NewControlPacketWithHeader creates a new packet with the given fixed header.
func NewControlPacketWithHeader(fh FixedHeader) (ControlPacket, error) {
	if err := validateFlags(fh); err != nil {
		return nil, err
	}

	switch fh.PacketType {
	case ConnectType:
		return &Connect{FixedHeader: fh}, nil
	case ConnAckType:
		return &ConnAck{FixedHeader: fh}, nil
	case PublishType:
		return &Publish{FixedHeader: fh}, nil
	case PubAckType:
		return &PubAck{FixedHeader: fh}, nil
	case PubRecType:
		return &PubRec{FixedHeader: fh}, nil
	case PubRelType:
		return &PubRel{FixedHeader: fh}, nil
	case PubCompType:
		return &PubComp{FixedHeader: fh}, nil
	case SubscribeType:
		return &Subscribe{FixedHeader: fh}, nil
	case SubAckType:
		return &SubAck{FixedHeader: fh}, nil
	case UnsubscribeType:
		return &Unsubscribe{FixedHeader: fh}, nil
	case UnsubAckType:
		return &UnsubAck{FixedHeader: fh}, nil
	case PingReqType:
		return &PingReq{FixedHeader: fh}, nil
	case PingRespType:
		return &PingResp{FixedHeader: fh}, nil
	case DisconnectType:
		return &Disconnect{FixedHeader: fh}, nil
	}
	return nil, fmt.Errorf("%w: unsupported packet type 0x%x", ErrMalformedPacket, fh.PacketType)
}

// validateFlags rejects fixed-header flag bits the protocol reserves.
// PUBLISH carries real flags; PUBREL, SUBSCRIBE and UNSUBSCRIBE must
// carry 0010; everything else must carry 0000.
func validateFlags(fh FixedHeader) error {
	switch fh.PacketType {
	case PublishType:
		if fh.QoS > 2 {
			return fmt.Errorf("%w: publish QoS %d", ErrMalformedPacket, fh.QoS)
		}
		return nil
	case PubRelType, SubscribeType, UnsubscribeType:
		if fh.Dup || fh.Retain || fh.QoS != 1 {
			return fmt.Errorf("%w: reserved flags for %s", ErrMalformedPacket, PacketNames[fh.PacketType])
		}
		return nil
	default:
		if fh.Dup || fh.Retain || fh.QoS != 0 {
			return fmt.Errorf("%w: reserved flags for %s", ErrMalformedPacket, PacketNames[fh.PacketType])
		}
		return nil
	}
}

// ReadPacket reads a single MQTT V3.1.1 packet from the reader. Reads
// are incremental: the call blocks until the fixed header and the full
// remaining length are available, so it can be driven directly by a
// streaming transport.
func ReadPacket(r io.Reader) (ControlPacket, error) {
	var fh FixedHeader
	var b [1]byte

	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, err
	}

	if err := fh.Decode(b[0], r); err != nil {
		return nil, err
	}

	cp, err := NewControlPacketWithHeader(fh)
	if err != nil {
		return nil, err
	}

	packetBytes := make([]byte, fh.RemainingLength)
	n, err := io.ReadFull(r, packetBytes)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated packet body", ErrMalformedPacket)
		}
		return nil, err
	}
	if n != fh.RemainingLength {
		return nil, ErrFailRemaining
	}

	err = cp.Unpack(bytes.NewReader(packetBytes))
	return cp, err
}

// truncated maps short reads inside a variable header to ErrMalformedPacket
// so callers see one decode error taxonomy.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated variable header", ErrMalformedPacket)
	}
	return err
}
