// Package protocol implements the memcached binary protocol: the
// 24-byte fixed header, opcode and status enumerations, and the
// Packet framing built on top of them.
//
// https://docs.memcached.org/protocols/binary/
package protocol

import "encoding/binary"

// HeaderSize is the fixed wire size of a request or response header.
const HeaderSize = 24

const (
	MagicRequest  = 0x80
	MagicResponse = 0x81
)

// Opcode identifies the operation a packet requests or responds to.
type Opcode uint8

const (
	OpGet       Opcode = 0x00
	OpSet       Opcode = 0x01
	OpAdd       Opcode = 0x02
	OpReplace   Opcode = 0x03
	OpDelete    Opcode = 0x04
	OpGetQ      Opcode = 0x09
	OpNoop      Opcode = 0x0a
	OpVersion   Opcode = 0x0b
	OpGetK      Opcode = 0x0c
	OpGetKQ     Opcode = 0x0d
	OpSetQ      Opcode = 0x11
	OpAddQ      Opcode = 0x12
	OpReplaceQ  Opcode = 0x13
)

// Header is the fixed 24-byte prefix of every request and response.
// All multi-byte fields are big-endian. VBucketOrStatus carries the
// vbucket id on a request and the status code on a response; this
// core only ever reads it as a status (the server picks vbuckets, not
// the client).
type Header struct {
	Magic            uint8
	Opcode           Opcode
	KeyLength        uint16
	ExtrasLength     uint8
	DataType         uint8
	VBucketOrStatus  uint16
	BodyLen          uint32
	Opaque           uint32
	CAS              uint64
}

// Encode appends the header's wire representation to dst.
func (h Header) Encode(dst []byte) []byte {
	var buf [HeaderSize]byte
	buf[0] = h.Magic
	buf[1] = byte(h.Opcode)
	binary.BigEndian.PutUint16(buf[2:4], h.KeyLength)
	buf[4] = h.ExtrasLength
	buf[5] = h.DataType
	binary.BigEndian.PutUint16(buf[6:8], h.VBucketOrStatus)
	binary.BigEndian.PutUint32(buf[8:12], h.BodyLen)
	binary.BigEndian.PutUint32(buf[12:16], h.Opaque)
	binary.BigEndian.PutUint64(buf[16:24], h.CAS)
	return append(dst, buf[:]...)
}

// DecodeRequestHeader parses the first HeaderSize bytes of buf as a
// request header. It does not validate the magic byte; callers that
// only ever read responses should use DecodeResponseHeader instead.
func DecodeRequestHeader(buf []byte) (Header, error) {
	return decodeHeader(buf, 0)
}

// DecodeResponseHeader parses the first HeaderSize bytes of buf as a
// response header, rejecting anything whose magic byte is not
// MagicResponse.
func DecodeResponseHeader(buf []byte) (Header, error) {
	return decodeHeader(buf, MagicResponse)
}

func decodeHeader(buf []byte, wantMagic uint8) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrPacketTooSmall
	}

	magic := buf[0]
	if wantMagic != 0 && magic != wantMagic {
		return Header{}, &InvalidMagicError{Magic: magic}
	}

	return Header{
		Magic:           magic,
		Opcode:          Opcode(buf[1]),
		KeyLength:       binary.BigEndian.Uint16(buf[2:4]),
		ExtrasLength:    buf[4],
		DataType:        buf[5],
		VBucketOrStatus: binary.BigEndian.Uint16(buf[6:8]),
		BodyLen:         binary.BigEndian.Uint32(buf[8:12]),
		Opaque:          binary.BigEndian.Uint32(buf[12:16]),
		CAS:             binary.BigEndian.Uint64(buf[16:24]),
	}, nil
}
