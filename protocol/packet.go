package protocol

import "encoding/binary"

// Packet is a Header plus the three owned byte strings it frames:
// extras, key, and value. Packets are ephemeral, built per request,
// consumed on write, produced on read.
type Packet struct {
	Header Header
	Extras []byte
	Key    []byte
	Value  []byte
}

// SetExtras is the 8-byte extras layout used by set/add/replace and
// their quiet variants: 4 bytes of caller-defined flags followed by 4
// bytes of expiry. Flags byte 0 doubles as the Compressor's
// value-is-compressed marker.
type SetExtras struct {
	Flags  uint32
	Expire uint32
}

// Encode returns the 8-byte wire form of the extras.
func (e SetExtras) Encode() []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], e.Flags)
	binary.BigEndian.PutUint32(buf[4:8], e.Expire)
	return buf
}

// DecodeSetExtras reads an 8-byte extras buffer back into a SetExtras.
func DecodeSetExtras(buf []byte) SetExtras {
	return SetExtras{
		Flags:  binary.BigEndian.Uint32(buf[0:4]),
		Expire: binary.BigEndian.Uint32(buf[4:8]),
	}
}

func newRequest(opcode Opcode, extras, key, value []byte) *Packet {
	return &Packet{
		Header: Header{
			Magic:        MagicRequest,
			Opcode:       opcode,
			KeyLength:    uint16(len(key)),
			ExtrasLength: uint8(len(extras)),
			BodyLen:      uint32(len(extras) + len(key) + len(value)),
		},
		Extras: extras,
		Key:    key,
		Value:  value,
	}
}

func Get(key []byte) *Packet     { return newRequest(OpGet, nil, key, nil) }
func GetK(key []byte) *Packet    { return newRequest(OpGetK, nil, key, nil) }
func GetQ(key []byte) *Packet    { return newRequest(OpGetQ, nil, key, nil) }
func GetKQ(key []byte) *Packet   { return newRequest(OpGetKQ, nil, key, nil) }
func Delete(key []byte) *Packet  { return newRequest(OpDelete, nil, key, nil) }
func Noop() *Packet              { return newRequest(OpNoop, nil, nil, nil) }
func Version() *Packet           { return newRequest(OpVersion, nil, nil, nil) }

func Set(key, value []byte, extras SetExtras) *Packet {
	return newRequest(OpSet, extras.Encode(), key, value)
}

func SetQ(key, value []byte, extras SetExtras) *Packet {
	return newRequest(OpSetQ, extras.Encode(), key, value)
}

func Add(key, value []byte, extras SetExtras) *Packet {
	return newRequest(OpAdd, extras.Encode(), key, value)
}

func AddQ(key, value []byte, extras SetExtras) *Packet {
	return newRequest(OpAddQ, extras.Encode(), key, value)
}

func Replace(key, value []byte, extras SetExtras) *Packet {
	return newRequest(OpReplace, extras.Encode(), key, value)
}

func ReplaceQ(key, value []byte, extras SetExtras) *Packet {
	return newRequest(OpReplaceQ, extras.Encode(), key, value)
}

// Encode serializes the packet to its wire form: header fields
// (big-endian) followed by extras, then key, then value.
func (p *Packet) Encode() []byte {
	buf := make([]byte, 0, HeaderSize+len(p.Extras)+len(p.Key)+len(p.Value))
	buf = p.Header.Encode(buf)
	buf = append(buf, p.Extras...)
	buf = append(buf, p.Key...)
	buf = append(buf, p.Value...)
	return buf
}

// ParseBody splits a body buffer into extras/key/value according to
// header and wraps it as a Packet. It fails with ErrBodySizeMismatch
// when len(body) does not equal header.BodyLen.
func ParseBody(header Header, body []byte) (*Packet, error) {
	if uint32(len(body)) != header.BodyLen {
		return nil, ErrBodySizeMismatch
	}

	extras, rest := body[:header.ExtrasLength], body[header.ExtrasLength:]
	key, value := rest[:header.KeyLength], rest[header.KeyLength:]

	return &Packet{
		Header: header,
		Extras: extras,
		Key:    key,
		Value:  value,
	}, nil
}

// ErrorForStatus returns nil when the packet's header reports
// StatusNoError, and the corresponding Status error otherwise.
func (p *Packet) ErrorForStatus() error {
	if p.Header.VBucketOrStatus == 0 {
		return nil
	}
	return StatusFromUint16(p.Header.VBucketOrStatus)
}
