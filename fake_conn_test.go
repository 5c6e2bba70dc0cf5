package memcached

import (
	"bytes"

	"github.com/memcachedcore/client/protocol"
)

// fakeConn is a minimal in-memory stand-in for one memcached node: it
// decodes whatever request WritePacket sends it, applies it to an
// in-process key/value store, and queues up the wire-encoded reply
// (or no reply at all, for a quiet opcode that doesn't warrant one)
// for the next Read. It exists purely so the Client's pipelining and
// routing logic can be exercised end-to-end without a real server.
type fakeConn struct {
	store map[string]storedValue
	out   bytes.Buffer
}

type storedValue struct {
	flags uint32
	value []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{store: make(map[string]storedValue)}
}

func (c *fakeConn) Read(buf []byte) (int, error) {
	return c.out.Read(buf)
}

func (c *fakeConn) Write(buf []byte) error {
	header, err := protocol.DecodeRequestHeader(buf)
	if err != nil {
		return err
	}

	pkt, err := protocol.ParseBody(header, buf[protocol.HeaderSize:])
	if err != nil {
		return err
	}

	switch pkt.Header.Opcode {
	case protocol.OpGet, protocol.OpGetK:
		c.reply(pkt, pkt.Header.Opcode == protocol.OpGetK, true)
	case protocol.OpGetQ, protocol.OpGetKQ:
		c.reply(pkt, pkt.Header.Opcode == protocol.OpGetKQ, false)
	case protocol.OpSet, protocol.OpAdd, protocol.OpReplace:
		c.respond(pkt.Header.Opcode, c.applyStore(pkt), nil, nil)
	case protocol.OpSetQ, protocol.OpAddQ, protocol.OpReplaceQ:
		if status := c.applyStore(pkt); status != protocol.StatusNoError {
			c.respond(pkt.Header.Opcode, status, pkt.Key, nil)
		}
	case protocol.OpDelete:
		if _, ok := c.store[string(pkt.Key)]; ok {
			delete(c.store, string(pkt.Key))
			c.respond(pkt.Header.Opcode, protocol.StatusNoError, nil, nil)
		} else {
			c.respond(pkt.Header.Opcode, protocol.StatusKeyNotFound, nil, nil)
		}
	case protocol.OpNoop:
		c.respond(pkt.Header.Opcode, protocol.StatusNoError, nil, nil)
	}

	return nil
}

// reply handles the get family. nonQuietAlwaysReplies is true for
// get/getk, which the server answers even on a miss; it is false for
// getq/getkq, which stay silent on a miss.
func (c *fakeConn) reply(pkt *protocol.Packet, includeKey, nonQuietAlwaysReplies bool) {
	var key []byte
	if includeKey {
		key = pkt.Key
	}

	v, ok := c.store[string(pkt.Key)]
	if ok {
		c.respond(pkt.Header.Opcode, protocol.StatusNoError, key, v.value)
		return
	}
	if nonQuietAlwaysReplies {
		c.respond(pkt.Header.Opcode, protocol.StatusKeyNotFound, key, nil)
	}
}

func (c *fakeConn) applyStore(pkt *protocol.Packet) protocol.Status {
	_, exists := c.store[string(pkt.Key)]

	switch pkt.Header.Opcode {
	case protocol.OpAdd, protocol.OpAddQ:
		if exists {
			return protocol.StatusKeyExists
		}
	case protocol.OpReplace, protocol.OpReplaceQ:
		if !exists {
			return protocol.StatusItemNotStored
		}
	}

	extras := protocol.DecodeSetExtras(pkt.Extras)
	c.store[string(pkt.Key)] = storedValue{
		flags: extras.Flags,
		value: append([]byte(nil), pkt.Value...),
	}
	return protocol.StatusNoError
}

func (c *fakeConn) respond(opcode protocol.Opcode, status protocol.Status, key, value []byte) {
	header := protocol.Header{
		Magic:           protocol.MagicResponse,
		Opcode:          opcode,
		KeyLength:       uint16(len(key)),
		VBucketOrStatus: uint16(status),
		BodyLen:         uint32(len(key) + len(value)),
	}
	pkt := &protocol.Packet{Header: header, Key: key, Value: value}
	c.out.Write(pkt.Encode())
}
