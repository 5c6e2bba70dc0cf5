package protocol

import "fmt"

// Status is the 16-bit outcome code carried in a response header.
// Conversion from the wire value is total: any code this core does
// not recognize maps to StatusUnknown rather than failing to parse.
type Status uint16

const (
	StatusNoError                       Status = 0x0000
	StatusKeyNotFound                   Status = 0x0001
	StatusKeyExists                     Status = 0x0002
	StatusValueTooLarge                 Status = 0x0003
	StatusInvalidArguments              Status = 0x0004
	StatusItemNotStored                 Status = 0x0005
	StatusIncrDecrOnNonNumericValue     Status = 0x0006
	StatusVBucketBelongsToAnotherServer Status = 0x0007
	StatusAuthenticationError           Status = 0x0008
	StatusAuthenticationContinue        Status = 0x0009
	StatusUnknownCommand                Status = 0x0081
	StatusOutOfMemory                   Status = 0x0082
	StatusNotSupported                  Status = 0x0083
	StatusInternalError                 Status = 0x0084
	StatusBusy                          Status = 0x0085
	StatusTemporaryFailure               Status = 0x0086

	// StatusUnknown is the catch-all for any status code not listed
	// above; the conversion in StatusFromUint16 never fails.
	StatusUnknown Status = 0xffff
)

// StatusFromUint16 converts a response's vbucket_or_status field into
// a Status. Unrecognized codes map to StatusUnknown.
func StatusFromUint16(code uint16) Status {
	switch Status(code) {
	case StatusNoError, StatusKeyNotFound, StatusKeyExists, StatusValueTooLarge,
		StatusInvalidArguments, StatusItemNotStored, StatusIncrDecrOnNonNumericValue,
		StatusVBucketBelongsToAnotherServer, StatusAuthenticationError,
		StatusAuthenticationContinue, StatusUnknownCommand, StatusOutOfMemory,
		StatusNotSupported, StatusInternalError, StatusBusy, StatusTemporaryFailure:
		return Status(code)
	default:
		return StatusUnknown
	}
}

func (s Status) Error() string {
	return s.String()
}

func (s Status) String() string {
	switch s {
	case StatusNoError:
		return "no error"
	case StatusKeyNotFound:
		return "key not found"
	case StatusKeyExists:
		return "key exists"
	case StatusValueTooLarge:
		return "value too large"
	case StatusInvalidArguments:
		return "invalid arguments"
	case StatusItemNotStored:
		return "item not stored"
	case StatusIncrDecrOnNonNumericValue:
		return "incr/decr on non-numeric value"
	case StatusVBucketBelongsToAnotherServer:
		return "vbucket belongs to another server"
	case StatusAuthenticationError:
		return "authentication error"
	case StatusAuthenticationContinue:
		return "authentication continue"
	case StatusUnknownCommand:
		return "unknown command"
	case StatusOutOfMemory:
		return "out of memory"
	case StatusNotSupported:
		return "not supported"
	case StatusInternalError:
		return "internal error"
	case StatusBusy:
		return "busy"
	case StatusTemporaryFailure:
		return "temporary failure"
	default:
		return fmt.Sprintf("unknown status 0x%04x", uint16(s))
	}
}

// ProtocolError is a framing failure: the bytes on the wire do not
// describe a well-formed packet. It is distinct from Status, which is
// a well-formed response the server used to report a failure.
type ProtocolError struct {
	msg string
}

func (e *ProtocolError) Error() string { return e.msg }

var (
	// ErrPacketTooSmall is returned when fewer than HeaderSize bytes
	// are available to parse a header.
	ErrPacketTooSmall = &ProtocolError{msg: "packet too small"}
	// ErrBodySizeMismatch is returned when a body buffer's length
	// disagrees with its header's BodyLen.
	ErrBodySizeMismatch = &ProtocolError{msg: "body size mismatch"}
)

// InvalidMagicError is returned when a response's magic byte is not
// MagicResponse.
type InvalidMagicError struct {
	Magic uint8
}

func (e *InvalidMagicError) Error() string {
	return fmt.Sprintf("invalid magic byte: 0x%02x", e.Magic)
}
