package memcached

import "github.com/pkg/errors"

var (
	// ErrInvalidAddress is returned by ParseEndpoints when the address
	// string is empty or contains only blank entries.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrEmptyKeyList is returned by the multi-key operations when
	// given no keys at all; there is nothing to pipeline.
	ErrEmptyKeyList = errors.New("empty key list")
)
