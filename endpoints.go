package memcached

import (
	"strings"

	"github.com/pkg/errors"
)

// ParseEndpoints splits a comma-separated "host:port,host:port" string
// into the ordered endpoint list New expects, trimming whitespace and
// skipping empty entries. It fails with ErrInvalidAddress if nothing
// usable remains.
func ParseEndpoints(addrs string) ([]string, error) {
	if addrs == "" {
		return nil, errors.Wrap(ErrInvalidAddress, "empty address")
	}

	parts := strings.Split(addrs, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		result = append(result, part)
	}

	if len(result) == 0 {
		return nil, errors.Wrap(ErrInvalidAddress, "no available address")
	}

	return result, nil
}
