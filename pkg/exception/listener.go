package exception

import "errors"

// Listener errors
var (
	// ErrEmptyAddress is returned when a listen or dial address is empty.
	ErrEmptyAddress = errors.New("listener: empty address")

	// ErrUnsupportedNetwork is returned for networks other than tcp and unix.
	ErrUnsupportedNetwork = errors.New("listener: unsupported network")
)
