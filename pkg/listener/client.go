package listener

import (
	"net"

	"volgrader/pkg/exception"
)

// Dial opens a stream connection to a grader listening on network/address.
func Dial(network, address string) (net.Conn, error) {
	if address == "" {
		return nil, exception.ErrEmptyAddress
	}
	if err := checkNetwork(network); err != nil {
		return nil, err
	}
	return net.Dial(network, address)
}
