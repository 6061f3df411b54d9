package listener

import (
	"errors"
	"net"
	"os"

	"volgrader/pkg/exception"
)

var (
	// ErrNilServer is returned when a nil server receiver is used.
	ErrNilServer = errors.New("listener: nil server")
	// ErrAlreadyListening is returned when Listen is called twice.
	ErrAlreadyListening = errors.New("listener: already listening")
	// ErrNotListening is returned when Accept is called before Listen.
	ErrNotListening = errors.New("listener: not listening")
	// ErrPathNotSocket is returned when the existing unix path is not a socket.
	ErrPathNotSocket = errors.New("listener: path exists and is not a socket")
)

const (
	NetworkTCP  = "tcp"
	NetworkUnix = "unix"
)

// Server accepts stream connections on a tcp address or a unix socket path.
type Server struct {
	network string
	address string
	ln      net.Listener
}

// NewServer creates a server for the provided network and address.
func NewServer(network, address string) (*Server, error) {
	if address == "" {
		return nil, exception.ErrEmptyAddress
	}
	if err := checkNetwork(network); err != nil {
		return nil, err
	}
	return &Server{network: network, address: address}, nil
}

// Network returns the configured network.
func (s *Server) Network() string {
	if s == nil {
		return ""
	}
	return s.network
}

// Addr returns the bound address once listening, otherwise the configured one.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.address
}

// Listen starts listening on the configured address.
// For unix sockets it removes a stale socket file when present.
func (s *Server) Listen() error {
	if s == nil {
		return ErrNilServer
	}
	if s.ln != nil {
		return ErrAlreadyListening
	}

	switch s.network {
	case NetworkUnix:
		if err := RemoveIfExists(s.address); err != nil {
			return err
		}
		ln, err := net.ListenUnix(NetworkUnix, &net.UnixAddr{Name: s.address, Net: NetworkUnix})
		if err != nil {
			return err
		}
		ln.SetUnlinkOnClose(true)
		s.ln = ln
	default:
		ln, err := net.Listen(NetworkTCP, s.address)
		if err != nil {
			return err
		}
		s.ln = ln
	}
	return nil
}

// Accept waits for the next incoming connection.
func (s *Server) Accept() (net.Conn, error) {
	if s == nil {
		return nil, ErrNilServer
	}
	ln := s.ln
	if ln == nil {
		return nil, ErrNotListening
	}
	return ln.Accept()
}

// Close stops the listener.
func (s *Server) Close() error {
	if s == nil {
		return ErrNilServer
	}
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

// RemoveIfExists removes the socket file if it exists.
func RemoveIfExists(path string) error {
	if path == "" {
		return exception.ErrEmptyAddress
	}
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSocket == 0 {
		return ErrPathNotSocket
	}
	return os.Remove(path)
}

func checkNetwork(network string) error {
	switch network {
	case NetworkTCP, NetworkUnix:
		return nil
	default:
		return exception.ErrUnsupportedNetwork
	}
}
