package listener

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"volgrader/pkg/exception"
)

func TestNewServerEmptyAddress(t *testing.T) {
	if _, err := NewServer(NetworkTCP, ""); err != exception.ErrEmptyAddress {
		t.Fatalf("expected ErrEmptyAddress, got %v", err)
	}
}

func TestNewServerUnsupportedNetwork(t *testing.T) {
	if _, err := NewServer("udp", "127.0.0.1:0"); err != exception.ErrUnsupportedNetwork {
		t.Fatalf("expected ErrUnsupportedNetwork, got %v", err)
	}
}

func TestRemoveIfExistsRejectsNonSocket(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-socket")
	if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := RemoveIfExists(path); err != ErrPathNotSocket {
		t.Fatalf("expected ErrPathNotSocket, got %v", err)
	}
}

func TestAcceptBeforeListen(t *testing.T) {
	server, err := NewServer(NetworkTCP, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if _, err := server.Accept(); err != ErrNotListening {
		t.Fatalf("expected ErrNotListening, got %v", err)
	}
}

func TestServerDialAcceptTCP(t *testing.T) {
	server, err := NewServer(NetworkTCP, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := server.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()
	if err := server.Listen(); err != ErrAlreadyListening {
		t.Fatalf("expected ErrAlreadyListening, got %v", err)
	}

	acceptAndDial(t, server, NetworkTCP, server.Addr())
}

func TestServerDialAcceptUnix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grader.sock")

	server, err := NewServer(NetworkUnix, path)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := server.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	acceptAndDial(t, server, NetworkUnix, path)

	if err := server.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected socket path removed, got %v", err)
	}
}

func acceptAndDial(t *testing.T, server *Server, network, address string) {
	t.Helper()

	acceptCh := make(chan net.Conn, 1)
	errCh := make(chan error, 1)
	go func() {
		conn, err := server.Accept()
		if err != nil {
			errCh <- err
			return
		}
		acceptCh <- conn
	}()

	conn, err := Dial(network, address)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	timer := time.NewTimer(2 * time.Second)
	defer timer.Stop()

	select {
	case err := <-errCh:
		t.Fatalf("Accept: %v", err)
	case serverConn := <-acceptCh:
		serverConn.Close()
	case <-timer.C:
		t.Fatal("timeout waiting for accept")
	}
}
