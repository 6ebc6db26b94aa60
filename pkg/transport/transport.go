package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies the transport type.
type Kind int

const (
	KindUnknown Kind = iota
	KindTCP
	KindQUIC
	KindWebSocket
	KindWinPipe
	KindMem
)

func (k Kind) String() string {
	switch k {
	case KindTCP:
		return "tcp"
	case KindQUIC:
		return "quic"
	case KindWebSocket:
		return "ws"
	case KindWinPipe:
		return "winpipe"
	case KindMem:
		return "mem"
	default:
		return "unknown"
	}
}

// SerialPortService is the well-known Serial Port Profile service class id.
var SerialPortService = uuid.MustParse("00001101-0000-1000-8000-00805F9B34FB")

var (
	ErrClosed           = errors.New("transport: socket closed")
	ErrNotConnected     = errors.New("transport: socket not connected")
	ErrConnectInFlight  = errors.New("transport: connect already in progress")
	ErrPermissionDenied = errors.New("transport: permission denied")
	ErrInvalidService   = errors.New("transport: invalid service id")
	ErrInvalidAddress   = errors.New("transport: invalid address")
)

// PeerInfo identifies the remote endpoint. It is supplied by the caller and
// passed through untouched.
type PeerInfo struct {
	Addr string // transport-dependent address string
	Name string // human readable device name, optional
}

// DisplayName returns the peer name, falling back to its address.
func (p PeerInfo) DisplayName() string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return p.Addr
}

func (p PeerInfo) String() string {
	if p.Name == "" || p.Name == p.Addr {
		return p.Addr
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Addr)
}

// Conn is an established byte stream.
type Conn interface {
	io.ReadWriteCloser
	RemoteAddr() net.Addr
}

// Socket is an outbound endpoint bound to one peer and service.
// Connect may be called once. Close may be called at any time from any
// goroutine and unblocks a pending Connect, Read or Write.
type Socket interface {
	Conn
	Peer() PeerInfo
	Service() uuid.UUID
	// Connect performs the blocking handshake. It has no timeout of its own.
	Connect() error
}

// Listener accepts inbound connections.
type Listener interface {
	// Accept blocks until an inbound connection is available or ctx is done.
	Accept(ctx context.Context) (Conn, error)
	// Addr returns the local listening address.
	Addr() net.Addr
	// Close stops the listener and unblocks Accept.
	Close() error
}

// Transport creates sockets and listeners for a specific link kind.
type Transport interface {
	Kind() Kind
	// Socket creates an unconnected socket for peer. It must not block.
	Socket(peer PeerInfo, service uuid.UUID) (Socket, error)
	// Listen starts accepting inbound connections for service on address.
	Listen(ctx context.Context, address string, service uuid.UUID) (Listener, error)
}

// CheckService rejects the nil UUID.
func CheckService(service uuid.UUID) error {
	if service == uuid.Nil {
		return ErrInvalidService
	}
	return nil
}
