package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
)

// DialFunc establishes the underlying stream. It must return promptly once
// ctx is canceled.
type DialFunc func(ctx context.Context) (Conn, error)

// NewSocket returns a Socket whose Connect runs dial. Close cancels the dial
// context and closes the established conn, so a blocked Connect, Read or
// Write returns with an error.
func NewSocket(peer PeerInfo, service uuid.UUID, dial DialFunc) Socket {
	ctx, cancel := context.WithCancel(context.Background())
	return &socket{peer: peer, service: service, dial: dial, ctx: ctx, cancel: cancel}
}

type socket struct {
	peer    PeerInfo
	service uuid.UUID
	dial    DialFunc

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	conn       Conn
	connecting bool
	closed     bool
}

func (s *socket) Peer() PeerInfo     { return s.peer }
func (s *socket) Service() uuid.UUID { return s.service }

func (s *socket) Connect() error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.connecting || s.conn != nil:
		s.mu.Unlock()
		return ErrConnectInFlight
	}
	s.connecting = true
	s.mu.Unlock()

	c, err := s.dial(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.connecting = false
	if err != nil {
		if s.closed {
			return fmt.Errorf("%w: %v", ErrClosed, err)
		}
		return err
	}
	if s.closed {
		_ = c.Close()
		return ErrClosed
	}
	s.conn = c
	return nil
}

func (s *socket) current() (Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.conn == nil {
		return nil, ErrNotConnected
	}
	return s.conn, nil
}

func (s *socket) Write(b []byte) (int, error) {
	c, err := s.current()
	if err != nil {
		return 0, err
	}
	return c.Write(b)
}

func (s *socket) Read(b []byte) (int, error) {
	c, err := s.current()
	if err != nil {
		return 0, err
	}
	return c.Read(b)
}

func (s *socket) RemoteAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.RemoteAddr()
}

func (s *socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	c := s.conn
	s.mu.Unlock()

	s.cancel()
	if c != nil {
		return c.Close()
	}
	return nil
}
