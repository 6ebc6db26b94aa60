package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

// Transport implements a raw TCP byte stream transport. The service id is
// recorded on the socket but not sent on the wire.
type Transport struct {
	dialer net.Dialer
}

func New() *Transport { return &Transport{} }

func (t *Transport) Kind() transport.Kind { return transport.KindTCP }

func (t *Transport) Socket(peer transport.PeerInfo, service uuid.UUID) (transport.Socket, error) {
	if err := transport.CheckService(service); err != nil {
		return nil, err
	}
	if _, _, err := net.SplitHostPort(peer.Addr); err != nil {
		return nil, fmt.Errorf("%w: %v", transport.ErrInvalidAddress, err)
	}
	return transport.NewSocket(peer, service, func(ctx context.Context) (transport.Conn, error) {
		return t.dialer.DialContext(ctx, "tcp", peer.Addr)
	}), nil
}

func (t *Transport) Listen(ctx context.Context, address string, service uuid.UUID) (transport.Listener, error) {
	if err := transport.CheckService(service); err != nil {
		return nil, err
	}
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	tl := &listener{l: l, newCh: make(chan net.Conn, 1), closeCh: make(chan struct{})}
	go tl.acceptLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = tl.Close()
		case <-tl.closeCh:
		}
	}()
	return tl, nil
}

type listener struct {
	l       net.Listener
	newCh   chan net.Conn
	closeCh chan struct{}
	once    sync.Once
}

func (l *listener) Addr() net.Addr { return l.l.Addr() }

func (l *listener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closeCh:
		return nil, transport.ErrClosed
	case c := <-l.newCh:
		return c, nil
	}
}

func (l *listener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.closeCh)
		err = l.l.Close()
	})
	return err
}

func (l *listener) acceptLoop() {
	for {
		c, err := l.l.Accept()
		if err != nil {
			return
		}
		select {
		case l.newCh <- c:
		case <-l.closeCh:
			_ = c.Close()
			return
		}
	}
}
