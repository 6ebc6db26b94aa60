package mem

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

var ErrNoListener = errors.New("mem: no such listener")

// Transport is an in-process transport using net.Pipe. Connect blocks until
// the listener side calls Accept, which makes it useful for tests that need
// an attempt to stay in flight.
type Transport struct {
	mu        sync.Mutex
	listeners map[string]*listener
}

func New() *Transport { return &Transport{listeners: make(map[string]*listener)} }

func (t *Transport) Kind() transport.Kind { return transport.KindMem }

func key(name string, service uuid.UUID) string { return name + "/" + service.String() }

func (t *Transport) Socket(peer transport.PeerInfo, service uuid.UUID) (transport.Socket, error) {
	if err := transport.CheckService(service); err != nil {
		return nil, err
	}
	if strings.TrimSpace(peer.Addr) == "" {
		return nil, fmt.Errorf("%w: empty name", transport.ErrInvalidAddress)
	}
	k := key(peer.Addr, service)
	return transport.NewSocket(peer, service, func(ctx context.Context) (transport.Conn, error) {
		return t.dial(ctx, k)
	}), nil
}

func (t *Transport) dial(ctx context.Context, k string) (transport.Conn, error) {
	t.mu.Lock()
	l := t.listeners[k]
	t.mu.Unlock()
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoListener, k)
	}
	srv, cli := net.Pipe()
	select {
	case l.newCh <- srv:
		return cli, nil
	case <-ctx.Done():
	case <-l.closeCh:
	}
	_ = srv.Close()
	_ = cli.Close()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("%w: mem listener %s", transport.ErrClosed, k)
}

func (t *Transport) Listen(ctx context.Context, name string, service uuid.UUID) (transport.Listener, error) {
	if err := transport.CheckService(service); err != nil {
		return nil, err
	}
	k := key(name, service)
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.listeners[k]; ok {
		return nil, errors.New("mem: listener already exists")
	}
	l := &listener{name: name, newCh: make(chan net.Conn), closeCh: make(chan struct{})}
	t.listeners[k] = l
	go func() {
		select {
		case <-ctx.Done():
		case <-l.closeCh:
		}
		_ = l.Close()
		t.mu.Lock()
		if t.listeners[k] == l {
			delete(t.listeners, k)
		}
		t.mu.Unlock()
	}()
	return l, nil
}

type listener struct {
	name    string
	newCh   chan net.Conn
	once    sync.Once
	closeCh chan struct{}
}

func (l *listener) Addr() net.Addr { return memAddr(l.name) }

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
	l.once.Do(func() { close(l.closeCh) })
	return nil
}

type memAddr string

func (a memAddr) Network() string { return "mem" }
func (a memAddr) String() string  { return string(a) }
