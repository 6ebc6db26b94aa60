//go:build windows

package winpipe

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/Microsoft/go-winio"
	"github.com/google/uuid"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

// PipeName returns the default pipe path for a service.
func PipeName(service uuid.UUID) string { return `\\.\pipe\spp-` + service.String() }

// Transport carries the byte stream over a Windows named pipe. An empty
// address selects the service's default pipe.
type Transport struct{}

func New() *Transport { return &Transport{} }

func (t *Transport) Kind() transport.Kind { return transport.KindWinPipe }

func resolve(addr string, service uuid.UUID) string {
	if strings.TrimSpace(addr) == "" {
		return PipeName(service)
	}
	return addr
}

func (t *Transport) Socket(peer transport.PeerInfo, service uuid.UUID) (transport.Socket, error) {
	if err := transport.CheckService(service); err != nil {
		return nil, err
	}
	path := resolve(peer.Addr, service)
	return transport.NewSocket(peer, service, func(ctx context.Context) (transport.Conn, error) {
		return winio.DialPipeContext(ctx, path)
	}), nil
}

func (t *Transport) Listen(ctx context.Context, pipeName string, service uuid.UUID) (transport.Listener, error) {
	if err := transport.CheckService(service); err != nil {
		return nil, err
	}
	l, err := winio.ListenPipe(resolve(pipeName, service), nil)
	if err != nil {
		return nil, err
	}
	wl := &listener{l: l, newCh: make(chan net.Conn, 1), closeCh: make(chan struct{})}
	go wl.acceptLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = wl.Close()
		case <-wl.closeCh:
		}
	}()
	return wl, nil
}

type listener struct {
	l       net.Listener
	newCh   chan net.Conn
	once    sync.Once
	closeCh chan struct{}
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
