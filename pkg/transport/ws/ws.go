// Package ws carries the byte stream over a WebSocket connection, one binary
// message per Write.
package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

// Path returns the HTTP path a service is served on.
func Path(service uuid.UUID) string { return "/spp/" + service.String() }

type Transport struct {
	dialer   *websocket.Dialer
	upgrader websocket.Upgrader
}

func New() *Transport {
	return &Transport{
		dialer:   &websocket.Dialer{},
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
}

func (t *Transport) Kind() transport.Kind { return transport.KindWebSocket }

func (t *Transport) Socket(peer transport.PeerInfo, service uuid.UUID) (transport.Socket, error) {
	if err := transport.CheckService(service); err != nil {
		return nil, err
	}
	if _, _, err := net.SplitHostPort(peer.Addr); err != nil {
		return nil, fmt.Errorf("%w: %v", transport.ErrInvalidAddress, err)
	}
	u := url.URL{Scheme: "ws", Host: peer.Addr, Path: Path(service)}
	return transport.NewSocket(peer, service, func(ctx context.Context) (transport.Conn, error) {
		c, resp, err := t.dialer.DialContext(ctx, u.String(), nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			return nil, err
		}
		return newConn(c), nil
	}), nil
}

func (t *Transport) Listen(ctx context.Context, address string, service uuid.UUID) (transport.Listener, error) {
	if err := transport.CheckService(service); err != nil {
		return nil, err
	}
	nl, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	wl := &listener{nl: nl, newCh: make(chan *conn, 1), closeCh: make(chan struct{})}
	mux := http.NewServeMux()
	mux.HandleFunc(Path(service), func(w http.ResponseWriter, r *http.Request) {
		c, err := t.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		select {
		case wl.newCh <- newConn(c):
		case <-wl.closeCh:
			_ = c.Close()
		}
	})
	wl.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = wl.srv.Serve(nl) }()
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
	nl      net.Listener
	srv     *http.Server
	newCh   chan *conn
	once    sync.Once
	closeCh chan struct{}
}

func (l *listener) Addr() net.Addr { return l.nl.Addr() }

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
		err = l.srv.Close()
	})
	return err
}

// conn adapts a message-oriented websocket.Conn to a byte stream.
type conn struct {
	c  *websocket.Conn
	wm sync.Mutex
	r  io.Reader
}

func newConn(c *websocket.Conn) *conn { return &conn{c: c} }

func (c *conn) RemoteAddr() net.Addr { return c.c.RemoteAddr() }

// Read must not be called concurrently.
func (c *conn) Read(b []byte) (int, error) {
	for {
		if c.r == nil {
			_, r, err := c.c.NextReader()
			if err != nil {
				return 0, err
			}
			c.r = r
		}
		n, err := c.r.Read(b)
		if errors.Is(err, io.EOF) {
			c.r = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (c *conn) Write(b []byte) (int, error) {
	c.wm.Lock()
	defer c.wm.Unlock()
	if err := c.c.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (c *conn) Close() error { return c.c.Close() }
