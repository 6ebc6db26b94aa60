package quic

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"math/big"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	quicgo "github.com/quic-go/quic-go"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

// Transport carries the byte stream on a single bidirectional QUIC stream.
// The service id is bound through ALPN, so a listener only accepts dialers
// asking for the same service.
type Transport struct {
	quicConf *quicgo.Config
}

func New() *Transport {
	return &Transport{quicConf: &quicgo.Config{KeepAlivePeriod: 15 * time.Second}}
}

func (t *Transport) Kind() transport.Kind { return transport.KindQUIC }

func alpn(service uuid.UUID) string { return "spp/" + service.String() }

func (t *Transport) Socket(peer transport.PeerInfo, service uuid.UUID) (transport.Socket, error) {
	if err := transport.CheckService(service); err != nil {
		return nil, err
	}
	if _, _, err := net.SplitHostPort(peer.Addr); err != nil {
		return nil, fmt.Errorf("%w: %v", transport.ErrInvalidAddress, err)
	}
	tlsConf := &tls.Config{
		InsecureSkipVerify: true, // peers are not authenticated at this layer
		NextProtos:         []string{alpn(service)},
		MinVersion:         tls.VersionTLS13,
	}
	return transport.NewSocket(peer, service, func(ctx context.Context) (transport.Conn, error) {
		c, err := quicgo.DialAddr(ctx, peer.Addr, tlsConf, t.quicConf)
		if err != nil {
			return nil, err
		}
		st, err := c.OpenStreamSync(ctx)
		if err != nil {
			_ = c.CloseWithError(0, "open stream failed")
			return nil, err
		}
		return &conn{c: c, st: st}, nil
	}), nil
}

func (t *Transport) Listen(ctx context.Context, address string, service uuid.UUID) (transport.Listener, error) {
	if err := transport.CheckService(service); err != nil {
		return nil, err
	}
	cert, err := selfSignedCert()
	if err != nil {
		return nil, err
	}
	tlsConf := &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{alpn(service)},
		MinVersion:   tls.VersionTLS13,
	}
	l, err := quicgo.ListenAddr(address, tlsConf, t.quicConf)
	if err != nil {
		return nil, err
	}
	lctx, cancel := context.WithCancel(ctx)
	ql := &listener{l: l, cancel: cancel, newCh: make(chan *conn, 1), closeCh: make(chan struct{})}
	go ql.acceptLoop(lctx)
	go func() { <-lctx.Done(); _ = ql.Close() }()
	return ql, nil
}

type listener struct {
	l       *quicgo.Listener
	cancel  context.CancelFunc
	newCh   chan *conn
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
		l.cancel()
		err = l.l.Close()
	})
	return err
}

func (l *listener) acceptLoop(ctx context.Context) {
	for {
		c, err := l.l.Accept(ctx)
		if err != nil {
			return
		}
		go l.awaitStream(ctx, c)
	}
}

// awaitStream waits for the dialer's stream, which becomes visible once the
// dialer writes its first bytes. A silent dialer only holds its own goroutine.
func (l *listener) awaitStream(ctx context.Context, c quicgo.Connection) {
	st, err := c.AcceptStream(ctx)
	if err != nil {
		_ = c.CloseWithError(0, "")
		return
	}
	select {
	case l.newCh <- &conn{c: c, st: st}:
	case <-l.closeCh:
		_ = c.CloseWithError(0, "")
	}
}

// conn adapts one QUIC stream to transport.Conn. Closing it closes the whole
// QUIC connection.
type conn struct {
	c  quicgo.Connection
	st quicgo.Stream
}

func (c *conn) Read(b []byte) (int, error)  { return c.st.Read(b) }
func (c *conn) Write(b []byte) (int, error) { return c.st.Write(b) }
func (c *conn) RemoteAddr() net.Addr        { return c.c.RemoteAddr() }

func (c *conn) Close() error {
	_ = c.st.Close()
	return c.c.CloseWithError(0, "")
}

// selfSignedCert generates a short-lived self-signed TLS certificate for the listener.
func selfSignedCert() (tls.Certificate, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return tls.Certificate{}, err
	}
	tmpl := x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}, nil
}
