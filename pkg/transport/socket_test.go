package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipeDial(remote chan<- net.Conn) DialFunc {
	return func(ctx context.Context) (Conn, error) {
		a, b := net.Pipe()
		remote <- b
		return a, nil
	}
}

func TestSocketRoundTrip(t *testing.T) {
	remote := make(chan net.Conn, 1)
	s := NewSocket(PeerInfo{Addr: "pipe"}, SerialPortService, pipeDial(remote))
	defer s.Close()

	_, err := s.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, s.Connect())
	assert.ErrorIs(t, s.Connect(), ErrConnectInFlight)
	r := <-remote

	go func() { _, _ = s.Write([]byte("MOVE:1,2\n")) }()
	buf := make([]byte, 9)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, "MOVE:1,2\n", string(buf))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = r.Read(buf)
	assert.Error(t, err, "remote should see the close")
}

func TestSocketCloseInterruptsConnect(t *testing.T) {
	started := make(chan struct{})
	s := NewSocket(PeerInfo{Addr: "slow"}, SerialPortService, func(ctx context.Context) (Conn, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	done := make(chan error, 1)
	go func() { done <- s.Connect() }()
	<-started
	require.NoError(t, s.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Connect did not return after Close")
	}
	assert.ErrorIs(t, s.Connect(), ErrClosed)
}

func TestSocketDialError(t *testing.T) {
	boom := errors.New("refused")
	s := NewSocket(PeerInfo{Addr: "x"}, SerialPortService, func(context.Context) (Conn, error) { return nil, boom })
	assert.ErrorIs(t, s.Connect(), boom)
	assert.Equal(t, "x", s.Peer().Addr)
	assert.Equal(t, SerialPortService, s.Service())
	assert.Nil(t, s.RemoteAddr())
}

func TestCheckService(t *testing.T) {
	assert.NoError(t, CheckService(SerialPortService))
	assert.ErrorIs(t, CheckService(uuid.Nil), ErrInvalidService)
}

type stubTransport struct{ sockets int }

func (s *stubTransport) Kind() Kind { return KindMem }

func (s *stubTransport) Socket(peer PeerInfo, service uuid.UUID) (Socket, error) {
	s.sockets++
	return NewSocket(peer, service, func(context.Context) (Conn, error) { return nil, io.EOF }), nil
}

func (s *stubTransport) Listen(context.Context, string, uuid.UUID) (Listener, error) {
	return nil, errors.New("not supported")
}

func TestAuthorize(t *testing.T) {
	st := &stubTransport{}
	assert.Same(t, st, Authorize(st, nil))

	tr := Authorize(st, []string{" 10.0.0.2:7700 ", "Desk"})
	_, err := tr.Socket(PeerInfo{Addr: "10.0.0.9:7700"}, SerialPortService)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, 0, st.sockets)

	_, err = tr.Socket(PeerInfo{Addr: "10.0.0.2:7700"}, SerialPortService)
	require.NoError(t, err)
	_, err = tr.Socket(PeerInfo{Addr: "desk"}, SerialPortService)
	require.NoError(t, err)
	assert.Equal(t, 2, st.sockets)
	assert.Equal(t, KindMem, tr.Kind())
}

func TestPeerInfoNames(t *testing.T) {
	assert.Equal(t, "Phone", PeerInfo{Addr: "a:1", Name: "Phone"}.DisplayName())
	assert.Equal(t, "a:1", PeerInfo{Addr: "a:1", Name: "  "}.DisplayName())
	assert.Equal(t, "Phone (a:1)", PeerInfo{Addr: "a:1", Name: "Phone"}.String())
	assert.Equal(t, "a:1", PeerInfo{Addr: "a:1"}.String())
}
