package quic

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

func TestStreamOverQUIC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tr := New()
	ln, err := tr.Listen(ctx, "127.0.0.1:0", transport.SerialPortService)
	require.NoError(t, err)
	defer ln.Close()

	s, err := tr.Socket(transport.PeerInfo{Addr: ln.Addr().String()}, transport.SerialPortService)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Connect())

	_, err = s.Write([]byte("R_CLICK\n"))
	require.NoError(t, err)

	srv, err := ln.Accept(ctx)
	require.NoError(t, err)
	defer srv.Close()

	buf := make([]byte, 8)
	_, err = io.ReadFull(srv, buf)
	require.NoError(t, err)
	assert.Equal(t, "R_CLICK\n", string(buf))
}

func TestSilentDialerDoesNotBlockAccept(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tr := New()
	ln, err := tr.Listen(ctx, "127.0.0.1:0", transport.SerialPortService)
	require.NoError(t, err)
	defer ln.Close()
	peer := transport.PeerInfo{Addr: ln.Addr().String()}

	silent, err := tr.Socket(peer, transport.SerialPortService)
	require.NoError(t, err)
	defer silent.Close()
	require.NoError(t, silent.Connect())

	active, err := tr.Socket(peer, transport.SerialPortService)
	require.NoError(t, err)
	defer active.Close()
	require.NoError(t, active.Connect())
	_, err = active.Write([]byte("L_CLICK\n"))
	require.NoError(t, err)

	actx, acancel := context.WithTimeout(ctx, 3*time.Second)
	defer acancel()
	srv, err := ln.Accept(actx)
	require.NoError(t, err)
	defer srv.Close()

	buf := make([]byte, 8)
	_, err = io.ReadFull(srv, buf)
	require.NoError(t, err)
	assert.Equal(t, "L_CLICK\n", string(buf))
}

func TestALPNBindsService(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tr := New()
	ln, err := tr.Listen(ctx, "127.0.0.1:0", transport.SerialPortService)
	require.NoError(t, err)
	defer ln.Close()

	s, err := tr.Socket(transport.PeerInfo{Addr: ln.Addr().String()}, uuid.New())
	require.NoError(t, err)
	defer s.Close()
	assert.Error(t, s.Connect())
}

func TestSocketRejectsBadAddress(t *testing.T) {
	_, err := New().Socket(transport.PeerInfo{Addr: "nowhere"}, transport.SerialPortService)
	assert.ErrorIs(t, err, transport.ErrInvalidAddress)
}
