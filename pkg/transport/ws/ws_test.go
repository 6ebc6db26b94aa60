package ws

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

func TestStreamOverWebSocket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr := New()
	ln, err := tr.Listen(ctx, "127.0.0.1:0", transport.SerialPortService)
	require.NoError(t, err)
	defer ln.Close()

	s, err := tr.Socket(transport.PeerInfo{Addr: ln.Addr().String()}, transport.SerialPortService)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Connect())

	srv, err := ln.Accept(ctx)
	require.NoError(t, err)
	defer srv.Close()

	// Two messages read back as one contiguous stream.
	_, err = s.Write([]byte("MOVE:1,"))
	require.NoError(t, err)
	_, err = s.Write([]byte("2\n"))
	require.NoError(t, err)

	buf := make([]byte, 9)
	_, err = io.ReadFull(srv, buf)
	require.NoError(t, err)
	assert.Equal(t, "MOVE:1,2\n", string(buf))
}

func TestWrongServiceIsRejected(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
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

func TestPath(t *testing.T) {
	assert.Equal(t, "/spp/00001101-0000-1000-8000-00805f9b34fb", Path(transport.SerialPortService))
}
