package receiver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Gajda90/AndroidMouse/pkg/command"
	"github.com/Gajda90/AndroidMouse/pkg/link"
	"github.com/Gajda90/AndroidMouse/pkg/transport"
	"github.com/Gajda90/AndroidMouse/pkg/transport/mem"
)

type collector struct {
	mu   sync.Mutex
	cmds []command.Command
	ch   chan struct{}
}

func newCollector() *collector { return &collector{ch: make(chan struct{}, 128)} }

func (c *collector) Handle(_ context.Context, cmd command.Command) error {
	c.mu.Lock()
	c.cmds = append(c.cmds, cmd)
	c.mu.Unlock()
	c.ch <- struct{}{}
	return nil
}

func (c *collector) wait(t *testing.T, n int) []command.Command {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d commands", i, n)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]command.Command(nil), c.cmds...)
}

type statusLog struct {
	mu sync.Mutex
	ss []string
}

func (s *statusLog) add(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ss = append(s.ss, msg)
}

func (s *statusLog) has(msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.ss {
		if x == msg {
			return true
		}
	}
	return false
}

func startServer(t *testing.T, tr transport.Transport, codec command.Codec, h Handler, st *statusLog) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{Transport: tr, Codec: codec, Handler: h, Logger: zap.NewNop(), OnStatus: st.add}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, "desk", transport.SerialPortService) }()
	require.Eventually(t, func() bool { return st.has(StatusListening) }, 2*time.Second, 5*time.Millisecond)
	return cancel, errCh
}

func connect(t *testing.T, tr transport.Transport) *link.Manager {
	t.Helper()
	m := link.NewManager(tr, nil, link.WithLogger(zap.NewNop()))
	t.Cleanup(m.Close)
	m.Connect(transport.PeerInfo{Addr: "desk", Name: "Desk"})
	require.Eventually(t, func() bool { return m.State().Phase == link.Connected }, 2*time.Second, 5*time.Millisecond)
	return m
}

func TestServeDispatchesCommandsFromLink(t *testing.T) {
	reg, err := command.DefaultRegistry()
	require.NoError(t, err)

	for _, format := range reg.Formats() {
		t.Run(format, func(t *testing.T) {
			codec, err := reg.Get(format)
			require.NoError(t, err)

			tr := mem.New()
			col := newCollector()
			st := &statusLog{}
			cancel, errCh := startServer(t, tr, codec, col, st)

			m := connect(t, tr)
			want := []command.Command{command.MoveBy(4, -2), command.LeftClick(), command.RightClick()}
			for _, c := range want {
				b, err := codec.Encode(c)
				require.NoError(t, err)
				m.Write(b)
			}
			assert.Equal(t, want, col.wait(t, len(want)))

			m.Cancel()
			require.Eventually(t, func() bool { return st.has(StatusDisconnected) }, 2*time.Second, 5*time.Millisecond)

			cancel()
			select {
			case err := <-errCh:
				assert.NoError(t, err)
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not return after cancel")
			}
		})
	}
}

func TestServeSkipsMalformedCommands(t *testing.T) {
	tr := mem.New()
	col := newCollector()
	st := &statusLog{}
	cancel, _ := startServer(t, tr, command.Text(), col, st)
	defer cancel()

	m := connect(t, tr)
	m.Write([]byte("MOVE:1,1\nJUMP\nMOVE:oops\nL_CLICK\n"))
	assert.Equal(t, []command.Command{command.MoveBy(1, 1), command.LeftClick()}, col.wait(t, 2))
}

func TestServeAcceptsNextSessionAfterDisconnect(t *testing.T) {
	tr := mem.New()
	col := newCollector()
	st := &statusLog{}
	cancel, _ := startServer(t, tr, command.Text(), col, st)
	defer cancel()

	first := connect(t, tr)
	first.Write([]byte("L_CLICK\n"))
	col.wait(t, 1)
	first.Cancel()

	second := connect(t, tr)
	second.Write([]byte("R_CLICK\n"))
	got := col.wait(t, 1)
	assert.Equal(t, []command.Command{command.LeftClick(), command.RightClick()}, got)
}

func TestSessionCountsOnlyHandledCommands(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	tr := mem.New()
	col := newCollector()
	h := HandlerFunc(func(ctx context.Context, c command.Command) error {
		if c.Kind == command.KindRightClick {
			return errors.New("button unavailable")
		}
		return col.Handle(ctx, c)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st := &statusLog{}
	srv := &Server{Transport: tr, Codec: command.Text(), Handler: h, Logger: zap.New(core), OnStatus: st.add}
	go func() { _ = srv.Serve(ctx, "desk", transport.SerialPortService) }()
	require.Eventually(t, func() bool { return st.has(StatusListening) }, 2*time.Second, 5*time.Millisecond)

	m := connect(t, tr)
	m.Write([]byte("L_CLICK\nR_CLICK\nMOVE:1,1\n"))
	col.wait(t, 2)
	m.Cancel()
	require.Eventually(t, func() bool { return st.has(StatusDisconnected) }, 2*time.Second, 5*time.Millisecond)

	ended := logs.FilterMessage("client disconnected").All()
	require.Len(t, ended, 1)
	fields := ended[0].ContextMap()
	assert.EqualValues(t, 2, fields["commands"])
	assert.EqualValues(t, 1, fields["failed"])
}

func TestServeRequiresHandler(t *testing.T) {
	srv := &Server{Transport: mem.New(), Codec: command.Text()}
	assert.Error(t, srv.Serve(context.Background(), "x", transport.SerialPortService))
}

func TestHandlerFunc(t *testing.T) {
	var got command.Command
	h := HandlerFunc(func(_ context.Context, c command.Command) error {
		got = c
		return nil
	})
	require.NoError(t, h.Handle(context.Background(), command.RightClick()))
	assert.Equal(t, command.RightClick(), got)
}
