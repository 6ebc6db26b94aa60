// Package link manages a single point-to-point byte stream to a remote peer.
//
// A Manager supervises at most one connection attempt and at most one active
// stream. Connect, Cancel and attempt activation are serialized by one mutex
// that guards the {state, attempt, handle} triple; the mutex is never held
// across a blocking connect or write. Write copies the active stream under the
// mutex and performs the I/O outside it, so a slow write never stalls a
// concurrent Cancel or Connect.
package link

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

// Manager is the connection state machine. It is safe for concurrent use.
type Manager struct {
	tr   transport.Transport
	obs  Observer
	opts options
	log  *zap.Logger

	mu      sync.Mutex
	state   State
	attempt *attempt
	handle  *handle
	closed  bool

	wg sync.WaitGroup
}

// NewManager returns an idle Manager creating sockets through tr and
// reporting to obs.
func NewManager(tr transport.Transport, obs Observer, opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.L()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Manager{tr: tr, obs: obs, opts: o, log: o.logger, state: State{Phase: Idle}}
}

// Connect replaces any existing attempt or stream with a new attempt to peer.
// It returns immediately; the outcome is reported through the Observer.
func (m *Manager) Connect(peer transport.PeerInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.log.Warn("link: connect on closed manager", zap.Stringer("peer", peer))
		return
	}

	if m.teardownLocked() {
		m.obs.OnStateChanged(DescDisconnected)
	}
	m.state = State{Phase: Idle}
	m.obs.OnStateChanged(DescConnecting)

	a, err := newAttempt(m, peer)
	if err != nil {
		kind := socketFailure(err)
		m.state = State{Phase: Idle, Err: fmt.Errorf("%w: %w", kind, err)}
		m.log.Warn("link: socket creation failed", zap.Stringer("peer", peer), zap.Error(err))
		m.obs.OnStateChanged(kind.Error())
		return
	}
	m.attempt = a
	m.state = State{Phase: Connecting, Peer: peer}
	m.log.Info("link: connecting", zap.Stringer("peer", peer), zap.Stringer("kind", m.tr.Kind()))

	m.wg.Add(1)
	go a.run()
}

// Write sends payload on the active stream. Without an active stream the call
// is a silent no-op. Writes may block until the transport accepts the bytes.
func (m *Manager) Write(payload []byte) {
	m.mu.Lock()
	h := m.handle
	m.mu.Unlock()
	if h == nil {
		return
	}
	h.write(payload)
}

// Cancel closes any attempt and stream and returns to Idle. It always reports
// "disconnected", even when nothing was active.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
	m.state = State{Phase: Idle}
	m.obs.OnStateChanged(DescDisconnected)
}

// Close cancels and waits for attempt and monitor goroutines to exit.
// Connect is a no-op afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.Cancel()
	m.wg.Wait()
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// teardownLocked releases the attempt and the handle and reports whether
// either was live. Close errors are logged, never surfaced.
func (m *Manager) teardownLocked() bool {
	live := m.attempt != nil || m.handle != nil
	var err error
	if m.attempt != nil {
		err = multierr.Append(err, m.attempt.cancel())
		m.attempt = nil
	}
	if m.handle != nil {
		err = multierr.Append(err, m.handle.close())
		m.handle = nil
	}
	if err != nil {
		m.log.Debug("link: teardown", zap.Error(err))
	}
	return live
}

// activate promotes a completed attempt to the active stream. A stale
// attempt, replaced or canceled while connecting, is closed silently.
func (m *Manager) activate(a *attempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt != a {
		_ = a.sock.Close()
		m.log.Debug("link: dropping stale attempt", zap.Stringer("peer", a.peer))
		return
	}
	m.attempt = nil
	h := newHandle(m, a.peer, a.sock)
	m.handle = h
	m.state = State{Phase: Connected, Peer: a.peer}
	m.log.Info("link: connected", zap.Stringer("peer", a.peer))
	m.obs.OnStateChanged(DescConnected(a.peer))

	if m.opts.monitorReads {
		m.wg.Add(1)
		go h.monitor()
	}
}

// attemptFailed handles a failed connect. Failures of canceled attempts are
// expected and not reported.
func (m *Manager) attemptFailed(a *attempt, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt != a {
		m.log.Debug("link: canceled attempt finished", zap.Stringer("peer", a.peer), zap.Error(err))
		return
	}
	m.attempt = nil
	m.state = State{Phase: Idle, Err: fmt.Errorf("%w: %w", ErrConnectFailed, err)}
	m.log.Warn("link: connect failed", zap.Stringer("peer", a.peer), zap.Error(err))
	m.obs.OnStateChanged(ErrConnectFailed.Error())
}

// streamFailed handles an I/O error on h. Every failed write is reported; a
// read error only when the stream has not already been marked failed.
func (m *Manager) streamFailed(h *handle, err error, fromRead bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle != h {
		m.log.Debug("link: error on retired stream", zap.Stringer("peer", h.peer), zap.Error(err))
		return
	}
	if fromRead && m.state.Phase == Failed {
		return
	}
	failure := fmt.Errorf("%w: %w", ErrWriteFailed, err)
	m.log.Warn("link: connection lost", zap.Stringer("peer", h.peer), zap.Bool("read", fromRead), zap.Error(err))
	if m.opts.resetOnWriteFailure {
		_ = h.close()
		m.handle = nil
		m.state = State{Phase: Idle, Err: failure}
	} else {
		m.state = State{Phase: Failed, Peer: h.peer, Err: failure}
	}
	m.obs.OnStateChanged(ErrWriteFailed.Error())
}
