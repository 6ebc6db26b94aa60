package link

import (
	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

// attempt is one in-flight connection to a peer. It owns its socket until it
// hands it to the manager or closes it after a failure.
type attempt struct {
	m    *Manager
	peer transport.PeerInfo
	sock transport.Socket
}

// newAttempt acquires the socket. It does not block.
func newAttempt(m *Manager, peer transport.PeerInfo) (*attempt, error) {
	sock, err := m.tr.Socket(peer, m.opts.service)
	if err != nil {
		return nil, err
	}
	return &attempt{m: m, peer: peer, sock: sock}, nil
}

// run performs the blocking connect. cancel unblocks it by closing the socket.
func (a *attempt) run() {
	defer a.m.wg.Done()
	if err := a.sock.Connect(); err != nil {
		_ = a.sock.Close()
		a.m.attemptFailed(a, err)
		return
	}
	a.m.activate(a)
}

func (a *attempt) cancel() error { return a.sock.Close() }
