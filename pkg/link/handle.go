package link

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

// handle is the active stream to the peer.
type handle struct {
	m    *Manager
	peer transport.PeerInfo
	sock transport.Socket

	// wmu keeps writes and their notifications in submission order.
	wmu sync.Mutex
}

func newHandle(m *Manager, peer transport.PeerInfo, sock transport.Socket) *handle {
	return &handle{m: m, peer: peer, sock: sock}
}

func (h *handle) write(payload []byte) {
	h.wmu.Lock()
	defer h.wmu.Unlock()
	if _, err := h.sock.Write(payload); err != nil {
		h.m.streamFailed(h, err, false)
		return
	}
	h.m.obs.OnDataSent(DisplayText(payload))
}

// monitor drains inbound bytes until the stream fails or is closed.
func (h *handle) monitor() {
	defer h.m.wg.Done()
	buf := make([]byte, 512)
	for {
		n, err := h.sock.Read(buf)
		if n > 0 {
			h.m.log.Debug("link: discarding inbound bytes", zap.Stringer("peer", h.peer), zap.Int("n", n))
		}
		if err != nil {
			h.m.streamFailed(h, err, true)
			return
		}
	}
}

func (h *handle) close() error { return h.sock.Close() }
