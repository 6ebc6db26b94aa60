package transport

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Authorize wraps tr so that Socket fails with ErrPermissionDenied for peers
// whose address is not in allowed. An empty allow list permits every peer.
func Authorize(tr Transport, allowed []string) Transport {
	if len(allowed) == 0 {
		return tr
	}
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	return &authorized{Transport: tr, allowed: set}
}

type authorized struct {
	Transport
	allowed map[string]struct{}
}

func (a *authorized) Socket(peer PeerInfo, service uuid.UUID) (Socket, error) {
	if _, ok := a.allowed[strings.ToLower(strings.TrimSpace(peer.Addr))]; !ok {
		return nil, fmt.Errorf("%w: peer %s", ErrPermissionDenied, peer)
	}
	return a.Transport.Socket(peer, service)
}
