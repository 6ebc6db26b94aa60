package link

import (
	"errors"
	"fmt"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

// Phase is the manager's lifecycle phase.
type Phase int

const (
	Idle Phase = iota
	Connecting
	Connected
	// Failed means the active stream reported a read or write error and is
	// still referenced until the next Cancel or Connect.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a point-in-time snapshot of the manager.
type State struct {
	Phase Phase
	Peer  transport.PeerInfo // zero when Idle
	Err   error              // last failure, if any
}

func (s State) String() string {
	switch s.Phase {
	case Connecting, Connected:
		return fmt.Sprintf("%s(%s)", s.Phase, s.Peer)
	case Failed:
		return fmt.Sprintf("failed(%v)", s.Err)
	default:
		return "idle"
	}
}

// Failure kinds. They never cross the Manager boundary as return values;
// they reach the caller as observer descriptions and in State.Err.
var (
	ErrResourceCreationFailed = errors.New("error: cannot create socket")
	ErrAuthorizationDenied    = errors.New("error: permission denied creating socket")
	ErrConnectFailed          = errors.New("error: cannot connect")
	ErrWriteFailed            = errors.New("error: connection lost")
)

// State descriptions passed to Observer.OnStateChanged.
const (
	DescConnecting   = "connecting..."
	DescDisconnected = "disconnected"
)

// DescConnected is the description for a successful connection to peer.
func DescConnected(peer transport.PeerInfo) string {
	return "connected to " + peer.DisplayName()
}

// socketFailure maps a resource creation error onto its failure kind.
func socketFailure(err error) error {
	if errors.Is(err, transport.ErrPermissionDenied) {
		return ErrAuthorizationDenied
	}
	return ErrResourceCreationFailed
}
