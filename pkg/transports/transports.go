// Package transports builds a transport.Transport from its configured kind.
package transports

import (
	"strings"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
	"github.com/Gajda90/AndroidMouse/pkg/transport/mem"
	tquic "github.com/Gajda90/AndroidMouse/pkg/transport/quic"
	ttcp "github.com/Gajda90/AndroidMouse/pkg/transport/tcp"
	"github.com/Gajda90/AndroidMouse/pkg/transport/ws"
)

// Kinds lists the accepted kind names, aliases included.
var Kinds = []string{"tcp", "quic", "ws", "websocket", "mem", "inproc", "winpipe", "pipe"}

// Known reports whether kind names a transport New understands.
func Known(kind string) bool {
	kind = strings.ToLower(strings.TrimSpace(kind))
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// New constructs a Transport by kind name.
func New(kind string) (transport.Transport, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "tcp":
		return ttcp.New(), nil
	case "quic":
		return tquic.New(), nil
	case "ws", "websocket":
		return ws.New(), nil
	case "mem", "inproc":
		return mem.New(), nil
	case "winpipe", "pipe":
		return newWinPipeTransport()
	default:
		return nil, ErrUnknownKind(kind)
	}
}

// ErrUnknownKind reports an unsupported transport kind.
type ErrUnknownKind string

func (e ErrUnknownKind) Error() string { return "unknown transport kind: " + string(e) }
