//go:build windows

package transports

import (
	"github.com/Gajda90/AndroidMouse/pkg/transport"
	"github.com/Gajda90/AndroidMouse/pkg/transport/winpipe"
)

func newWinPipeTransport() (transport.Transport, error) { return winpipe.New(), nil }
