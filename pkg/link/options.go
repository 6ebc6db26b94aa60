package link

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	service             uuid.UUID
	logger              *zap.Logger
	monitorReads        bool
	resetOnWriteFailure bool
}

func defaultOptions() options {
	return options{
		service:      transport.SerialPortService,
		monitorReads: true,
	}
}

// WithService sets the service id sockets are bound to.
// Defaults to transport.SerialPortService.
func WithService(service uuid.UUID) Option {
	return func(o *options) { o.service = service }
}

// WithLogger sets the logger. Defaults to zap.L() at construction time.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithReadMonitor toggles draining inbound bytes on the active stream so a
// peer hang-up is detected without waiting for the next write.
func WithReadMonitor(enabled bool) Option {
	return func(o *options) { o.monitorReads = enabled }
}

// WithResetOnWriteFailure makes a failed stream tear itself down and return
// the manager to Idle. By default the failed stream stays referenced, in
// phase Failed, until the caller invokes Cancel or Connect.
func WithResetOnWriteFailure(enabled bool) Option {
	return func(o *options) { o.resetOnWriteFailure = enabled }
}
