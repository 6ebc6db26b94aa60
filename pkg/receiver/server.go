// Package receiver implements the listening side of the link: it accepts one
// stream at a time and dispatches the decoded pointer commands to a Handler.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gajda90/AndroidMouse/pkg/command"
	"github.com/Gajda90/AndroidMouse/pkg/transport"
)

// Status messages reported through Server.OnStatus.
const (
	StatusListening    = "listening"
	StatusConnected    = "client connected"
	StatusDisconnected = "client disconnected"
)

// Handler consumes decoded commands.
type Handler interface {
	Handle(ctx context.Context, c command.Command) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, c command.Command) error

func (f HandlerFunc) Handle(ctx context.Context, c command.Command) error { return f(ctx, c) }

// Server accepts streams on a transport and feeds their commands to Handler.
type Server struct {
	Transport transport.Transport
	Codec     command.Codec
	Handler   Handler
	Logger    *zap.Logger
	// OnStatus, if set, receives listener and session status lines.
	OnStatus func(status string)

	mu       sync.Mutex
	listener transport.Listener
}

func (s *Server) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

func (s *Server) status(msg string) {
	if s.OnStatus != nil {
		s.OnStatus(msg)
	}
}

// Addr returns the bound address once Serve is listening, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve listens on address for service and handles sessions one at a time
// until ctx is done. It returns nil on cancellation.
func (s *Server) Serve(ctx context.Context, address string, service uuid.UUID) error {
	if s.Transport == nil || s.Codec == nil || s.Handler == nil {
		return errors.New("receiver: transport, codec and handler are required")
	}
	ln, err := s.Transport.Listen(ctx, address, service)
	if err != nil {
		return fmt.Errorf("listen %s: %w", address, err)
	}
	defer ln.Close()

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	lg := s.logger().With(zap.Stringer("kind", s.Transport.Kind()), zap.Stringer("addr", ln.Addr()))
	lg.Info("receiver listening", zap.String("service", service.String()), zap.String("format", s.Codec.Format()))
	s.status(StatusListening)

	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrClosed) {
				return nil
			}
			lg.Warn("accept failed", zap.Error(err))
			return fmt.Errorf("accept: %w", err)
		}
		s.session(ctx, lg, conn)
	}
}

func (s *Server) session(ctx context.Context, lg *zap.Logger, conn transport.Conn) {
	lg = lg.With(zap.Stringer("remote", conn.RemoteAddr()))
	lg.Info("client connected")
	s.status(StatusConnected)
	defer s.status(StatusDisconnected)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	dec := s.Codec.NewDecoder(conn)
	handled, failed := 0, 0
	for {
		c, err := dec.Decode()
		if err != nil {
			if command.Recoverable(err) {
				lg.Warn("skipping command", zap.Error(err))
				continue
			}
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				lg.Info("client disconnected", zap.Int("commands", handled), zap.Int("failed", failed))
			} else {
				lg.Warn("session ended", zap.Int("commands", handled), zap.Int("failed", failed), zap.Error(err))
			}
			return
		}
		lg.Debug("command", zap.Stringer("cmd", c))
		if err := s.Handler.Handle(ctx, c); err != nil {
			lg.Warn("handler failed", zap.Stringer("cmd", c), zap.Error(err))
			failed++
			continue
		}
		handled++
	}
}
