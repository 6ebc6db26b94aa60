package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Gajda90/AndroidMouse/pkg/command"
	"github.com/Gajda90/AndroidMouse/pkg/config"
	"github.com/Gajda90/AndroidMouse/pkg/observability"
	"github.com/Gajda90/AndroidMouse/pkg/receiver"
	"github.com/Gajda90/AndroidMouse/pkg/transports"
)

// run is the main entry point after CLI parsing.
func run(opts Options) int {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}
	if opts.Listen != "" {
		cfg.Receiver.Listen = opts.Listen
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	zap.L().Info("spplink-recv started", zap.String("app", cfg.AppName))
	zap.L().Debug("effective configuration", zap.Any("config", cfg))

	tr, err := transports.New(cfg.Link.Transport)
	if err != nil {
		zap.L().Error("failed to create transport", zap.Error(err))
		return 1
	}
	reg, err := command.DefaultRegistry()
	if err != nil {
		zap.L().Error("failed to build codecs", zap.Error(err))
		return 1
	}
	codec, err := reg.Get(cfg.Command.Format)
	if err != nil {
		zap.L().Error("failed to select codec", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &receiver.Server{
		Transport: tr,
		Codec:     codec,
		Handler:   printHandler(os.Stdout, zap.L().Named("pointer")),
		Logger:    zap.L().Named("receiver"),
	}
	if err := serve(ctx, srv, cfg.Receiver.Listen, cfg.Link.ServiceUUID(), os.Stdout); err != nil {
		zap.L().Error("receiver stopped", zap.Error(err))
		return 1
	}
	zap.L().Info("shutting down")
	return 0
}

// serve runs srv and prints its status lines to out from a separate
// goroutine. A failure of either side stops both.
func serve(ctx context.Context, srv *receiver.Server, listen string, service uuid.UUID, out io.Writer) error {
	statusCh := make(chan string, 16)
	g, gctx := errgroup.WithContext(ctx)

	srv.OnStatus = func(s string) {
		select {
		case statusCh <- s:
		case <-gctx.Done():
		}
	}
	g.Go(func() error {
		defer close(statusCh)
		return srv.Serve(gctx, listen, service)
	})
	g.Go(func() error {
		for s := range statusCh {
			if _, err := fmt.Fprintf(out, "[%s]\n", s); err != nil {
				return fmt.Errorf("print status: %w", err)
			}
		}
		return nil
	})
	return g.Wait()
}

// printHandler logs each command and writes its text form to w.
func printHandler(w io.Writer, lg *zap.Logger) receiver.Handler {
	return receiver.HandlerFunc(func(_ context.Context, c command.Command) error {
		lg.Info("command", zap.Stringer("kind", c.Kind), zap.Int("dx", c.DX), zap.Int("dy", c.DY))
		_, err := fmt.Fprintln(w, c)
		return err
	})
}
