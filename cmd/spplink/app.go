package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/Gajda90/AndroidMouse/pkg/command"
	"github.com/Gajda90/AndroidMouse/pkg/config"
	"github.com/Gajda90/AndroidMouse/pkg/link"
	"github.com/Gajda90/AndroidMouse/pkg/observability"
	"github.com/Gajda90/AndroidMouse/pkg/transport"
	"github.com/Gajda90/AndroidMouse/pkg/transports"
)

// run is the main entry point after CLI parsing.
func run(opts Options) int {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	zap.L().Info("spplink started", zap.String("app", cfg.AppName))
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

	out := os.Stdout
	mgr := link.NewManager(
		transport.Authorize(tr, cfg.Link.AllowedPeers),
		newConsoleObserver(out, zap.L()),
		link.WithService(cfg.Link.ServiceUUID()),
		link.WithLogger(zap.L()),
		link.WithReadMonitor(cfg.Link.MonitorReads),
		link.WithResetOnWriteFailure(cfg.Link.ResetOnWriteFailure),
	)
	defer mgr.Close()

	sh := &shell{cfg: cfg, mgr: mgr, codec: codec, out: out}
	if opts.Peer != "" {
		if err := sh.exec("connect " + opts.Peer); err != nil {
			zap.L().Error("connect", zap.Error(err))
			return 1
		}
	}
	if err := sh.loop(os.Stdin); err != nil {
		zap.L().Error("input", zap.Error(err))
		return 1
	}
	return 0
}
