package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// consoleObserver prints link notifications and mirrors them to the log.
type consoleObserver struct {
	out io.Writer
	log *zap.Logger
}

func newConsoleObserver(out io.Writer, log *zap.Logger) *consoleObserver {
	return &consoleObserver{out: out, log: log.Named("link")}
}

func (o *consoleObserver) OnStateChanged(description string) {
	o.log.Info("state", zap.String("description", description))
	fmt.Fprintf(o.out, "[%s]\n", description)
}

func (o *consoleObserver) OnDataSent(text string) {
	o.log.Debug("sent", zap.String("text", text))
	fmt.Fprintf(o.out, "> %s\n", text)
}
