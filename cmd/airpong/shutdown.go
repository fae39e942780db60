package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

// SetupSignalHandler returns a context that is cancelled on SIGTERM or
// SIGINT, after shutdownFunc has run. A second signal forces exit.
func SetupSignalHandler(log logrus.FieldLogger, shutdownFunc func(context.Context)) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("initiating graceful shutdown")

		if shutdownFunc != nil {
			shutdownFunc(ctx)
		}
		cancel()

		sig = <-sigCh
		log.WithField("signal", sig).Warn("forcing exit")
		os.Exit(1)
	}()

	return ctx
}
