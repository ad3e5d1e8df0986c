package main

import (
	"context"
	"log/slog"
)

// signalContext returns a context cancelled by the first interrupt. Renders
// in flight stop at their next stage boundary; an asset sync stops between
// archive entries and leaves the commit marker untouched.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigs, stopSignals := signalChannel()
	go func() {
		select {
		case sig := <-sigs:
			slog.Info("received signal, cancelling", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		stopSignals()
		cancel()
	}
}
