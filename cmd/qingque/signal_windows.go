// Windows signal handling for graceful cancellation.
//
// Windows has no SIGTERM. The Go runtime maps CTRL_BREAK_EVENT and
// console-close events to os.Interrupt, so that is the only one registered.

//go:build windows

package main

import (
	"os"
	"os/signal"
)

// ///////////////////////////////////////////////
// Signal Handling
// ///////////////////////////////////////////////

// signalChannel returns a buffered channel that receives os.Interrupt.
func signalChannel() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return ch, func() { signal.Stop(ch) }
}
