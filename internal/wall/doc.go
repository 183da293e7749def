// Package wall holds the state of the wall being edited and the handlers
// that change it.
//
// A Manager owns the current wall (server address, name, background),
// the current problem, and the LED grid mirrored from the server. Every
// mutation bumps one of three version counters so renderers can tell
// which layer to redraw:
//
//	Background  image or canvas size changed
//	Dims        rows, columns or width changed
//	Grid        an LED colour changed
//
// Taps are optimistic. Tap flips the local colour and returns an
// LEDChange; CommitLED sends it:
//
//	if change, ok := m.Tap(x, y); ok {
//	    go m.CommitLED(ctx, change)
//	}
//
// Failures never panic or exit. They are reported to the Notifier and
// returned as errors; rejected input wraps ErrValidation.
package wall
