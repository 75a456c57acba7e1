// Package radio is the MAC engine's transceiver contract. The engine
// issues non-blocking Send/Listen calls and learns the outcome through
// Callbacks, which a real driver invokes from its interrupt handler and
// the event loop drains on its next tick — consistent with the rest of
// the engine never blocking inside an interrupt context.
package radio

import "time"

// Settings describes one transmission or reception window.
type Settings struct {
	Frequency int
	DataRate  int
	TXPower   int // dBm, transmit only
}

// Callbacks are invoked by a Radio implementation when an asynchronous
// operation completes. Implementations are expected to only set a flag
// or push to a channel here, not do real work: per the engine's
// cooperative single-threaded design, the actual handling happens when
// the event loop next calls Radio.Poll.
type Callbacks struct {
	TXDone    func(at time.Time)
	TXTimeout func()
	RXDone    func(at time.Time, data []byte, rssi, snr int)
	RXTimeout func()
	RXError   func(err error)
}

// Radio is implemented by a transceiver driver.
type Radio interface {
	// SetCallbacks installs the callbacks the driver invokes on
	// completion. Called once during engine start.
	SetCallbacks(cb Callbacks)

	// Send begins an asynchronous transmission of data under settings.
	// Completion is reported via Callbacks.TXDone or Callbacks.TXTimeout.
	Send(settings Settings, data []byte) error

	// Listen begins an asynchronous receive window under settings that
	// lasts at most timeout. Completion is reported via
	// Callbacks.RXDone, Callbacks.RXTimeout or Callbacks.RXError.
	Listen(settings Settings, timeout time.Duration) error

	// Sleep puts the radio into its lowest-power idle state, canceling
	// any in-progress receive window.
	Sleep() error

	// Poll gives the driver a chance to run any deferred work signaled
	// from an interrupt context; the event loop calls it once per tick.
	Poll()
}
