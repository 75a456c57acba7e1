package radio

import (
	"sync"
	"time"
)

// Fake is an in-memory Radio for tests: Send appends to Sent, and
// InjectRXDone/InjectTXDone/InjectTXTimeout/InjectRXTimeout let a test drive
// the engine's receive and transmit-confirm paths without real hardware.
type Fake struct {
	mu   sync.Mutex
	cb   Callbacks
	Sent []FakeFrame

	listening bool
	settings  Settings
}

// FakeFrame records one transmitted frame for assertions.
type FakeFrame struct {
	Settings Settings
	Data     []byte
}

func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) SetCallbacks(cb Callbacks) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cb = cb
}

func (f *Fake) Send(settings Settings, data []byte) error {
	f.mu.Lock()
	f.Sent = append(f.Sent, FakeFrame{Settings: settings, Data: append([]byte{}, data...)})
	f.mu.Unlock()
	return nil
}

func (f *Fake) Listen(settings Settings, timeout time.Duration) error {
	f.mu.Lock()
	f.listening = true
	f.settings = settings
	f.mu.Unlock()
	return nil
}

func (f *Fake) Sleep() error {
	f.mu.Lock()
	f.listening = false
	f.mu.Unlock()
	return nil
}

func (f *Fake) Poll() {}

// InjectTXDone reports a completed transmission to the engine.
func (f *Fake) InjectTXDone(at time.Time) {
	if f.cb.TXDone != nil {
		f.cb.TXDone(at)
	}
}

// InjectTXTimeout reports a failed transmission to the engine.
func (f *Fake) InjectTXTimeout() {
	if f.cb.TXTimeout != nil {
		f.cb.TXTimeout()
	}
}

// InjectRXDone reports a received frame to the engine.
func (f *Fake) InjectRXDone(at time.Time, data []byte, rssi, snr int) {
	if f.cb.RXDone != nil {
		f.cb.RXDone(at, data, rssi, snr)
	}
}

// InjectRXTimeout reports an empty receive window to the engine.
func (f *Fake) InjectRXTimeout() {
	if f.cb.RXTimeout != nil {
		f.cb.RXTimeout()
	}
}
