package radio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeSendRecordsFrame(t *testing.T) {
	f := NewFake()
	assert.NoError(t, f.Send(Settings{Frequency: 868100000, DataRate: 5, TXPower: 14}, []byte{1, 2, 3}))

	assert.Len(t, f.Sent, 1)
	assert.Equal(t, []byte{1, 2, 3}, f.Sent[0].Data)
	assert.Equal(t, 868100000, f.Sent[0].Settings.Frequency)
}

func TestFakeInjectTXDone(t *testing.T) {
	f := NewFake()
	var gotAt time.Time
	f.SetCallbacks(Callbacks{TXDone: func(at time.Time) { gotAt = at }})

	now := time.Now()
	f.InjectTXDone(now)
	assert.Equal(t, now, gotAt)
}

func TestFakeInjectRXDone(t *testing.T) {
	f := NewFake()
	var gotData []byte
	var gotRSSI, gotSNR int
	f.SetCallbacks(Callbacks{RXDone: func(at time.Time, data []byte, rssi, snr int) {
		gotData = data
		gotRSSI = rssi
		gotSNR = snr
	}})

	f.InjectRXDone(time.Now(), []byte{9, 9}, -80, 7)
	assert.Equal(t, []byte{9, 9}, gotData)
	assert.Equal(t, -80, gotRSSI)
	assert.Equal(t, 7, gotSNR)
}

func TestFakeInjectTimeouts(t *testing.T) {
	f := NewFake()
	var txTimedOut, rxTimedOut bool
	f.SetCallbacks(Callbacks{
		TXTimeout: func() { txTimedOut = true },
		RXTimeout: func() { rxTimedOut = true },
	})

	f.InjectTXTimeout()
	f.InjectRXTimeout()
	assert.True(t, txTimedOut)
	assert.True(t, rxTimedOut)
}

func TestFakeNoCallbacksSetDoesNotPanic(t *testing.T) {
	f := NewFake()
	assert.NotPanics(t, func() {
		f.InjectTXDone(time.Now())
		f.InjectTXTimeout()
		f.InjectRXDone(time.Now(), nil, 0, 0)
		f.InjectRXTimeout()
	})
}
