package mac

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/classb"
	"github.com/foldedtoad/lora-mac/cryptoengine"
	"github.com/foldedtoad/lora-mac/nvm"
	"github.com/foldedtoad/lora-mac/radio"
	"github.com/foldedtoad/lora-mac/region"
	"github.com/foldedtoad/lora-mac/secureelement"
	"github.com/foldedtoad/lora-mac/softse"
)

// fakeClock lets tests advance the engine's notion of elapsed time
// deterministically instead of racing the wall clock.
type fakeClock struct{ now time.Duration }

func (c *fakeClock) Now() time.Duration { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now += d }

func newTestEngine(t *testing.T) (*Engine, *radio.Fake, *fakeClock) {
	t.Helper()
	se := softse.New(map[secureelement.KeyID][16]byte{
		secureelement.NwkKey: {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		secureelement.AppKey: {16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
	})
	fr := radio.NewFake()
	clock := &fakeClock{}

	e := NewEngine(Config{
		Band:          region.EU868(),
		SecureElement: se,
		Radio:         fr,
		Store:         &nvm.MemStore{},
		Clock:         clock,
		DevEUI:        lorawan.EUI64{1, 1, 1, 1, 1, 1, 1, 1},
		JoinEUI:       lorawan.EUI64{2, 2, 2, 2, 2, 2, 2, 2},
	})
	return e, fr, clock
}

func TestNewEngineStartsInRestore(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.Equal(t, StateRestore, e.State())
}

func TestTickDrivesRestoreStartCycleWhenIdle(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	assert.NoError(t, e.Tick(ctx))
	assert.Equal(t, StateStart, e.State())

	assert.NoError(t, e.Tick(ctx))
	assert.Equal(t, StateCycle, e.State())

	assert.NoError(t, e.Tick(ctx))
	assert.Equal(t, StateSleep, e.State())
}

func TestStartJoinMovesToJoinState(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	assert.NoError(t, e.Tick(ctx)) // restore -> start
	assert.NoError(t, e.Tick(ctx)) // start -> cycle

	assert.NoError(t, e.StartJoin(JoinRequest{JoinEUI: e.joinEUI, DevEUI: e.devEUI, NbTrials: 1}))
	assert.Equal(t, StateJoin, e.State())
}

func TestSendDataRequiresJoin(t *testing.T) {
	e, _, _ := newTestEngine(t)
	err := e.SendData(DataRequest{FPort: 1, Data: []byte("hi")})
	assert.Error(t, err)
}

// buildJoinAccept constructs a valid encrypted join-accept frame in
// response to whatever join-request the engine last transmitted.
func buildJoinAccept(t *testing.T, e *Engine, se secureelement.SecureElement) []byte {
	t.Helper()
	ja := &lorawan.JoinAcceptPayload{
		JoinNonce: lorawan.JoinNonce(1),
		NetID:     lorawan.NetID{1, 2, 3},
		DevAddr:   lorawan.DevAddr{9, 8, 7, 6},
		RXDelay:   1,
	}
	p := &lorawan.PHYPayload{
		MHDR:       lorawan.MHDR{MType: lorawan.JoinAccept, Major: lorawan.LoRaWANR1},
		MACPayload: ja,
	}
	ctx := context.Background()
	assert.NoError(t, cryptoengine.SetDownlinkJoinMIC(ctx, se, secureelement.NwkKey, lorawan.JoinRequestType, e.joinEUI, e.devNonce, p))
	assert.NoError(t, cryptoengine.EncryptJoinAcceptOf(ctx, se, secureelement.NwkKey, p))

	b, err := p.MarshalBinary()
	assert.NoError(t, err)
	return b
}

func TestJoinAcceptCompletesJoin(t *testing.T) {
	e, fr, clock := newTestEngine(t)
	ctx := context.Background()

	assert.NoError(t, e.Tick(ctx))
	assert.NoError(t, e.Tick(ctx))
	assert.NoError(t, e.StartJoin(JoinRequest{JoinEUI: e.joinEUI, DevEUI: e.devEUI, NbTrials: 1}))

	assert.NoError(t, e.Tick(ctx)) // sends the join-request
	assert.Len(t, fr.Sent, 1)

	fr.InjectTXDone(time.Now())
	assert.NoError(t, e.Tick(ctx)) // moves into RX1 wait, opens RX1 window

	frame := buildJoinAccept(t, e, e.se)
	fr.InjectRXDone(time.Now(), frame, -60, 8)
	assert.NoError(t, e.Tick(ctx)) // processes the join-accept

	assert.True(t, e.joined)
	assert.Equal(t, lorawan.DevAddr{9, 8, 7, 6}, e.devAddr)

	confirms := e.JoinConfirms()
	assert.Len(t, confirms, 1)
	assert.Equal(t, StatusOK, confirms[0].Status)

	_ = clock
}

func TestJoinTimesOutAfterBothRXWindowsAndRetries(t *testing.T) {
	e, fr, clock := newTestEngine(t)
	ctx := context.Background()

	assert.NoError(t, e.Tick(ctx))
	assert.NoError(t, e.Tick(ctx))
	assert.NoError(t, e.StartJoin(JoinRequest{JoinEUI: e.joinEUI, DevEUI: e.devEUI, NbTrials: 2}))

	assert.NoError(t, e.Tick(ctx))
	fr.InjectTXDone(time.Now())
	assert.NoError(t, e.Tick(ctx))

	def := e.band.Defaults()
	clock.advance(def.JoinAcceptDelay1 + time.Second)
	fr.InjectRXTimeout()
	assert.NoError(t, e.Tick(ctx))

	clock.advance(def.JoinAcceptDelay2)
	fr.InjectRXTimeout()
	assert.NoError(t, e.Tick(ctx))

	// Both RX windows closed empty but a retry remains: the engine stays
	// in StateJoin with joinSendReq held back until the backoff elapses.
	assert.Equal(t, StateJoin, e.State())
	assert.Equal(t, joinSendReq, e.joinSub)
	assert.NotNil(t, e.pendingJoin)
	assert.Equal(t, uint8(1), e.pendingJoin.NbTrials)
	assert.Greater(t, e.nextJoinAttempt, clock.now)
}

func TestMIBGetSetRoundTrip(t *testing.T) {
	e, _, _ := newTestEngine(t)

	assert.NoError(t, e.MIBSet(MIBAdrEnabled, MIBValue{Bool: false}))
	v, err := e.MIBGet(MIBAdrEnabled)
	assert.NoError(t, err)
	assert.False(t, v.Bool)

	err = e.MIBSet(MIBNetworkJoined, MIBValue{Bool: true})
	assert.Equal(t, ErrMIBReadOnly, err)
}

func TestSetClassBArmsAndHaltsBeacon(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.SetClass(ClassB)
	assert.Equal(t, ClassB, e.class)
	assert.Equal(t, classb.BeaconAcquisition, e.beacon.State())

	e.SetClass(ClassA)
	assert.Equal(t, ClassA, e.class)
	assert.Equal(t, classb.BeaconHalt, e.beacon.State())
}
