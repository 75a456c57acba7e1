package mac

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/classb"
	"github.com/foldedtoad/lora-mac/cmdstore"
	"github.com/foldedtoad/lora-mac/confirmqueue"
	"github.com/foldedtoad/lora-mac/cryptoengine"
	"github.com/foldedtoad/lora-mac/nvm"
	"github.com/foldedtoad/lora-mac/radio"
	"github.com/foldedtoad/lora-mac/region"
	"github.com/foldedtoad/lora-mac/secureelement"
)

// Clock abstracts elapsed time so the engine's scheduling can be driven
// by a fake in tests instead of the wall clock.
type Clock interface {
	Now() time.Duration
}

// SystemClock reports time elapsed since it was created.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock anchored to the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now implements Clock.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// Config bundles everything the engine needs at construction time.
type Config struct {
	Band          region.Band
	SecureElement secureelement.SecureElement
	Radio         radio.Radio
	Store         nvm.Store
	Clock         Clock

	DevEUI  lorawan.EUI64
	JoinEUI lorawan.EUI64

	PublicNetwork bool
}

// Engine is the MAC engine (C5): the aggregate that drives a device
// through the RESTORE/START/JOIN/SEND/CYCLE/SLEEP states described by
// EngineState, dispatching into the codec, crypto engine, command
// store, confirm queue, region band and class-B components and
// surfacing MLME/MCPS requests/confirms/indications plus the MIB.
type Engine struct {
	band  region.Band
	se    secureelement.SecureElement
	radio radio.Radio
	store nvm.Store
	clock Clock
	log   *logrus.Entry

	cmds     *cmdstore.Store
	confirms *confirmqueue.Queue
	beacon   *classb.Beacon
	pingSlot *classb.PingSlot

	state EngineState
	class DeviceClass

	devEUI  lorawan.EUI64
	joinEUI lorawan.EUI64
	devNonce lorawan.DevNonce

	joined     bool
	adrEnabled bool
	netID      lorawan.NetID
	devAddr    lorawan.DevAddr
	macVersion lorawan.MACVersion
	optNeg     bool

	txPower      int
	dataRate     int
	nbTrans      int
	rx1DROffset  int
	rx2DataRate  int
	rx2Frequency int

	receiveDelay1 time.Duration
	receiveDelay2 time.Duration
	publicNetwork bool

	fCntUp     uint32
	aFCntDown  uint32
	nFCntDown  uint32
	confFCntDown uint32

	pendingJoin *JoinRequest
	pendingData *DataRequest

	// pendingJoinStatus/pendingDataStatus/pendingDataTrials hold a
	// just-resolved join/send outcome between the point it becomes
	// known and deliverConfirm draining its confirm-queue entry, since
	// confirmqueue.Entry itself carries no payload beyond a status.
	pendingJoinStatus Status
	pendingDataStatus Status
	pendingDataTrials uint8

	indications     []Indication
	joinConfirms    []JoinConfirm
	dataConfirms    []DataConfirm
	dataIndications []DataIndication

	dirty bool

	backoff *joinBackoff

	// devNonceCounter feeds DevNonce generation across join attempts; it
	// must never repeat for a given JoinEUI/DevEUI pair.
	devNonceCounter uint16

	// joinSub/rxDeadline drive tickJoin's and tickSend's shared
	// send/RX1/RX2 sub-state machine.
	joinSub    joinSubState
	rxDeadline time.Duration

	// nextJoinAttempt holds tickJoin back until the join backoff delay
	// from the previous failed attempt has elapsed.
	nextJoinAttempt time.Duration

	// txDone/txTimeout/rxFrames/rxTimeout/rxErr/txAt are set by the
	// radio callbacks wired in wireRadio and drained by Tick.
	txDone    bool
	txTimeout bool
	txAt      time.Time
	rxFrames  []radioFrame
	rxTimeout bool
	rxErr     error
}

// NewEngine constructs an engine in EngineState.StateRestore; the
// caller's first Tick call drives it through restoring persisted state
// and into StateStart.
func NewEngine(cfg Config) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = NewSystemClock()
	}

	e := &Engine{
		band:  cfg.Band,
		se:    cfg.SecureElement,
		radio: cfg.Radio,
		store: cfg.Store,
		clock: clock,
		log:   logrus.WithField("component", "mac"),

		confirms: &confirmqueue.Queue{},
		beacon:   classb.NewBeacon(),
		pingSlot: classb.NewPingSlot(),

		state: StateRestore,
		class: ClassA,

		devEUI:  cfg.DevEUI,
		joinEUI: cfg.JoinEUI,

		adrEnabled:    true,
		nbTrans:       1,
		receiveDelay1: time.Second,
		receiveDelay2: 2 * time.Second,
		publicNetwork: cfg.PublicNetwork,

		aFCntDown: cryptoengine.NoFCnt,
		nFCntDown: cryptoengine.NoFCnt,

		backoff: newJoinBackoff(),
	}
	e.cmds = cmdstore.New(e.markDirty)
	def := e.band.Defaults()
	e.rx2DataRate = def.RX2DataRate
	e.rx2Frequency = def.RX2Frequency
	e.receiveDelay1 = def.ReceiveDelay1
	e.receiveDelay2 = def.ReceiveDelay2
	e.wireRadio()
	return e
}

func (e *Engine) markDirty() { e.dirty = true }

// State returns the engine's current top-level state.
func (e *Engine) State() EngineState { return e.state }

// confirmCmdJoin and confirmCmdData are the confirm-queue identifiers
// for MLME-Join and MCPS-Data confirms, which have no MAC command CID
// of their own to key on. LoRaWAN CIDs run 0x01-0x13 and proprietary
// CIDs start at 0x80, leaving this range free.
const (
	confirmCmdJoin uint8 = 0x14
	confirmCmdData uint8 = 0x15
)

// StartJoin enqueues an MLME-Join.request. It returns an error if a
// join is already in progress or the confirm queue is full.
func (e *Engine) StartJoin(req JoinRequest) error {
	if e.pendingJoin != nil {
		return errors.New("mac: join already in progress")
	}
	if req.NbTrials == 0 {
		req.NbTrials = 1
	}
	if err := e.confirms.Add(confirmCmdJoin, false); err != nil {
		return errors.Wrap(err, "mac: queue join confirm")
	}
	e.pendingJoin = &req
	e.joinEUI = req.JoinEUI
	e.devEUI = req.DevEUI
	e.state = StateJoin
	return nil
}

// SendData enqueues an MCPS-Data.request for the next transmit cycle.
func (e *Engine) SendData(req DataRequest) error {
	if !e.joined {
		return errors.New("mac: device has not joined")
	}
	if e.pendingData != nil {
		return errors.New("mac: a data request is already pending")
	}
	if err := e.confirms.Add(confirmCmdData, false); err != nil {
		return errors.Wrap(err, "mac: queue data confirm")
	}
	e.pendingData = &req
	return nil
}

// RequestLinkCheck queues a LinkCheckReq for the next uplink. Its
// answer surfaces as an EventLinkCheck Indication once LinkCheckAns
// resolves its confirm-queue entry.
func (e *Engine) RequestLinkCheck() error {
	if !e.cmds.Add(lorawan.MACCommand{CID: lorawan.LinkCheckReq}) {
		return errors.New("mac: command store is full")
	}
	if err := e.confirms.Add(uint8(lorawan.LinkCheckReq), false); err != nil {
		e.cmds.Remove(lorawan.LinkCheckReq)
		return err
	}
	return nil
}

// RequestDeviceTime queues a DeviceTimeReq for the next uplink. Its
// answer surfaces as an EventDeviceTime Indication once DeviceTimeAns
// resolves its confirm-queue entry.
func (e *Engine) RequestDeviceTime() error {
	if !e.cmds.Add(lorawan.MACCommand{CID: lorawan.DeviceTimeReq}) {
		return errors.New("mac: command store is full")
	}
	if err := e.confirms.Add(uint8(lorawan.DeviceTimeReq), false); err != nil {
		e.cmds.Remove(lorawan.DeviceTimeReq)
		return err
	}
	return nil
}

// SetClass switches the device's operating class. Switching to ClassB
// re-arms beacon acquisition; switching away halts it.
func (e *Engine) SetClass(class DeviceClass) {
	e.class = class
	if class == ClassB {
		e.beacon.Resume()
	} else {
		e.beacon.Halt()
	}
	e.markDirty()
}

// Indications drains and returns every indication queued since the
// last call.
func (e *Engine) Indications() []Indication {
	out := e.indications
	e.indications = nil
	return out
}

// JoinConfirms drains and returns every join confirm queued since the
// last call.
func (e *Engine) JoinConfirms() []JoinConfirm {
	out := e.joinConfirms
	e.joinConfirms = nil
	return out
}

// DataConfirms drains and returns every data confirm queued since the
// last call.
func (e *Engine) DataConfirms() []DataConfirm {
	out := e.dataConfirms
	e.dataConfirms = nil
	return out
}

func (e *Engine) pushIndication(info EventInfo) {
	e.indications = append(e.indications, Indication{Info: info, At: time.Now()})
}

// restoreState reads and applies a persisted image, if any. A missing
// or corrupt image is not an error: the device simply starts fresh.
func (e *Engine) restoreState(ctx context.Context) {
	if e.store == nil {
		return
	}
	image, err := e.store.Restore()
	if err != nil {
		e.log.WithError(err).Debug("no persisted state, starting fresh")
		return
	}
	blobs, err := nvm.Unpack(image, 2)
	if err != nil {
		e.log.WithError(err).Warn("persisted state is corrupt, starting fresh")
		return
	}

	var sess sessionImage
	if err := sess.unpack(blobs[0]); err == nil && sess.Joined {
		e.joined = true
		e.netID = sess.NetID
		e.devAddr = sess.DevAddr
		e.macVersion = sess.MACVersion
		e.optNeg = sess.OptNeg
		e.fCntUp = sess.FCntUp
		e.aFCntDown = sess.AFCntDown
		e.nFCntDown = sess.NFCntDown
	}

	var beaconCtx classb.BeaconContext
	if err := unpackBeaconContext(blobs[1], &beaconCtx); err == nil {
		e.beacon.RestoreContext(beaconCtx)
	}
}

// persistState packs the engine's durable fields and saves them,
// clearing the dirty flag on success.
func (e *Engine) persistState() error {
	if e.store == nil {
		e.dirty = false
		return nil
	}
	sess := sessionImage{
		Joined:     e.joined,
		NetID:      e.netID,
		DevAddr:    e.devAddr,
		MACVersion: e.macVersion,
		OptNeg:     e.optNeg,
		FCntUp:     e.fCntUp,
		AFCntDown:  e.aFCntDown,
		NFCntDown:  e.nFCntDown,
	}
	image := nvm.Pack(sess.pack(), packBeaconContext(e.beacon.Context()))
	if err := e.store.Save(image); err != nil {
		return err
	}
	e.dirty = false
	return nil
}

// Tick advances the engine by one cooperative step. The caller (an
// application shell or test harness) invokes it repeatedly, typically
// after the radio signals an event via its Callbacks or a scheduled
// timer fires.
func (e *Engine) Tick(ctx context.Context) error {
	e.radio.Poll()

	switch e.state {
	case StateRestore:
		e.restoreState(ctx)
		e.state = StateStart
	case StateStart:
		e.state = StateCycle
		if e.pendingJoin != nil {
			e.state = StateJoin
		}
	case StateJoin:
		return e.tickJoin(ctx)
	case StateSend:
		return e.tickSend(ctx)
	case StateCycle:
		e.tickCycle(ctx)
	case StateSleep:
		e.radio.Sleep()
	}

	if e.dirty {
		if err := e.persistState(); err != nil {
			e.log.WithError(err).Warn("failed to persist MAC state")
		}
	}
	return nil
}

// tickCycle decides what the engine should do next once idle: start a
// pending join or send, enter the class-B beacon guard period when the
// next beacon window is near, or go to sleep until something changes.
func (e *Engine) tickCycle(ctx context.Context) {
	if e.pendingJoin != nil {
		e.state = StateJoin
		return
	}
	if e.pendingData != nil {
		e.state = StateSend
		return
	}

	if e.class == ClassB && e.joined {
		e.tickClassB(ctx)
	}

	e.state = StateSleep
}

func (e *Engine) tickClassB(ctx context.Context) {
	now := e.clock.Now()
	bctx := e.beacon.Context()
	if bctx.Acquired && now >= bctx.NextRx-guardInterval && now < bctx.NextRx {
		e.beacon.EnterGuard()
	}
}

const guardInterval = 3 * time.Second
