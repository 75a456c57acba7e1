package classb

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/secureelement"
)

// PingSlotState names a state of the ping-slot machine.
type PingSlotState uint8

// Ping-slot states.
const (
	PingSlotCalcOffset PingSlotState = iota
	PingSlotSetTimer
	PingSlotIdle
	PingSlotRX
)

func (s PingSlotState) String() string {
	switch s {
	case PingSlotCalcOffset:
		return "CALC_PING_OFFSET"
	case PingSlotSetTimer:
		return "SET_TIMER"
	case PingSlotIdle:
		return "IDLE"
	case PingSlotRX:
		return "RX"
	default:
		return "UNKNOWN"
	}
}

// Periodicity is the PingSlotInfoReq periodicity value: the device
// listens every 2^Periodicity seconds within the beacon period (0 = 128
// ping slots/period, 7 = 1 ping slot/period).
type Periodicity uint8

// NbPingSlots returns how many ping slots fall within one beacon period
// at this periodicity.
func (p Periodicity) NbPingSlots() uint16 {
	return 1 << (7 - uint(p))
}

// PingSlotContext is the persisted part of PingSlot's state.
type PingSlotContext struct {
	Periodicity Periodicity
	PingOffset  uint16
	Frequency   int
	DataRate    int
}

// PingSlot is the ping-slot open/close state machine for one device. It
// is driven by CalcOffset (once per beacon period, after the beacon is
// locked) and by the event loop calling Tick as scheduled slot times
// arrive.
type PingSlot struct {
	state PingSlotState
	ctx   PingSlotContext
}

// NewPingSlot returns a PingSlot at the default periodicity 7: one ping
// slot per beacon period (every 128 s).
func NewPingSlot() *PingSlot {
	return &PingSlot{state: PingSlotCalcOffset, ctx: PingSlotContext{Periodicity: 7}}
}

// State returns the current ping-slot state.
func (p *PingSlot) State() PingSlotState { return p.state }

// Context returns the persisted ping-slot context.
func (p *PingSlot) Context() PingSlotContext { return p.ctx }

// RestoreContext installs a previously persisted context.
func (p *PingSlot) RestoreContext(ctx PingSlotContext) {
	p.ctx = ctx
	p.state = PingSlotCalcOffset
}

// SetPeriodicity applies a PingSlotInfoReq periodicity value and
// re-arms offset calculation for the next beacon period.
func (p *PingSlot) SetPeriodicity(periodicity Periodicity) {
	p.ctx.Periodicity = periodicity
	p.state = PingSlotCalcOffset
}

// ErrBeaconNotLocked is returned by CalcOffset when called before the
// device has acquired a beacon; the ping-slot timing derives from the
// beacon time.
var ErrBeaconNotLocked = errors.New("classb: ping offset requires a locked beacon")

// CalcOffset derives PingOffset for the current beacon period from
// beaconTime and devAddr under nwkSEncKey, per the class-B ping-offset
// algorithm: AES-128-encrypt a 16-byte block of (beaconTime as 4-byte
// LE seconds, DevAddr, zero padding) and take the first two bytes
// modulo pingPeriod, the number of 1/4096-period units between two ping
// slots at the current Periodicity (4096 / NbPingSlots).
func (p *PingSlot) CalcOffset(ctx context.Context, se secureelement.SecureElement, nwkSEncKey secureelement.KeyID, devAddr lorawan.DevAddr, beaconTime time.Duration) error {
	var block [16]byte
	binary.LittleEndian.PutUint32(block[0:4], uint32(beaconTime/time.Second))

	devAddrB, err := devAddr.MarshalBinary()
	if err != nil {
		return err
	}
	copy(block[4:8], devAddrB)

	out, err := se.AES128Encrypt(ctx, nwkSEncKey, block)
	if err != nil {
		return err
	}

	pingPeriod := 4096 / p.ctx.Periodicity.NbPingSlots()
	rand := binary.LittleEndian.Uint16(out[0:2])
	p.ctx.PingOffset = rand % pingPeriod
	p.state = PingSlotSetTimer
	return nil
}

// NextSlotTime returns the time of the next ping slot after now,
// relative to periodStart (the start of the current beacon period).
func (p *PingSlot) NextSlotTime(periodStart, now time.Duration) time.Duration {
	slotDuration := BeaconPeriod / 4096
	first := periodStart + time.Duration(p.ctx.PingOffset)*slotDuration
	step := BeaconPeriod / time.Duration(p.ctx.Periodicity.NbPingSlots())

	t := first
	for t <= now {
		t += step
	}
	return t
}

// EnterRX transitions into an open ping-slot receive window.
func (p *PingSlot) EnterRX() { p.state = PingSlotRX }

// EnterIdle transitions back to idle after a ping-slot window closes.
func (p *PingSlot) EnterIdle() { p.state = PingSlotIdle }

// SetChannel applies a PingSlotChannelReq.
func (p *PingSlot) SetChannel(frequency, dataRate int) {
	p.ctx.Frequency = frequency
	p.ctx.DataRate = dataRate
}
