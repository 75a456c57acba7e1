// Package classb is the MAC engine's class-B component (C6): a beacon
// acquisition/tracking state machine and a ping-slot state machine,
// driven one tick at a time by the engine's event loop rather than by
// interrupt-context callbacks.
package classb

import "time"

// BeaconPeriod is the fixed interval between class-B beacons.
const BeaconPeriod = 128 * time.Second

// BeaconState names a state of the beacon acquisition/tracking machine.
type BeaconState uint8

// Beacon states.
const (
	BeaconAcquisition BeaconState = iota
	BeaconAcquisitionByTime
	BeaconTimeout
	BeaconMissed
	BeaconReacquisition
	BeaconLocked
	BeaconHalt
	BeaconIdle
	BeaconGuard
	BeaconRX
	BeaconLost
)

func (s BeaconState) String() string {
	switch s {
	case BeaconAcquisition:
		return "ACQUISITION"
	case BeaconAcquisitionByTime:
		return "ACQUISITION_BY_TIME"
	case BeaconTimeout:
		return "TIMEOUT"
	case BeaconMissed:
		return "BEACON_MISSED"
	case BeaconReacquisition:
		return "REACQUISITION"
	case BeaconLocked:
		return "LOCKED"
	case BeaconHalt:
		return "HALT"
	case BeaconIdle:
		return "IDLE"
	case BeaconGuard:
		return "GUARD"
	case BeaconRX:
		return "RX"
	case BeaconLost:
		return "LOST"
	default:
		return "UNKNOWN"
	}
}

// BeaconContext is the part of Beacon's state that survives a restart;
// Pack/Unpack round-trip it through the engine's NVM image. LastRx is
// not included in that image.
type BeaconContext struct {
	Acquired    bool
	BeaconTime  time.Duration // time carried in the last received beacon
	LastRx      time.Duration
	NextRx      time.Duration
	SymbolTimeout uint16
}

// Beacon is the acquisition/tracking state machine. Callers drive it
// with RxBeacon on a received beacon frame, RxTimeout when an expected
// beacon window closes empty, and EnterGuard/EnterRX/EnterIdle as
// scheduled receive windows open and close.
type Beacon struct {
	state BeaconState
	ctx   BeaconContext

	// missedCount counts consecutive missed beacons; each miss widens
	// SymbolTimeout for the next acquisition attempt (reacquisition
	// enlarges the receive window per the original's "enlarges this
	// variable in case of beacon loss" comment).
	missedCount int
}

// NewBeacon returns a Beacon in the initial acquisition state.
func NewBeacon() *Beacon {
	return &Beacon{state: BeaconAcquisition, ctx: BeaconContext{SymbolTimeout: 8}}
}

// State returns the current beacon state.
func (b *Beacon) State() BeaconState { return b.state }

// Context returns the persisted beacon context.
func (b *Beacon) Context() BeaconContext { return b.ctx }

// RestoreContext installs a previously persisted context and moves to
// BeaconAcquisitionByTime, since a restart with a known last beacon
// time can schedule its next receive window directly instead of
// scanning for one blind.
func (b *Beacon) RestoreContext(ctx BeaconContext) {
	b.ctx = ctx
	if ctx.Acquired {
		b.state = BeaconAcquisitionByTime
	} else {
		b.state = BeaconAcquisition
	}
}

// Halt stops the beacon machine for an operation with higher priority
// (e.g. a join procedure).
func (b *Beacon) Halt() {
	b.state = BeaconHalt
}

// Resume restarts the beacon machine after Halt, from BeaconGuard if a
// beacon was already acquired (so the node re-enters tracking at the
// next scheduled window) or BeaconAcquisition otherwise.
func (b *Beacon) Resume() {
	if b.ctx.Acquired {
		b.state = BeaconGuard
	} else {
		b.state = BeaconAcquisition
	}
}

// RxBeacon reports a successfully received and decoded beacon at
// beaconTime, now. It locks the beacon, resets the missed-beacon
// counter and schedules the next expected window.
func (b *Beacon) RxBeacon(beaconTime, now time.Duration) {
	b.ctx.Acquired = true
	b.ctx.BeaconTime = beaconTime
	b.ctx.LastRx = now
	b.ctx.NextRx = now + BeaconPeriod
	b.ctx.SymbolTimeout = 8
	b.missedCount = 0
	b.state = BeaconLocked
}

// RxTimeout reports that an expected beacon window closed without a
// beacon. Each consecutive miss widens SymbolTimeout for the next
// attempt; BeaconLost is reached once a bounded number of consecutive
// misses makes the device give up tracking and fall back to class A.
const maxConsecutiveMisses = 2

func (b *Beacon) RxTimeout(now time.Duration) {
	b.missedCount++
	b.ctx.SymbolTimeout *= 2
	b.ctx.NextRx = now + BeaconPeriod

	if b.missedCount > maxConsecutiveMisses {
		b.ctx.Acquired = false
		b.state = BeaconLost
		return
	}
	if b.ctx.Acquired {
		b.state = BeaconReacquisition
	} else {
		b.state = BeaconTimeout
	}
}

// EnterGuard transitions into the beacon guard period ahead of a
// scheduled receive window; the engine calls this when its clock
// crosses NextRx minus the guard interval.
func (b *Beacon) EnterGuard() {
	if b.state == BeaconHalt {
		return
	}
	b.state = BeaconGuard
}

// EnterRX transitions into the beacon receive window itself.
func (b *Beacon) EnterRX() {
	if b.state == BeaconHalt {
		return
	}
	b.state = BeaconRX
}

// EnterIdle transitions into the idle period between the beacon window
// and the first ping slot.
func (b *Beacon) EnterIdle() {
	if b.state == BeaconHalt {
		return
	}
	b.state = BeaconIdle
}

// IsAcquired reports whether the node currently tracks a locked beacon.
func (b *Beacon) IsAcquired() bool {
	return b.ctx.Acquired
}
