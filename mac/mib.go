package mac

import "errors"

// MIBAttribute names one piece of the MAC information base.
type MIBAttribute uint8

// MIB attributes. MIBGet and MIBSet do not handle
// MIBMaxRXWindowDuration; both return ErrUnknownMIB for it.
const (
	MIBDeviceClass MIBAttribute = iota
	MIBNetworkJoined
	MIBAdrEnabled
	MIBNetID
	MIBDevAddr
	MIBMACVersion
	MIBChannelsTXPower
	MIBChannelsDataRate
	MIBChannelsNbTrans
	MIBRX1DROffset
	MIBRX2Channel
	MIBMaxRXWindowDuration
	MIBReceiveDelay1
	MIBReceiveDelay2
	MIBPingSlotPeriodicity
	MIBPublicNetwork
)

// ErrUnknownMIB is returned for an attribute the engine does not
// recognize.
var ErrUnknownMIB = errors.New("mac: unknown MIB attribute")

// ErrMIBReadOnly is returned by MIBSet for an attribute that can only
// be read.
var ErrMIBReadOnly = errors.New("mac: MIB attribute is read-only")

// MIBValue is a tagged union big enough to carry every MIB attribute's
// value without per-attribute accessor methods.
type MIBValue struct {
	Bool  bool
	Int   int
	Class DeviceClass
}

// MIBGet reads a MIB attribute.
func (e *Engine) MIBGet(attr MIBAttribute) (MIBValue, error) {
	switch attr {
	case MIBDeviceClass:
		return MIBValue{Class: e.class}, nil
	case MIBNetworkJoined:
		return MIBValue{Bool: e.joined}, nil
	case MIBAdrEnabled:
		return MIBValue{Bool: e.adrEnabled}, nil
	case MIBNetID:
		var id int
		for _, b := range e.netID.ID() {
			id = id<<8 | int(b)
		}
		return MIBValue{Int: id}, nil
	case MIBDevAddr:
		return MIBValue{}, nil
	case MIBMACVersion:
		return MIBValue{Int: int(e.macVersion)}, nil
	case MIBChannelsTXPower:
		return MIBValue{Int: e.txPower}, nil
	case MIBChannelsDataRate:
		return MIBValue{Int: e.dataRate}, nil
	case MIBChannelsNbTrans:
		return MIBValue{Int: e.nbTrans}, nil
	case MIBRX1DROffset:
		return MIBValue{Int: e.rx1DROffset}, nil
	case MIBRX2Channel:
		return MIBValue{Int: e.rx2DataRate}, nil
	case MIBReceiveDelay1:
		return MIBValue{Int: int(e.receiveDelay1.Milliseconds())}, nil
	case MIBReceiveDelay2:
		return MIBValue{Int: int(e.receiveDelay2.Milliseconds())}, nil
	case MIBPingSlotPeriodicity:
		return MIBValue{Int: int(e.pingSlot.Context().Periodicity)}, nil
	case MIBPublicNetwork:
		return MIBValue{Bool: e.publicNetwork}, nil
	default:
		return MIBValue{}, ErrUnknownMIB
	}
}

// MIBSet writes a MIB attribute.
func (e *Engine) MIBSet(attr MIBAttribute, v MIBValue) error {
	switch attr {
	case MIBDeviceClass:
		e.class = v.Class
	case MIBAdrEnabled:
		e.adrEnabled = v.Bool
	case MIBChannelsTXPower:
		e.txPower = v.Int
	case MIBChannelsDataRate:
		e.dataRate = v.Int
	case MIBChannelsNbTrans:
		e.nbTrans = v.Int
	case MIBRX1DROffset:
		e.rx1DROffset = v.Int
	case MIBRX2Channel:
		e.rx2DataRate = v.Int
	case MIBPublicNetwork:
		e.publicNetwork = v.Bool
	case MIBNetworkJoined, MIBNetID, MIBDevAddr, MIBMACVersion,
		MIBReceiveDelay1, MIBReceiveDelay2, MIBPingSlotPeriodicity:
		return ErrMIBReadOnly
	default:
		return ErrUnknownMIB
	}
	e.markDirty()
	return nil
}
