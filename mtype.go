package lorawan

import "errors"

// MType represents the message type.
type MType byte

// Supported message types (MType).
const (
	JoinRequest MType = iota
	JoinAccept
	UnconfirmedDataUp
	UnconfirmedDataDown
	ConfirmedDataUp
	ConfirmedDataDown
	RejoinRequest
	Proprietary
)

// String implements fmt.Stringer.
func (m MType) String() string {
	switch m {
	case JoinRequest:
		return "JoinRequest"
	case JoinAccept:
		return "JoinAccept"
	case UnconfirmedDataUp:
		return "UnconfirmedDataUp"
	case UnconfirmedDataDown:
		return "UnconfirmedDataDown"
	case ConfirmedDataUp:
		return "ConfirmedDataUp"
	case ConfirmedDataDown:
		return "ConfirmedDataDown"
	case RejoinRequest:
		return "RejoinRequest"
	case Proprietary:
		return "Proprietary"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m MType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Major defines the major version of the data message.
type Major byte

// Supported major versions.
const (
	LoRaWANR1 Major = 0
)

// MarshalText implements encoding.TextMarshaler.
func (m Major) MarshalText() ([]byte, error) {
	if m == LoRaWANR1 {
		return []byte("LoRaWANR1"), nil
	}
	return []byte("Unknown"), nil
}

// MACVersion defines the LoRaWAN MAC version in use by a session.
type MACVersion byte

// Supported LoRaWAN MAC versions.
const (
	LoRaWAN1_0 MACVersion = iota
	LoRaWAN1_1
)

// MHDR represents the MAC header: message type and major version.
type MHDR struct {
	MType MType `json:"mType"`
	Major Major `json:"major"`
}

// MarshalBinary marshals the object in binary form.
func (h MHDR) MarshalBinary() ([]byte, error) {
	return []byte{byte(h.Major) ^ (byte(h.MType) << 5)}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (h *MHDR) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	h.Major = Major(data[0] & 3)
	h.MType = MType((data[0] & 224) >> 5)
	return nil
}

// isUplink returns whether a message of this type originates at the device.
// Proprietary frames carry no direction information of their own; callers
// must already know which way they are headed.
func (m MType) isUplink() bool {
	switch m {
	case JoinRequest, UnconfirmedDataUp, ConfirmedDataUp, RejoinRequest:
		return true
	default:
		return false
	}
}
