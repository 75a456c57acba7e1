package lorawan

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// PHYPayload represents the physical payload: MHDR, MACPayload and MIC.
// This type is pure codec (C1): it parses and serializes the bit-exact
// wire layout of every frame variant but performs no cryptographic
// protection. MIC calculation, payload (de)cryption and key derivation are
// the responsibility of package cryptoengine (C2), which operates on the
// MarshalBinary/UnmarshalBinary output of this type.
type PHYPayload struct {
	MHDR       MHDR
	MACPayload Payload
	MIC        MIC
}

// IsUplink returns whether the packet is uplink or downlink. Proprietary
// frames carry no direction of their own; the caller is expected to
// already know which way they are headed.
func (p PHYPayload) IsUplink() bool {
	return p.MHDR.MType.isUplink()
}

// MarshalBinary marshals the object in binary form.
func (p PHYPayload) MarshalBinary() ([]byte, error) {
	if p.MACPayload == nil {
		return nil, errors.New("lorawan: MACPayload must not be nil")
	}

	var out []byte

	b, err := p.MHDR.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.MACPayload.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	out = append(out, p.MIC[:]...)
	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *PHYPayload) UnmarshalBinary(data []byte) error {
	if len(data) < 5 {
		return errors.New("lorawan: at least 5 bytes are needed to decode a PHYPayload")
	}

	if err := p.MHDR.UnmarshalBinary(data[0:1]); err != nil {
		return err
	}

	switch p.MHDR.MType {
	case JoinRequest:
		p.MACPayload = &JoinRequestPayload{}
	case JoinAccept:
		// transmitted encrypted: decode as opaque bytes, the caller must
		// call cryptoengine.DecryptJoinAccept before reading fields.
		p.MACPayload = &DataPayload{}
	case RejoinRequest:
		if len(data) < 2 {
			return errors.New("lorawan: rejoin-request needs at least 2 bytes")
		}
		switch data[1] {
		case 0, 2:
			p.MACPayload = &RejoinRequestType02Payload{}
		case 1:
			p.MACPayload = &RejoinRequestType1Payload{}
		default:
			return fmt.Errorf("lorawan: invalid RejoinType %d", data[1])
		}
	case Proprietary:
		p.MACPayload = &DataPayload{}
	case UnconfirmedDataUp, UnconfirmedDataDown, ConfirmedDataUp, ConfirmedDataDown:
		p.MACPayload = &MACPayload{}
	default:
		return fmt.Errorf("lorawan: invalid MType %d", p.MHDR.MType)
	}

	body := data[1 : len(data)-4]
	if err := p.MACPayload.UnmarshalBinary(p.IsUplink(), body); err != nil {
		return err
	}

	copy(p.MIC[:], data[len(data)-4:])
	return nil
}

// MarshalText encodes the PHYPayload into base64.
func (p PHYPayload) MarshalText() ([]byte, error) {
	b, err := p.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return []byte(base64.StdEncoding.EncodeToString(b)), nil
}

// UnmarshalText decodes the PHYPayload from base64.
func (p *PHYPayload) UnmarshalText(text []byte) error {
	b, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return err
	}
	return p.UnmarshalBinary(b)
}
