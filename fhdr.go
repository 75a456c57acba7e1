package lorawan

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// DevAddr represents the 4-byte device address.
type DevAddr [4]byte

// String implements fmt.Stringer.
func (a DevAddr) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a DevAddr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// MarshalBinary encodes the address to its little-endian wire representation.
func (a DevAddr) MarshalBinary() ([]byte, error) {
	b := make([]byte, len(a))
	for i, v := range a {
		b[len(a)-i-1] = v
	}
	return b, nil
}

// UnmarshalBinary decodes the address from its little-endian wire representation.
func (a *DevAddr) UnmarshalBinary(data []byte) error {
	if len(data) != len(a) {
		return fmt.Errorf("lorawan: %d bytes of data are expected", len(a))
	}
	for i, v := range data {
		a[len(a)-i-1] = v
	}
	return nil
}

// FCtrl represents the frame-control byte: {ADR, ADRACKReq, ACK, FPending}
// plus the 4-bit FOptsLen.
type FCtrl struct {
	ADR       bool
	ADRACKReq bool
	ACK       bool
	FPending  bool
	fOptsLen  uint8
}

// MarshalBinary marshals the object in binary form.
func (c FCtrl) MarshalBinary() ([]byte, error) {
	if c.fOptsLen > 15 {
		return nil, errors.New("lorawan: max. FOptsLen is 15")
	}

	var b byte
	if c.ADR {
		b |= 1 << 7
	}
	if c.ADRACKReq {
		b |= 1 << 6
	}
	if c.ACK {
		b |= 1 << 5
	}
	if c.FPending {
		b |= 1 << 4
	}
	b |= c.fOptsLen & 0x0f

	return []byte{b}, nil
}

// UnmarshalBinary decodes the object from binary form.
func (c *FCtrl) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errors.New("lorawan: 1 byte of data is expected")
	}
	c.ADR = data[0]&(1<<7) > 0
	c.ADRACKReq = data[0]&(1<<6) > 0
	c.ACK = data[0]&(1<<5) > 0
	c.FPending = data[0]&(1<<4) > 0
	c.fOptsLen = data[0] & 0x0f
	return nil
}

// FHDR represents the frame header: device address, frame control,
// truncated frame counter and up to 15 bytes of piggy-backed MAC commands.
type FHDR struct {
	DevAddr DevAddr
	FCtrl   FCtrl
	FCnt    uint16
	FOpts   []Payload
}

// MarshalBinary marshals the object in binary form.
func (h FHDR) MarshalBinary() ([]byte, error) {
	var optsB []byte
	for _, o := range h.FOpts {
		b, err := o.MarshalBinary()
		if err != nil {
			return nil, err
		}
		optsB = append(optsB, b...)
	}
	if len(optsB) > 15 {
		return nil, errors.New("lorawan: max. FOpts size is 15 bytes")
	}
	h.FCtrl.fOptsLen = uint8(len(optsB))

	out := make([]byte, 0, 7+len(optsB))

	b, err := h.DevAddr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = h.FCtrl.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	out = append(out, byte(h.FCnt), byte(h.FCnt>>8))
	out = append(out, optsB...)

	return out, nil
}

// UnmarshalBinary decodes the object from binary form. uplink selects
// whether FOpts is decoded as uplink or downlink MAC commands.
func (h *FHDR) UnmarshalBinary(uplink bool, data []byte) error {
	if len(data) < 7 {
		return errors.New("lorawan: at least 7 bytes are expected")
	}

	if err := h.DevAddr.UnmarshalBinary(data[0:4]); err != nil {
		return err
	}
	if err := h.FCtrl.UnmarshalBinary(data[4:5]); err != nil {
		return err
	}
	h.FCnt = uint16(data[5]) | uint16(data[6])<<8

	optsLen := int(h.FCtrl.fOptsLen)
	if len(data) != 7+optsLen {
		return fmt.Errorf("lorawan: FOptsLen=%d is inconsistent with the remaining %d bytes", optsLen, len(data)-7)
	}

	if optsLen == 0 {
		h.FOpts = nil
		return nil
	}

	opts, err := decodeDataPayloadToMACCommands(uplink, []Payload{&DataPayload{Bytes: data[7 : 7+optsLen]}})
	if err != nil {
		return err
	}
	h.FOpts = opts
	return nil
}
