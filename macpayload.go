package lorawan

import "errors"

// MACPayload represents the payload of a data (uplink/downlink,
// confirmed/unconfirmed) frame: FHDR, an optional FPort and an optional
// FRMPayload. FRMPayload is carried as opaque bytes at the codec layer —
// encryption/decryption is a cryptoengine concern, not a C1 concern.
type MACPayload struct {
	FHDR       FHDR
	FPort      *uint8
	FRMPayload []Payload
}

// Clone returns a copy of the payload.
func (p MACPayload) Clone() Payload {
	return &p
}

func (p MACPayload) marshalFRMPayload() ([]byte, error) {
	var out []byte
	for _, pl := range p.FRMPayload {
		b, err := pl.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// MarshalBinary marshals the object in binary form.
func (p MACPayload) MarshalBinary() ([]byte, error) {
	b, err := p.FHDR.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := append([]byte{}, b...)

	if p.FPort != nil {
		out = append(out, *p.FPort)
	}

	frm, err := p.marshalFRMPayload()
	if err != nil {
		return nil, err
	}
	out = append(out, frm...)

	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *MACPayload) UnmarshalBinary(uplink bool, data []byte) error {
	if len(data) < 7 {
		return errors.New("lorawan: at least 7 bytes are expected")
	}

	fOptsLen := int(data[4] & 0x0f)
	fhdrLen := 7 + fOptsLen
	if len(data) < fhdrLen {
		return errors.New("lorawan: FHDR is shorter than FOptsLen indicates")
	}

	if err := p.FHDR.UnmarshalBinary(uplink, data[0:fhdrLen]); err != nil {
		return err
	}

	rest := data[fhdrLen:]
	if len(rest) == 0 {
		p.FPort = nil
		p.FRMPayload = nil
		return nil
	}

	port := rest[0]
	p.FPort = &port

	if len(rest) > 1 {
		p.FRMPayload = []Payload{&DataPayload{Bytes: rest[1:]}}
	} else {
		p.FRMPayload = nil
	}

	return nil
}
