package lorawan

// Payload is the interface implemented by every value that can appear as
// FOpts, FRMPayload or a join/rejoin body. UnmarshalBinary takes an uplink
// flag because the same CID can name a different payload layout depending
// on direction (see GetMACPayloadAndSize).
type Payload interface {
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(uplink bool, data []byte) error
	Clone() Payload
}

// DataPayload represents an opaque, already-framed slice of bytes: used
// for FRMPayload before decryption, and for FOpts/FRMPayload before MAC
// command decoding.
type DataPayload struct {
	Bytes []byte
}

// Clone returns a copy of the payload.
func (p DataPayload) Clone() Payload {
	cp := make([]byte, len(p.Bytes))
	copy(cp, p.Bytes)
	return &DataPayload{Bytes: cp}
}

// MarshalBinary marshals the object in binary form.
func (p DataPayload) MarshalBinary() ([]byte, error) {
	return p.Bytes, nil
}

// UnmarshalBinary decodes the object from binary form. uplink is unused:
// raw bytes have no direction-dependent layout.
func (p *DataPayload) UnmarshalBinary(uplink bool, data []byte) error {
	p.Bytes = make([]byte, len(data))
	copy(p.Bytes, data)
	return nil
}
