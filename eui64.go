package lorawan

import (
	"encoding/hex"
	"fmt"
)

// EUI64 represents a 64 bit EUI (used for DevEUI and JoinEUI).
type EUI64 [8]byte

// String implements fmt.Stringer.
func (e EUI64) String() string {
	return hex.EncodeToString(e[:])
}

// MarshalText implements encoding.TextMarshaler.
func (e EUI64) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EUI64) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(b) != len(e) {
		return fmt.Errorf("lorawan: exactly %d bytes are expected", len(e))
	}
	copy(e[:], b)
	return nil
}

// MarshalBinary encodes the EUI to its little-endian wire representation.
func (e EUI64) MarshalBinary() ([]byte, error) {
	b := make([]byte, len(e))
	for i, v := range e {
		b[len(e)-i-1] = v
	}
	return b, nil
}

// UnmarshalBinary decodes the EUI from its little-endian wire representation.
func (e *EUI64) UnmarshalBinary(data []byte) error {
	if len(data) != len(e) {
		return fmt.Errorf("lorawan: %d bytes of data are expected", len(e))
	}
	for i, v := range data {
		e[len(e)-i-1] = v
	}
	return nil
}
