package lorawan

import (
	"encoding/binary"
	"fmt"
)

// DevNonce represents the join-request device nonce (uplink, 2 bytes).
type DevNonce uint16

// MarshalBinary encodes the nonce to its little-endian wire representation.
func (n DevNonce) MarshalBinary() ([]byte, error) {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(n))
	return b, nil
}

// UnmarshalBinary decodes the nonce from its little-endian wire representation.
func (n *DevNonce) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return fmt.Errorf("lorawan: 2 bytes of data are expected")
	}
	*n = DevNonce(binary.LittleEndian.Uint16(data))
	return nil
}

// JoinNonce represents the join-accept join nonce (downlink, 3 bytes,
// monotonically increasing per DevEUI as observed by the join server).
type JoinNonce uint32

// MarshalBinary encodes the nonce to its little-endian wire representation.
func (n JoinNonce) MarshalBinary() ([]byte, error) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(n))
	return b[0:3], nil
}

// UnmarshalBinary decodes the nonce from its little-endian wire representation.
func (n *JoinNonce) UnmarshalBinary(data []byte) error {
	if len(data) != 3 {
		return fmt.Errorf("lorawan: 3 bytes of data are expected")
	}
	b := make([]byte, 4)
	copy(b, data)
	*n = JoinNonce(binary.LittleEndian.Uint32(b))
	return nil
}

// AppNonce represents the LoRaWAN 1.0.x join-accept application nonce
// (3 bytes), used together with NetID and DevNonce to derive session keys.
type AppNonce [3]byte

// MarshalBinary encodes the nonce to its little-endian wire representation.
func (n AppNonce) MarshalBinary() ([]byte, error) {
	out := make([]byte, len(n))
	for i, v := range n {
		out[len(n)-1-i] = v
	}
	return out, nil
}

// UnmarshalBinary decodes the nonce from its little-endian wire representation.
func (n *AppNonce) UnmarshalBinary(data []byte) error {
	if len(data) != len(n) {
		return fmt.Errorf("lorawan: %d bytes of data are expected", len(n))
	}
	for i, v := range data {
		n[len(n)-1-i] = v
	}
	return nil
}

// RJCount1 is the rejoin-type-1 replay counter (2 bytes).
type RJCount1 uint16

// MarshalBinary encodes the counter to its little-endian wire representation.
func (c RJCount1) MarshalBinary() ([]byte, error) {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(c))
	return b, nil
}

// UnmarshalBinary decodes the counter from its little-endian wire representation.
func (c *RJCount1) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return fmt.Errorf("lorawan: 2 bytes of data are expected")
	}
	*c = RJCount1(binary.LittleEndian.Uint16(data))
	return nil
}

// RJCount0 is the rejoin-type-0/2 replay counter (2 bytes).
type RJCount0 uint16

// MarshalBinary encodes the counter to its little-endian wire representation.
func (c RJCount0) MarshalBinary() ([]byte, error) {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(c))
	return b, nil
}

// UnmarshalBinary decodes the counter from its little-endian wire representation.
func (c *RJCount0) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return fmt.Errorf("lorawan: 2 bytes of data are expected")
	}
	*c = RJCount0(binary.LittleEndian.Uint16(data))
	return nil
}
