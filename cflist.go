package lorawan

import (
	"encoding/binary"
	"fmt"
)

// CFListType defines the format of the CFList.
type CFListType uint8

// Supported CFList types.
const (
	CFListChannel CFListType = 0
	CFListChannelMask CFListType = 1
)

// CFList represents the optional 16-byte channel-frequency-list appended to
// a join-accept. In CFListChannel form it carries up to 5 additional
// channel frequencies (3 bytes each, 100 Hz steps); in CFListChannelMask
// form it carries a channel-mask instead (used by fixed-channel-plan
// regions such as US915/AU915).
type CFList struct {
	CFListType CFListType
	// Channels[i] is a frequency in Hz, valid when CFListType == CFListChannel.
	Channels [5]uint32
	// ChMasks is valid when CFListType == CFListChannelMask.
	ChMasks [5]ChMask
}

// MarshalBinary marshals the object in binary form.
func (c CFList) MarshalBinary() ([]byte, error) {
	b := make([]byte, 16)

	switch c.CFListType {
	case CFListChannel:
		for i, freq := range c.Channels {
			if freq == 0 {
				continue
			}
			if freq%100 != 0 {
				return nil, fmt.Errorf("lorawan: channel frequency must be a multiple of 100")
			}
			v := freq / 100
			b[i*3] = byte(v)
			b[i*3+1] = byte(v >> 8)
			b[i*3+2] = byte(v >> 16)
		}
	case CFListChannelMask:
		for i, m := range c.ChMasks {
			mb, err := m.MarshalBinary()
			if err != nil {
				return nil, err
			}
			copy(b[i*2:i*2+2], mb)
		}
	default:
		return nil, fmt.Errorf("lorawan: unknown CFListType %d", c.CFListType)
	}

	b[15] = byte(c.CFListType)
	return b, nil
}

// UnmarshalBinary decodes the object from binary form.
func (c *CFList) UnmarshalBinary(data []byte) error {
	if len(data) != 16 {
		return fmt.Errorf("lorawan: 16 bytes of data are expected")
	}

	c.CFListType = CFListType(data[15])

	switch c.CFListType {
	case CFListChannel:
		for i := 0; i < 5; i++ {
			v := make([]byte, 4)
			copy(v, data[i*3:i*3+3])
			c.Channels[i] = binary.LittleEndian.Uint32(v) * 100
		}
	case CFListChannelMask:
		for i := 0; i < 5; i++ {
			if err := c.ChMasks[i].UnmarshalBinary(data[i*2 : i*2+2]); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("lorawan: unknown CFListType %d", c.CFListType)
	}

	return nil
}
