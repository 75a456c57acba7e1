package lorawan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDevAddrMarshalBinaryRoundTrip(t *testing.T) {
	a := DevAddr{1, 2, 3, 4}
	b, err := a.MarshalBinary()
	assert.NoError(t, err)
	assert.Equal(t, []byte{4, 3, 2, 1}, b)

	var got DevAddr
	assert.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, a, got)
}

func TestFCtrlMarshalBinaryRejectsOversizedFOptsLen(t *testing.T) {
	c := FCtrl{fOptsLen: 16}
	_, err := c.MarshalBinary()
	assert.Error(t, err)
}

func TestFCtrlRoundTrip(t *testing.T) {
	c := FCtrl{ADR: true, ACK: true}
	b, err := c.MarshalBinary()
	assert.NoError(t, err)

	var got FCtrl
	assert.NoError(t, got.UnmarshalBinary(b))
	assert.True(t, got.ADR)
	assert.True(t, got.ACK)
	assert.False(t, got.ADRACKReq)
	assert.False(t, got.FPending)
}

func TestFHDRRoundTripWithFOptsMACCommands(t *testing.T) {
	h := FHDR{
		DevAddr: DevAddr{1, 2, 3, 4},
		FCtrl:   FCtrl{ADR: true},
		FCnt:    42,
		FOpts:   []Payload{&MACCommand{CID: LinkCheckReq}},
	}

	b, err := h.MarshalBinary()
	assert.NoError(t, err)

	var got FHDR
	assert.NoError(t, got.UnmarshalBinary(true, b))
	assert.Equal(t, h.DevAddr, got.DevAddr)
	assert.Equal(t, uint16(42), got.FCnt)
	assert.Len(t, got.FOpts, 1)

	cmd, ok := got.FOpts[0].(*MACCommand)
	assert.True(t, ok)
	assert.Equal(t, LinkCheckReq, cmd.CID)
}

func TestFHDRUnmarshalRejectsInconsistentFOptsLen(t *testing.T) {
	h := FHDR{DevAddr: DevAddr{1, 2, 3, 4}}
	b, err := h.MarshalBinary()
	assert.NoError(t, err)
	b[4] = 0x05 // claim 5 bytes of FOpts that aren't present

	var got FHDR
	err = got.UnmarshalBinary(true, b)
	assert.Error(t, err)
}

func TestFHDRUnmarshalTooShort(t *testing.T) {
	var h FHDR
	err := h.UnmarshalBinary(true, []byte{1, 2, 3})
	assert.Error(t, err)
}
