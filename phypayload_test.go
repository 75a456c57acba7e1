package lorawan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPHYPayloadJoinRequestRoundTrip(t *testing.T) {
	p := PHYPayload{
		MHDR: MHDR{MType: JoinRequest, Major: LoRaWANR1},
		MACPayload: &JoinRequestPayload{
			JoinEUI:  EUI64{1, 2, 3, 4, 5, 6, 7, 8},
			DevEUI:   EUI64{8, 7, 6, 5, 4, 3, 2, 1},
			DevNonce: DevNonce(99),
		},
		MIC: MIC{1, 2, 3, 4},
	}
	assert.True(t, p.IsUplink())

	b, err := p.MarshalBinary()
	assert.NoError(t, err)
	assert.Len(t, b, 1+18+4)

	var got PHYPayload
	assert.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, JoinRequest, got.MHDR.MType)
	assert.Equal(t, p.MIC, got.MIC)

	jr, ok := got.MACPayload.(*JoinRequestPayload)
	assert.True(t, ok)
	assert.Equal(t, p.MACPayload.(*JoinRequestPayload).DevEUI, jr.DevEUI)
	assert.Equal(t, DevNonce(99), jr.DevNonce)
}

func TestPHYPayloadDataFrameRoundTrip(t *testing.T) {
	fPort := uint8(5)
	p := PHYPayload{
		MHDR: MHDR{MType: UnconfirmedDataUp, Major: LoRaWANR1},
		MACPayload: &MACPayload{
			FHDR:       FHDR{DevAddr: DevAddr{1, 2, 3, 4}, FCtrl: FCtrl{ADR: true}, FCnt: 7},
			FPort:      &fPort,
			FRMPayload: []Payload{&DataPayload{Bytes: []byte{0xaa, 0xbb, 0xcc}}},
		},
		MIC: MIC{9, 9, 9, 9},
	}

	b, err := p.MarshalBinary()
	assert.NoError(t, err)

	var got PHYPayload
	assert.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, UnconfirmedDataUp, got.MHDR.MType)

	macPL, ok := got.MACPayload.(*MACPayload)
	assert.True(t, ok)
	assert.Equal(t, DevAddr{1, 2, 3, 4}, macPL.FHDR.DevAddr)
	assert.True(t, macPL.FHDR.FCtrl.ADR)
	assert.Equal(t, uint16(7), macPL.FHDR.FCnt)
	assert.Equal(t, uint8(5), *macPL.FPort)

	dp, ok := macPL.FRMPayload[0].(*DataPayload)
	assert.True(t, ok)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc}, dp.Bytes)
}

func TestPHYPayloadUnmarshalTooShort(t *testing.T) {
	var p PHYPayload
	err := p.UnmarshalBinary([]byte{0x00})
	assert.Error(t, err)
}

func TestPHYPayloadTextRoundTrip(t *testing.T) {
	p := PHYPayload{
		MHDR:       MHDR{MType: UnconfirmedDataUp, Major: LoRaWANR1},
		MACPayload: &MACPayload{FHDR: FHDR{DevAddr: DevAddr{1, 2, 3, 4}}},
		MIC:        MIC{1, 1, 1, 1},
	}
	text, err := p.MarshalText()
	assert.NoError(t, err)

	var got PHYPayload
	assert.NoError(t, got.UnmarshalText(text))
	assert.Equal(t, p.MIC, got.MIC)
}
