package cryptoengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/secureelement"
	"github.com/foldedtoad/lora-mac/softse"
)

func TestEncryptFRMPayloadOfRoundTrip(t *testing.T) {
	ctx := context.Background()
	se := softse.New(map[secureelement.KeyID][16]byte{secureelement.AppSKey: {1, 2, 3}})

	fPort := uint8(1)
	p := &lorawan.PHYPayload{
		MHDR: lorawan.MHDR{MType: lorawan.UnconfirmedDataUp, Major: lorawan.LoRaWANR1},
		MACPayload: &lorawan.MACPayload{
			FHDR:       lorawan.FHDR{DevAddr: lorawan.DevAddr{1, 2, 3, 4}, FCnt: 3},
			FPort:      &fPort,
			FRMPayload: []lorawan.Payload{&lorawan.DataPayload{Bytes: []byte("sensor reading")}},
		},
	}

	assert.NoError(t, EncryptFRMPayloadOf(ctx, se, secureelement.AppSKey, p))
	macPL := p.MACPayload.(*lorawan.MACPayload)
	ctBytes, _ := macPL.FRMPayload[0].MarshalBinary()
	assert.NotEqual(t, []byte("sensor reading"), ctBytes[:len("sensor reading")])

	assert.NoError(t, DecryptFRMPayloadOf(ctx, se, secureelement.AppSKey, p))
	ptBytes, _ := macPL.FRMPayload[0].MarshalBinary()
	assert.Equal(t, []byte("sensor reading"), ptBytes)
}

func TestDecryptFRMPayloadOfDecodesFPort0AsMACCommands(t *testing.T) {
	ctx := context.Background()
	se := softse.New(map[secureelement.KeyID][16]byte{secureelement.NwkSEncKey: {1, 2, 3}})

	fPort := uint8(0)
	cmd := lorawan.MACCommand{CID: lorawan.DevStatusReq}
	cmdB, err := cmd.MarshalBinary()
	assert.NoError(t, err)

	p := &lorawan.PHYPayload{
		MHDR: lorawan.MHDR{MType: lorawan.UnconfirmedDataUp, Major: lorawan.LoRaWANR1},
		MACPayload: &lorawan.MACPayload{
			FHDR:       lorawan.FHDR{DevAddr: lorawan.DevAddr{1, 2, 3, 4}, FCnt: 1},
			FPort:      &fPort,
			FRMPayload: []lorawan.Payload{&lorawan.DataPayload{Bytes: cmdB}},
		},
	}

	assert.NoError(t, EncryptFRMPayloadOf(ctx, se, secureelement.NwkSEncKey, p))
	assert.NoError(t, DecryptFRMPayloadOf(ctx, se, secureelement.NwkSEncKey, p))

	macPL := p.MACPayload.(*lorawan.MACPayload)
	decoded, ok := macPL.FRMPayload[0].(*lorawan.MACCommand)
	assert.True(t, ok)
	assert.Equal(t, lorawan.DevStatusReq, decoded.CID)
}

func TestEncryptFOptsOfRoundTrip(t *testing.T) {
	ctx := context.Background()
	se := softse.New(map[secureelement.KeyID][16]byte{secureelement.NwkSEncKey: {1, 2, 3}})

	cmd := lorawan.MACCommand{CID: lorawan.LinkCheckReq}
	p := &lorawan.PHYPayload{
		MHDR: lorawan.MHDR{MType: lorawan.UnconfirmedDataUp, Major: lorawan.LoRaWANR1},
		MACPayload: &lorawan.MACPayload{
			FHDR: lorawan.FHDR{DevAddr: lorawan.DevAddr{1, 2, 3, 4}, FCnt: 2, FOpts: []lorawan.Payload{&cmd}},
		},
	}

	assert.NoError(t, EncryptFOptsOf(ctx, se, secureelement.NwkSEncKey, p))
	assert.NoError(t, DecryptFOptsOf(ctx, se, secureelement.NwkSEncKey, p))

	macPL := p.MACPayload.(*lorawan.MACPayload)
	decoded, ok := macPL.FHDR.FOpts[0].(*lorawan.MACCommand)
	assert.True(t, ok)
	assert.Equal(t, lorawan.LinkCheckReq, decoded.CID)
}

func TestEncryptDecryptJoinAcceptOfRoundTrip(t *testing.T) {
	ctx := context.Background()
	se := softse.New(map[secureelement.KeyID][16]byte{secureelement.NwkKey: {9, 9, 9}})

	p := &lorawan.PHYPayload{
		MHDR: lorawan.MHDR{MType: lorawan.JoinAccept, Major: lorawan.LoRaWANR1},
		MACPayload: &lorawan.JoinAcceptPayload{
			JoinNonce: lorawan.JoinNonce(1),
			NetID:     lorawan.NetID{1, 2, 3},
			DevAddr:   lorawan.DevAddr{1, 2, 3, 4},
			RXDelay:   1,
		},
	}
	assert.NoError(t, SetDownlinkJoinMIC(ctx, se, secureelement.NwkKey, lorawan.JoinRequestType, lorawan.EUI64{}, 0, p))
	assert.NoError(t, EncryptJoinAcceptOf(ctx, se, secureelement.NwkKey, p))

	_, isData := p.MACPayload.(*lorawan.DataPayload)
	assert.True(t, isData)

	assert.NoError(t, DecryptJoinAcceptOf(ctx, se, secureelement.NwkKey, p))
	ja, ok := p.MACPayload.(*lorawan.JoinAcceptPayload)
	assert.True(t, ok)
	assert.Equal(t, lorawan.JoinNonce(1), ja.JoinNonce)

	valid, err := ValidateDownlinkJoinMIC(ctx, se, secureelement.NwkKey, lorawan.JoinRequestType, lorawan.EUI64{}, 0, p)
	assert.NoError(t, err)
	assert.True(t, valid)
}
