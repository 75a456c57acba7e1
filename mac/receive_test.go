package mac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/cryptoengine"
	"github.com/foldedtoad/lora-mac/secureelement"
	"github.com/foldedtoad/lora-mac/softse"
)

// A freshly joined session has never accepted a downlink, so its very
// first downlink legitimately carries wire FCnt 0 — the same value a
// retransmission of a zero-initialized counter would carry. The engine
// must tell the two apart via the NoFCnt sentinel, not reject the first
// real downlink outright.
func TestHandleDownlinkAcceptsFirstDownlinkAtFCntZero(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.se.(*softse.Element).Set(secureelement.SNwkSIntKey, [16]byte{8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8})
	e.devAddr = lorawan.DevAddr{1, 2, 3, 4}
	e.joined = true
	assert.Equal(t, cryptoengine.NoFCnt, e.nFCntDown)

	ctx := context.Background()
	p := &lorawan.PHYPayload{
		MHDR: lorawan.MHDR{MType: lorawan.UnconfirmedDataDown, Major: lorawan.LoRaWANR1},
		MACPayload: &lorawan.MACPayload{
			FHDR: lorawan.FHDR{DevAddr: e.devAddr, FCnt: 0},
		},
	}
	assert.NoError(t, cryptoengine.SetDownlinkDataMIC(ctx, e.se, e.macVersion, 0, secureelement.SNwkSIntKey, p))
	b, err := p.MarshalBinary()
	assert.NoError(t, err)

	_, err = e.handleDownlink(ctx, radioFrame{Data: b})
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), e.nFCntDown)
}

// A replay of the same wire FCnt after it has already been accepted must
// still be rejected, so the sentinel fix can't be a blanket bypass.
func TestHandleDownlinkRejectsRetransmissionAfterFirstDownlink(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.se.(*softse.Element).Set(secureelement.SNwkSIntKey, [16]byte{8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8})
	e.devAddr = lorawan.DevAddr{1, 2, 3, 4}
	e.joined = true

	ctx := context.Background()
	build := func(fCnt uint32) []byte {
		p := &lorawan.PHYPayload{
			MHDR: lorawan.MHDR{MType: lorawan.UnconfirmedDataDown, Major: lorawan.LoRaWANR1},
			MACPayload: &lorawan.MACPayload{
				FHDR: lorawan.FHDR{DevAddr: e.devAddr, FCnt: fCnt},
			},
		}
		assert.NoError(t, cryptoengine.SetDownlinkDataMIC(ctx, e.se, e.macVersion, 0, secureelement.SNwkSIntKey, p))
		b, err := p.MarshalBinary()
		assert.NoError(t, err)
		return b
	}

	_, err := e.handleDownlink(ctx, radioFrame{Data: build(0)})
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), e.nFCntDown)

	indicationsBefore := len(e.indications)
	_, err = e.handleDownlink(ctx, radioFrame{Data: build(0)})
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), e.nFCntDown)
	assert.Greater(t, len(e.indications), indicationsBefore, "a replayed FCnt should surface as a crypto/sequence failure")
}
