package mac

import (
	"context"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/cryptoengine"
	"github.com/foldedtoad/lora-mac/secureelement"
)

// handleDownlink parses, validates and applies a received data-down
// frame. It reports whether the frame was an ack for a confirmed
// uplink; downstream errors (bad frame, MIC mismatch, wrong DevAddr)
// are swallowed into a false result since a malformed or foreign
// downlink during an RX window is routine, not fatal.
func (e *Engine) handleDownlink(ctx context.Context, frame radioFrame) (bool, error) {
	var p lorawan.PHYPayload
	if err := p.UnmarshalBinary(frame.Data); err != nil {
		return false, nil
	}
	if p.MHDR.MType != lorawan.UnconfirmedDataDown && p.MHDR.MType != lorawan.ConfirmedDataDown {
		return false, nil
	}

	macPL, ok := p.MACPayload.(*lorawan.MACPayload)
	if !ok || macPL.FHDR.DevAddr != e.devAddr {
		return false, nil
	}

	fCnt, err := cryptoengine.ResolveFCnt(e.nFCntDown, macPL.FHDR.FCnt)
	if err != nil {
		e.pushIndication(EventCryptoFailure)
		return false, nil
	}

	valid, err := cryptoengine.ValidateDownlinkDataMIC(ctx, e.se, e.macVersion, e.confFCntDown, secureelement.SNwkSIntKey, &p)
	if err != nil || !valid {
		e.pushIndication(EventCryptoFailure)
		return false, nil
	}
	e.nFCntDown = fCnt

	if macPL.FPort != nil && *macPL.FPort == 0 && len(macPL.FRMPayload) == 1 {
		if err := cryptoengine.DecryptFRMPayloadOf(ctx, e.se, secureelement.NwkSEncKey, &p); err != nil {
			e.pushIndication(EventCryptoFailure)
			return false, nil
		}
		// DecryptFRMPayloadOf already decodes an FPort-0 FRMPayload into
		// MAC commands, so macPL.FRMPayload holds them directly here.
		e.dispatchCommands(macPL.FRMPayload)
	} else if macPL.FPort != nil && len(macPL.FRMPayload) == 1 {
		if err := cryptoengine.DecryptFRMPayloadOf(ctx, e.se, secureelement.AppSKey, &p); err != nil {
			e.pushIndication(EventCryptoFailure)
			return false, nil
		}
		if dp, ok := macPL.FRMPayload[0].(*lorawan.DataPayload); ok {
			e.dataIndications = append(e.dataIndications, DataIndication{
				FPort: *macPL.FPort,
				Data:  dp.Bytes,
				RSSI:  frame.RSSI,
				SNR:   frame.SNR,
			})
		}
	}

	if len(macPL.FHDR.FOpts) > 0 {
		if e.optNeg {
			if err := cryptoengine.DecryptFOptsOf(ctx, e.se, secureelement.NwkSEncKey, &p); err != nil {
				e.pushIndication(EventCryptoFailure)
				return false, nil
			}
		}
		e.dispatchCommands(macPL.FHDR.FOpts)
	}

	e.confirms.HandleAll(e.deliverConfirm)

	return macPL.FHDR.FCtrl.ACK, nil
}

// DataIndications drains and returns every downlink application
// payload queued since the last call.
func (e *Engine) DataIndications() []DataIndication {
	out := e.dataIndications
	e.dataIndications = nil
	return out
}
