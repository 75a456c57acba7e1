// Package cryptoengine is the MAC engine's crypto component (C2): key
// derivation, MIC calculation/validation, FRMPayload/FOpts
// encryption/decryption and frame-counter discipline. It operates on the
// wire bytes package lorawan produces and consumes, and on key material
// it never sees directly — every operation names a
// secureelement.KeyID and lets the secure element do the AES work.
package cryptoengine

import (
	"context"
	"encoding/binary"
	"errors"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/secureelement"
)

// Errors returned by MIC and frame-counter operations.
var (
	ErrMICMismatch  = errors.New("cryptoengine: MIC check failed")
	ErrNotDataFrame = errors.New("cryptoengine: MACPayload is not a data frame")
	ErrNotJoinFrame = errors.New("cryptoengine: MACPayload is not a join-accept frame")
)

func micBytesFromPayload(hdr lorawan.MHDR, payload lorawan.Payload) ([]byte, error) {
	var out []byte
	b, err := hdr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = payload.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)
	return out, nil
}

// CalculateUplinkJoinMIC computes the MIC for an uplink join-request or
// rejoin-request, under NwkKey (1.0.x) or the appropriate join key
// (1.1.x — the caller picks which KeyID to pass).
func CalculateUplinkJoinMIC(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, p *lorawan.PHYPayload) (lorawan.MIC, error) {
	var mic lorawan.MIC
	if p.MACPayload == nil {
		return mic, errors.New("cryptoengine: MACPayload must not be nil")
	}

	data, err := micBytesFromPayload(p.MHDR, p.MACPayload)
	if err != nil {
		return mic, err
	}

	tag, err := se.CMAC(ctx, key, data)
	if err != nil {
		return mic, err
	}
	copy(mic[:], tag[0:4])
	return mic, nil
}

// SetUplinkJoinMIC calculates and stores the MIC on an uplink join frame.
func SetUplinkJoinMIC(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, p *lorawan.PHYPayload) error {
	mic, err := CalculateUplinkJoinMIC(ctx, se, key, p)
	if err != nil {
		return err
	}
	p.MIC = mic
	return nil
}

// ValidateUplinkJoinMIC reports whether p.MIC matches the computed MIC.
func ValidateUplinkJoinMIC(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, p *lorawan.PHYPayload) (bool, error) {
	mic, err := CalculateUplinkJoinMIC(ctx, se, key, p)
	if err != nil {
		return false, err
	}
	return p.MIC == mic, nil
}

// CalculateDownlinkJoinMIC computes the MIC for a join-accept. For
// OptNeg (1.1.x) frames joinReqType/joinEUI/devNonce are prefixed into
// the MAC'd bytes; for 1.0.x frames they are unused but still accepted
// to keep one call shape for both versions.
func CalculateDownlinkJoinMIC(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, joinReqType lorawan.JoinType, joinEUI lorawan.EUI64, devNonce lorawan.DevNonce, p *lorawan.PHYPayload) (lorawan.MIC, error) {
	var mic lorawan.MIC
	if p.MACPayload == nil {
		return mic, errors.New("cryptoengine: MACPayload must not be nil")
	}

	joinAccPL, ok := p.MACPayload.(*lorawan.JoinAcceptPayload)
	if !ok {
		return mic, ErrNotJoinFrame
	}

	var data []byte
	if joinAccPL.DLSettings.OptNeg {
		data = append(data, byte(joinReqType))

		b, err := joinEUI.MarshalBinary()
		if err != nil {
			return mic, err
		}
		data = append(data, b...)

		b, err = devNonce.MarshalBinary()
		if err != nil {
			return mic, err
		}
		data = append(data, b...)
	}

	b, err := micBytesFromPayload(p.MHDR, p.MACPayload)
	if err != nil {
		return mic, err
	}
	data = append(data, b...)

	tag, err := se.CMAC(ctx, key, data)
	if err != nil {
		return mic, err
	}
	copy(mic[:], tag[0:4])
	return mic, nil
}

// SetDownlinkJoinMIC calculates and stores the MIC on a join-accept.
func SetDownlinkJoinMIC(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, joinReqType lorawan.JoinType, joinEUI lorawan.EUI64, devNonce lorawan.DevNonce, p *lorawan.PHYPayload) error {
	mic, err := CalculateDownlinkJoinMIC(ctx, se, key, joinReqType, joinEUI, devNonce, p)
	if err != nil {
		return err
	}
	p.MIC = mic
	return nil
}

// ValidateDownlinkJoinMIC reports whether p.MIC matches the computed MIC.
func ValidateDownlinkJoinMIC(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, joinReqType lorawan.JoinType, joinEUI lorawan.EUI64, devNonce lorawan.DevNonce, p *lorawan.PHYPayload) (bool, error) {
	mic, err := CalculateDownlinkJoinMIC(ctx, se, key, joinReqType, joinEUI, devNonce, p)
	if err != nil {
		return false, err
	}
	return p.MIC == mic, nil
}

// CalculateUplinkDataMIC computes the MIC for an uplink data frame. Under
// 1.0.x the full 4 bytes come from fNwkSIntKey; under 1.1.x the first 2
// bytes come from sNwkSIntKey (covering confFCnt/txDR/txCh) and the last
// 2 from fNwkSIntKey.
func CalculateUplinkDataMIC(ctx context.Context, se secureelement.SecureElement, macVersion lorawan.MACVersion, confFCnt uint32, txDR, txCh uint8, fNwkSIntKey, sNwkSIntKey secureelement.KeyID, p *lorawan.PHYPayload) (lorawan.MIC, error) {
	var mic lorawan.MIC
	if p.MACPayload == nil {
		return mic, errors.New("cryptoengine: MACPayload must not be nil")
	}

	macPL, ok := p.MACPayload.(*lorawan.MACPayload)
	if !ok {
		return mic, ErrNotDataFrame
	}

	if !macPL.FHDR.FCtrl.ACK {
		confFCnt = 0
	}
	confFCnt = confFCnt % (1 << 16)

	micBytes, err := micBytesFromPayload(p.MHDR, macPL)
	if err != nil {
		return mic, err
	}

	b0 := make([]byte, 16)
	b1 := make([]byte, 16)
	b0[0] = 0x49
	b1[0] = 0x49

	devAddrB, err := macPL.FHDR.DevAddr.MarshalBinary()
	if err != nil {
		return mic, err
	}
	copy(b0[6:10], devAddrB)
	copy(b1[6:10], devAddrB)

	binary.LittleEndian.PutUint32(b0[10:14], uint32(macPL.FHDR.FCnt))
	binary.LittleEndian.PutUint32(b1[10:14], uint32(macPL.FHDR.FCnt))

	b0[15] = byte(len(micBytes))
	b1[15] = byte(len(micBytes))

	binary.LittleEndian.PutUint16(b1[1:3], uint16(confFCnt))
	b1[3] = txDR
	b1[4] = txCh

	cmacS, err := se.CMAC(ctx, sNwkSIntKey, append(b1, micBytes...))
	if err != nil {
		return mic, err
	}
	cmacF, err := se.CMAC(ctx, fNwkSIntKey, append(b0, micBytes...))
	if err != nil {
		return mic, err
	}

	if macVersion == lorawan.LoRaWAN1_0 {
		copy(mic[:], cmacF[0:4])
	} else {
		copy(mic[0:2], cmacS[0:2])
		copy(mic[2:4], cmacF[0:2])
	}
	return mic, nil
}

// SetUplinkDataMIC calculates and stores the MIC on an uplink data frame.
func SetUplinkDataMIC(ctx context.Context, se secureelement.SecureElement, macVersion lorawan.MACVersion, confFCnt uint32, txDR, txCh uint8, fNwkSIntKey, sNwkSIntKey secureelement.KeyID, p *lorawan.PHYPayload) error {
	mic, err := CalculateUplinkDataMIC(ctx, se, macVersion, confFCnt, txDR, txCh, fNwkSIntKey, sNwkSIntKey, p)
	if err != nil {
		return err
	}
	p.MIC = mic
	return nil
}

// CalculateDownlinkDataMIC computes the MIC for a downlink data frame.
func CalculateDownlinkDataMIC(ctx context.Context, se secureelement.SecureElement, macVersion lorawan.MACVersion, confFCnt uint32, sNwkSIntKey secureelement.KeyID, p *lorawan.PHYPayload) (lorawan.MIC, error) {
	var mic lorawan.MIC
	if p.MACPayload == nil {
		return mic, errors.New("cryptoengine: MACPayload must not be nil")
	}

	macPL, ok := p.MACPayload.(*lorawan.MACPayload)
	if !ok {
		return mic, ErrNotDataFrame
	}

	if macVersion == lorawan.LoRaWAN1_0 || !macPL.FHDR.FCtrl.ACK {
		confFCnt = 0
	}
	confFCnt = confFCnt % (1 << 16)

	micBytes, err := micBytesFromPayload(p.MHDR, macPL)
	if err != nil {
		return mic, err
	}

	b0 := make([]byte, 16)
	b0[0] = 0x49
	binary.LittleEndian.PutUint16(b0[1:3], uint16(confFCnt))
	b0[5] = 0x01

	devAddrB, err := macPL.FHDR.DevAddr.MarshalBinary()
	if err != nil {
		return mic, err
	}
	copy(b0[6:10], devAddrB)
	binary.LittleEndian.PutUint32(b0[10:14], uint32(macPL.FHDR.FCnt))
	b0[15] = byte(len(micBytes))

	tag, err := se.CMAC(ctx, sNwkSIntKey, append(b0, micBytes...))
	if err != nil {
		return mic, err
	}
	copy(mic[:], tag[0:4])
	return mic, nil
}

// SetDownlinkDataMIC calculates and stores the MIC on a downlink data
// frame.
func SetDownlinkDataMIC(ctx context.Context, se secureelement.SecureElement, macVersion lorawan.MACVersion, confFCnt uint32, sNwkSIntKey secureelement.KeyID, p *lorawan.PHYPayload) error {
	mic, err := CalculateDownlinkDataMIC(ctx, se, macVersion, confFCnt, sNwkSIntKey, p)
	if err != nil {
		return err
	}
	p.MIC = mic
	return nil
}

// ValidateDownlinkDataMIC reports whether p.MIC matches the computed
// MIC. The B0 counter field is filled from the 16-bit FHDR.FCnt, so
// only the low 16 bits of the frame counter enter the MIC.
func ValidateDownlinkDataMIC(ctx context.Context, se secureelement.SecureElement, macVersion lorawan.MACVersion, confFCnt uint32, sNwkSIntKey secureelement.KeyID, p *lorawan.PHYPayload) (bool, error) {
	mic, err := CalculateDownlinkDataMIC(ctx, se, macVersion, confFCnt, sNwkSIntKey, p)
	if err != nil {
		return false, err
	}
	return p.MIC == mic, nil
}
