package cryptoengine

import (
	"context"
	"errors"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/secureelement"
)

// EncryptFRMPayloadOf encrypts p's FRMPayload in place under key.
// Calling it again on an already-encrypted frame decrypts it, since the
// cipher is its own inverse.
func EncryptFRMPayloadOf(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, p *lorawan.PHYPayload) error {
	macPL, ok := p.MACPayload.(*lorawan.MACPayload)
	if !ok {
		return ErrNotDataFrame
	}
	if len(macPL.FRMPayload) == 0 {
		return nil
	}

	var plain []byte
	for _, pl := range macPL.FRMPayload {
		b, err := pl.MarshalBinary()
		if err != nil {
			return err
		}
		plain = append(plain, b...)
	}

	data, err := EncryptFRMPayload(ctx, se, key, p.IsUplink(), macPL.FHDR.DevAddr, uint32(macPL.FHDR.FCnt), plain)
	if err != nil {
		return err
	}

	macPL.FRMPayload = []lorawan.Payload{&lorawan.DataPayload{Bytes: data}}
	return nil
}

// DecryptFRMPayloadOf decrypts p's FRMPayload under key and, when FPort
// is 0, decodes the result into MAC commands.
func DecryptFRMPayloadOf(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, p *lorawan.PHYPayload) error {
	if err := EncryptFRMPayloadOf(ctx, se, key, p); err != nil {
		return err
	}

	macPL, ok := p.MACPayload.(*lorawan.MACPayload)
	if !ok {
		return ErrNotDataFrame
	}

	if macPL.FPort != nil && *macPL.FPort == 0 {
		decoded, err := lorawan.DecodeDataPayloadToMACCommands(p.IsUplink(), macPL.FRMPayload)
		if err != nil {
			return err
		}
		macPL.FRMPayload = decoded
	}
	return nil
}

// EncryptFOptsOf encrypts p's FOpts in place under nwkSEncKey.
func EncryptFOptsOf(ctx context.Context, se secureelement.SecureElement, nwkSEncKey secureelement.KeyID, p *lorawan.PHYPayload) error {
	macPL, ok := p.MACPayload.(*lorawan.MACPayload)
	if !ok {
		return ErrNotDataFrame
	}
	if len(macPL.FHDR.FOpts) == 0 {
		return nil
	}

	var plain []byte
	for _, pl := range macPL.FHDR.FOpts {
		b, err := pl.MarshalBinary()
		if err != nil {
			return err
		}
		plain = append(plain, b...)
	}

	var aFCntDown bool
	if !p.IsUplink() && macPL.FPort != nil && *macPL.FPort > 0 {
		aFCntDown = true
	}

	data, err := EncryptFOpts(ctx, se, nwkSEncKey, aFCntDown, p.IsUplink(), macPL.FHDR.DevAddr, uint32(macPL.FHDR.FCnt), plain)
	if err != nil {
		return err
	}

	macPL.FHDR.FOpts = []lorawan.Payload{&lorawan.DataPayload{Bytes: data}}
	return nil
}

// DecryptFOptsOf decrypts p's FOpts under nwkSEncKey and decodes the
// result into MAC commands.
func DecryptFOptsOf(ctx context.Context, se secureelement.SecureElement, nwkSEncKey secureelement.KeyID, p *lorawan.PHYPayload) error {
	if err := EncryptFOptsOf(ctx, se, nwkSEncKey, p); err != nil {
		return err
	}

	macPL, ok := p.MACPayload.(*lorawan.MACPayload)
	if !ok {
		return ErrNotDataFrame
	}
	if len(macPL.FHDR.FOpts) == 0 {
		return nil
	}

	decoded, err := lorawan.DecodeDataPayloadToMACCommands(p.IsUplink(), macPL.FHDR.FOpts)
	if err != nil {
		return err
	}
	macPL.FHDR.FOpts = decoded
	return nil
}

// EncryptJoinAcceptOf replaces p.MACPayload (a *lorawan.JoinAcceptPayload
// with p.MIC already set) with the encrypted wire form. Call this last,
// after SetDownlinkJoinMIC.
func EncryptJoinAcceptOf(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, p *lorawan.PHYPayload) error {
	if _, ok := p.MACPayload.(*lorawan.JoinAcceptPayload); !ok {
		return ErrNotJoinFrame
	}

	pt, err := p.MACPayload.MarshalBinary()
	if err != nil {
		return err
	}
	pt = append(pt, p.MIC[0:4]...)

	ct, err := EncryptJoinAccept(ctx, se, key, pt)
	if err != nil {
		return err
	}

	p.MACPayload = &lorawan.DataPayload{Bytes: ct[0 : len(ct)-4]}
	copy(p.MIC[:], ct[len(ct)-4:])
	return nil
}

// DecryptJoinAcceptOf replaces p.MACPayload (a received, still-encrypted
// *lorawan.DataPayload) with the decoded *lorawan.JoinAcceptPayload, and
// sets p.MIC to the decrypted MIC ready for ValidateDownlinkJoinMIC.
func DecryptJoinAcceptOf(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, p *lorawan.PHYPayload) error {
	dp, ok := p.MACPayload.(*lorawan.DataPayload)
	if !ok {
		return errors.New("cryptoengine: MACPayload must be *lorawan.DataPayload before decrypting a join-accept")
	}

	ct := append(append([]byte{}, dp.Bytes...), p.MIC[:]...)

	pt, err := DecryptJoinAccept(ctx, se, key, ct)
	if err != nil {
		return err
	}

	copy(p.MIC[:], pt[len(pt)-4:])
	p.MACPayload = &lorawan.JoinAcceptPayload{}
	return p.MACPayload.UnmarshalBinary(p.IsUplink(), pt[0:len(pt)-4])
}
