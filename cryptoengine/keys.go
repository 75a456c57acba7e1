package cryptoengine

import (
	"context"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/secureelement"
)

// DeriveSessionKeys derives the four 1.1.x session keys (or, when optNeg
// is false, the single 1.0.x NwkSKey reused for all three network-side
// slots) from NwkKey, storing each under its secureelement.KeyID slot.
// AppSKey is derived from NwkKey in both MAC versions; this package
// provides no AppKey-based derivation.
func DeriveSessionKeys(ctx context.Context, se secureelement.SecureElement, optNeg bool, netID lorawan.NetID, joinEUI lorawan.EUI64, joinNonce lorawan.JoinNonce, devNonce lorawan.DevNonce) error {
	netIDB, err := netID.MarshalBinary()
	if err != nil {
		return err
	}
	joinEUIB, err := joinEUI.MarshalBinary()
	if err != nil {
		return err
	}
	joinNonceB, err := joinNonce.MarshalBinary()
	if err != nil {
		return err
	}
	devNonceB, err := devNonce.MarshalBinary()
	if err != nil {
		return err
	}

	sessionContext := func() []byte {
		var b []byte
		if optNeg {
			b = append(b, joinNonceB...)
			b = append(b, joinEUIB...)
			b = append(b, devNonceB...)
		} else {
			b = append(b, joinNonceB...)
			b = append(b, netIDB...)
			b = append(b, devNonceB...)
		}
		return b
	}()

	targets := []secureelement.KeyID{secureelement.FNwkSIntKey, secureelement.AppSKey}
	if optNeg {
		targets = append(targets, secureelement.SNwkSIntKey, secureelement.NwkSEncKey)
	}

	for _, target := range targets {
		if err := se.DeriveKey(ctx, secureelement.DeriveInput{
			Target:  target,
			Source:  secureelement.NwkKey,
			Context: sessionContext,
		}); err != nil {
			return err
		}
	}

	if !optNeg {
		// 1.0.x: a single NwkSKey fills all three network-side slots.
		if err := se.DeriveKey(ctx, secureelement.DeriveInput{
			Target:  secureelement.SNwkSIntKey,
			Source:  secureelement.NwkKey,
			Context: sessionContext,
		}); err != nil {
			return err
		}
		if err := se.DeriveKey(ctx, secureelement.DeriveInput{
			Target:  secureelement.NwkSEncKey,
			Source:  secureelement.NwkKey,
			Context: sessionContext,
		}); err != nil {
			return err
		}
	}

	return nil
}

// DeriveMcRootKey derives McRootKey from GenAppKey (1.0.x devices) or
// AppKey (1.1.x devices).
func DeriveMcRootKey(ctx context.Context, se secureelement.SecureElement, optNeg bool) error {
	source := secureelement.GenAppKey
	if optNeg {
		source = secureelement.AppKey
	}
	return se.DeriveKey(ctx, secureelement.DeriveInput{
		Target: secureelement.McRootKey,
		Source: source,
	})
}

// DeriveMcKEKey derives McKEKey from McRootKey.
func DeriveMcKEKey(ctx context.Context, se secureelement.SecureElement) error {
	return se.DeriveKey(ctx, secureelement.DeriveInput{
		Target: secureelement.McKEKey,
		Source: secureelement.McRootKey,
	})
}

// DeriveMcSessionKeys derives McAppSKey and McNwkSKey from a multicast
// group's McKey (expected to already be unwrapped into McKEKey's slot by
// the caller before this runs — callers pass the slot it was unwrapped
// into as mcKey) and the group's multicast DevAddr.
func DeriveMcSessionKeys(ctx context.Context, se secureelement.SecureElement, mcKey secureelement.KeyID, mcAddr lorawan.DevAddr) error {
	mcAddrB, err := mcAddr.MarshalBinary()
	if err != nil {
		return err
	}

	if err := se.DeriveKey(ctx, secureelement.DeriveInput{
		Target:  secureelement.McAppSKey,
		Source:  mcKey,
		Context: mcAddrB,
	}); err != nil {
		return err
	}
	return se.DeriveKey(ctx, secureelement.DeriveInput{
		Target:  secureelement.McNwkSKey,
		Source:  mcKey,
		Context: mcAddrB,
	})
}
