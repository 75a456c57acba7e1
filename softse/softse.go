// Package softse is a reference software implementation of
// secureelement.SecureElement, backed by an in-memory key table. It is
// the engine's secure element in tests and in builds that have no
// hardware crypto peripheral.
package softse

import (
	"context"
	"crypto/aes"
	"fmt"
	"sync"

	keywrap "github.com/NickBall/go-aes-key-wrap"
	"github.com/jacobsa/crypto/cmac"
	"github.com/pkg/errors"

	"github.com/foldedtoad/lora-mac/secureelement"
)

// Element is a software secure element. The zero value has no keys
// provisioned; use New or Set to load root key material.
type Element struct {
	mu   sync.Mutex
	keys map[secureelement.KeyID][16]byte
}

// New returns an Element with the given root keys provisioned.
func New(roots map[secureelement.KeyID][16]byte) *Element {
	e := &Element{keys: make(map[secureelement.KeyID][16]byte, len(roots)+8)}
	for id, k := range roots {
		e.keys[id] = k
	}
	return e
}

// Set provisions or overwrites a key slot directly. Used by NVM restore
// and by test fixtures.
func (e *Element) Set(id secureelement.KeyID, key [16]byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys[id] = key
}

// HasKey reports whether a key slot has been provisioned or derived.
func (e *Element) HasKey(id secureelement.KeyID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.keys[id]
	return ok
}

func (e *Element) key(id secureelement.KeyID) ([16]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	k, ok := e.keys[id]
	if !ok {
		return [16]byte{}, fmt.Errorf("softse: key %s not provisioned", id)
	}
	return k, nil
}

// AES128Encrypt runs a single AES-128 ECB block encryption under key.
func (e *Element) AES128Encrypt(ctx context.Context, id secureelement.KeyID, block [16]byte) ([16]byte, error) {
	var out [16]byte
	key, err := e.key(id)
	if err != nil {
		return out, err
	}
	c, err := aes.NewCipher(key[:])
	if err != nil {
		return out, errors.Wrap(err, "softse: new cipher")
	}
	c.Encrypt(out[:], block[:])
	return out, nil
}

// AES128Decrypt runs a single AES-128 ECB block decryption under key.
func (e *Element) AES128Decrypt(ctx context.Context, id secureelement.KeyID, block [16]byte) ([16]byte, error) {
	var out [16]byte
	key, err := e.key(id)
	if err != nil {
		return out, err
	}
	c, err := aes.NewCipher(key[:])
	if err != nil {
		return out, errors.Wrap(err, "softse: new cipher")
	}
	c.Decrypt(out[:], block[:])
	return out, nil
}

// CMAC computes AES-CMAC-128 over data under key.
func (e *Element) CMAC(ctx context.Context, id secureelement.KeyID, data []byte) ([16]byte, error) {
	var out [16]byte
	key, err := e.key(id)
	if err != nil {
		return out, err
	}
	hash, err := cmac.New(key[:])
	if err != nil {
		return out, errors.Wrap(err, "softse: new cmac")
	}
	if _, err := hash.Write(data); err != nil {
		return out, errors.Wrap(err, "softse: cmac write")
	}
	copy(out[:], hash.Sum(nil))
	return out, nil
}

// DeriveKey derives in.Target from in.Source: AES-128 ECB-encrypts a
// single block built from the block-type byte implied by Target
// followed by in.Context, zero-padded to 16 bytes, under the source key.
func (e *Element) DeriveKey(ctx context.Context, in secureelement.DeriveInput) error {
	typ, err := blockType(in.Target, in.Source)
	if err != nil {
		return err
	}

	var block [16]byte
	block[0] = typ
	if len(in.Context) > 15 {
		return fmt.Errorf("softse: derive context too long: %d bytes", len(in.Context))
	}
	copy(block[1:], in.Context)

	out, err := e.AES128Encrypt(ctx, in.Source, block)
	if err != nil {
		return err
	}
	e.Set(in.Target, out)
	return nil
}

// blockType returns the LoRaWAN key-derivation block-type prefix for a
// target key. McRootKey is the one target whose prefix depends on the
// source: 0x00 when rooted in GenAppKey (1.0.x devices), 0x20 when
// rooted in AppKey (1.1.x devices).
func blockType(target, source secureelement.KeyID) (byte, error) {
	switch target {
	case secureelement.AppSKey:
		return 0x02, nil
	case secureelement.FNwkSIntKey:
		return 0x01, nil
	case secureelement.SNwkSIntKey:
		return 0x03, nil
	case secureelement.NwkSEncKey:
		return 0x04, nil
	case secureelement.McRootKey:
		if source == secureelement.AppKey {
			return 0x20, nil
		}
		return 0x00, nil
	case secureelement.McKEKey:
		return 0x00, nil
	case secureelement.McAppSKey:
		return 0x01, nil
	case secureelement.McNwkSKey:
		return 0x02, nil
	default:
		return 0, fmt.Errorf("softse: %s has no defined derivation block type", target)
	}
}

// UnwrapKey unwraps a NIST SP800-38F wrapped key blob under kek and
// stores the result under target.
func (e *Element) UnwrapKey(ctx context.Context, kek secureelement.KeyID, target secureelement.KeyID, wrapped []byte) error {
	kekKey, err := e.key(kek)
	if err != nil {
		return err
	}
	block, err := aes.NewCipher(kekKey[:])
	if err != nil {
		return errors.Wrap(err, "softse: new cipher")
	}
	b, err := keywrap.Unwrap(block, wrapped)
	if err != nil {
		return errors.Wrap(err, "softse: unwrap key")
	}
	if len(b) != 16 {
		return fmt.Errorf("softse: unwrapped key has unexpected length %d", len(b))
	}
	var out [16]byte
	copy(out[:], b)
	e.Set(target, out)
	return nil
}

// Wrap wraps key under kek, for building test fixtures and for the
// application layer's multicast key-exchange payloads. Not part of the
// SecureElement interface: a device never wraps keys for itself.
func (e *Element) Wrap(kek secureelement.KeyID, key [16]byte) ([]byte, error) {
	kekKey, err := e.key(kek)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(kekKey[:])
	if err != nil {
		return nil, errors.Wrap(err, "softse: new cipher")
	}
	return keywrap.Wrap(block, key[:])
}
