package softse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foldedtoad/lora-mac/secureelement"
)

func TestAES128EncryptDecryptRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := New(map[secureelement.KeyID][16]byte{
		secureelement.AppKey: {0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
	})

	var block [16]byte
	copy(block[:], []byte("plaintextblock16"))

	enc, err := e.AES128Encrypt(ctx, secureelement.AppKey, block)
	assert.NoError(t, err)
	assert.NotEqual(t, block, enc)

	dec, err := e.AES128Decrypt(ctx, secureelement.AppKey, enc)
	assert.NoError(t, err)
	assert.Equal(t, block, dec)
}

func TestCMACDeterministic(t *testing.T) {
	ctx := context.Background()
	e := New(map[secureelement.KeyID][16]byte{secureelement.NwkKey: {1, 2, 3}})

	tag1, err := e.CMAC(ctx, secureelement.NwkKey, []byte("hello"))
	assert.NoError(t, err)
	tag2, err := e.CMAC(ctx, secureelement.NwkKey, []byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, tag1, tag2)

	tag3, err := e.CMAC(ctx, secureelement.NwkKey, []byte("hello!"))
	assert.NoError(t, err)
	assert.NotEqual(t, tag1, tag3)
}

func TestDeriveKeyAppSKey(t *testing.T) {
	ctx := context.Background()
	e := New(map[secureelement.KeyID][16]byte{secureelement.NwkKey: {9, 9, 9}})

	assert.False(t, e.HasKey(secureelement.AppSKey))
	err := e.DeriveKey(ctx, secureelement.DeriveInput{
		Target:  secureelement.AppSKey,
		Source:  secureelement.NwkKey,
		Context: []byte{1, 2, 3},
	})
	assert.NoError(t, err)
	assert.True(t, e.HasKey(secureelement.AppSKey))
}

func TestDeriveKeyUnknownTarget(t *testing.T) {
	ctx := context.Background()
	e := New(map[secureelement.KeyID][16]byte{secureelement.NwkKey: {9, 9, 9}})

	err := e.DeriveKey(ctx, secureelement.DeriveInput{Target: secureelement.NwkKey, Source: secureelement.NwkKey})
	assert.Error(t, err)
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	e := New(map[secureelement.KeyID][16]byte{
		secureelement.McKEKey: {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	})
	plain := [16]byte{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}

	wrapped, err := e.Wrap(secureelement.McKEKey, plain)
	assert.NoError(t, err)

	ctx := context.Background()
	err = e.UnwrapKey(ctx, secureelement.McKEKey, secureelement.McAppSKey, wrapped)
	assert.NoError(t, err)
	assert.True(t, e.HasKey(secureelement.McAppSKey))
}

func TestKeyNotProvisioned(t *testing.T) {
	ctx := context.Background()
	e := New(nil)
	_, err := e.AES128Encrypt(ctx, secureelement.AppKey, [16]byte{})
	assert.Error(t, err)
}
