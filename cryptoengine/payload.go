package cryptoengine

import (
	"context"
	"encoding/binary"
	"errors"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/secureelement"
)

// EncryptFRMPayload encrypts or decrypts (the cipher is its own inverse)
// an FRMPayload under key, devAddr and fCnt. data is zero-padded to a
// multiple of 16 bytes for the block loop and truncated back on return.
func EncryptFRMPayload(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, uplink bool, devAddr lorawan.DevAddr, fCnt uint32, data []byte) ([]byte, error) {
	pLen := len(data)
	if pLen%16 != 0 {
		data = append(data, make([]byte, 16-(pLen%16))...)
	}

	a := make([]byte, 16)
	a[0] = 0x01
	if !uplink {
		a[5] = 0x01
	}

	devAddrB, err := devAddr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	copy(a[6:10], devAddrB)
	binary.LittleEndian.PutUint32(a[10:14], fCnt)

	for i := 0; i < len(data)/16; i++ {
		a[15] = byte(i + 1)

		var block [16]byte
		copy(block[:], a)
		s, err := se.AES128Encrypt(ctx, key, block)
		if err != nil {
			return nil, err
		}

		for j := 0; j < 16; j++ {
			data[i*16+j] ^= s[j]
		}
	}

	return data[0:pLen], nil
}

// EncryptFOpts encrypts or decrypts FOpts mac-command bytes (at most 15)
// under nwkSEncKey. aFCntDown selects the application vs. network
// downlink counter domain per the 1.1 key-derivation split; uplink FOpts
// always pass aFCntDown=false.
func EncryptFOpts(ctx context.Context, se secureelement.SecureElement, nwkSEncKey secureelement.KeyID, aFCntDown, uplink bool, devAddr lorawan.DevAddr, fCnt uint32, data []byte) ([]byte, error) {
	if len(data) > 15 {
		return nil, errors.New("cryptoengine: max size of FOpts is 15 bytes")
	}

	a := make([]byte, 16)
	a[0] = 0x01
	if aFCntDown {
		a[4] = 0x02
	} else {
		a[4] = 0x01
	}
	if !uplink {
		a[5] = 0x01
	}

	devAddrB, err := devAddr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	copy(a[6:10], devAddrB)
	a[15] = 0x01
	binary.LittleEndian.PutUint32(a[10:14], fCnt)

	var block [16]byte
	copy(block[:], a)
	s, err := se.AES128Encrypt(ctx, nwkSEncKey, block)
	if err != nil {
		return nil, err
	}

	for i := range data {
		data[i] ^= s[i]
	}
	return data, nil
}

// EncryptJoinAccept encrypts a plaintext join-accept body (as produced
// by JoinAcceptPayload.MarshalBinary, with the 4-byte MIC already
// appended) under key. Use NwkKey for a join-request response;
// secureelement defines no JSEncKey slot for rejoin-request responses.
//
// The join-accept cipher direction is inverted relative to normal AES
// usage: the network server "encrypts" with AES decrypt so that the
// end-device can "decrypt" with AES encrypt without needing a decrypt
// primitive of its own.
func EncryptJoinAccept(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, plaintext []byte) ([]byte, error) {
	if len(plaintext)%16 != 0 {
		return nil, errors.New("cryptoengine: join-accept plaintext must be a multiple of 16 bytes")
	}
	ct := make([]byte, len(plaintext))
	for i := 0; i < len(ct)/16; i++ {
		offset := i * 16
		var block [16]byte
		copy(block[:], plaintext[offset:offset+16])
		out, err := se.AES128Decrypt(ctx, key, block)
		if err != nil {
			return nil, err
		}
		copy(ct[offset:offset+16], out[:])
	}
	return ct, nil
}

// DecryptJoinAccept decrypts a received join-accept (ciphertext with the
// still-encrypted MIC appended) under key, returning the plaintext body
// with MIC appended so the caller can split it: last 4 bytes are the
// MIC, the rest is the JoinAcceptPayload wire body.
func DecryptJoinAccept(ctx context.Context, se secureelement.SecureElement, key secureelement.KeyID, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%16 != 0 {
		return nil, errors.New("cryptoengine: join-accept ciphertext must be a multiple of 16 bytes")
	}
	pt := make([]byte, len(ciphertext))
	for i := 0; i < len(pt)/16; i++ {
		offset := i * 16
		var block [16]byte
		copy(block[:], ciphertext[offset:offset+16])
		out, err := se.AES128Encrypt(ctx, key, block)
		if err != nil {
			return nil, err
		}
		copy(pt[offset:offset+16], out[:])
	}
	return pt, nil
}
