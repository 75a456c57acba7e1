// Package nvm is the MAC engine's non-volatile storage contract: each
// sub-module (cmdstore, confirmqueue, cryptoengine's frame counters,
// classb's beacon/ping-slot context) hands over an opaque blob, and this
// package packs them into one image a Store can write and read back.
//
// No third-party checksum or serialization library appears anywhere in
// the example corpus this engine was built against, so the pack/unpack
// format uses hash/crc32 directly rather than reaching for an unrelated
// dependency just to avoid the standard library.
package nvm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Store is implemented by whatever backs persistence: flash, a file, or
// an in-memory stub in tests.
type Store interface {
	// Save writes image, replacing whatever was previously stored.
	Save(image []byte) error

	// Restore returns the last saved image, or an error if none exists.
	Restore() ([]byte, error)
}

// ErrCorrupt is returned by Unpack when the trailing CRC32 does not
// match the packed bytes.
var ErrCorrupt = errors.New("nvm: image failed CRC32 check")

// Pack concatenates each named blob as a 4-byte length prefix followed
// by its bytes, in the order given, and appends a CRC32 (IEEE) of
// everything before it.
func Pack(blobs ...[]byte) []byte {
	var buf bytes.Buffer
	for _, b := range blobs {
		var lenB [4]byte
		binary.LittleEndian.PutUint32(lenB[:], uint32(len(b)))
		buf.Write(lenB[:])
		buf.Write(b)
	}

	sum := crc32.ChecksumIEEE(buf.Bytes())
	var sumB [4]byte
	binary.LittleEndian.PutUint32(sumB[:], sum)
	buf.Write(sumB[:])
	return buf.Bytes()
}

// Unpack reverses Pack, returning the blobs in order. count must match
// the number of blobs Pack was called with.
func Unpack(image []byte, count int) ([][]byte, error) {
	if len(image) < 4 {
		return nil, ErrCorrupt
	}

	body := image[:len(image)-4]
	wantSum := binary.LittleEndian.Uint32(image[len(image)-4:])
	if crc32.ChecksumIEEE(body) != wantSum {
		return nil, ErrCorrupt
	}

	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		if len(body) < 4 {
			return nil, ErrCorrupt
		}
		n := binary.LittleEndian.Uint32(body[:4])
		body = body[4:]
		if uint32(len(body)) < n {
			return nil, ErrCorrupt
		}
		out = append(out, body[:n])
		body = body[n:]
	}
	if len(body) != 0 {
		return nil, ErrCorrupt
	}
	return out, nil
}
