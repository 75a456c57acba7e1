package nvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{4, 5, 6, 7}

	image := Pack(a, b)
	blobs, err := Unpack(image, 2)
	assert.NoError(t, err)
	assert.Equal(t, a, blobs[0])
	assert.Equal(t, b, blobs[1])
}

func TestUnpackEmptyBlob(t *testing.T) {
	image := Pack(nil, []byte{9})
	blobs, err := Unpack(image, 2)
	assert.NoError(t, err)
	assert.Len(t, blobs[0], 0)
	assert.Equal(t, []byte{9}, blobs[1])
}

func TestUnpackDetectsCorruption(t *testing.T) {
	image := Pack([]byte{1, 2, 3})
	image[0] ^= 0xff

	_, err := Unpack(image, 1)
	assert.Equal(t, ErrCorrupt, err)
}

func TestUnpackRejectsWrongCount(t *testing.T) {
	image := Pack([]byte{1, 2, 3})
	_, err := Unpack(image, 2)
	assert.Equal(t, ErrCorrupt, err)
}

func TestUnpackTooShort(t *testing.T) {
	_, err := Unpack([]byte{1, 2}, 1)
	assert.Equal(t, ErrCorrupt, err)
}

func TestMemStoreRestoreBeforeSave(t *testing.T) {
	var m MemStore
	_, err := m.Restore()
	assert.Equal(t, ErrNotFound, err)
}

func TestMemStoreSaveRestoreRoundTrip(t *testing.T) {
	var m MemStore
	assert.NoError(t, m.Save([]byte{1, 2, 3}))

	got, err := m.Restore()
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}
