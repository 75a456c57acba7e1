package cmdstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	lorawan "github.com/foldedtoad/lora-mac"
)

func TestAddFindRemove(t *testing.T) {
	dirty := 0
	s := New(func() { dirty++ })

	ok := s.Add(lorawan.MACCommand{CID: lorawan.DevStatusReq})
	assert.True(t, ok)
	assert.Equal(t, 1, dirty)
	assert.Equal(t, 1, s.Count())

	cmd, found := s.Find(lorawan.DevStatusReq)
	assert.True(t, found)
	assert.Equal(t, lorawan.DevStatusReq, cmd.CID)

	s.Remove(lorawan.DevStatusReq)
	assert.Equal(t, 0, s.Count())
	_, found = s.Find(lorawan.DevStatusReq)
	assert.False(t, found)
}

func TestAddReplacesSameCID(t *testing.T) {
	s := New(nil)
	s.Add(lorawan.MACCommand{CID: lorawan.DevStatusReq})
	s.Add(lorawan.MACCommand{CID: lorawan.DevStatusReq})
	assert.Equal(t, 1, s.Count())
}

func TestCapacity(t *testing.T) {
	s := New(nil)
	for i := 0; i < Capacity; i++ {
		ok := s.Add(lorawan.MACCommand{CID: lorawan.CID(0x80 + i)})
		assert.True(t, ok)
	}
	ok := s.Add(lorawan.MACCommand{CID: lorawan.CID(0xff)})
	assert.False(t, ok)
	assert.Equal(t, Capacity, s.Count())
}

func TestRemoveNonStickyKeepsSticky(t *testing.T) {
	s := New(nil)
	s.Add(lorawan.MACCommand{CID: lorawan.RXParamSetupAns})
	s.Add(lorawan.MACCommand{CID: lorawan.DevStatusAns})

	s.RemoveNonSticky()

	assert.Equal(t, 1, s.Count())
	_, found := s.Find(lorawan.RXParamSetupAns)
	assert.True(t, found)
}

func TestSerializeConcatenatesMarshaledCommands(t *testing.T) {
	s := New(nil)
	s.Add(lorawan.MACCommand{CID: lorawan.DevStatusReq})
	s.Add(lorawan.MACCommand{CID: lorawan.LinkCheckReq})

	b, err := s.Serialize(64)
	assert.NoError(t, err)
	assert.Len(t, b, 2)
}

func TestSerializeStopsAtMaxBytes(t *testing.T) {
	s := New(nil)
	s.Add(lorawan.MACCommand{CID: lorawan.DevStatusReq})
	s.Add(lorawan.MACCommand{CID: lorawan.LinkCheckReq})

	b, err := s.Serialize(1)
	assert.NoError(t, err)
	assert.Len(t, b, 1)

	// the command that didn't fit is dropped, not kept for next cycle.
	assert.Equal(t, 1, s.Count())
	_, found := s.Find(lorawan.LinkCheckReq)
	assert.False(t, found)
}

// TestSerializeDropsOverflowCommands fills the store to capacity and
// serializes with a budget that only some of the commands fit in: every
// command from the first one that overflows onward must be removed from
// the store, not merely excluded from this cycle's output.
func TestSerializeDropsOverflowCommands(t *testing.T) {
	dirty := 0
	s := New(func() { dirty++ })

	for i := 0; i < Capacity; i++ {
		assert.True(t, s.Add(lorawan.MACCommand{CID: lorawan.CID(0x80 + i)}))
	}
	assert.Equal(t, Capacity, s.Count())
	dirty = 0

	b, err := s.Serialize(10)
	assert.NoError(t, err)
	assert.Len(t, b, 10)
	assert.Equal(t, 10, s.Count())
	assert.Equal(t, 1, dirty, "dropping overflow commands marks the store dirty exactly once")

	for i := 0; i < 10; i++ {
		_, found := s.Find(lorawan.CID(0x80 + i))
		assert.True(t, found)
	}
	for i := 10; i < Capacity; i++ {
		_, found := s.Find(lorawan.CID(0x80 + i))
		assert.False(t, found)
	}

	// a second serialize call is a no-op on the now-smaller store.
	b2, err := s.Serialize(10)
	assert.NoError(t, err)
	assert.Equal(t, b, b2)
	assert.Equal(t, 10, s.Count())
}

func TestIsSticky(t *testing.T) {
	assert.True(t, IsSticky(lorawan.RXParamSetupAns))
	assert.True(t, IsSticky(lorawan.RXTimingSetupAns))
	assert.True(t, IsSticky(lorawan.DLChannelAns))
	assert.False(t, IsSticky(lorawan.DevStatusAns))
}
