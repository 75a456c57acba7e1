package cryptoengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveFCntSimpleIncrement(t *testing.T) {
	got, err := ResolveFCnt(5, 6)
	assert.NoError(t, err)
	assert.Equal(t, uint32(6), got)
}

func TestResolveFCntRetransmission(t *testing.T) {
	_, err := ResolveFCnt(5, 5)
	assert.Equal(t, ErrFCntRetransmission, err)
}

func TestResolveFCntWraparound(t *testing.T) {
	last := uint32(0x1fffe)
	got, err := ResolveFCnt(last, 1)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x20001), got)
}

func TestResolveFCntGapExceeded(t *testing.T) {
	_, err := ResolveFCnt(0, uint16(MaxFCntGap+100))
	assert.Equal(t, ErrFCntGapExceeded, err)
}

func TestResolveFCntWithinGap(t *testing.T) {
	got, err := ResolveFCnt(0, uint16(MaxFCntGap))
	assert.NoError(t, err)
	assert.Equal(t, uint32(MaxFCntGap), got)
}

// A session that has never accepted a downlink starts at NoFCnt, not 0 —
// otherwise the very first legitimate downlink (wire FCnt 0) would be
// rejected as a retransmission of a counter that was never really seen.
func TestResolveFCntSentinelAcceptsFirstValue(t *testing.T) {
	got, err := ResolveFCnt(NoFCnt, 0)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), got)
}

func TestResolveFCntSentinelAcceptsAnyFirstValue(t *testing.T) {
	got, err := ResolveFCnt(NoFCnt, 42)
	assert.NoError(t, err)
	assert.Equal(t, uint32(42), got)
}
