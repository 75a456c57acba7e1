package mac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJoinBackoffFollowsDelayTable(t *testing.T) {
	b := newJoinBackoff()
	assert.Equal(t, 5*time.Second, b.Next())
	assert.Equal(t, 15*time.Second, b.Next())
	assert.Equal(t, 30*time.Second, b.Next())
}

func TestJoinBackoffCapsAtLastEntry(t *testing.T) {
	b := newJoinBackoff()
	for range joinBackoffDelays {
		b.Next()
	}
	last := joinBackoffDelays[len(joinBackoffDelays)-1]
	assert.Equal(t, last, b.Next())
	assert.Equal(t, last, b.Next())
}

func TestJoinBackoffResetRestartsFromTheBeginning(t *testing.T) {
	b := newJoinBackoff()
	b.Next()
	b.Next()
	b.Reset()
	assert.Equal(t, joinBackoffDelays[0], b.Next())
}
