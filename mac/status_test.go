package mac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "OK", StatusOK.String())
	assert.Equal(t, "MIC_FAILED", StatusMICFailed.String())
	assert.Equal(t, "UNKNOWN", Status(255).String())
}

func TestEventInfoString(t *testing.T) {
	assert.Equal(t, "JOIN_ACCEPT", EventJoinAccept.String())
	assert.Equal(t, "UNKNOWN", EventInfo(255).String())
}

func TestEngineStateString(t *testing.T) {
	assert.Equal(t, "JOIN", StateJoin.String())
	assert.Equal(t, "UNKNOWN", EngineState(255).String())
}
