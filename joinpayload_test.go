package lorawan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinAcceptPayloadRoundTripWithoutCFList(t *testing.T) {
	p := JoinAcceptPayload{
		JoinNonce: JoinNonce(7),
		NetID:     NetID{1, 2, 3},
		DevAddr:   DevAddr{4, 5, 6, 7},
		RXDelay:   2,
	}
	b, err := p.MarshalBinary()
	assert.NoError(t, err)
	assert.Len(t, b, 12)

	var got JoinAcceptPayload
	assert.NoError(t, got.UnmarshalBinary(false, b))
	assert.Equal(t, p.JoinNonce, got.JoinNonce)
	assert.Equal(t, p.DevAddr, got.DevAddr)
	assert.Nil(t, got.CFList)
}

func TestJoinAcceptPayloadRoundTripWithCFList(t *testing.T) {
	p := JoinAcceptPayload{
		JoinNonce: JoinNonce(1),
		NetID:     NetID{9, 9, 9},
		DevAddr:   DevAddr{1, 1, 1, 1},
		RXDelay:   1,
		CFList: &CFList{
			CFListType: CFListChannel,
			Channels:   [5]uint32{867100000, 0, 0, 0, 0},
		},
	}
	b, err := p.MarshalBinary()
	assert.NoError(t, err)
	assert.Len(t, b, 28)

	var got JoinAcceptPayload
	assert.NoError(t, got.UnmarshalBinary(false, b))
	assert.NotNil(t, got.CFList)
	assert.Equal(t, CFListChannel, got.CFList.CFListType)
	assert.Equal(t, uint32(867100000), got.CFList.Channels[0])
}

func TestJoinAcceptPayloadUnmarshalRejectsWrongLength(t *testing.T) {
	var p JoinAcceptPayload
	err := p.UnmarshalBinary(false, make([]byte, 20))
	assert.Error(t, err)
}

func TestRejoinRequestType1PayloadRoundTrip(t *testing.T) {
	p := RejoinRequestType1Payload{
		JoinEUI:  EUI64{1, 2, 3, 4, 5, 6, 7, 8},
		DevEUI:   EUI64{8, 7, 6, 5, 4, 3, 2, 1},
		RJCount1: RJCount1(5),
	}
	b, err := p.MarshalBinary()
	assert.NoError(t, err)

	var got RejoinRequestType1Payload
	assert.NoError(t, got.UnmarshalBinary(true, b))
	assert.Equal(t, p.JoinEUI, got.JoinEUI)
	assert.Equal(t, p.RJCount1, got.RJCount1)
}

func TestRejoinRequestType02PayloadRoundTrip(t *testing.T) {
	p := RejoinRequestType02Payload{
		RejoinType: RejoinRequestType0,
		NetID:      NetID{1, 2, 3},
		DevEUI:     EUI64{1, 1, 1, 1, 1, 1, 1, 1},
		RJCount0:   RJCount0(3),
	}
	b, err := p.MarshalBinary()
	assert.NoError(t, err)

	var got RejoinRequestType02Payload
	assert.NoError(t, got.UnmarshalBinary(true, b))
	assert.Equal(t, RejoinRequestType0, got.RejoinType)
	assert.Equal(t, p.RJCount0, got.RJCount0)
}

func TestRejoinRequestType02PayloadRejectsInvalidType(t *testing.T) {
	p := RejoinRequestType02Payload{RejoinType: RejoinRequestType1}
	_, err := p.MarshalBinary()
	assert.Error(t, err)
}
