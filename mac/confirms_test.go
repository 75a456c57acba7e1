package mac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/confirmqueue"
)

// A JOIN confirm and a LINK_CHECK confirm can be outstanding at the
// same time, sharing the one confirm-queue ring: StartJoin/SendData
// and RequestLinkCheck/RequestDeviceTime all go through
// (*confirmqueue.Queue).Add now, instead of join/data confirms
// bypassing the queue entirely via their own slices.
func TestJoinAndLinkCheckConfirmsShareTheQueue(t *testing.T) {
	e, _, _ := newTestEngine(t)

	assert.NoError(t, e.RequestLinkCheck())
	assert.NoError(t, e.StartJoin(JoinRequest{JoinEUI: e.joinEUI, DevEUI: e.devEUI, NbTrials: 1}))

	assert.Equal(t, 2, e.confirms.Count())
	assert.True(t, e.confirms.IsCmdActive(uint8(lorawan.LinkCheckReq)))
	assert.True(t, e.confirms.IsCmdActive(confirmCmdJoin))

	// The join resolves first, but LinkCheckReq — queued first — is
	// still pending and sits at the head, so the join confirm must not
	// be delivered out of turn even though its own outcome is known.
	assert.NoError(t, e.failJoin(StatusNoAnswer))
	assert.Empty(t, e.JoinConfirms(), "join confirm must wait behind the still-pending LinkCheckReq entry")
	assert.Equal(t, 2, e.confirms.Count())

	// The LinkCheckAns arrives, resolving the head entry. Draining it
	// also releases the already-ready join confirm behind it.
	e.confirms.SetStatus(uint8(lorawan.LinkCheckReq), confirmqueue.StatusReady)
	e.confirms.HandleAll(e.deliverConfirm)

	assert.Equal(t, 0, e.confirms.Count())
	confirms := e.JoinConfirms()
	assert.Len(t, confirms, 1)
	assert.Equal(t, StatusNoAnswer, confirms[0].Status)
}

// RequestDeviceTime must queue a confirm-queue entry just like
// RequestLinkCheck does; its DeviceTimeAns answer resolves that entry
// via dispatchCommand rather than leaving it pending forever.
func TestRequestDeviceTimeQueuesAndResolves(t *testing.T) {
	e, _, _ := newTestEngine(t)

	assert.NoError(t, e.RequestDeviceTime())
	assert.True(t, e.confirms.IsCmdActive(uint8(lorawan.DeviceTimeReq)))

	e.dispatchCommand(lorawan.MACCommand{
		CID:     lorawan.DeviceTimeAns,
		Payload: &lorawan.DeviceTimeAnsPayload{},
	})

	status, ok := e.confirms.GetStatus(uint8(lorawan.DeviceTimeReq))
	assert.True(t, ok)
	assert.Equal(t, confirmqueue.StatusReady, status)

	e.confirms.HandleAll(e.deliverConfirm)
	assert.False(t, e.confirms.IsCmdActive(uint8(lorawan.DeviceTimeReq)))
}
