package mac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/confirmqueue"
)

func TestDispatchLinkADRReqAppliesDataRateAndQueuesAns(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.dispatchCommand(lorawan.MACCommand{
		CID: lorawan.LinkADRReq,
		Payload: &lorawan.LinkADRReqPayload{
			DataRate:   3,
			TXPower:    1,
			ChMask:     lorawan.ChMask{true, true, true},
			Redundancy: lorawan.Redundancy{ChMaskCntl: 0, NbRep: 2},
		},
	})
	assert.Equal(t, 3, e.dataRate)
	assert.Equal(t, 1, e.txPower)
	assert.Equal(t, 2, e.nbTrans)

	cmd, ok := e.cmds.Find(lorawan.LinkADRAns)
	assert.True(t, ok)
	ans, ok := cmd.Payload.(*lorawan.LinkADRAnsPayload)
	assert.True(t, ok)
	assert.True(t, ans.DataRateACK)
	assert.True(t, ans.PowerACK)
	assert.True(t, ans.ChannelMaskACK)
}

func TestDispatchLinkADRReqRejectsInvalidDataRate(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.dispatchCommand(lorawan.MACCommand{
		CID: lorawan.LinkADRReq,
		Payload: &lorawan.LinkADRReqPayload{
			DataRate:   15,
			TXPower:    0,
			Redundancy: lorawan.Redundancy{},
		},
	})
	cmd, ok := e.cmds.Find(lorawan.LinkADRAns)
	assert.True(t, ok)
	ans := cmd.Payload.(*lorawan.LinkADRAnsPayload)
	assert.False(t, ans.DataRateACK)
}

func TestDispatchRXParamSetupReqUpdatesRXSettings(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.dispatchCommand(lorawan.MACCommand{
		CID: lorawan.RXParamSetupReq,
		Payload: &lorawan.RXParamSetupReqPayload{
			Frequency:  869525000,
			DLSettings: lorawan.DLSettings{RX2DataRate: 2, RX1DROffset: 1},
		},
	})
	assert.Equal(t, 869525000, e.rx2Frequency)
	assert.Equal(t, 2, e.rx2DataRate)
	assert.Equal(t, 1, e.rx1DROffset)

	indications := e.indications
	assert.Len(t, indications, 1)
	assert.Equal(t, EventRXParamSetup, indications[0].Info)
}

func TestDispatchRXTimingSetupReqDefaultsZeroDelayToOneSecond(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.dispatchCommand(lorawan.MACCommand{
		CID:     lorawan.RXTimingSetupReq,
		Payload: &lorawan.RXTimingSetupReqPayload{Delay: 0},
	})
	assert.Equal(t, secondsToDuration(1), e.receiveDelay1)
	assert.Equal(t, secondsToDuration(2), e.receiveDelay2)
}

func TestDispatchNewChannelReqAddsChannel(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.dispatchCommand(lorawan.MACCommand{
		CID: lorawan.NewChannelReq,
		Payload: &lorawan.NewChannelReqPayload{
			ChIndex: 3,
			Freq:    868700000,
			MinDR:   0,
			MaxDR:   5,
		},
	})
	ch, err := e.band.UplinkChannel(3)
	assert.NoError(t, err)
	assert.Equal(t, 868700000, ch.Frequency)

	cmd, ok := e.cmds.Find(lorawan.NewChannelAns)
	assert.True(t, ok)
	ans := cmd.Payload.(*lorawan.NewChannelAnsPayload)
	assert.True(t, ans.ChannelFrequencyOK)
}

func TestDispatchDevStatusReqAnswersWithFullBattery(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.dispatchCommand(lorawan.MACCommand{CID: lorawan.DevStatusReq})

	cmd, ok := e.cmds.Find(lorawan.DevStatusAns)
	assert.True(t, ok)
	ans := cmd.Payload.(*lorawan.DevStatusAnsPayload)
	assert.Equal(t, uint8(255), ans.Battery)
}

func TestDispatchUnknownCommandPushesDroppedIndication(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.dispatchCommand(lorawan.MACCommand{CID: lorawan.CID(0x7f)})

	assert.Len(t, e.indications, 1)
	assert.Equal(t, EventMACCommandDropped, e.indications[0].Info)
}

func TestDispatchLinkCheckAnsRecordsMarginAndReadiesConfirm(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.NoError(t, e.RequestLinkCheck())
	e.dispatchCommand(lorawan.MACCommand{
		CID:     lorawan.LinkCheckAns,
		Payload: &lorawan.LinkCheckAnsPayload{Margin: 20, GwCnt: 3},
	})
	assert.Len(t, e.indications, 1)
	assert.Equal(t, uint8(20), e.indications[0].LinkMargin)
	assert.Equal(t, uint8(3), e.indications[0].GwCnt)

	status, ok := e.confirms.GetStatus(uint8(lorawan.LinkCheckReq))
	assert.True(t, ok)
	assert.Equal(t, confirmqueue.StatusReady, status)
}
