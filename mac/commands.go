package mac

import (
	"time"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/confirmqueue"
)

// dispatchCommands applies every network-issued MAC command found in
// FOpts or an FPort-0 FRMPayload, queuing an answer command for the
// next uplink where the command requires one.
func (e *Engine) dispatchCommands(payloads []lorawan.Payload) {
	for _, pl := range payloads {
		cmd, ok := pl.(*lorawan.MACCommand)
		if !ok {
			continue
		}
		e.dispatchCommand(*cmd)
	}
}

func (e *Engine) dispatchCommand(cmd lorawan.MACCommand) {
	switch cmd.CID {
	case lorawan.LinkCheckAns:
		if p, ok := cmd.Payload.(*lorawan.LinkCheckAnsPayload); ok {
			e.indications = append(e.indications, Indication{
				Info:       EventLinkCheck,
				LinkMargin: p.Margin,
				GwCnt:      p.GwCnt,
			})
			e.confirms.SetStatus(uint8(lorawan.LinkCheckReq), confirmqueue.StatusReady)
		}

	case lorawan.LinkADRReq:
		p, ok := cmd.Payload.(*lorawan.LinkADRReqPayload)
		if !ok {
			break
		}
		ans := e.applyLinkADRReq(p)
		e.cmds.Add(lorawan.MACCommand{CID: lorawan.LinkADRAns, Payload: &ans})

	case lorawan.DutyCycleReq:
		if p, ok := cmd.Payload.(*lorawan.DutyCycleReqPayload); ok {
			_ = p
			e.cmds.Add(lorawan.MACCommand{CID: lorawan.DutyCycleAns})
		}

	case lorawan.RXParamSetupReq:
		if p, ok := cmd.Payload.(*lorawan.RXParamSetupReqPayload); ok {
			e.rx2Frequency = int(p.Frequency)
			e.rx2DataRate = int(p.DLSettings.RX2DataRate)
			e.rx1DROffset = int(p.DLSettings.RX1DROffset)
			ans := lorawan.RXParamSetupAnsPayload{ChannelACK: true, RX2DataRateACK: true, RX1DROffsetACK: true}
			e.cmds.Add(lorawan.MACCommand{CID: lorawan.RXParamSetupAns, Payload: &ans})
			e.pushIndication(EventRXParamSetup)
		}

	case lorawan.RXTimingSetupReq:
		if p, ok := cmd.Payload.(*lorawan.RXTimingSetupReqPayload); ok {
			delay := p.Delay
			if delay == 0 {
				delay = 1
			}
			e.receiveDelay1 = secondsToDuration(delay)
			e.receiveDelay2 = secondsToDuration(delay + 1)
			e.cmds.Add(lorawan.MACCommand{CID: lorawan.RXTimingSetupAns})
		}

	case lorawan.NewChannelReq:
		p, ok := cmd.Payload.(*lorawan.NewChannelReqPayload)
		if !ok {
			break
		}
		ans := lorawan.NewChannelAnsPayload{ChannelFrequencyOK: true, DataRateRangeOK: true}
		if err := e.band.AddChannel(int(p.ChIndex), int(p.Freq), int(p.MinDR), int(p.MaxDR)); err != nil {
			ans = lorawan.NewChannelAnsPayload{}
		}
		e.cmds.Add(lorawan.MACCommand{CID: lorawan.NewChannelAns, Payload: &ans})

	case lorawan.DLChannelReq:
		_, ok := cmd.Payload.(*lorawan.DLChannelReqPayload)
		if !ok {
			break
		}
		ans := lorawan.DLChannelAnsPayload{UplinkFrequencyExists: true, ChannelFrequencyOK: true}
		e.cmds.Add(lorawan.MACCommand{CID: lorawan.DLChannelAns, Payload: &ans})
		e.pushIndication(EventDLChannel)

	case lorawan.DeviceTimeAns:
		if p, ok := cmd.Payload.(*lorawan.DeviceTimeAnsPayload); ok {
			e.indications = append(e.indications, Indication{
				Info:       EventDeviceTime,
				DeviceTime: p.TimeSinceGPSEpoch,
			})
			e.confirms.SetStatus(uint8(lorawan.DeviceTimeReq), confirmqueue.StatusReady)
		}

	case lorawan.PingSlotInfoAns:
		// acknowledged implicitly; nothing is applied here and the
		// ping-slot periodicity is left unchanged.

	case lorawan.PingSlotChannelReq:
		if p, ok := cmd.Payload.(*lorawan.PingSlotChannelReqPayload); ok {
			e.pingSlot.SetChannel(int(p.Frequency), int(p.DR))
			ans := lorawan.PingSlotChannelAnsPayload{DataRateOK: true, ChannelFrequencyOK: true}
			e.cmds.Add(lorawan.MACCommand{CID: lorawan.PingSlotChannelAns, Payload: &ans})
		}

	case lorawan.BeaconFreqReq:
		if _, ok := cmd.Payload.(*lorawan.BeaconFreqReqPayload); ok {
			ans := lorawan.BeaconFreqAnsPayload{BeaconFrequencyOK: true}
			e.cmds.Add(lorawan.MACCommand{CID: lorawan.BeaconFreqAns, Payload: &ans})
		}

	case lorawan.DevStatusReq:
		ans := lorawan.DevStatusAnsPayload{Battery: 255, Margin: 0}
		e.cmds.Add(lorawan.MACCommand{CID: lorawan.DevStatusAns, Payload: &ans})

	default:
		e.pushIndication(EventMACCommandDropped)
	}
}

// deliverConfirm is confirmqueue.Queue's HandleAll callback: it
// dispatches a drained entry to wherever that request kind's outcome
// belongs. LinkCheckReq and DeviceTimeReq already surfaced their
// answer as an Indication when dispatchCommand matched it; draining
// here only frees their queue slot. Join and data confirms carry their
// outcome in via pendingJoinStatus/pendingDataStatus, set immediately
// before the SetStatus+HandleAll call that reaches this entry.
func (e *Engine) deliverConfirm(entry confirmqueue.Entry) {
	switch entry.Cmd {
	case confirmCmdJoin:
		e.joinConfirms = append(e.joinConfirms, JoinConfirm{Status: e.pendingJoinStatus})
	case confirmCmdData:
		e.dataConfirms = append(e.dataConfirms, DataConfirm{
			Status:   e.pendingDataStatus,
			NbTrials: e.pendingDataTrials,
		})
	}
}

// applyLinkADRReq applies a LinkADRReq's data rate, TX power and
// channel mask to the band and local settings, answering ACK for every
// part that the band accepted.
func (e *Engine) applyLinkADRReq(p *lorawan.LinkADRReqPayload) lorawan.LinkADRAnsPayload {
	ans := lorawan.LinkADRAnsPayload{ChannelMaskACK: true, DataRateACK: true, PowerACK: true}

	if _, err := e.band.DataRate(int(p.DataRate)); err != nil {
		ans.DataRateACK = false
	} else {
		e.dataRate = int(p.DataRate)
	}

	if _, err := e.band.TXPowerOffset(int(p.TXPower)); err != nil {
		ans.PowerACK = false
	} else {
		e.txPower = int(p.TXPower)
	}

	if err := e.band.SetChannelMask(p.Redundancy.ChMaskCntl, p.ChMask); err != nil {
		ans.ChannelMaskACK = false
	}

	if p.Redundancy.NbRep > 0 {
		e.nbTrans = int(p.Redundancy.NbRep)
	}

	e.markDirty()
	return ans
}

func secondsToDuration(s uint8) time.Duration {
	return time.Duration(s) * time.Second
}
