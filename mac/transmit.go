package mac

import (
	"context"
	"time"

	"github.com/pkg/errors"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/confirmqueue"
	"github.com/foldedtoad/lora-mac/cryptoengine"
	"github.com/foldedtoad/lora-mac/radio"
	"github.com/foldedtoad/lora-mac/secureelement"
)

// radioFrame is a received frame buffered by the radio callbacks for
// the event loop to process on its next Tick.
type radioFrame struct {
	Data []byte
	At   time.Time
	RSSI int
	SNR  int
}

// wireRadio installs the engine's radio callbacks. Per package radio's
// contract these only record what happened; Tick does the actual work.
func (e *Engine) wireRadio() {
	e.radio.SetCallbacks(radio.Callbacks{
		TXDone: func(at time.Time) {
			e.txDone = true
			e.txAt = at
		},
		TXTimeout: func() {
			e.txTimeout = true
		},
		RXDone: func(at time.Time, data []byte, rssi, snr int) {
			e.rxFrames = append(e.rxFrames, radioFrame{Data: data, At: at, RSSI: rssi, SNR: snr})
		},
		RXTimeout: func() {
			e.rxTimeout = true
		},
		RXError: func(err error) {
			e.rxErr = err
		},
	})
}

// joinSubState steps through a single join attempt: send the
// join-request, wait for TXDone, open the two join-accept receive
// windows in turn.
type joinSubState uint8

const (
	joinSendReq joinSubState = iota
	joinWaitTXDone
	joinWaitRX1
	joinWaitRX2
	joinEvaluate
)

func (e *Engine) tickJoin(ctx context.Context) error {
	switch e.joinSub {
	case joinSendReq:
		return e.sendJoinRequest(ctx)
	case joinWaitTXDone:
		if e.txTimeout {
			e.txTimeout = false
			return e.failJoin(StatusTXTimeout)
		}
		if e.txDone {
			e.txDone = false
			def := e.band.Defaults()
			e.rxDeadline = e.clock.Now() + def.JoinAcceptDelay1
			e.joinSub = joinWaitRX1
			return e.openRXWindow(1)
		}
	case joinWaitRX1:
		if ok, err := e.pollJoinAccept(ctx); ok || err != nil {
			return err
		}
		if e.clock.Now() >= e.rxDeadline {
			def := e.band.Defaults()
			e.rxDeadline = e.clock.Now() + (def.JoinAcceptDelay2 - def.JoinAcceptDelay1)
			e.joinSub = joinWaitRX2
			return e.openRXWindow(2)
		}
	case joinWaitRX2:
		if ok, err := e.pollJoinAccept(ctx); ok || err != nil {
			return err
		}
		if e.clock.Now() >= e.rxDeadline {
			return e.retryOrFailJoin()
		}
	}
	return nil
}

func (e *Engine) sendJoinRequest(ctx context.Context) error {
	if e.clock.Now() < e.nextJoinAttempt {
		return nil
	}

	e.devNonceCounter++
	e.devNonce = lorawan.DevNonce(e.devNonceCounter)

	p := lorawan.PHYPayload{
		MHDR: lorawan.MHDR{MType: lorawan.JoinRequest, Major: lorawan.LoRaWANR1},
		MACPayload: &lorawan.JoinRequestPayload{
			JoinEUI:  e.joinEUI,
			DevEUI:   e.devEUI,
			DevNonce: e.devNonce,
		},
	}
	if err := cryptoengine.SetUplinkJoinMIC(ctx, e.se, secureelement.NwkKey, &p); err != nil {
		return errors.Wrap(err, "mac: set join-request MIC")
	}
	b, err := p.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "mac: marshal join-request")
	}

	ch, err := e.band.UplinkChannel(0)
	if err != nil {
		return e.failJoin(StatusNoChannelFound)
	}
	settings := radio.Settings{Frequency: ch.Frequency, DataRate: e.dataRate, TXPower: e.txPower}
	if err := e.radio.Send(settings, b); err != nil {
		return errors.Wrap(err, "mac: send join-request")
	}
	e.joinSub = joinWaitTXDone
	return nil
}

// rxWindowDuration bounds how long a receive window stays open waiting
// for a preamble before the radio reports RXTimeout.
const rxWindowDuration = 3 * time.Second

func (e *Engine) openRXWindow(window int) error {
	settings := radio.Settings{Frequency: e.rx2Frequency, DataRate: e.rx2DataRate}
	if window == 1 {
		dr, err := e.band.RX1DataRateIndex(e.dataRate, e.rx1DROffset)
		if err == nil {
			ch, _ := e.band.UplinkChannel(0)
			settings = radio.Settings{Frequency: ch.Frequency, DataRate: dr}
		}
	}
	return e.radio.Listen(settings, rxWindowDuration)
}

func (e *Engine) pollJoinAccept(ctx context.Context) (bool, error) {
	if e.rxErr != nil {
		e.rxErr = nil
		return true, e.failJoin(StatusRXError)
	}
	if e.rxTimeout {
		e.rxTimeout = false
		return false, nil
	}
	if len(e.rxFrames) == 0 {
		return false, nil
	}
	frame := e.rxFrames[0]
	e.rxFrames = e.rxFrames[1:]

	var p lorawan.PHYPayload
	if err := p.UnmarshalBinary(frame.Data); err != nil {
		return true, e.failJoin(StatusError)
	}
	if p.MHDR.MType != lorawan.JoinAccept {
		return true, e.failJoin(StatusError)
	}
	if err := cryptoengine.DecryptJoinAcceptOf(ctx, e.se, secureelement.NwkKey, &p); err != nil {
		return true, e.failJoin(StatusCryptoError)
	}
	ok, err := cryptoengine.ValidateDownlinkJoinMIC(ctx, e.se, secureelement.NwkKey, lorawan.JoinRequestType, e.joinEUI, e.devNonce, &p)
	if err != nil || !ok {
		return true, e.failJoin(StatusMICFailed)
	}

	ja, isJA := p.MACPayload.(*lorawan.JoinAcceptPayload)
	if !isJA {
		return true, e.failJoin(StatusError)
	}
	e.applyJoinAccept(ctx, ja)
	return true, nil
}

func (e *Engine) applyJoinAccept(ctx context.Context, ja *lorawan.JoinAcceptPayload) {
	e.netID = ja.NetID
	e.devAddr = ja.DevAddr
	e.optNeg = ja.DLSettings.OptNeg
	e.rx1DROffset = int(ja.DLSettings.RX1DROffset)
	e.rx2DataRate = int(ja.DLSettings.RX2DataRate)
	e.receiveDelay1 = time.Duration(1) * time.Second

	if err := cryptoengine.DeriveSessionKeys(ctx, e.se, e.optNeg, e.netID, e.joinEUI, ja.JoinNonce, e.devNonce); err != nil {
		e.failJoin(StatusCryptoError)
		return
	}

	if ja.CFList != nil {
		e.applyCFList(ja.CFList)
	}

	e.joined = true
	e.fCntUp = 0
	e.aFCntDown = cryptoengine.NoFCnt
	e.nFCntDown = cryptoengine.NoFCnt
	e.backoff.Reset()
	e.pendingJoin = nil
	e.joinSub = joinSendReq
	e.state = StateCycle
	e.markDirty()

	e.pendingJoinStatus = StatusOK
	e.confirms.SetStatus(confirmCmdJoin, confirmqueue.StatusOK)
	e.confirms.HandleAll(e.deliverConfirm)
	e.pushIndication(EventJoinAccept)
}

func (e *Engine) applyCFList(cf *lorawan.CFList) {
	if cf.CFListType != lorawan.CFListChannel {
		return
	}
	for i, freq := range cf.Channels {
		if freq == 0 {
			continue
		}
		e.band.AddChannel(3+i, int(freq), 0, 5)
	}
}

func (e *Engine) retryOrFailJoin() error {
	if e.pendingJoin == nil {
		return nil
	}
	e.pendingJoin.NbTrials--
	if e.pendingJoin.NbTrials == 0 {
		return e.failJoin(StatusNoAnswer)
	}
	e.nextJoinAttempt = e.clock.Now() + e.backoff.Next()
	e.joinSub = joinSendReq
	return nil
}

func (e *Engine) failJoin(status Status) error {
	e.pendingJoin = nil
	e.joinSub = joinSendReq
	e.state = StateCycle
	e.pendingJoinStatus = status
	e.confirms.SetStatus(confirmCmdJoin, confirmqueue.StatusError)
	e.confirms.HandleAll(e.deliverConfirm)
	return nil
}

// tickSend drives a single uplink/downlink-window cycle for a pending
// application data request, mirroring tickJoin's structure.
func (e *Engine) tickSend(ctx context.Context) error {
	switch e.joinSub {
	case joinSendReq:
		return e.sendData(ctx)
	case joinWaitTXDone:
		if e.txTimeout {
			e.txTimeout = false
			return e.failSend(StatusTXTimeout)
		}
		if e.txDone {
			e.txDone = false
			e.cmds.RemoveNonSticky()
			def := e.band.Defaults()
			e.rxDeadline = e.clock.Now() + e.receiveDelay1
			_ = def
			e.joinSub = joinWaitRX1
			return e.openRXWindow(1)
		}
	case joinWaitRX1:
		if ok, err := e.pollDataDown(ctx); ok || err != nil {
			return err
		}
		if e.clock.Now() >= e.rxDeadline {
			e.rxDeadline = e.clock.Now() + (e.receiveDelay2 - e.receiveDelay1)
			e.joinSub = joinWaitRX2
			return e.openRXWindow(2)
		}
	case joinWaitRX2:
		if ok, err := e.pollDataDown(ctx); ok || err != nil {
			return err
		}
		if e.clock.Now() >= e.rxDeadline {
			return e.finishSend(!e.pendingData.Confirmed)
		}
	}
	return nil
}

func (e *Engine) sendData(ctx context.Context) error {
	req := e.pendingData
	if req == nil {
		e.state = StateCycle
		return nil
	}

	fOptsBytes, err := e.cmds.Serialize(15)
	if err != nil {
		return errors.Wrap(err, "mac: serialize pending commands")
	}

	fhdr := lorawan.FHDR{
		DevAddr: e.devAddr,
		FCtrl:   lorawan.FCtrl{ADR: e.adrEnabled},
		FCnt:    uint16(e.fCntUp),
	}

	mtype := lorawan.UnconfirmedDataUp
	if req.Confirmed {
		mtype = lorawan.ConfirmedDataUp
	}

	mac := lorawan.MACPayload{FHDR: fhdr, FPort: &req.FPort}
	if len(req.Data) > 0 {
		key := secureelement.AppSKey
		if req.FPort == 0 {
			key = secureelement.NwkSEncKey
		}
		ciphertext, err := cryptoengine.EncryptFRMPayload(ctx, e.se, key, true, e.devAddr, e.fCntUp, req.Data)
		if err != nil {
			return errors.Wrap(err, "mac: encrypt FRMPayload")
		}
		mac.FRMPayload = []lorawan.Payload{&lorawan.DataPayload{Bytes: ciphertext}}
	}
	if len(fOptsBytes) > 0 {
		opts, err := lorawan.DecodeDataPayloadToMACCommands(true, []lorawan.Payload{&lorawan.DataPayload{Bytes: fOptsBytes}})
		if err != nil {
			return errors.Wrap(err, "mac: decode pending commands")
		}
		mac.FHDR.FOpts = opts
	}

	p := lorawan.PHYPayload{
		MHDR:       lorawan.MHDR{MType: mtype, Major: lorawan.LoRaWANR1},
		MACPayload: &mac,
	}
	if e.optNeg && len(mac.FHDR.FOpts) > 0 {
		if err := cryptoengine.EncryptFOptsOf(ctx, e.se, secureelement.NwkSEncKey, &p); err != nil {
			return errors.Wrap(err, "mac: encrypt FOpts")
		}
	}
	if err := cryptoengine.SetUplinkDataMIC(ctx, e.se, e.macVersion, 0, uint8(e.dataRate), 0, secureelement.FNwkSIntKey, secureelement.SNwkSIntKey, &p); err != nil {
		return errors.Wrap(err, "mac: set data MIC")
	}
	b, err := p.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "mac: marshal data frame")
	}

	ch, err := e.band.UplinkChannel(0)
	if err != nil {
		return e.failSend(StatusNoChannelFound)
	}
	settings := radio.Settings{Frequency: ch.Frequency, DataRate: e.dataRate, TXPower: e.txPower}
	if err := e.radio.Send(settings, b); err != nil {
		return errors.Wrap(err, "mac: send data frame")
	}
	e.fCntUp++
	e.joinSub = joinWaitTXDone
	e.markDirty()
	return nil
}

func (e *Engine) pollDataDown(ctx context.Context) (bool, error) {
	if e.rxErr != nil {
		e.rxErr = nil
		return true, e.finishSend(false)
	}
	if e.rxTimeout {
		e.rxTimeout = false
		return false, nil
	}
	if len(e.rxFrames) == 0 {
		return false, nil
	}
	frame := e.rxFrames[0]
	e.rxFrames = e.rxFrames[1:]

	ack, err := e.handleDownlink(ctx, frame)
	if err != nil {
		return true, e.finishSend(false)
	}
	return true, e.finishSend(ack)
}

func (e *Engine) finishSend(ok bool) error {
	status := StatusNoAnswer
	if ok {
		status = StatusOK
	}
	trials := uint8(0)
	if e.pendingData != nil && e.pendingData.Confirmed && !ok {
		trials = 1
	}

	e.pendingDataStatus = status
	e.pendingDataTrials = trials
	cqStatus := confirmqueue.StatusOK
	if !ok {
		cqStatus = confirmqueue.StatusError
	}
	e.confirms.SetStatus(confirmCmdData, cqStatus)
	e.confirms.HandleAll(e.deliverConfirm)

	e.pendingData = nil
	e.joinSub = joinSendReq
	e.state = StateCycle
	e.pushIndication(EventTXDone)
	return nil
}

func (e *Engine) failSend(status Status) error {
	e.pendingDataStatus = status
	e.pendingDataTrials = 0
	e.confirms.SetStatus(confirmCmdData, confirmqueue.StatusError)
	e.confirms.HandleAll(e.deliverConfirm)

	e.pendingData = nil
	e.joinSub = joinSendReq
	e.state = StateCycle
	return nil
}
