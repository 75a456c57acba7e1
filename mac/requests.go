package mac

import (
	"time"

	lorawan "github.com/foldedtoad/lora-mac"
)

// JoinRequest is an MLME-Join.request: the application shell asking the
// engine to start (re)joining the network.
type JoinRequest struct {
	JoinEUI lorawan.EUI64
	DevEUI  lorawan.EUI64
	NbTrials uint8
}

// JoinConfirm is the MLME-Join.confirm delivered once a join attempt
// succeeds, exhausts its retries, or is abandoned.
type JoinConfirm struct {
	Status Status
}

// DataRequest is an MCPS-Data.request: application data the engine
// should carry in the next uplink's FRMPayload.
type DataRequest struct {
	FPort    uint8
	Data     []byte
	Confirmed bool
}

// DataConfirm is the MCPS-Data.confirm delivered once a data request's
// frame has actually gone out (and, for confirmed frames, been
// acknowledged or given up on).
type DataConfirm struct {
	Status Status
	NbTrials uint8
}

// DataIndication is an MCPS-Data.indication: application payload
// received in a downlink, delivered to the shell after MIC validation
// and decryption.
type DataIndication struct {
	FPort uint8
	Data  []byte
	RSSI  int
	SNR   int
}

// Indication is an MLME-Indication: an engine-internal event the shell
// may want to observe (link check answer, device-time answer, beacon
// state change, and so on) that is not itself a confirm to a prior
// request.
type Indication struct {
	Info EventInfo
	At   time.Time

	// LinkMargin and GwCnt are set for EventLinkCheck.
	LinkMargin uint8
	GwCnt      uint8

	// DeviceTime is set for EventDeviceTime.
	DeviceTime time.Duration
}
