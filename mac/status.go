// Package mac is the MAC engine (C5): the aggregate that drives a
// device through join, send, receive and sleep using the codec, crypto
// engine, command store, confirm queue, region band and class-B
// components, exposed to the application shell as MLME/MCPS
// requests/confirms/indications plus an MIB get/set surface.
package mac

// Status is carried by MLME/MCPS confirms.
type Status uint8

// Supported status codes.
const (
	StatusOK Status = iota
	StatusError
	StatusTXTimeout
	StatusRXTimeout
	StatusRXError
	StatusCryptoError
	StatusMICFailed
	StatusFrameCounterError
	StatusNoNetworkServer
	StatusNoChannelFound
	StatusNoFreeChannelFound
	StatusDutyCycleRestricted
	StatusLengthError
	StatusInvalidParameter
	StatusBusy
	StatusDeviceOff
	StatusService
	StatusMACCommandError
	StatusMulticastFail
	StatusFCountError
	StatusAddressError
	StatusNoAnswer
	StatusJoinNonceError
	StatusDeviceTimeNotSynced
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusTXTimeout:
		return "TX_TIMEOUT"
	case StatusRXTimeout:
		return "RX_TIMEOUT"
	case StatusRXError:
		return "RX_ERROR"
	case StatusCryptoError:
		return "CRYPTO_ERROR"
	case StatusMICFailed:
		return "MIC_FAILED"
	case StatusFrameCounterError:
		return "FCNT_ERROR"
	case StatusNoNetworkServer:
		return "NO_NETWORK_SERVER"
	case StatusNoChannelFound:
		return "NO_CHANNEL_FOUND"
	case StatusNoFreeChannelFound:
		return "NO_FREE_CHANNEL_FOUND"
	case StatusDutyCycleRestricted:
		return "DUTY_CYCLE_RESTRICTED"
	case StatusLengthError:
		return "LENGTH_ERROR"
	case StatusInvalidParameter:
		return "INVALID_PARAMETER"
	case StatusBusy:
		return "BUSY"
	case StatusDeviceOff:
		return "DEVICE_OFF"
	case StatusService:
		return "SERVICE_UNKNOWN"
	case StatusMACCommandError:
		return "MAC_COMMAND_ERROR"
	case StatusMulticastFail:
		return "MULTICAST_FAIL"
	case StatusFCountError:
		return "FCOUNT_ERROR"
	case StatusAddressError:
		return "ADDRESS_ERROR"
	case StatusNoAnswer:
		return "NO_ANSWER"
	case StatusJoinNonceError:
		return "JOIN_NONCE_ERROR"
	case StatusDeviceTimeNotSynced:
		return "DEVICE_TIME_NOT_SYNCED"
	default:
		return "UNKNOWN"
	}
}

// EventInfo further qualifies an MLME-indication or the device's
// internal event log.
type EventInfo uint8

// Supported event-info codes.
const (
	EventRXWindow1 EventInfo = iota
	EventRXWindow2
	EventRXBeacon
	EventRXPingSlot
	EventRXMulticast
	EventTXDone
	EventJoinAccept
	EventLinkCheck
	EventDeviceTime
	EventBeaconLocked
	EventBeaconLost
	EventBeaconNotFound
	EventClassBStatus
	EventRXParamSetup
	EventDLChannel
	EventCryptoFailure
	EventMACCommandDropped
)

func (e EventInfo) String() string {
	switch e {
	case EventRXWindow1:
		return "RX1"
	case EventRXWindow2:
		return "RX2"
	case EventRXBeacon:
		return "RX_BEACON"
	case EventRXPingSlot:
		return "RX_PING_SLOT"
	case EventRXMulticast:
		return "RX_MULTICAST"
	case EventTXDone:
		return "TX_DONE"
	case EventJoinAccept:
		return "JOIN_ACCEPT"
	case EventLinkCheck:
		return "LINK_CHECK"
	case EventDeviceTime:
		return "DEVICE_TIME"
	case EventBeaconLocked:
		return "BEACON_LOCKED"
	case EventBeaconLost:
		return "BEACON_LOST"
	case EventBeaconNotFound:
		return "BEACON_NOT_FOUND"
	case EventClassBStatus:
		return "CLASS_B_STATUS"
	case EventRXParamSetup:
		return "RX_PARAM_SETUP"
	case EventDLChannel:
		return "DL_CHANNEL"
	case EventCryptoFailure:
		return "CRYPTO_FAILURE"
	case EventMACCommandDropped:
		return "MAC_COMMAND_DROPPED"
	default:
		return "UNKNOWN"
	}
}

// EngineState names one of the engine's top-level cooperative states.
type EngineState uint8

// Engine states.
const (
	StateRestore EngineState = iota
	StateStart
	StateJoin
	StateSend
	StateCycle
	StateSleep
)

func (s EngineState) String() string {
	switch s {
	case StateRestore:
		return "RESTORE"
	case StateStart:
		return "START"
	case StateJoin:
		return "JOIN"
	case StateSend:
		return "SEND"
	case StateCycle:
		return "CYCLE"
	case StateSleep:
		return "SLEEP"
	default:
		return "UNKNOWN"
	}
}

// DeviceClass identifies which LoRaWAN device class the engine is
// currently operating as.
type DeviceClass uint8

// Supported device classes.
const (
	ClassA DeviceClass = iota
	ClassB
	ClassC
)
