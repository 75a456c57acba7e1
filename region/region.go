// Package region is the device-side regional parameters contract: the
// MAC engine asks a Band for data-rate tables, channel plans and RX
// timing instead of hard-coding a single region. It is a deliberately
// narrower cousin of a network-server band package: an end device never
// generates ChMask/NewChannelReq, it only applies what the network
// sends it.
package region

import (
	"errors"
	"time"

	lorawan "github.com/foldedtoad/lora-mac"
)

// Modulation identifies a data rate's underlying modulation.
type Modulation string

// Supported modulations.
const (
	LoRaModulation Modulation = "LORA"
	FSKModulation  Modulation = "FSK"
)

// DataRate describes one entry of a region's data-rate table.
type DataRate struct {
	Modulation   Modulation
	SpreadFactor int
	Bandwidth    int // kHz, LoRa only
	BitRate      int // bits/s, FSK only
	Uplink       bool
	Downlink     bool
}

// MaxPayloadSize bounds the MACPayload (M) and application (N) payload
// sizes for a data rate.
type MaxPayloadSize struct {
	M int
	N int
}

// Channel is one uplink or downlink channel: a frequency and the data
// rate range it may carry.
type Channel struct {
	Frequency int
	MinDR     int
	MaxDR     int
	Enabled   bool
}

// Defaults holds the region's fixed protocol timing.
type Defaults struct {
	RX2Frequency     int
	RX2DataRate      int
	MaxFCntGap       uint32
	ReceiveDelay1    time.Duration
	ReceiveDelay2    time.Duration
	JoinAcceptDelay1 time.Duration
	JoinAcceptDelay2 time.Duration
}

// Errors returned by Band implementations.
var (
	ErrInvalidDataRate = errors.New("region: invalid data rate index")
	ErrInvalidChannel  = errors.New("region: invalid channel index")
)

// Band is the device-side view of a regional parameters document: fixed
// tables the engine reads, plus the handful of network-issued commands
// (NewChannelReq, LinkADRReq's ChMask) that mutate the
// device's channel plan at runtime.
type Band interface {
	// Name returns the region's common name, e.g. "EU868".
	Name() string

	// Defaults returns the region's fixed protocol timing.
	Defaults() Defaults

	// DataRate returns the data rate at index dr.
	DataRate(dr int) (DataRate, error)

	// RX1DataRateIndex returns the RX1 data rate index for an uplink
	// data rate and RX1 DR offset.
	RX1DataRateIndex(uplinkDR, rx1DROffset int) (int, error)

	// TXPowerOffset returns the EIRP reduction, in dB, for a TXPower
	// index as used by LinkADRReq.
	TXPowerOffset(txPower int) (int, error)

	// MaxPayloadSize returns the maximum MACPayload/application
	// payload size for a data rate index.
	MaxPayloadSize(dr int) (MaxPayloadSize, error)

	// UplinkChannel returns the channel at index i.
	UplinkChannel(i int) (Channel, error)

	// UplinkChannelCount returns how many uplink channel slots the
	// region defines (fixed for US915-class plans, variable for
	// EU868-class plans once NewChannelReq has added custom ones).
	UplinkChannelCount() int

	// SetChannelMask applies a LinkADRReq ChMask/ChMaskCntl pair,
	// enabling or disabling uplink channels in the block it addresses.
	SetChannelMask(chMaskCntl uint8, mask [16]bool) error

	// AddChannel installs or replaces a custom uplink channel (EU868-
	// class NewChannelReq). Fixed-channel-plan regions (US915-class)
	// reject this with ErrInvalidChannel since they have no spare
	// slots to add to.
	AddChannel(i, frequency, minDR, maxDR int) error

	// RX1Frequency returns the RX1 downlink frequency for an uplink
	// frequency.
	RX1Frequency(uplinkFrequency int) (int, error)

	// PingSlotFrequency returns the class-B ping-slot frequency for a
	// device address and beacon-period-relative time.
	PingSlotFrequency(devAddr lorawan.DevAddr, beaconTime time.Duration) (int, error)

	// MaxUplinkEIRP returns the region's default maximum uplink EIRP,
	// in dBm.
	MaxUplinkEIRP() float32
}
