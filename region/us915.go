package region

import (
	"encoding/binary"
	"time"

	lorawan "github.com/foldedtoad/lora-mac"
)

// US915 returns the US902-928 band: a fixed 72 uplink / 8 downlink
// channel plan. Unlike EU868, channels cannot be added; only the
// existing 72 can be masked on or off by LinkADRReq.
func US915() Band {
	b := &us915Band{
		dataRates: map[int]DataRate{
			0:  {Modulation: LoRaModulation, SpreadFactor: 10, Bandwidth: 125, Uplink: true},
			1:  {Modulation: LoRaModulation, SpreadFactor: 9, Bandwidth: 125, Uplink: true},
			2:  {Modulation: LoRaModulation, SpreadFactor: 8, Bandwidth: 125, Uplink: true},
			3:  {Modulation: LoRaModulation, SpreadFactor: 7, Bandwidth: 125, Uplink: true},
			4:  {Modulation: LoRaModulation, SpreadFactor: 8, Bandwidth: 500, Uplink: true},
			8:  {Modulation: LoRaModulation, SpreadFactor: 12, Bandwidth: 500, Downlink: true},
			9:  {Modulation: LoRaModulation, SpreadFactor: 11, Bandwidth: 500, Downlink: true},
			10: {Modulation: LoRaModulation, SpreadFactor: 10, Bandwidth: 500, Downlink: true},
			11: {Modulation: LoRaModulation, SpreadFactor: 9, Bandwidth: 500, Downlink: true},
			12: {Modulation: LoRaModulation, SpreadFactor: 8, Bandwidth: 500, Downlink: true},
			13: {Modulation: LoRaModulation, SpreadFactor: 7, Bandwidth: 500, Downlink: true},
		},
		rx1DataRateTable: map[int][]int{
			0: {10, 9, 8, 8},
			1: {11, 10, 9, 8},
			2: {12, 11, 10, 9},
			3: {13, 12, 11, 10},
			4: {13, 13, 12, 11},
		},
		txPowerOffsets: []int{0, -2, -4, -6, -8, -10, -12, -14, -16, -18, -20},
		maxPayloadSize: map[int]MaxPayloadSize{
			0:  {M: 19, N: 11},
			1:  {M: 61, N: 53},
			2:  {M: 133, N: 125},
			3:  {M: 250, N: 242},
			4:  {M: 250, N: 242},
			8:  {M: 41, N: 33},
			9:  {M: 117, N: 109},
			10: {M: 230, N: 222},
			11: {M: 230, N: 222},
			12: {M: 230, N: 222},
			13: {M: 230, N: 222},
		},
		uplinkChannels:   make([]Channel, 72),
		downlinkChannels: make([]Channel, 8),
	}

	for i := 0; i < 64; i++ {
		b.uplinkChannels[i] = Channel{Frequency: 902300000 + i*200000, MinDR: 0, MaxDR: 3, Enabled: true}
	}
	for i := 64; i < 72; i++ {
		b.uplinkChannels[i] = Channel{Frequency: 903000000 + (i-64)*1600000, MinDR: 4, MaxDR: 4, Enabled: true}
	}
	for i := 0; i < 8; i++ {
		b.downlinkChannels[i] = Channel{Frequency: 923300000 + i*600000, MinDR: 8, MaxDR: 13, Enabled: true}
	}

	return b
}

type us915Band struct {
	dataRates        map[int]DataRate
	rx1DataRateTable map[int][]int
	txPowerOffsets   []int
	maxPayloadSize   map[int]MaxPayloadSize
	uplinkChannels   []Channel
	downlinkChannels []Channel
}

func (b *us915Band) Name() string { return "US915" }

func (b *us915Band) Defaults() Defaults {
	return Defaults{
		RX2Frequency:     923300000,
		RX2DataRate:      8,
		MaxFCntGap:       16384,
		ReceiveDelay1:    time.Second,
		ReceiveDelay2:    2 * time.Second,
		JoinAcceptDelay1: 5 * time.Second,
		JoinAcceptDelay2: 6 * time.Second,
	}
}

func (b *us915Band) DataRate(dr int) (DataRate, error) {
	d, ok := b.dataRates[dr]
	if !ok {
		return DataRate{}, ErrInvalidDataRate
	}
	return d, nil
}

func (b *us915Band) RX1DataRateIndex(uplinkDR, rx1DROffset int) (int, error) {
	offsets, ok := b.rx1DataRateTable[uplinkDR]
	if !ok || rx1DROffset < 0 || rx1DROffset >= len(offsets) {
		return 0, ErrInvalidDataRate
	}
	return offsets[rx1DROffset], nil
}

func (b *us915Band) TXPowerOffset(txPower int) (int, error) {
	if txPower < 0 || txPower >= len(b.txPowerOffsets) {
		return 0, ErrInvalidDataRate
	}
	return b.txPowerOffsets[txPower], nil
}

func (b *us915Band) MaxPayloadSize(dr int) (MaxPayloadSize, error) {
	m, ok := b.maxPayloadSize[dr]
	if !ok {
		return MaxPayloadSize{}, ErrInvalidDataRate
	}
	return m, nil
}

func (b *us915Band) UplinkChannel(i int) (Channel, error) {
	if i < 0 || i >= len(b.uplinkChannels) {
		return Channel{}, ErrInvalidChannel
	}
	return b.uplinkChannels[i], nil
}

func (b *us915Band) UplinkChannelCount() int {
	return len(b.uplinkChannels)
}

// SetChannelMask applies one 16-bit block of a LinkADRReq ChMask, with
// the two reserved control values from the regional parameters spec:
// ChMaskCntl 6 enables all 64 125 kHz channels and leaves the 500 kHz
// ones untouched, 7 disables all 64 and sets the 500 kHz channels
// 64-71 from the mask's first 8 bits.
func (b *us915Band) SetChannelMask(chMaskCntl uint8, mask [16]bool) error {
	switch {
	case chMaskCntl == 6:
		for i := 0; i < 64; i++ {
			b.uplinkChannels[i].Enabled = true
		}
		return nil
	case chMaskCntl == 7:
		for i := 0; i < 64; i++ {
			b.uplinkChannels[i].Enabled = false
		}
		for i := 0; i < 8; i++ {
			b.uplinkChannels[64+i].Enabled = mask[i]
		}
		return nil
	case chMaskCntl > 4:
		return ErrInvalidChannel
	}

	base := int(chMaskCntl) * 16
	for i := 0; i < 16; i++ {
		if base+i >= len(b.uplinkChannels) {
			break
		}
		b.uplinkChannels[base+i].Enabled = mask[i]
	}
	return nil
}

// AddChannel always fails: US915 has no spare channel slots.
func (b *us915Band) AddChannel(i, frequency, minDR, maxDR int) error {
	return ErrInvalidChannel
}

func (b *us915Band) RX1Frequency(uplinkFrequency int) (int, error) {
	idx, err := b.uplinkChannelIndex(uplinkFrequency)
	if err != nil {
		return 0, err
	}
	return b.downlinkChannels[idx%8].Frequency, nil
}

func (b *us915Band) uplinkChannelIndex(frequency int) (int, error) {
	for i, ch := range b.uplinkChannels {
		if ch.Frequency == frequency {
			return i, nil
		}
	}
	return 0, ErrInvalidChannel
}

func (b *us915Band) PingSlotFrequency(devAddr lorawan.DevAddr, beaconTime time.Duration) (int, error) {
	idx := (int(binary.BigEndian.Uint32(devAddr[:])) + int(beaconTime/(128*time.Second))) % 8
	return b.downlinkChannels[idx].Frequency, nil
}

func (b *us915Band) MaxUplinkEIRP() float32 {
	return 30
}
