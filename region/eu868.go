package region

import (
	"time"

	lorawan "github.com/foldedtoad/lora-mac"
)

// EU868 returns the EU863-870 band, the default 3-channel plan plus
// whatever custom channels the network installs later via NewChannelReq.
func EU868() Band {
	return &eu868Band{
		dataRates: map[int]DataRate{
			0: {Modulation: LoRaModulation, SpreadFactor: 12, Bandwidth: 125, Uplink: true, Downlink: true},
			1: {Modulation: LoRaModulation, SpreadFactor: 11, Bandwidth: 125, Uplink: true, Downlink: true},
			2: {Modulation: LoRaModulation, SpreadFactor: 10, Bandwidth: 125, Uplink: true, Downlink: true},
			3: {Modulation: LoRaModulation, SpreadFactor: 9, Bandwidth: 125, Uplink: true, Downlink: true},
			4: {Modulation: LoRaModulation, SpreadFactor: 8, Bandwidth: 125, Uplink: true, Downlink: true},
			5: {Modulation: LoRaModulation, SpreadFactor: 7, Bandwidth: 125, Uplink: true, Downlink: true},
			6: {Modulation: LoRaModulation, SpreadFactor: 7, Bandwidth: 250, Uplink: true, Downlink: true},
			7: {Modulation: FSKModulation, BitRate: 50000, Uplink: true, Downlink: true},
		},
		rx1DataRateTable: map[int][]int{
			0: {0, 0, 0, 0, 0, 0},
			1: {1, 0, 0, 0, 0, 0},
			2: {2, 1, 0, 0, 0, 0},
			3: {3, 2, 1, 0, 0, 0},
			4: {4, 3, 2, 1, 0, 0},
			5: {5, 4, 3, 2, 1, 0},
			6: {6, 5, 4, 3, 2, 1},
			7: {7, 6, 5, 4, 3, 2},
		},
		txPowerOffsets: []int{0, -2, -4, -6, -8, -10, -12, -14},
		maxPayloadSize: map[int]MaxPayloadSize{
			0: {M: 59, N: 51},
			1: {M: 59, N: 51},
			2: {M: 59, N: 51},
			3: {M: 123, N: 115},
			4: {M: 250, N: 242},
			5: {M: 250, N: 242},
			6: {M: 250, N: 242},
			7: {M: 250, N: 242},
		},
		uplinkChannels: []Channel{
			{Frequency: 868100000, MinDR: 0, MaxDR: 5, Enabled: true},
			{Frequency: 868300000, MinDR: 0, MaxDR: 5, Enabled: true},
			{Frequency: 868500000, MinDR: 0, MaxDR: 5, Enabled: true},
		},
	}
}

type eu868Band struct {
	dataRates        map[int]DataRate
	rx1DataRateTable map[int][]int
	txPowerOffsets   []int
	maxPayloadSize   map[int]MaxPayloadSize
	uplinkChannels   []Channel
}

func (b *eu868Band) Name() string { return "EU868" }

func (b *eu868Band) Defaults() Defaults {
	return Defaults{
		RX2Frequency:     869525000,
		RX2DataRate:      0,
		MaxFCntGap:       16384,
		ReceiveDelay1:    time.Second,
		ReceiveDelay2:    2 * time.Second,
		JoinAcceptDelay1: 5 * time.Second,
		JoinAcceptDelay2: 6 * time.Second,
	}
}

func (b *eu868Band) DataRate(dr int) (DataRate, error) {
	d, ok := b.dataRates[dr]
	if !ok {
		return DataRate{}, ErrInvalidDataRate
	}
	return d, nil
}

func (b *eu868Band) RX1DataRateIndex(uplinkDR, rx1DROffset int) (int, error) {
	offsets, ok := b.rx1DataRateTable[uplinkDR]
	if !ok || rx1DROffset < 0 || rx1DROffset >= len(offsets) {
		return 0, ErrInvalidDataRate
	}
	return offsets[rx1DROffset], nil
}

func (b *eu868Band) TXPowerOffset(txPower int) (int, error) {
	if txPower < 0 || txPower >= len(b.txPowerOffsets) {
		return 0, ErrInvalidDataRate
	}
	return b.txPowerOffsets[txPower], nil
}

func (b *eu868Band) MaxPayloadSize(dr int) (MaxPayloadSize, error) {
	m, ok := b.maxPayloadSize[dr]
	if !ok {
		return MaxPayloadSize{}, ErrInvalidDataRate
	}
	return m, nil
}

func (b *eu868Band) UplinkChannel(i int) (Channel, error) {
	if i < 0 || i >= len(b.uplinkChannels) {
		return Channel{}, ErrInvalidChannel
	}
	return b.uplinkChannels[i], nil
}

func (b *eu868Band) UplinkChannelCount() int {
	return len(b.uplinkChannels)
}

func (b *eu868Band) SetChannelMask(chMaskCntl uint8, mask [16]bool) error {
	if chMaskCntl != 0 {
		return ErrInvalidChannel
	}
	for i := 0; i < 16 && i < len(b.uplinkChannels); i++ {
		b.uplinkChannels[i].Enabled = mask[i]
	}
	return nil
}

func (b *eu868Band) AddChannel(i, frequency, minDR, maxDR int) error {
	ch := Channel{Frequency: frequency, MinDR: minDR, MaxDR: maxDR, Enabled: true}
	if i < len(b.uplinkChannels) {
		b.uplinkChannels[i] = ch
		return nil
	}
	if i != len(b.uplinkChannels) {
		return ErrInvalidChannel
	}
	b.uplinkChannels = append(b.uplinkChannels, ch)
	return nil
}

// RX1Frequency returns the uplink frequency unchanged: EU868 RX1 shares
// the uplink channel's frequency.
func (b *eu868Band) RX1Frequency(uplinkFrequency int) (int, error) {
	return uplinkFrequency, nil
}

func (b *eu868Band) PingSlotFrequency(lorawan.DevAddr, time.Duration) (int, error) {
	return 869525000, nil
}

func (b *eu868Band) MaxUplinkEIRP() float32 {
	return 16
}
