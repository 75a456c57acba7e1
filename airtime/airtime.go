// Package airtime calculates LoRa modulated frame time-on-air, per the
// formula in Semtech's LoRa Design Guide. The MAC engine does not call
// CalculateLoRaAirtime; it has no duty-cycle gate.
package airtime

import (
	"errors"
	"math"
	"time"
)

// CodingRate is the forward-error-correction coding rate.
type CodingRate int

// Supported coding rates.
const (
	CodingRate45 CodingRate = 1
	CodingRate46 CodingRate = 2
	CodingRate47 CodingRate = 3
	CodingRate48 CodingRate = 4
)

// ErrInvalidCodingRate is returned for a CodingRate outside 1-4.
var ErrInvalidCodingRate = errors.New("airtime: codingRate must be between 1 and 4")

// CalculateLoRaAirtime returns the on-air duration of a LoRa modulated
// frame carrying payloadSize bytes at spreading factor sf and
// bandwidth kHz, with the given preamble length, coding rate, explicit
// header and low-data-rate-optimization settings.
func CalculateLoRaAirtime(payloadSize, sf, bandwidth, preambleNumber int, codingRate CodingRate, headerEnabled, lowDataRateOptimization bool) (time.Duration, error) {
	symbolDuration := SymbolDuration(sf, bandwidth)
	preambleDuration := PreambleDuration(symbolDuration, preambleNumber)

	payloadSymbols, err := PayloadSymbolNumber(payloadSize, sf, codingRate, headerEnabled, lowDataRateOptimization)
	if err != nil {
		return 0, err
	}

	return preambleDuration + time.Duration(payloadSymbols)*symbolDuration, nil
}

// SymbolDuration returns the duration of a single LoRa symbol at
// spreading factor sf and bandwidth kHz.
func SymbolDuration(sf, bandwidth int) time.Duration {
	return time.Duration((1 << uint(sf)) * 1000000 / bandwidth)
}

// PreambleDuration returns the preamble duration given a symbol
// duration and preamble symbol count.
func PreambleDuration(symbolDuration time.Duration, preambleNumber int) time.Duration {
	return time.Duration((100*preambleNumber)+425) * symbolDuration / 100
}

// PayloadSymbolNumber returns the number of symbols making up the
// packet payload and header.
func PayloadSymbolNumber(payloadSize, sf int, codingRate CodingRate, headerEnabled, lowDataRateOptimization bool) (int, error) {
	if codingRate < 1 || codingRate > 4 {
		return 0, ErrInvalidCodingRate
	}

	var de, h float64
	if lowDataRateOptimization {
		de = 1
	}
	if !headerEnabled {
		h = 1
	}

	pl := float64(payloadSize)
	spreadingFactor := float64(sf)
	cr := float64(codingRate)

	a := 8*pl - 4*spreadingFactor + 28 + 16 - 20*h
	b := 4 * (spreadingFactor - 2*de)
	c := cr + 4

	return int(8 + math.Max(math.Ceil(a/b)*c, 0)), nil
}
