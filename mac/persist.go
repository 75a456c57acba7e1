package mac

import (
	"encoding/binary"
	"errors"
	"time"

	lorawan "github.com/foldedtoad/lora-mac"
	"github.com/foldedtoad/lora-mac/classb"
)

// sessionImage is the durable part of the engine's join/session state,
// packed as one blob in the NVM image alongside the beacon context.
type sessionImage struct {
	Joined     bool
	NetID      lorawan.NetID
	DevAddr    lorawan.DevAddr
	MACVersion lorawan.MACVersion
	OptNeg     bool
	FCntUp     uint32
	AFCntDown  uint32
	NFCntDown  uint32
}

func (s sessionImage) pack() []byte {
	b := make([]byte, 0, 20)
	var joined byte
	if s.Joined {
		joined = 1
	}
	var optNeg byte
	if s.OptNeg {
		optNeg = 1
	}
	b = append(b, joined, optNeg, byte(s.MACVersion))
	b = append(b, s.NetID[:]...)
	b = append(b, s.DevAddr[:]...)

	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], s.FCntUp)
	b = append(b, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], s.AFCntDown)
	b = append(b, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], s.NFCntDown)
	b = append(b, tmp[:]...)
	return b
}

func (s *sessionImage) unpack(b []byte) error {
	if len(b) != 22 {
		return errors.New("mac: malformed session image")
	}
	s.Joined = b[0] != 0
	s.OptNeg = b[1] != 0
	s.MACVersion = lorawan.MACVersion(b[2])
	copy(s.NetID[:], b[3:6])
	copy(s.DevAddr[:], b[6:10])
	s.FCntUp = binary.LittleEndian.Uint32(b[10:14])
	s.AFCntDown = binary.LittleEndian.Uint32(b[14:18])
	s.NFCntDown = binary.LittleEndian.Uint32(b[18:22])
	return nil
}

func packBeaconContext(ctx classb.BeaconContext) []byte {
	b := make([]byte, 0, 19)
	var acquired byte
	if ctx.Acquired {
		acquired = 1
	}
	b = append(b, acquired)

	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(ctx.BeaconTime))
	b = append(b, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], uint64(ctx.NextRx))
	b = append(b, tmp[:]...)

	var st [2]byte
	binary.LittleEndian.PutUint16(st[:], ctx.SymbolTimeout)
	b = append(b, st[:]...)
	return b
}

func unpackBeaconContext(b []byte, ctx *classb.BeaconContext) error {
	if len(b) != 19 {
		return errors.New("mac: malformed beacon context")
	}
	ctx.Acquired = b[0] != 0
	ctx.BeaconTime = time.Duration(binary.LittleEndian.Uint64(b[1:9]))
	ctx.NextRx = time.Duration(binary.LittleEndian.Uint64(b[9:17]))
	ctx.SymbolTimeout = binary.LittleEndian.Uint16(b[17:19])
	return nil
}
