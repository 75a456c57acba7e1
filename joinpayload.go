package lorawan

import "fmt"

// JoinType identifies which rejoin-request variant a frame carries.
type JoinType uint8

// Supported join/rejoin types.
const (
	JoinRequestType    JoinType = 0xff // sentinel: not a rejoin
	RejoinRequestType0 JoinType = 0
	RejoinRequestType1 JoinType = 1
	RejoinRequestType2 JoinType = 2
)

// JoinRequestPayload represents the join-request payload:
// JoinEUI(8) | DevEUI(8) | DevNonce(2).
type JoinRequestPayload struct {
	JoinEUI  EUI64
	DevEUI   EUI64
	DevNonce DevNonce
}

// Clone returns a copy of the payload.
func (p JoinRequestPayload) Clone() Payload { return &p }

// MarshalBinary marshals the object in binary form.
func (p JoinRequestPayload) MarshalBinary() ([]byte, error) {
	var out []byte

	b, err := p.JoinEUI.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.DevEUI.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.DevNonce.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *JoinRequestPayload) UnmarshalBinary(uplink bool, data []byte) error {
	if len(data) != 18 {
		return fmt.Errorf("lorawan: 18 bytes of data are expected, got %d", len(data))
	}
	if err := p.JoinEUI.UnmarshalBinary(data[0:8]); err != nil {
		return err
	}
	if err := p.DevEUI.UnmarshalBinary(data[8:16]); err != nil {
		return err
	}
	return p.DevNonce.UnmarshalBinary(data[16:18])
}

// RejoinRequestType1Payload represents a rejoin-type-1 payload:
// JoinEUI(8) | DevEUI(8) | RJcount1(2).
type RejoinRequestType1Payload struct {
	JoinEUI  EUI64
	DevEUI   EUI64
	RJCount1 RJCount1
}

// Clone returns a copy of the payload.
func (p RejoinRequestType1Payload) Clone() Payload { return &p }

// MarshalBinary marshals the object in binary form.
func (p RejoinRequestType1Payload) MarshalBinary() ([]byte, error) {
	var out []byte
	out = append(out, byte(RejoinRequestType1))

	b, err := p.JoinEUI.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.DevEUI.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.RJCount1.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *RejoinRequestType1Payload) UnmarshalBinary(uplink bool, data []byte) error {
	if len(data) != 19 {
		return fmt.Errorf("lorawan: 19 bytes of data are expected, got %d", len(data))
	}
	if data[0] != byte(RejoinRequestType1) {
		return fmt.Errorf("lorawan: RejoinType 1 expected, got %d", data[0])
	}
	if err := p.JoinEUI.UnmarshalBinary(data[1:9]); err != nil {
		return err
	}
	if err := p.DevEUI.UnmarshalBinary(data[9:17]); err != nil {
		return err
	}
	return p.RJCount1.UnmarshalBinary(data[17:19])
}

// RejoinRequestType02Payload represents a rejoin-type-0 or -2 payload:
// RejoinType(1) | NetID(3) | DevEUI(8) | RJcount0(2).
type RejoinRequestType02Payload struct {
	RejoinType JoinType
	NetID      NetID
	DevEUI     EUI64
	RJCount0   RJCount0
}

// Clone returns a copy of the payload.
func (p RejoinRequestType02Payload) Clone() Payload { return &p }

// MarshalBinary marshals the object in binary form.
func (p RejoinRequestType02Payload) MarshalBinary() ([]byte, error) {
	if p.RejoinType != RejoinRequestType0 && p.RejoinType != RejoinRequestType2 {
		return nil, fmt.Errorf("lorawan: RejoinType must be 0 or 2, got %d", p.RejoinType)
	}

	var out []byte
	out = append(out, byte(p.RejoinType))

	b, err := p.NetID.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.DevEUI.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.RJCount0.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *RejoinRequestType02Payload) UnmarshalBinary(uplink bool, data []byte) error {
	if len(data) != 14 {
		return fmt.Errorf("lorawan: 14 bytes of data are expected, got %d", len(data))
	}
	p.RejoinType = JoinType(data[0])
	if p.RejoinType != RejoinRequestType0 && p.RejoinType != RejoinRequestType2 {
		return fmt.Errorf("lorawan: invalid RejoinType %d", data[0])
	}
	if err := p.NetID.UnmarshalBinary(data[1:4]); err != nil {
		return err
	}
	if err := p.DevEUI.UnmarshalBinary(data[4:12]); err != nil {
		return err
	}
	return p.RJCount0.UnmarshalBinary(data[12:14])
}

// JoinAcceptPayload represents the (decrypted) join-accept payload:
// JoinNonce(3) | NetID(3) | DevAddr(4) | DLSettings(1) | RxDelay(1) |
// optional CFList(16).
type JoinAcceptPayload struct {
	JoinNonce  JoinNonce
	NetID      NetID
	DevAddr    DevAddr
	DLSettings DLSettings
	RXDelay    uint8
	CFList     *CFList
}

// Clone returns a copy of the payload.
func (p JoinAcceptPayload) Clone() Payload { return &p }

// MarshalBinary marshals the object in binary form. The result is the
// plaintext body; package cryptoengine's EncryptJoinAccept is responsible
// for the AES-ECB pass over it plus the MIC.
func (p JoinAcceptPayload) MarshalBinary() ([]byte, error) {
	var out []byte

	b, err := p.JoinNonce.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.NetID.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.DevAddr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	b, err = p.DLSettings.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, b...)

	out = append(out, p.RXDelay)

	if p.CFList != nil {
		b, err = p.CFList.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}

	return out, nil
}

// UnmarshalBinary decodes the object from binary form.
func (p *JoinAcceptPayload) UnmarshalBinary(uplink bool, data []byte) error {
	if len(data) != 12 && len(data) != 28 {
		return fmt.Errorf("lorawan: 12 or 28 bytes of data are expected, got %d", len(data))
	}

	if err := p.JoinNonce.UnmarshalBinary(data[0:3]); err != nil {
		return err
	}
	if err := p.NetID.UnmarshalBinary(data[3:6]); err != nil {
		return err
	}
	if err := p.DevAddr.UnmarshalBinary(data[6:10]); err != nil {
		return err
	}
	if err := p.DLSettings.UnmarshalBinary(data[10:11]); err != nil {
		return err
	}
	p.RXDelay = data[11]

	if len(data) == 28 {
		p.CFList = &CFList{}
		if err := p.CFList.UnmarshalBinary(data[12:28]); err != nil {
			return err
		}
	} else {
		p.CFList = nil
	}

	return nil
}
