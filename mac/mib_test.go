package mac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	lorawan "github.com/foldedtoad/lora-mac"
)

func TestMIBGetNetIDEncodesBytesAsInt(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.netID = lorawan.NetID{0x00, 0x00, 0x2a}

	v, err := e.MIBGet(MIBNetID)
	assert.NoError(t, err)
	assert.Equal(t, 0x2a&0x3f, v.Int)
}

func TestMIBGetSetChannelsTXPower(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.NoError(t, e.MIBSet(MIBChannelsTXPower, MIBValue{Int: 3}))

	v, err := e.MIBGet(MIBChannelsTXPower)
	assert.NoError(t, err)
	assert.Equal(t, 3, v.Int)
}

func TestMIBGetUnknownAttributeFails(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.MIBGet(MIBAttribute(255))
	assert.Equal(t, ErrUnknownMIB, err)
}

func TestMIBSetUnknownAttributeFails(t *testing.T) {
	e, _, _ := newTestEngine(t)
	err := e.MIBSet(MIBAttribute(255), MIBValue{})
	assert.Equal(t, ErrUnknownMIB, err)
}

func TestMIBSetDeviceClass(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.NoError(t, e.MIBSet(MIBDeviceClass, MIBValue{Class: ClassB}))
	v, err := e.MIBGet(MIBDeviceClass)
	assert.NoError(t, err)
	assert.Equal(t, ClassB, v.Class)
}
