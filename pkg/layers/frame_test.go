package layers

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	f := BeaconFormat()
	data := f.Assemble()[f.Preamble.Repeat:]

	frame, err := DecodeFrame(data, f.Layout())
	require.NoError(t, err)
	assert.Equal(t, f.SyncWord, frame.SyncWord)
	assert.Equal(t, f.Address, frame.Address)
	assert.Equal(t, f.Filler, frame.Filler)
	assert.Equal(t, f.Message, frame.Message)
	assert.Equal(t, f.ExpectedCRC(), frame.CRC)
	assert.Empty(t, frame.LayerPayload())
	assert.Equal(t, LayerTypeFrame, frame.LayerType())
	assert.True(t, strings.Contains(gopacket.LayerString(frame), "Frame"))
}

func TestDecodeFrameTruncated(t *testing.T) {
	f := TTCFormat()
	data := f.Assemble()[f.Preamble.Repeat:]

	_, err := DecodeFrame(data[:5], f.Layout())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFrameTruncated))
}

func TestRegisteredDecoderUsesTTCLayout(t *testing.T) {
	f := TTCFormat()
	packet := gopacket.NewPacket(f.Assemble()[f.Preamble.Repeat:], LayerTypeFrame, gopacket.Default)
	frame, ok := packet.Layer(LayerTypeFrame).(*Frame)
	require.True(t, ok)
	assert.Equal(t, []byte("FloripaSat"), frame.Message)
}

func TestFrameSerialize(t *testing.T) {
	f := BeaconFormat()
	data := f.Assemble()[f.Preamble.Repeat:]
	frame, err := DecodeFrame(data, f.Layout())
	require.NoError(t, err)

	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, frame))
	assert.Equal(t, data, buf.Bytes())
}
