package layers

import (
	"errors"
	"fmt"

	"github.com/google/gopacket"
	gplayers "github.com/google/gopacket/layers"
)

var ErrFrameTruncated = errors.New("frame truncated")

// LinkTypeFrame is LINKTYPE_USER0, used when candidates are written to pcap.
const LinkTypeFrame = gplayers.LinkType(147)

var LayerTypeFrame = gopacket.RegisterLayerType(2701, gopacket.LayerTypeMetadata{
	Name:    "Frame",
	Decoder: TTCFormat().Layout().Decoder(),
})

// FrameLayout holds the variable field sizes of a packet format.
type FrameLayout struct {
	SyncLen    int
	FillerLen  int
	MessageLen int
}

// Len is the frame length in bytes, preamble excluded.
func (l FrameLayout) Len() int {
	return l.SyncLen + 1 + l.FillerLen + l.MessageLen + 2
}

// Decoder decodes a candidate's bytes as a Frame with this layout.
func (l FrameLayout) Decoder() gopacket.Decoder {
	return gopacket.DecodeFunc(func(data []byte, p gopacket.PacketBuilder) error {
		f := &Frame{Layout: l}
		if err := f.DecodeFromBytes(data, p); err != nil {
			return err
		}
		p.AddLayer(f)
		return nil
	})
}

// Frame is a candidate dissected into its fields. It implements
// gopacket.Layer and gopacket.DecodingLayer.
type Frame struct {
	gplayers.BaseLayer
	Layout   FrameLayout
	SyncWord []byte
	Address  uint8
	Filler   []byte
	Message  []byte
	CRC      uint16
}

func (f *Frame) LayerType() gopacket.LayerType {
	return LayerTypeFrame
}

func (f *Frame) CanDecode() gopacket.LayerClass {
	return LayerTypeFrame
}

func (f *Frame) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

func (f *Frame) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	l := f.Layout
	if len(data) < l.Len() {
		df.SetTruncated()
		return fmt.Errorf("%w: %d bytes, layout needs %d", ErrFrameTruncated, len(data), l.Len())
	}

	i := 0
	f.SyncWord = data[i : i+l.SyncLen]
	i += l.SyncLen
	f.Address = data[i]
	i++
	f.Filler = data[i : i+l.FillerLen]
	i += l.FillerLen
	f.Message = data[i : i+l.MessageLen]
	i += l.MessageLen
	f.CRC = uint16(data[i])<<8 | uint16(data[i+1])
	i += 2

	f.Contents = data[:i]
	f.Payload = data[i:]
	return nil
}

// SerializeTo writes the frame fields back out in wire order.
func (f *Frame) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	n := len(f.SyncWord) + 1 + len(f.Filler) + len(f.Message) + 2
	bytes, err := b.PrependBytes(n)
	if err != nil {
		return err
	}
	i := copy(bytes, f.SyncWord)
	bytes[i] = f.Address
	i++
	i += copy(bytes[i:], f.Filler)
	i += copy(bytes[i:], f.Message)
	bytes[i] = byte(f.CRC >> 8)
	bytes[i+1] = byte(f.CRC)
	return nil
}

// DecodeFrame dissects the bytes of a candidate with layout l.
func DecodeFrame(data []byte, l FrameLayout) (*Frame, error) {
	packet := gopacket.NewPacket(data, l.Decoder(), gopacket.NoCopy)
	if err := packet.ErrorLayer(); err != nil {
		return nil, err.Error()
	}
	frame, ok := packet.Layer(LayerTypeFrame).(*Frame)
	if !ok {
		return nil, fmt.Errorf("no frame layer in %d bytes", len(data))
	}
	return frame, nil
}
