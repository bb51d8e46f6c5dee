package report

import (
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"

	"Framesync/pkg/layers"
	"Framesync/pkg/session"
)

const snaplen = 65536

// WritePcap writes every candidate's bytes as one pcap record with link type
// USER0. The record timestamp is the candidate's stream offset in
// microseconds, so capture tools keep stream order.
func WritePcap(w io.Writer, result *session.Result) error {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snaplen, layers.LinkTypeFrame); err != nil {
		return err
	}
	for _, r := range result.Records {
		data := r.Bits.Bytes()
		ci := gopacket.CaptureInfo{
			Timestamp:     time.Unix(0, 0).Add(time.Duration(r.Offset) * time.Microsecond),
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := pw.WritePacket(ci, data); err != nil {
			return err
		}
	}
	return nil
}
