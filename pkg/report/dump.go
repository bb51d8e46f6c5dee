package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/gopacket"

	"Framesync/pkg/layers"
	"Framesync/pkg/modem"
	"Framesync/pkg/session"
)

const (
	banner = "###################################"
	rule   = "----------------------------------"
)

func header(w io.Writer, title string) {
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "-- %s %s\n", title, strings.Repeat("-", max(len(banner)-len(title)-4, 0)))
	fmt.Fprintln(w, banner)
}

// ASCII renders b as a character when it is printable, otherwise "Non char".
func ASCII(b byte) string {
	if b >= 0x20 && b <= 0x7E {
		return string(rune(b))
	}
	return "Non char"
}

func bytesBits(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		sb.WriteString(modem.ByteBits(b))
	}
	return sb.String()
}

func messageText(msg []byte) string {
	for _, b := range msg {
		if b < 0x20 || b > 0x7E {
			return fmt.Sprint(msg)
		}
	}
	return string(msg)
}

// WriteExpected prints the packet the format describes.
func WriteExpected(w io.Writer, f *layers.PacketFormat) {
	crc := f.ExpectedCRC()
	header(w, "Expected Packet")
	fmt.Fprintf(w, "Format:\t\t%s (%s)\n", f.Name, f.Policy)
	fmt.Fprintf(w, "Preamble:\t%s\n", f.PreambleBits())
	fmt.Fprintf(w, "Sync. word:\t%s\n", bytesBits(f.SyncWord))
	fmt.Fprintf(w, "Address:\t%s\n", modem.ByteBits(f.Address))
	if len(f.Filler) > 0 {
		fmt.Fprintf(w, "Filler:\t\t%s\n", bytesBits(f.Filler))
	}
	fmt.Fprintf(w, "Message:\t%s\n", messageText(f.Message))
	fmt.Fprintf(w, "CRC16:\t\t%s (%d)\n", f.ExpectedCRCBits(), crc)
	fmt.Fprintf(w, "Total bytes:\t%d\n", f.PacketBits()/8)
	fmt.Fprintf(w, "Total bits:\t%d\n", f.PacketBits())
	fmt.Fprintln(w, banner)
}

func WriteBitStream(w io.Writer, stream *modem.BitSet) {
	fmt.Fprintln(w)
	header(w, "Output")
	fmt.Fprintln(w, stream)
	fmt.Fprintln(w, banner)
}

// WriteCandidates prints every candidate as a Binary/Hex/ASCII table, one
// row per 8-bit group, followed by its validation result.
func WriteCandidates(w io.Writer, result *session.Result) {
	fmt.Fprintln(w)
	header(w, "Packets (Bytes)")
	for _, r := range result.Records {
		fmt.Fprintln(w)
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, " Packet %d:\n", r.Index)
		fmt.Fprintln(w, rule)
		fmt.Fprintln(w, "Binary\t\tHex.\tASCII")
		fmt.Fprintln(w, rule)
		for pos := 0; pos+8 <= r.Bits.Len(); pos += 8 {
			b := r.Bits.Byte(pos)
			fmt.Fprintf(w, "%s\t%#x\t%s\n", modem.ByteBits(b), b, ASCII(b))
		}
		fmt.Fprintln(w, rule)
		if r.Valid {
			fmt.Fprintln(w, "Result: Valid")
		} else {
			fmt.Fprintln(w, "Result: Invalid")
		}
	}
	fmt.Fprintln(w, banner)
}

// WriteDissection prints each candidate decoded through the frame layer.
func WriteDissection(w io.Writer, result *session.Result) {
	layout := result.Format.Layout()
	fmt.Fprintln(w)
	header(w, "Dissection")
	for _, r := range result.Records {
		frame, err := layers.DecodeFrame(r.Bits.Bytes(), layout)
		if err != nil {
			fmt.Fprintf(w, "Packet %d: %v\n", r.Index, err)
			continue
		}
		fmt.Fprintf(w, "Packet %d: %s\n", r.Index, gopacket.LayerString(frame))
	}
	fmt.Fprintln(w, banner)
}

func WriteStatistics(w io.Writer, s session.Statistics) {
	fmt.Fprintln(w)
	header(w, "Statistics")
	fmt.Fprintf(w, "Number of symbols:\t\t%d\n", s.Symbols)
	if s.SkippedBytes > 0 {
		fmt.Fprintf(w, "Skipped bytes:\t\t\t%d\n", s.SkippedBytes)
	}
	fmt.Fprintf(w, "Number of packets:\t\t%d\n", s.Total)
	fmt.Fprintf(w, "Valid packets:\t\t\t%v\n", s.ValidIndices)
	fmt.Fprintf(w, "Number of valid packets:\t%d\n", s.ValidCount)
	fmt.Fprintf(w, "Number of lost packets:\t\t%d\n", s.LostCount)
	fmt.Fprintf(w, "Lost percentage:\t\t%g\n", s.LostPercentage)
	if s.ValidCount >= 2 {
		fmt.Fprintf(w, "Valid packet spacing:\t\t%.1f ± %.1f bits\n", s.SpacingMean, s.SpacingStdDev)
	}
	fmt.Fprintln(w, banner)
}
