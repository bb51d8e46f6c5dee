package main

import (
	"flag"
	"log"
	"os"

	"Framesync/cmd/framesync/config"
	"Framesync/internel/store"
	"Framesync/internel/utils"
	"Framesync/pkg/modem"
	"Framesync/pkg/report"
	"Framesync/pkg/session"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	format := flag.String("format", "", "packet format preset (ttc, beacon)")
	workers := flag.Int("workers", 0, "synchronizer goroutines (1 scans sequentially)")
	bits := flag.Bool("bits", false, "print the decoded bit stream")
	packets := flag.Bool("packets", true, "print every candidate as a Binary/Hex/ASCII table")
	dissect := flag.Bool("dissect", false, "print every candidate decoded field by field")
	quiet := flag.Bool("quiet", false, "print only the statistics")
	stream := flag.String("stream", "", "write the decoded bit stream to this file")
	pcap := flag.String("pcap", "", "write candidates to this pcap file")
	db := flag.String("db", "", "store the run in this SQLite database")
	plot := flag.String("plot", "", "save a validity plot to this image file")
	debug := flag.Bool("debug", false, "trace decoder and synchronizer")
	flag.Parse()

	path := "bin_data.bin"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			log.Fatalf("[Scan] failed to load config: %v", err)
		}
	}

	// explicitly set flags win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format.Preset = *format
		case "workers":
			cfg.Session.Workers = *workers
		case "bits":
			cfg.Output.Bits = *bits
		case "packets":
			cfg.Output.Packets = *packets
		case "dissect":
			cfg.Output.Dissect = *dissect
		case "stream":
			cfg.Output.Stream = *stream
		case "pcap":
			cfg.Output.Pcap = *pcap
		case "db":
			cfg.Output.DB = *db
		case "plot":
			cfg.Output.Plot = *plot
		}
	})
	if *quiet {
		cfg.Output.Expected = false
		cfg.Output.Bits = false
		cfg.Output.Packets = false
		cfg.Output.Dissect = false
		cfg.Output.Statistics = true
	}
	modem.Debug = *debug

	s, err := config.BuildSession(cfg)
	if err != nil {
		log.Fatalf("[Scan] invalid format: %v", err)
	}

	raw, err := utils.ReadCapture(path)
	if err != nil {
		log.Fatalf("[Scan] %v", err)
	}

	if cfg.Output.Expected {
		report.WriteExpected(os.Stdout, s.Format)
	}

	result, err := s.Run(raw)
	if err != nil {
		log.Fatalf("[Scan] %v", err)
	}

	if cfg.Output.Bits {
		report.WriteBitStream(os.Stdout, result.Stream)
	}
	if cfg.Output.Packets {
		report.WriteCandidates(os.Stdout, result)
	}
	if cfg.Output.Dissect {
		report.WriteDissection(os.Stdout, result)
	}
	if cfg.Output.Statistics {
		report.WriteStatistics(os.Stdout, result.Statistics)
	}

	if cfg.Output.Stream != "" {
		if err := utils.WriteText(cfg.Output.Stream, result.Stream.String()); err != nil {
			log.Fatalf("[Scan] %v", err)
		}
	}

	if cfg.Output.Pcap != "" {
		if err := writePcap(cfg.Output.Pcap, result); err != nil {
			log.Fatalf("[Scan] failed to write pcap: %v", err)
		}
		log.Printf("[Scan] wrote %d candidates to %s\n", len(result.Records), cfg.Output.Pcap)
	}

	if cfg.Output.Plot != "" {
		if err := report.SavePlot(cfg.Output.Plot, result); err != nil {
			log.Fatalf("[Scan] failed to save plot: %v", err)
		}
	}

	if cfg.Output.DB != "" {
		d, err := store.Open(cfg.Output.DB)
		if err != nil {
			log.Fatalf("[Store] %v", err)
		}
		defer d.Close()
		if err := d.SaveRun(result); err != nil {
			log.Fatalf("[Store] %v", err)
		}
		log.Printf("[Store] saved run %s\n", result.RunID)
	}
}

func writePcap(path string, result *session.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WritePcap(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
