package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"Framesync/pkg/layers"
	"Framesync/pkg/modem"
	"Framesync/pkg/session"
)

var ErrOutOfRange = errors.New("value out of range")

type Config struct {
	Format struct {
		Preset string `yaml:"preset"`
		Name   string `yaml:"name"`

		Preamble struct {
			Byte   *int `yaml:"byte"`
			Repeat *int `yaml:"repeat"`
		} `yaml:"preamble"`

		SyncWord     []int   `yaml:"sync_word"`
		Address      *int    `yaml:"address"`
		Filler       []int   `yaml:"filler"`
		Message      *string `yaml:"message"`
		MessageBytes []int   `yaml:"message_bytes"`

		CRC struct {
			Variant    string `yaml:"variant"`
			Polynomial *int   `yaml:"polynomial"`
			Seed       *int   `yaml:"seed"`
		} `yaml:"crc"`

		Policy string `yaml:"policy"`
	} `yaml:"format"`

	Session struct {
		Workers int `yaml:"workers"`
	} `yaml:"session"`

	Output struct {
		Expected   bool   `yaml:"expected"`
		Bits       bool   `yaml:"bits"`
		Packets    bool   `yaml:"packets"`
		Statistics bool   `yaml:"statistics"`
		Dissect    bool   `yaml:"dissect"`
		Stream     string `yaml:"stream"`
		Pcap       string `yaml:"pcap"`
		DB         string `yaml:"db"`
		Plot       string `yaml:"plot"`
	} `yaml:"output"`
}

// Default is the configuration used when no file is given: the TTC preset
// with the banner, per-packet table and statistics enabled.
func Default() *Config {
	var cfg Config
	cfg.Format.Preset = "ttc"
	cfg.Session.Workers = 1
	cfg.Output.Expected = true
	cfg.Output.Packets = true
	cfg.Output.Statistics = true
	return &cfg
}

// LoadConfig reads filename over Default, so absent keys keep their defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}

	return config, nil
}

func toByte(field string, v int) (byte, error) {
	if v < 0 || v > 0xFF {
		return 0, fmt.Errorf("%w: %s = %d, want 0..255", ErrOutOfRange, field, v)
	}
	return byte(v), nil
}

func toBytes(field string, vs []int) ([]byte, error) {
	out := make([]byte, len(vs))
	for i, v := range vs {
		b, err := toByte(fmt.Sprintf("%s[%d]", field, i), v)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func toUint16(field string, v int) (uint16, error) {
	if v < 0 || v > 0xFFFF {
		return 0, fmt.Errorf("%w: %s = %d, want 0..65535", ErrOutOfRange, field, v)
	}
	return uint16(v), nil
}

// BuildFormat starts from the configured preset and applies every field the
// file sets.
func BuildFormat(config *Config) (*layers.PacketFormat, error) {
	c := config.Format
	preset := c.Preset
	if preset == "" {
		preset = "ttc"
	}
	f, err := layers.Preset(preset)
	if err != nil {
		return nil, err
	}

	if c.Name != "" {
		f.Name = c.Name
	}
	if c.Preamble.Byte != nil {
		if f.Preamble.Byte, err = toByte("preamble.byte", *c.Preamble.Byte); err != nil {
			return nil, err
		}
	}
	if c.Preamble.Repeat != nil {
		f.Preamble.Repeat = *c.Preamble.Repeat
	}
	if c.SyncWord != nil {
		if f.SyncWord, err = toBytes("sync_word", c.SyncWord); err != nil {
			return nil, err
		}
	}
	if c.Address != nil {
		if f.Address, err = toByte("address", *c.Address); err != nil {
			return nil, err
		}
	}
	if c.Filler != nil {
		if f.Filler, err = toBytes("filler", c.Filler); err != nil {
			return nil, err
		}
	}

	switch {
	case c.Message != nil && c.MessageBytes != nil:
		return nil, fmt.Errorf("%w: message and message_bytes are both set", layers.ErrInvalidFormat)
	case c.Message != nil:
		f.Message = []byte(*c.Message)
	case c.MessageBytes != nil:
		if f.Message, err = toBytes("message_bytes", c.MessageBytes); err != nil {
			return nil, err
		}
	}

	if f.CRC, err = buildCRC(c.CRC.Variant, c.CRC.Polynomial, c.CRC.Seed, f.CRC); err != nil {
		return nil, err
	}

	if c.Policy != "" {
		if f.Policy, err = layers.ParsePolicy(c.Policy); err != nil {
			return nil, err
		}
	}

	if err := f.Check(); err != nil {
		return nil, err
	}
	return f, nil
}

func buildCRC(variant string, poly, seed *int, current modem.CRC16) (modem.CRC16, error) {
	if variant == "" && poly == nil && seed == nil {
		return current, nil
	}

	v := modem.CRCTable
	p, s := uint16(0x8005), uint16(0xFFFF)
	if t, ok := current.(modem.TableCRC16); ok {
		p, s = t.Poly, t.Init
	} else if _, ok := current.(modem.ReflectedCRC16); ok {
		v = modem.CRCReflected
	}

	var err error
	if variant != "" {
		if v, err = modem.ParseCRCVariant(variant); err != nil {
			return nil, err
		}
	}
	if poly != nil {
		if p, err = toUint16("crc.polynomial", *poly); err != nil {
			return nil, err
		}
	}
	if seed != nil {
		if s, err = toUint16("crc.seed", *seed); err != nil {
			return nil, err
		}
	}
	return modem.NewCRC16(v, p, s)
}

func BuildSession(config *Config) (*session.Session, error) {
	f, err := BuildFormat(config)
	if err != nil {
		return nil, err
	}
	return &session.Session{
		Format:  f,
		Workers: config.Session.Workers,
	}, nil
}
