// Package config holds the host simulator's configuration.
package config

import (
	"encoding"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"pendant-go/charlie"
	"pendant-go/errcode"
)

// Config is the configuration for pendant-sim.
type Config struct {
	// Program is the program that ran before the simulated reset.
	Program uint8 `toml:"program" yaml:"program"`
	// Reset is the simulated reset cause: "power_on" or "external".
	Reset string `toml:"reset" yaml:"reset"`

	Scan      ScanConfig      `toml:"scan" yaml:"scan"`
	Port      PortConfig      `toml:"port" yaml:"port"`
	Telemetry TelemetryConfig `toml:"telemetry" yaml:"telemetry"`
	Preview   PreviewConfig   `toml:"preview" yaml:"preview"`
}

// ScanConfig is the tick loop.
type ScanConfig struct {
	TickHz   uint32   `toml:"tick_hz" yaml:"tick_hz"`
	Wake     Duration `toml:"wake" yaml:"wake"`
	MaxBatch int      `toml:"max_batch" yaml:"max_batch"`
}

// PortKind selects where pin writes go.
type PortKind string

const (
	// MemPort records writes in memory.
	MemPort PortKind = "mem"
	// PeriphPort drives real GPIO through periph.io.
	PeriphPort PortKind = "periph"
)

type PortConfig struct {
	Kind PortKind `toml:"kind" yaml:"kind"`
	// Pins are the periph pin names for A, B and C.
	Pins []string `toml:"pins" yaml:"pins"`
	// LogWrites bounds the register writes a mem port keeps.
	LogWrites int `toml:"log_writes" yaml:"log_writes"`
}

type TelemetryConfig struct {
	// Path receives wire packets. "-" is stdout, empty disables telemetry.
	Path string `toml:"path" yaml:"path"`
}

type PreviewConfig struct {
	// Addr is the preview HTTP listen address. Empty disables it.
	Addr string `toml:"addr" yaml:"addr"`
}

// Duration is a time.Duration written as text, e.g. "100us".
type Duration time.Duration

var (
	_ encoding.TextUnmarshaler = (*Duration)(nil)
	_ encoding.TextMarshaler   = (*Duration)(nil)
)

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Reset: charlie.ResetPowerOn.String(),
		Scan: ScanConfig{
			TickHz:   charlie.DefaultTickHz,
			MaxBatch: 64,
		},
		Port: PortConfig{
			Kind:      MemPort,
			LogWrites: 4096,
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, ok := charlie.ParseResetCause(c.Reset); !ok {
		return errors.Wrapf(errcode.InvalidParams, "unknown reset cause %q", c.Reset)
	}
	if c.Scan.TickHz == 0 {
		return errors.Wrap(errcode.InvalidParams, "scan.tick_hz must be > 0")
	}
	if c.Scan.Wake < 0 {
		return errors.Wrap(errcode.InvalidParams, "scan.wake must not be negative")
	}
	if c.Scan.MaxBatch < 1 {
		return errors.Wrap(errcode.InvalidParams, "scan.max_batch must be >= 1")
	}
	switch c.Port.Kind {
	case MemPort:
	case PeriphPort:
		if len(c.Port.Pins) != charlie.NumPins {
			return errors.Wrapf(errcode.InvalidParams, "port.pins needs %d names, got %d", charlie.NumPins, len(c.Port.Pins))
		}
	default:
		return errors.Wrapf(errcode.InvalidParams, "unknown port kind %q", c.Port.Kind)
	}
	return nil
}

// ResetCause returns the parsed reset cause. Call Validate first.
func (c *Config) ResetCause() charlie.ResetCause {
	r, _ := charlie.ParseResetCause(c.Reset)
	return r
}

// ParseTOML decodes TOML over the defaults.
func ParseTOML(r io.Reader) (*Config, error) {
	c := Default()
	if err := toml.NewDecoder(r).Decode(&c); err != nil {
		return nil, errors.Wrap(err, "decode toml")
	}
	return &c, nil
}

// ParseYAML decodes YAML over the defaults.
func ParseYAML(r io.Reader) (*Config, error) {
	c := Default()
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode yaml")
	}
	return &c, nil
}

// Load reads a .toml, .yaml or .yml file and validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	var c *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		c, err = ParseTOML(f)
	case ".yaml", ".yml":
		c, err = ParseYAML(f)
	default:
		return nil, errors.Wrapf(errcode.Unsupported, "config format %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}
