// Package config loads the configuration of the armistice-device simulator.
//
// Configuration files are TOML or YAML, selected by file extension.
// Keys left out of a file keep their Default value.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"code.armistice.org/golang/internal/utils"
)

const (
	ModeTCP  = "tcp"
	ModeHTTP = "http"

	StoreMem  = "mem"
	StoreBolt = "bolt"
	StorePG   = "pg"
)

// Device configures a simulated token.
type Device struct {
	Listen   string `toml:"listen" yaml:"listen"`
	Mode     string `toml:"mode" yaml:"mode"`
	Store    string `toml:"store" yaml:"store"`
	BoltPath string `toml:"bolt_path" yaml:"bolt_path"`
	PgDSN    string `toml:"pg_dsn" yaml:"pg_dsn"`
	PgSchema string `toml:"pg_schema" yaml:"pg_schema"`
	Device   string `toml:"device" yaml:"device"`

	// AnchorFile holds the hex encoded device secret. It is created when missing.
	AnchorFile string `toml:"anchor_file" yaml:"anchor_file"`

	// DeviceSecret is used instead of AnchorFile when set.
	DeviceSecret utils.HexBinary `toml:"device_secret" yaml:"device_secret"`

	AEAD     string `toml:"aead" yaml:"aead"`
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// Default returns the Device configuration used when no file is given.
func Default() Device {
	return Device{
		Listen:     "127.0.0.1:7450",
		Mode:       ModeTCP,
		Store:      StoreMem,
		BoltPath:   "armistice.db",
		PgSchema:   "armistice",
		Device:     "armistice-0",
		AnchorFile: "armistice.secret",
		LogLevel:   "info",
	}
}

// Load reads the Device configuration in path.
// Files ending in .toml are TOML, files ending in .yaml or .yml are YAML.
func Load(path string) (Device, error) {
	cfg := Default()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		_, err := toml.DecodeFile(path, &cfg)
		if nil != err {
			return Device{}, wrapError(err, "failed decoding %s", path)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if nil != err {
			return Device{}, wrapError(err, "failed reading %s", path)
		}
		err = yaml.Unmarshal(data, &cfg)
		if nil != err {
			return Device{}, wrapError(err, "failed decoding %s", path)
		}
	default:
		return Device{}, newError(ErrInvalid, "unsupported config file extension %q", ext)
	}

	return cfg, cfg.Check()
}

// Check errors with ErrInvalid if the configuration can not start a device.
func (self Device) Check() error {
	if !slices.Contains([]string{ModeTCP, ModeHTTP}, self.Mode) {
		return newError(ErrInvalid, "unsupported mode %q", self.Mode)
	}
	if "" == strings.TrimSpace(self.Listen) {
		return newError(ErrInvalid, "empty listen address")
	}
	if "" == strings.TrimSpace(self.Device) {
		return newError(ErrInvalid, "empty device label")
	}

	switch self.Store {
	case StoreMem:
	case StoreBolt:
		if "" == self.BoltPath {
			return newError(ErrInvalid, "bolt store without bolt_path")
		}
	case StorePG:
		if "" == self.PgDSN {
			return newError(ErrInvalid, "pg store without pg_dsn")
		}
		if "" == strings.TrimSpace(self.PgSchema) {
			return newError(ErrInvalid, "pg store without pg_schema")
		}
	default:
		return newError(ErrInvalid, "unsupported store %q", self.Store)
	}

	if 0 == len(self.DeviceSecret) && "" == self.AnchorFile && StoreMem != self.Store {
		return newError(ErrInvalid, "persistent store without device secret")
	}
	return nil
}
