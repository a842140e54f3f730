package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestDefault(t *testing.T) {
	err := Default().Check()
	if nil != err {
		t.Fatalf("failed Default check, got error %v", err)
	}
}

func TestLoad(t *testing.T) {
	testcases := []struct {
		name    string
		content string
	}{
		{
			name: "device.toml",
			content: `
mode = "http"
listen = "127.0.0.1:9000"
store = "bolt"
bolt_path = "/tmp/root.db"
device_secret = "000102030405060708090a0b0c0d0e0f"
`,
		},
		{
			name: "device.yaml",
			content: `
mode: http
listen: 127.0.0.1:9000
store: bolt
bolt_path: /tmp/root.db
device_secret: "000102030405060708090a0b0c0d0e0f"
`,
		},
	}

	expectedSecret := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.name)
			err := os.WriteFile(path, []byte(tc.content), 0600)
			if nil != err {
				t.Fatalf("failed writing config, got error %v", err)
			}

			cfg, err := Load(path)
			if nil != err {
				t.Fatalf("failed Load, got error %v", err)
			}
			if ModeHTTP != cfg.Mode || "127.0.0.1:9000" != cfg.Listen || StoreBolt != cfg.Store {
				t.Errorf("failed loaded values control, got %+v", cfg)
			}
			if !slices.Equal(expectedSecret, cfg.DeviceSecret) {
				t.Errorf("failed device_secret control, got %s", cfg.DeviceSecret)
			}
			// unset keys keep their default
			if Default().Device != cfg.Device || Default().LogLevel != cfg.LogLevel {
				t.Errorf("failed default values control, got %+v", cfg)
			}
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	testcases := []struct {
		name    string
		content string
	}{
		{name: "mode.toml", content: `mode = "usb"`},
		{name: "store.toml", content: `store = "s3"`},
		{name: "pg.yml", content: "store: pg\n"},
		{name: "pg_schema.toml", content: "store = \"pg\"\npg_dsn = \"host=localhost\"\npg_schema = \"\"\n"},
		{name: "device.json", content: `{}`},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.name)
			err := os.WriteFile(path, []byte(tc.content), 0600)
			if nil != err {
				t.Fatalf("failed writing config, got error %v", err)
			}
			_, err = Load(path)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.toml")
	err := os.WriteFile(path, []byte(`device_secret = "not hex"`), 0600)
	if nil != err {
		t.Fatalf("failed writing config, got error %v", err)
	}
	_, err = Load(path)
	if nil == err || errors.Is(err, ErrInvalid) {
		t.Errorf("expected decoding error, got %v", err)
	}
}
