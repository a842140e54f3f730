package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"code.armistice.org/golang/internal/config"
	"code.armistice.org/golang/pkg/rootstore/pgdb"
	"code.armistice.org/golang/pkg/schema"
)

func TestParseFlags(t *testing.T) {
	cmd, err := parseFlags("armistice-device", []string{"--mode", "http", "-l", "127.0.0.1:0", "--store", "bolt"})
	if nil != err {
		t.Fatalf("failed parseFlags, got error %v", err)
	}
	if config.ModeHTTP != cmd.Cfg.Mode || "127.0.0.1:0" != cmd.Cfg.Listen || config.StoreBolt != cmd.Cfg.Store {
		t.Errorf("failed flag values control, got %+v", cmd.Cfg)
	}
	if config.Default().Device != cmd.Cfg.Device {
		t.Errorf("failed default values control, got %+v", cmd.Cfg)
	}

	_, err = parseFlags("armistice-device", []string{"--mode", "usb"})
	if nil == err {
		t.Error("invalid mode accepted")
	}
}

func TestNewCoreBoltRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store = config.StoreBolt
	cfg.BoltPath = filepath.Join(dir, "root.db")
	cfg.AnchorFile = filepath.Join(dir, "device.secret")

	core, err := newCore(ctx, cfg)
	if nil != err {
		t.Fatalf("failed newCore, got error %v", err)
	}
	req, err := schema.NewProvisionRequest(1, schema.Ed25519PublicKey{0x01})
	if nil != err {
		t.Fatalf("failed NewProvisionRequest, got error %v", err)
	}
	_, err = core.HandleRequest(ctx, req)
	if nil != err {
		t.Fatalf("failed HandleRequest, got error %v", err)
	}
	id, _ := core.ID()

	restarted, err := newCore(ctx, cfg)
	if nil != err {
		t.Fatalf("failed newCore after restart, got error %v", err)
	}
	restartedId, ok := restarted.ID()
	if !ok || id != restartedId {
		t.Errorf("failed restart control, got %s %v", restartedId, ok)
	}

	// another device secret can not open the sealed root
	cfg.AnchorFile = filepath.Join(dir, "other.secret")
	_, err = newCore(ctx, cfg)
	if nil == err {
		t.Error("sealed root opened with another device secret")
	}
}

func TestNewCoreMem(t *testing.T) {
	core, err := newCore(context.Background(), config.Default())
	if nil != err {
		t.Fatalf("failed newCore, got error %v", err)
	}
	if core.IsProvisioned() {
		t.Error("fresh mem core is provisioned")
	}
}

func TestParseFlagsPgSchema(t *testing.T) {
	cmd, err := parseFlags("armistice-device", []string{"--store", "pg", "--pg-dsn", "host=localhost"})
	if nil != err {
		t.Fatalf("failed parseFlags, got error %v", err)
	}
	if config.Default().PgSchema != cmd.Cfg.PgSchema {
		t.Errorf("failed default pg schema control, got %q", cmd.Cfg.PgSchema)
	}

	cmd, err = parseFlags("armistice-device", []string{"--store", "pg", "--pg-dsn", "host=localhost", "--pg-schema", "tokens"})
	if nil != err {
		t.Fatalf("failed parseFlags, got error %v", err)
	}
	if "tokens" != cmd.Cfg.PgSchema {
		t.Errorf("failed pg schema flag control, got %q", cmd.Cfg.PgSchema)
	}
}

// TestNewCorePgFreshSchema needs ARMISTICE_TEST_DSN, see pkg/rootstore/pgdb.
func TestNewCorePgFreshSchema(t *testing.T) {
	dsn := os.Getenv("ARMISTICE_TEST_DSN")
	if "" == dsn {
		t.Skip("ARMISTICE_TEST_DSN not set")
	}
	ctx := context.Background()
	cfg := config.Default()
	cfg.Store = config.StorePG
	cfg.PgDSN = dsn
	cfg.PgSchema = "armistice_device_test"
	cfg.AnchorFile = filepath.Join(t.TempDir(), "device.secret")

	cleanup := func() {
		store, err := pgdb.New(ctx, dsn, "", cfg.Device)
		if nil != err {
			return
		}
		defer store.Close()
		store.DB.Exec(ctx, "DROP SCHEMA IF EXISTS armistice_device_test CASCADE")
	}
	cleanup()
	t.Cleanup(cleanup)

	core, err := newCore(ctx, cfg)
	if nil != err {
		t.Fatalf("failed newCore on a fresh schema, got error %v", err)
	}
	req, err := schema.NewProvisionRequest(1, schema.Ed25519PublicKey{0x02})
	if nil != err {
		t.Fatalf("failed NewProvisionRequest, got error %v", err)
	}
	_, err = core.HandleRequest(ctx, req)
	if nil != err {
		t.Fatalf("failed HandleRequest, got error %v", err)
	}
}
