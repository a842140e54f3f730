package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"code.armistice.org/golang/internal/config"
	"code.armistice.org/golang/internal/observability"
	"code.armistice.org/golang/internal/transport"
	"code.armistice.org/golang/pkg/armistice"
	"code.armistice.org/golang/pkg/rootkey"
	"code.armistice.org/golang/pkg/rootstore"
	"code.armistice.org/golang/pkg/rootstore/boltdb"
	"code.armistice.org/golang/pkg/rootstore/pgdb"
)

// newCore builds the token Core described by cfg.
func newCore(ctx context.Context, cfg config.Device) (*armistice.Core, error) {
	var anchor rootkey.TrustAnchor
	if len(cfg.DeviceSecret) > 0 {
		anchor = rootkey.StaticAnchor(cfg.DeviceSecret)
	} else {
		anchor = rootkey.FileAnchor{Path: cfg.AnchorFile, Create: true}
	}

	var store rootstore.Store
	var err error
	switch cfg.Store {
	case config.StoreBolt:
		store, err = boltdb.New(cfg.BoltPath, cfg.Device)
	case config.StorePG:
		store, err = newPgStore(ctx, cfg)
	default:
		// mem store, the token forgets its root when it stops
		return armistice.New(ctx, armistice.Config{Device: cfg.Device})
	}
	if nil != err {
		return nil, err
	}

	rk, err := rootkey.New(ctx, anchor, cfg.AEAD)
	if nil != err {
		return nil, err
	}

	return armistice.New(ctx, armistice.Config{RootKey: rk, Store: store, Device: cfg.Device})
}

// newPgStore opens the postgres store and creates its table when missing.
func newPgStore(ctx context.Context, cfg config.Device) (rootstore.Store, error) {
	store, err := pgdb.New(ctx, cfg.PgDSN, cfg.PgSchema, cfg.Device)
	if nil != err {
		return nil, err
	}
	err = pgdb.Migrate(ctx, store.DB, cfg.PgSchema)
	if nil != err {
		store.Close()
		return nil, err
	}
	observability.GetObservability(ctx).Log().Debug("postgres store ready", "schema", cfg.PgSchema)

	return store, nil
}

// serveTCP accepts connections on cfg.Listen and serves them one at a time.
func serveTCP(ctx context.Context, cfg config.Device, core *armistice.Core) error {
	log := observability.GetObservability(ctx).Log()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.Listen)
	if nil != err {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	log.Info("token listening", "mode", config.ModeTCP, "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if nil != err {
			if nil != ctx.Err() {
				return nil
			}
			return err
		}
		log.Debug("host connected", "remote", conn.RemoteAddr().String())
		tr := transport.PacketTransport{
			Transport: transport.RWTransport{R: conn, W: conn},
			MaxSize:   armistice.MaxPacketSize,
		}
		stop := context.AfterFunc(ctx, func() { conn.Close() })
		err = armistice.NewSession(core).Serve(ctx, tr)
		stop()
		conn.Close()
		if nil != err {
			log.Warn("host session failed", "remote", conn.RemoteAddr().String(), "error", err)
		}
	}
}

// serveHTTP serves the token packet & status endpoints on cfg.Listen.
func serveHTTP(ctx context.Context, cfg config.Device, core *armistice.Core) error {
	log := observability.GetObservability(ctx).Log()

	mw := observability.Middleware{TraceIdHeader: "X-Trace-Id", Device: cfg.Device}
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mw.Wrap(armistice.NewHttpHandler(armistice.NewSession(core))),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	log.Info("token listening", "mode", config.ModeHTTP, "addr", cfg.Listen)

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
