package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"unicode"

	"github.com/spf13/pflag"

	"code.armistice.org/golang/internal/config"
	"code.armistice.org/golang/internal/observability"
	"code.armistice.org/golang/pkg/rootkey"
)

const usageFmt = `
Command Usage: %s [Flags]
  Run a simulated Armistice token.

Flags:
------
`

type Cmd struct {
	Cfg config.Device
}

func parseFlags(progname string, args []string) (*Cmd, error) {
	flags := pflag.NewFlagSet(progname, pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, usageFmt, path.Base(progname))
		flags.PrintDefaults()
	}

	defaults := config.Default()
	cfgPath := flags.StringP("config", "c", "", `TOML or YAML configuration file`)
	listen := flags.StringP("listen", "l", defaults.Listen, `address the token listens on`)
	mode := flags.String("mode", defaults.Mode, `transport, one of tcp, http`)
	store := flags.String("store", defaults.Store, `sealed root store, one of mem, bolt, pg`)
	boltPath := flags.String("bolt-path", defaults.BoltPath, `bolt database path`)
	pgDSN := flags.String("pg-dsn", "", `postgres connection string`)
	pgSchema := flags.String("pg-schema", defaults.PgSchema, `postgres schema holding the sealed_root table, created when missing`)
	device := flags.String("device", defaults.Device, `device label`)
	anchorFile := flags.String("anchor-file", defaults.AnchorFile, `device secret file, created when missing`)
	const aeadDoc = `
	AEAD sealing the root authority at rest.
	One of %+v, defaults to %s.
	`
	aead := flags.String("aead", "", dedent(fmt.Sprintf(aeadDoc, rootkey.Algorithms(), rootkey.DefaultAEAD)))
	logLevel := flags.String("log-level", defaults.LogLevel, `one of debug, info, warn, error, off`)

	err := flags.Parse(args)
	if nil != err {
		return nil, err
	}

	cmd := Cmd{Cfg: defaults}
	if "" != *cfgPath {
		cmd.Cfg, err = config.Load(*cfgPath)
		if nil != err {
			return nil, err
		}
	}

	// flags override the configuration file
	overrides := []struct {
		name string
		dst  *string
		src  *string
	}{
		{"listen", &cmd.Cfg.Listen, listen},
		{"mode", &cmd.Cfg.Mode, mode},
		{"store", &cmd.Cfg.Store, store},
		{"bolt-path", &cmd.Cfg.BoltPath, boltPath},
		{"pg-dsn", &cmd.Cfg.PgDSN, pgDSN},
		{"pg-schema", &cmd.Cfg.PgSchema, pgSchema},
		{"device", &cmd.Cfg.Device, device},
		{"anchor-file", &cmd.Cfg.AnchorFile, anchorFile},
		{"aead", &cmd.Cfg.AEAD, aead},
		{"log-level", &cmd.Cfg.LogLevel, logLevel},
	}
	for _, o := range overrides {
		if flags.Changed(o.name) {
			*o.dst = *o.src
		}
	}

	return &cmd, cmd.Cfg.Check()
}

func main() {
	cmd, err := parseFlags(os.Args[0], os.Args[1:])
	if nil != err {
		log.Fatalf("Invalid configuration, got error %v", err)
	}

	logger, err := observability.NewLogger(os.Stderr, cmd.Cfg.LogLevel)
	if nil != err {
		log.Fatalf("Invalid log level, got error %v", err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = observability.WithLogger(ctx, logger.With("device", cmd.Cfg.Device))

	core, err := newCore(ctx, cmd.Cfg)
	if nil != err {
		log.Fatalf("Failed starting token, got error %v", err)
	}

	switch cmd.Cfg.Mode {
	case config.ModeHTTP:
		err = serveHTTP(ctx, cmd.Cfg, core)
	default:
		err = serveTCP(ctx, cmd.Cfg, core)
	}
	if nil != err {
		log.Fatalf("Token stopped, got error %v", err)
	}
}

func dedent(multilines string) string {
	var sb strings.Builder
	for line := range strings.Lines(strings.TrimRightFunc(multilines, unicode.IsSpace)) {
		sb.WriteString(strings.TrimLeftFunc(line, unicode.IsSpace))
	}
	return sb.String()
}
