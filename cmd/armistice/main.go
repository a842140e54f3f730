package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"code.armistice.org/golang/internal/observability"
	"code.armistice.org/golang/internal/transport"
	"code.armistice.org/golang/internal/utils"
	"code.armistice.org/golang/pkg/client"
	"code.armistice.org/golang/pkg/schema"
)

const usageFmt = `
Command Usage: %s <provision|status> [Flags]
  Provision or inspect an Armistice token.

  provision  sends the root keys & threshold to an unprovisioned token
  status     prints the token root authority (http tokens only)

Flags:
------
`

const dialTimeout = 5 * time.Second

type Cmd struct {
	Action    string
	Token     *url.URL
	Threshold uint64
	Keys      []schema.PublicKey
	Options   client.ProvisionOptions
	LogLevel  string
}

func parseFlags(progname string, args []string) (*Cmd, error) {
	flags := pflag.NewFlagSet(progname, pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, usageFmt, path.Base(progname))
		flags.PrintDefaults()
	}

	token := flags.StringP("token", "t", "tcp://127.0.0.1:7450", `token address, tcp://host:port or http://host:port`)
	threshold := flags.Uint64P("threshold", "n", 1, `number of root key signatures required`)
	hexKeys := flags.StringArrayP("key", "k", nil, `hex encoded ed25519 root key, repeat for each key`)
	timestamp := flags.Bool("timestamp", false, `attach the current time to the provision request`)
	digest := flags.Bool("digest", true, `attach the digest of the provision request`)
	logLevel := flags.String("log-level", "warn", `one of debug, info, warn, error, off`)

	err := flags.Parse(args)
	if nil != err {
		return nil, err
	}
	if 1 != flags.NArg() {
		flags.Usage()
		return nil, fmt.Errorf("expected one action, got %d", flags.NArg())
	}

	cmd := Cmd{Action: flags.Arg(0), Threshold: *threshold, LogLevel: *logLevel}
	cmd.Token, err = url.Parse(*token)
	if nil != err {
		return nil, fmt.Errorf("invalid token address %q: %w", *token, err)
	}

	switch cmd.Action {
	case "provision":
		for _, hexKey := range *hexKeys {
			var raw utils.HexBinary
			err = raw.UnmarshalText([]byte(strings.TrimSpace(hexKey)))
			if nil != err {
				return nil, fmt.Errorf("invalid root key %q: %w", hexKey, err)
			}
			key, err := schema.NewEd25519PublicKey(raw)
			if nil != err {
				return nil, err
			}
			cmd.Keys = append(cmd.Keys, key)
		}
		if 0 == len(cmd.Keys) {
			return nil, fmt.Errorf("provision needs at least one --key")
		}
		cmd.Options.Digest = *digest
		if *timestamp {
			cmd.Options.Timestamp = time.Now()
		}
	case "status":
		if "http" != cmd.Token.Scheme && "https" != cmd.Token.Scheme {
			return nil, fmt.Errorf("status needs an http token address")
		}
	default:
		return nil, fmt.Errorf("unknown action %q", cmd.Action)
	}

	return &cmd, nil
}

func main() {
	cmd, err := parseFlags(os.Args[0], os.Args[1:])
	if nil != err {
		log.Fatalf("Invalid arguments, got error %v", err)
	}

	logger, err := observability.NewLogger(os.Stderr, cmd.LogLevel)
	if nil != err {
		log.Fatalf("Invalid log level, got error %v", err)
	}
	slog.SetDefault(logger)
	ctx := observability.WithLogger(context.Background(), logger)

	switch cmd.Action {
	case "provision":
		var id uuid.UUID
		id, err = provision(ctx, cmd)
		if nil == err {
			fmt.Println(id.String())
		}
	case "status":
		err = status(ctx, cmd, os.Stdout)
	}
	if nil != err {
		log.Fatalf("Failed %s, got error %v", cmd.Action, err)
	}
}

func provision(ctx context.Context, cmd *Cmd) (uuid.UUID, error) {
	tr, closer, err := dial(ctx, cmd.Token)
	if nil != err {
		return uuid.Nil, err
	}
	defer closer()

	cli := client.Client{Transport: tr}
	return cli.Provision(ctx, cmd.Threshold, cmd.Keys, cmd.Options)
}

// dial returns a Transport connected to the token at addr.
func dial(ctx context.Context, addr *url.URL) (transport.Transport, func(), error) {
	switch addr.Scheme {
	case "tcp":
		dialer := net.Dialer{Timeout: dialTimeout}
		conn, err := dialer.DialContext(ctx, "tcp", addr.Host)
		if nil != err {
			return nil, nil, err
		}
		tr := transport.RWTransport{R: conn, W: conn}
		return tr, func() { conn.Close() }, nil
	case "http", "https":
		tr, err := transport.NewHttpTransport(ctx, nil, addr.JoinPath("packet").String())
		if nil != err {
			return nil, nil, err
		}
		return tr, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported token scheme %q", addr.Scheme)
	}
}

func status(ctx context.Context, cmd *Cmd, out io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cmd.Token.JoinPath("status").String(), nil)
	if nil != err {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if nil != err {
		return err
	}
	defer resp.Body.Close()
	if http.StatusOK != resp.StatusCode {
		return fmt.Errorf("token replied with status %d", resp.StatusCode)
	}

	var body map[string]any
	err = json.NewDecoder(resp.Body).Decode(&body)
	if nil != err {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(body)
}
