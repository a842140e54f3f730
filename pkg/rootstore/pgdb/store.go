// Package pgdb provides a rootstore.Store backed by a postgres database.
package pgdb

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"code.armistice.org/golang/internal/observability"
	"code.armistice.org/golang/pkg/rootstore"
)

// PGDB is implemented by pgx.Tx, pgx.Conn & pgxpool.Pool
// accessing a postgres database through this common interface simplifies testing
type PGDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SealedRootStore keeps the sealed root of Device in the sealed_root table.
type SealedRootStore struct {
	DB     PGDB
	Device string
}

//go:embed sealed_root_schema.sql
var schemaScriptTpl string

// Migrate creates the dbschema schema and its sealed_root table if they do not exist.
// It is safe to run on every start.
func Migrate(ctx context.Context, db PGDB, dbschema string) error {
	if "" == dbschema {
		return newError(rootstore.Error, "empty db schema")
	}
	schemaName := pgx.Identifier{dbschema}.Sanitize()
	schemaScript := strings.ReplaceAll(schemaScriptTpl, "${schema_name}", schemaName)

	_, err := db.Exec(ctx, schemaScript)

	return wrapError(err, "failed db schema initialization") // nil if err is nil...
}

// New returns a SealedRootStore that connects to dsn through a connection pool.
// If dbschema is not empty, pool connections use it as search_path.
func New(ctx context.Context, dsn string, dbschema string, device string) (*SealedRootStore, error) {
	if "" == device {
		return nil, newError(rootstore.Error, "empty device label")
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if nil != err {
		return nil, wrapError(err, "invalid dsn")
	}
	if "" != dbschema {
		poolCfg.ConnConfig.RuntimeParams["search_path"] = pgx.Identifier{dbschema}.Sanitize()
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if nil != err {
		return nil, wrapError(err, "failed connection pool creation")
	}

	return &SealedRootStore{DB: pool, Device: device}, nil
}

// Close releases the store connection pool, if any.
func (self *SealedRootStore) Close() {
	if pool, ok := self.DB.(*pgxpool.Pool); ok {
		pool.Close()
	}
}

// Load returns the sealed root of the store Device.
func (self *SealedRootStore) Load(ctx context.Context) ([]byte, bool, error) {
	var sealed []byte
	err := self.DB.QueryRow(
		ctx,
		`SELECT sealed FROM sealed_root WHERE device_id = $1`,
		self.Device,
	).Scan(&sealed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if nil != err {
		return nil, false, wrapError(err, "failed loading sealed root")
	}
	if nil == sealed {
		sealed = []byte{}
	}

	return sealed, true, nil
}

// Save inserts sealed. It errors with rootstore.ErrAlreadyStored if a row exists for the store Device.
func (self *SealedRootStore) Save(ctx context.Context, sealed []byte) error {
	if nil == sealed {
		sealed = []byte{}
	}
	tag, err := self.DB.Exec(
		ctx,
		`INSERT INTO sealed_root(device_id, sealed) VALUES ($1, $2)
		 ON CONFLICT (device_id) DO NOTHING`,
		self.Device,
		sealed,
	)
	if nil != err {
		return wrapError(err, "failed saving sealed root")
	}
	if 0 == tag.RowsAffected() {
		return newError(rootstore.ErrAlreadyStored, "device %q root already stored", self.Device)
	}
	observability.GetObservability(ctx).Log().Debug("saved sealed root", "device", self.Device)

	return nil
}

var _ rootstore.Store = &SealedRootStore{}
