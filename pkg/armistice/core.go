// Package armistice implements the request processing core of an Armistice token.
//
// A Core owns the device root authority. It decodes request packets, dispatches them and
// encodes the replies. Any failure turns into the fixed ErrorReply packet.
package armistice

import (
	"context"

	"github.com/google/uuid"

	"code.armistice.org/golang/internal/observability"
	"code.armistice.org/golang/internal/utils"
	"code.armistice.org/golang/pkg/root"
	"code.armistice.org/golang/pkg/rootkey"
	"code.armistice.org/golang/pkg/rootstore"
	"code.armistice.org/golang/pkg/schema"
)

// MaxPacketSize is the largest request or reply packet a Core exchanges.
const MaxPacketSize = 512

// ErrorReply is the packet sent back for any request that fails.
const ErrorReply = "ERROR"

// Config holds the collaborators of a Core.
type Config struct {
	// RootKey seals the root authority at rest. Required when Store is set.
	RootKey *rootkey.RootKey

	// Store keeps the sealed root authority. A nil Store keeps it in memory only.
	Store rootstore.Store

	// Device labels the token. It is bound to the sealed root authority.
	Device string
}

func (self Config) Check() error {
	if nil != self.Store && nil == self.RootKey {
		return newError(Error, "nil RootKey with non nil Store")
	}
	return nil
}

// sealAD returns the additional data bound to the sealed root authority.
func (self Config) sealAD() []byte {
	return []byte("armistice:root:" + self.Device)
}

// Core processes the requests received by a token.
// Core is not safe for concurrent use, it is owned by a single Session.
type Core struct {
	cfg       Config
	authority *root.Authority
}

// New returns a Core for cfg.
// If cfg.Store holds a sealed root authority, it is opened and restored, otherwise the
// Core starts unprovisioned.
func New(ctx context.Context, cfg Config) (*Core, error) {
	err := cfg.Check()
	if nil != err {
		return nil, wrapError(Error, err, "invalid Config")
	}

	log := observability.GetObservability(ctx).Log()
	rv := &Core{cfg: cfg, authority: root.New()}
	if nil == cfg.Store {
		log.Warn("no sealed state store, root authority will not survive restart")
		return rv, nil
	}

	sealed, found, err := cfg.Store.Load(ctx)
	if nil != err {
		return nil, wrapError(Error, err, "failed loading sealed root authority")
	}
	if !found {
		log.Info("unprovisioned device", "device", cfg.Device)
		return rv, nil
	}

	srz, err := cfg.RootKey.Open(sealed, cfg.sealAD())
	if nil != err {
		return nil, wrapError(Error, err, "failed opening sealed root authority")
	}
	rv.authority, err = root.Restore(srz)
	if nil != err {
		return nil, wrapError(Error, err, "failed restoring root authority")
	}
	id, _ := rv.authority.ID()
	log.Info("restored root authority", "device", cfg.Device, "uuid", id.String())

	return rv, nil
}

// IsProvisioned returns true if the Core root authority is provisioned.
func (self *Core) IsProvisioned() bool {
	return self.authority.IsProvisioned()
}

// ID returns the root identifier and true if the Core is provisioned.
func (self *Core) ID() (uuid.UUID, bool) {
	return self.authority.ID()
}

// Status describes the Core root authority.
type Status struct {
	Provisioned bool     `json:"provisioned"`
	Threshold   int      `json:"threshold"`
	Keys        []string `json:"keys"`
	UUID        string   `json:"uuid,omitempty"`
}

// Status returns a description of the root authority.
func (self *Core) Status() Status {
	rv := Status{
		Provisioned: self.authority.IsProvisioned(),
		Threshold:   self.authority.Threshold(),
		Keys:        []string{},
	}
	for _, key := range self.authority.PublicKeys() {
		rv.Keys = append(rv.Keys, key.Algorithm()+":"+utils.HexBinary(key.Bytes()).String())
	}
	if id, ok := self.authority.ID(); ok {
		rv.UUID = id.String()
	}
	return rv
}

// HandleRequest executes req and returns its Response.
//
// Root authority errors are returned unchanged. If the root authority is provisioned but
// could not be persisted, HandleRequest returns the Response together with an error
// wrapping ErrPersist.
func (self *Core) HandleRequest(ctx context.Context, req schema.Request) (schema.Response, error) {
	switch r := req.(type) {
	case schema.ProvisionRequest:
		return self.provision(ctx, r)
	default:
		return nil, newError(ErrUnsupportedRequest, "unsupported request type %T", req)
	}
}

func (self *Core) provision(ctx context.Context, req schema.ProvisionRequest) (schema.Response, error) {
	log := observability.GetObservability(ctx).Log()

	id, err := self.authority.Provision(req.RootKeyThreshold, req.RootKeys.Items())
	if nil != err {
		return nil, err
	}
	resp := schema.NewProvisionResponse(id)

	err = self.persist(ctx)
	if nil != err {
		log.Error("provisioned root authority was not persisted", "uuid", id.String(), "error", err)
		return resp, err
	}

	return resp, nil
}

func (self *Core) persist(ctx context.Context) error {
	if nil == self.cfg.Store {
		return nil
	}
	srz, err := self.authority.MarshalBinary()
	if nil != err {
		return wrapError(ErrPersist, err, "failed encoding root authority")
	}
	sealed, err := self.cfg.RootKey.Seal(srz, self.cfg.sealAD())
	if nil != err {
		return wrapError(ErrPersist, err, "failed sealing root authority")
	}
	err = self.cfg.Store.Save(ctx, sealed)
	return wrapError(ErrPersist, err, "failed saving sealed root authority") // nil if err is nil
}

// Process decodes packet, handles the Request it holds and returns the encoded Response.
// Process returns ErrorReply if any step fails.
func (self *Core) Process(ctx context.Context, packet []byte) []byte {
	reply, err := self.process(ctx, packet)
	if nil != err {
		observability.GetObservability(ctx).Log().Debug("failed processing packet", "error", err)
		return []byte(ErrorReply)
	}
	return reply
}

func (self *Core) process(ctx context.Context, packet []byte) ([]byte, error) {
	if len(packet) > MaxPacketSize {
		return nil, newError(ErrPacketSize, "received %d bytes", len(packet))
	}
	req, err := schema.DecodeRequest(packet)
	if nil != err {
		return nil, wrapError(Error, err, "failed decoding request")
	}
	resp, err := self.HandleRequest(ctx, req)
	if nil != err {
		return nil, err
	}
	buf := make([]byte, MaxPacketSize)
	return schema.MarshalResponse(resp, buf)
}
