package armistice

import (
	"context"
	"errors"
	"io"
	"net"

	"code.armistice.org/golang/internal/observability"
	"code.armistice.org/golang/internal/transport"
	"code.armistice.org/golang/pkg/protocols"
)

type SessionStateFunc = protocols.StateFunc[*Session]

// Session feeds the packets read from a transport to a Core, one at a time.
//
// A Session is in the Unprovisioned state until a provision request succeeds,
// then it stays in the Provisioned state.
type Session struct {
	*protocols.Machine[*Session]
	core *Core
}

// NewSession returns a Session owning core.
func NewSession(core *Core) *Session {
	rv := &Session{core: core}
	var start SessionStateFunc = Unprovisioned
	if core.IsProvisioned() {
		start = Provisioned
	}
	rv.Machine = protocols.NewMachine[*Session](rv, start, false)
	return rv
}

// Core returns the Session Core.
func (self *Session) Core() *Core {
	return self.core
}

// Serve processes packets read from tr until tr is closed.
// A closed transport ends Serve without error.
func (self *Session) Serve(ctx context.Context, tr transport.Transport) error {
	err := protocols.Run[*Session](ctx, self, tr)
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}

// Unprovisioned accepts provision requests.
func Unprovisioned(ctx context.Context, self *Session, msg []byte) (SessionStateFunc, []byte, error) {
	reply := self.core.Process(ctx, msg)
	if !self.core.IsProvisioned() {
		return Unprovisioned, reply, nil
	}

	id, _ := self.core.ID()
	observability.GetObservability(ctx).Log().Info("root authority provisioned", "uuid", id.String())

	return Provisioned, reply, nil
}

// Provisioned answers requests of a provisioned device.
func Provisioned(ctx context.Context, self *Session, msg []byte) (SessionStateFunc, []byte, error) {
	return Provisioned, self.core.Process(ctx, msg), nil
}
