// Package protocols runs packet driven state machines over a transport.Transport.
package protocols

import (
	"context"
	"errors"

	"code.armistice.org/golang/internal/transport"
)

// StateFunc changes state S using incoming []byte message.
// It returns next StateFunc and a message to be forwarded to connected peer.
// To report protocol completion StateFunc returns an error wrapping protocols.OK.
type StateFunc[S any] func(context.Context, S, []byte) (StateFunc[S], []byte, error)

// ExitFunc is called at protocol completion using protocol run error status.
type ExitFunc[S any] func(S, error) error

// Fsm exposes protocol state S.
type Fsm[S any] interface {
	State() (S, StateFunc[S])
	SetState(sf StateFunc[S])
	ExitHandler() ExitFunc[S]
	SetExitHandler(ef ExitFunc[S])
	Initiator() bool
}

// Machine is a ready made Fsm that holds state S and the current StateFunc.
// Protocol implementations embed it.
type Machine[S any] struct {
	state     S
	sf        StateFunc[S]
	exh       ExitFunc[S]
	initiator bool
}

// NewMachine returns a Machine that starts in sf.
// An initiator Machine sends the first message of the protocol.
func NewMachine[S any](state S, sf StateFunc[S], initiator bool) *Machine[S] {
	return &Machine[S]{state: state, sf: sf, initiator: initiator}
}

func (self *Machine[S]) State() (S, StateFunc[S]) {
	return self.state, self.sf
}

func (self *Machine[S]) SetState(sf StateFunc[S]) {
	self.sf = sf
}

func (self *Machine[S]) ExitHandler() ExitFunc[S] {
	return self.exh
}

func (self *Machine[S]) SetExitHandler(ef ExitFunc[S]) {
	self.exh = ef
}

func (self *Machine[S]) Initiator() bool {
	return self.initiator
}

// Step feeds one message to the current StateFunc and moves the Machine to the next one.
// It returns the message to forward to the connected peer.
// Once the protocol has completed, Step errors without calling any StateFunc.
func (self *Machine[S]) Step(ctx context.Context, msg []byte) ([]byte, error) {
	if nil == self.sf {
		return nil, wrapError(OK, "protocol already completed")
	}
	next, reply, err := self.sf(ctx, self.state, msg)
	self.sf = next
	return reply, err
}

var _ Fsm[any] = &Machine[any]{}

// Run reads & writes messages from/to Transport and executes protocol until completion.
func Run[S any](ctx context.Context, fsm Fsm[S], tr transport.Transport) error {
	var err error
	s, sf := fsm.State()
	defer func() {
		fsm.SetState(sf)
		exh := fsm.ExitHandler()
		if nil != exh {
			state, _ := fsm.State()
			exh(state, err)
		}
	}()

	var msg []byte
	var errIO, errProto error
	if !fsm.Initiator() {
		msg, errIO = tr.ReadBytes()
		if nil != errIO {
			err = wrapError(errIO, "failed reading initial message")
			return err
		}
	}

	for {
		sf, msg, errProto = sf(ctx, s, msg)
		if nil != msg {
			errIO = tr.WriteBytes(msg)
			if nil != errIO {
				err = wrapError(errIO, "failed writing message")
				return err
			}
		}

		if nil == errProto {
			msg, errIO = tr.ReadBytes()
			if nil != errIO {
				err = wrapError(errIO, "failed reading message")
				return err
			}
		} else {
			if errors.Is(errProto, OK) {
				err = nil
				return err
			} else {
				err = wrapError(errProto, "failed state execution")
				return err
			}
		}
	}
}
