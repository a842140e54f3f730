package schema

import (
	"time"

	"code.armistice.org/golang/pkg/wire"
)

const (
	tagSeconds = 0
	tagNanos   = 1
)

// Timestamp is a point in time as seconds and nanoseconds since the unix epoch.
type Timestamp struct {
	Seconds uint64
	Nanos   uint64
}

// NewTimestamp returns t as a Timestamp. Times before the epoch are clamped to the epoch.
func NewTimestamp(t time.Time) Timestamp {
	if t.Before(time.Unix(0, 0)) {
		return Timestamp{}
	}
	return Timestamp{Seconds: uint64(t.Unix()), Nanos: uint64(t.Nanosecond())}
}

// Time returns self as an UTC time.Time.
func (self Timestamp) Time() time.Time {
	return time.Unix(int64(self.Seconds), int64(self.Nanos)).UTC()
}

// Check errors if self is not a valid Timestamp.
func (self Timestamp) Check() error {
	if self.Nanos >= uint64(time.Second) {
		return newError(ErrInvalidTimestamp, "nanos %d not below 1e9", self.Nanos)
	}
	if self.Seconds > wire.MaxUInt64 {
		return newError(ErrInvalidTimestamp, "seconds %d out of range", self.Seconds)
	}
	return nil
}

func (self Timestamp) Encode(enc *wire.Encoder) error {
	err := self.Check()
	if nil != err {
		return err
	}
	err = enc.UInt64(tagSeconds, true, self.Seconds)
	if nil != err {
		return err
	}
	return enc.UInt64(tagNanos, true, self.Nanos)
}

func (self Timestamp) EncodedLen() int {
	return wire.UInt64Len(tagSeconds, self.Seconds) + wire.UInt64Len(tagNanos, self.Nanos)
}

var _ wire.Message = Timestamp{}

// DecodeTimestamp reads a Timestamp message.
func DecodeTimestamp(dec *wire.Decoder) (Timestamp, error) {
	var rv Timestamp
	_, err := dec.DecodeCriticalHeader(tagSeconds, wire.WireTypeUInt64)
	if nil != err {
		return rv, err
	}
	rv.Seconds, err = dec.DecodeUInt64()
	if nil != err {
		return rv, err
	}
	_, err = dec.DecodeCriticalHeader(tagNanos, wire.WireTypeUInt64)
	if nil != err {
		return rv, err
	}
	rv.Nanos, err = dec.DecodeUInt64()
	if nil != err {
		return rv, err
	}
	err = rv.Check()
	if nil != err {
		return rv, err
	}

	return rv, dec.Finish()
}
