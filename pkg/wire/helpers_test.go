package wire

import (
	"slices"
)

type point struct {
	X uint64
	Y uint64
}

func (self point) Encode(enc *Encoder) error {
	err := enc.UInt64(0, true, self.X)
	if nil != err {
		return err
	}
	return enc.UInt64(1, false, self.Y)
}

func (self point) EncodedLen() int {
	return UInt64Len(0, self.X) + UInt64Len(1, self.Y)
}

func decodePoint(dec *Decoder) (point, error) {
	var rv point
	_, err := dec.DecodeExpectedHeader(0, WireTypeUInt64)
	if nil != err {
		return rv, err
	}
	rv.X, err = dec.DecodeUInt64()
	if nil != err {
		return rv, err
	}
	_, err = dec.DecodeExpectedHeader(1, WireTypeUInt64)
	if nil != err {
		return rv, err
	}
	rv.Y, err = dec.DecodeUInt64()
	return rv, err
}

type sample struct {
	Count  uint64
	Blob   []byte
	Label  string
	Origin point
	Path   []point
	Marks  []uint64
}

func (self sample) pathMessages() []Message {
	msgs := make([]Message, 0, len(self.Path))
	for _, p := range self.Path {
		msgs = append(msgs, p)
	}
	return msgs
}

func (self sample) Encode(enc *Encoder) error {
	var err error
	if err = enc.UInt64(0, true, self.Count); nil != err {
		return err
	}
	if err = enc.Bytes(1, true, self.Blob); nil != err {
		return err
	}
	if err = enc.String(2, false, self.Label); nil != err {
		return err
	}
	if err = enc.Message(3, true, self.Origin); nil != err {
		return err
	}
	if err = enc.MessageSeq(4, true, self.pathMessages()...); nil != err {
		return err
	}
	return enc.UInt64Seq(5, false, self.Marks...)
}

func (self sample) EncodedLen() int {
	return UInt64Len(0, self.Count) +
		BytesLen(1, len(self.Blob)) +
		StringLen(2, self.Label) +
		MessageLen(3, self.Origin) +
		MessageSeqLen(4, self.pathMessages()...) +
		UInt64SeqLen(5, self.Marks...)
}

func decodeSample(dec *Decoder) (sample, error) {
	var rv sample
	var err error

	if _, err = dec.DecodeExpectedHeader(0, WireTypeUInt64); nil != err {
		return rv, err
	}
	if rv.Count, err = dec.DecodeUInt64(); nil != err {
		return rv, err
	}

	if _, err = dec.DecodeExpectedHeader(1, WireTypeBytes); nil != err {
		return rv, err
	}
	blob, err := dec.DecodeBytes(64)
	if nil != err {
		return rv, err
	}
	rv.Blob = slices.Clone(blob)

	if _, err = dec.DecodeExpectedHeader(2, WireTypeString); nil != err {
		return rv, err
	}
	if rv.Label, err = dec.DecodeString(32); nil != err {
		return rv, err
	}

	if _, err = dec.DecodeExpectedHeader(3, WireTypeMessage); nil != err {
		return rv, err
	}
	sub, err := dec.DecodeMessage()
	if nil != err {
		return rv, err
	}
	if rv.Origin, err = decodePoint(sub); nil != err {
		return rv, err
	}
	if err = sub.Finish(); nil != err {
		return rv, err
	}

	if _, err = dec.DecodeExpectedHeader(4, WireTypeSequence); nil != err {
		return rv, err
	}
	seq, err := dec.DecodeSequence(WireTypeMessage)
	if nil != err {
		return rv, err
	}
	for seq.More() {
		sub, err = seq.DecodeMessage()
		if nil != err {
			return rv, err
		}
		p, err := decodePoint(sub)
		if nil != err {
			return rv, err
		}
		if err = sub.Finish(); nil != err {
			return rv, err
		}
		rv.Path = append(rv.Path, p)
	}

	if _, err = dec.DecodeExpectedHeader(5, WireTypeSequence); nil != err {
		return rv, err
	}
	seq, err = dec.DecodeSequence(WireTypeUInt64)
	if nil != err {
		return rv, err
	}
	for seq.More() {
		v, err := seq.DecodeUInt64()
		if nil != err {
			return rv, err
		}
		rv.Marks = append(rv.Marks, v)
	}

	return rv, nil
}

func newSample() sample {
	return sample{
		Count:  300,
		Blob:   []byte{0xde, 0xad, 0xbe, 0xef},
		Label:  "armistice",
		Origin: point{X: 1, Y: 2},
		Path:   []point{{X: 3, Y: 4}, {X: 1 << 40, Y: 0}},
		Marks:  []uint64{0, 127, 128, MaxUInt64},
	}
}
