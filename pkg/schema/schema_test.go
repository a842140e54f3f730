package schema

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"code.armistice.org/golang/pkg/wire"
)

func newKey(t *testing.T) Ed25519PublicKey {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	key, err := NewEd25519PublicKey(pub)
	require.NoError(t, err)
	return key
}

func newKeys(t *testing.T, count int) []PublicKey {
	keys := make([]PublicKey, count)
	for pos := range keys {
		keys[pos] = newKey(t)
	}
	return keys
}

func TestPublicKeyEncoding(t *testing.T) {
	var key Ed25519PublicKey
	for pos := range key {
		key[pos] = byte(pos)
	}
	srz, err := wire.Marshal(key)
	require.NoError(t, err)
	require.Len(t, srz, 34)
	require.Equal(t, []byte{0x0C, 0x20}, srz[:2])

	out, err := wire.Unmarshal(srz, DecodePublicKey)
	require.NoError(t, err)
	require.Equal(t, PublicKey(key), out)
	require.Equal(t, "ed25519", out.Algorithm())
	require.Equal(t, ed25519.PublicKey(key[:]), key.Ed25519())
}

func TestPublicKeyInvalid(t *testing.T) {
	enc := wire.NewEncoder(make([]byte, 64))
	require.NoError(t, enc.Bytes(0, true, make([]byte, 31)))
	_, err := wire.Unmarshal(enc.Finish(), DecodePublicKey)
	require.ErrorIs(t, err, wire.ErrMalformedElement)

	enc = wire.NewEncoder(make([]byte, 64))
	require.NoError(t, enc.Bytes(1, true, make([]byte, 32)))
	_, err = wire.Unmarshal(enc.Finish(), DecodePublicKey)
	require.ErrorIs(t, err, wire.ErrUnexpectedFieldHeader)

	_, err = NewEd25519PublicKey(make([]byte, 33))
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestProvisionRequestRoundTrip(t *testing.T) {
	ts := NewTimestamp(time.Date(2026, 10, 18, 12, 30, 0, 500, time.UTC))
	testcases := []struct {
		name   string
		keys   int
		ts     *Timestamp
		digest bool
	}{
		{name: "one-key", keys: 1},
		{name: "eight-keys", keys: 8},
		{name: "no-keys", keys: 0},
		{name: "timestamp", keys: 3, ts: &ts},
		{name: "digest", keys: 3, digest: true},
		{name: "timestamp-digest", keys: 5, ts: &ts, digest: true},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := NewProvisionRequest(2, newKeys(t, tc.keys)...)
			require.NoError(t, err)
			req.Timestamp = tc.ts
			if tc.digest {
				req, err = req.WithDigest()
				require.NoError(t, err)
			}

			srz, err := MarshalRequest(req)
			require.NoError(t, err)
			out, err := DecodeRequest(srz)
			require.NoError(t, err)
			require.Equal(t, Request(req), out)
		})
	}
}

func TestProvisionRequestCapacity(t *testing.T) {
	_, err := NewProvisionRequest(1, newKeys(t, 9)...)
	require.ErrorIs(t, err, wire.ErrCapacity)

	// encode 9 keys bypassing the bounded collection
	keys := newKeys(t, 9)
	msgs := make([]wire.Message, len(keys))
	for pos, key := range keys {
		msgs[pos] = key
	}
	enc := wire.NewEncoder(make([]byte, 512))
	require.NoError(t, enc.UInt64(0, true, 1))
	require.NoError(t, enc.MessageSeq(1, true, msgs...))

	_, err = wire.Unmarshal(enc.Finish(), DecodeProvisionRequest)
	require.ErrorIs(t, err, wire.ErrCapacity)

	// 8 keys decode
	enc = wire.NewEncoder(make([]byte, 512))
	require.NoError(t, enc.UInt64(0, true, 1))
	require.NoError(t, enc.MessageSeq(1, true, msgs[:8]...))
	req, err := wire.Unmarshal(enc.Finish(), DecodeProvisionRequest)
	require.NoError(t, err)
	require.Equal(t, 8, req.RootKeys.Len())
}

func TestProvisionRequestDigest(t *testing.T) {
	req, err := NewProvisionRequest(2, newKeys(t, 3)...)
	require.NoError(t, err)
	req, err = req.WithDigest()
	require.NoError(t, err)

	// recomputing over the decoded fields gives the carried digest
	srz, err := wire.Marshal(req)
	require.NoError(t, err)
	dec := wire.NewDecoder(srz)
	out, err := DecodeProvisionRequest(dec)
	require.NoError(t, err)
	require.NotNil(t, out.Digest)
	recomputed, err := out.ComputeDigest()
	require.NoError(t, err)
	require.Equal(t, *out.Digest, recomputed)
	require.Equal(t, recomputed, dec.Digest())

	// flipping one bit of the threshold breaks the binding
	tampered := req
	tampered.RootKeyThreshold ^= 1
	srz, err = wire.Marshal(tampered)
	require.NoError(t, err)
	_, err = wire.Unmarshal(srz, DecodeProvisionRequest)
	require.ErrorIs(t, err, wire.ErrDigestMismatch)

	// flipping one bit of a key breaks the binding
	srz, err = wire.Marshal(req)
	require.NoError(t, err)
	srz[10] ^= 0x01
	_, err = wire.Unmarshal(srz, DecodeProvisionRequest)
	require.ErrorIs(t, err, wire.ErrDigestMismatch)
}

func TestProvisionRequestUnknownField(t *testing.T) {
	req, err := NewProvisionRequest(1, newKeys(t, 1)...)
	require.NoError(t, err)
	buf := make([]byte, 512)
	enc := wire.NewEncoder(buf)
	require.NoError(t, req.Encode(enc))
	require.NoError(t, enc.UInt64(7, false, 1))

	_, err = wire.Unmarshal(enc.Finish(), DecodeProvisionRequest)
	require.ErrorIs(t, err, wire.ErrUnexpectedFieldHeader)
}

func TestProvisionRequestCriticalBit(t *testing.T) {
	keys := newKeys(t, 2)
	msgs := make([]wire.Message, len(keys))
	for pos, key := range keys {
		msgs[pos] = key
	}

	// a threshold sent without the critical bit would escape the digest
	enc := wire.NewEncoder(make([]byte, 512))
	require.NoError(t, enc.UInt64(tagRootKeyThreshold, false, 1))
	require.NoError(t, enc.MessageSeq(tagRootKeys, true, msgs...))
	digest := enc.Digest()
	require.NoError(t, enc.Bytes(tagDigest, false, digest[:]))
	_, err := wire.Unmarshal(enc.Finish(), DecodeProvisionRequest)
	require.ErrorIs(t, err, wire.ErrUnexpectedFieldHeader)

	enc = wire.NewEncoder(make([]byte, 512))
	require.NoError(t, enc.UInt64(tagRootKeyThreshold, true, 1))
	require.NoError(t, enc.MessageSeq(tagRootKeys, false, msgs...))
	_, err = wire.Unmarshal(enc.Finish(), DecodeProvisionRequest)
	require.ErrorIs(t, err, wire.ErrUnexpectedFieldHeader)

	// the digest itself is never critical
	enc = wire.NewEncoder(make([]byte, 512))
	require.NoError(t, enc.UInt64(tagRootKeyThreshold, true, 1))
	require.NoError(t, enc.MessageSeq(tagRootKeys, true, msgs...))
	digest = enc.Digest()
	require.NoError(t, enc.Bytes(tagDigest, true, digest[:]))
	_, err = wire.Unmarshal(enc.Finish(), DecodeProvisionRequest)
	require.ErrorIs(t, err, wire.ErrUnexpectedFieldHeader)

	enc = wire.NewEncoder(make([]byte, 64))
	require.NoError(t, enc.Bytes(tagEd25519, false, keys[0].(Ed25519PublicKey).Ed25519()))
	_, err = wire.Unmarshal(enc.Finish(), DecodePublicKey)
	require.ErrorIs(t, err, wire.ErrUnexpectedFieldHeader)

	req, err := NewProvisionRequest(1, keys...)
	require.NoError(t, err)
	enc = wire.NewEncoder(make([]byte, 512))
	require.NoError(t, enc.Message(requestTagProvision, false, req))
	_, err = wire.Unmarshal(enc.Finish(), DecodeRequestFrom)
	require.ErrorIs(t, err, wire.ErrUnexpectedFieldHeader)
}

func TestTimestamp(t *testing.T) {
	now := time.Now().UTC()
	ts := NewTimestamp(now)
	require.True(t, now.Equal(ts.Time()))

	out, err := wire.Unmarshal(mustMarshal(t, ts), DecodeTimestamp)
	require.NoError(t, err)
	require.Equal(t, ts, out)

	require.Equal(t, Timestamp{}, NewTimestamp(time.Unix(-10, 0)))

	bad := Timestamp{Seconds: 1, Nanos: uint64(time.Second)}
	require.ErrorIs(t, bad.Check(), ErrInvalidTimestamp)
	enc := wire.NewEncoder(make([]byte, 32))
	require.NoError(t, enc.UInt64(0, true, bad.Seconds))
	require.NoError(t, enc.UInt64(1, true, bad.Nanos))
	_, err = wire.Unmarshal(enc.Finish(), DecodeTimestamp)
	require.ErrorIs(t, err, ErrInvalidTimestamp)
}

func mustMarshal(t *testing.T, msg wire.Message) []byte {
	srz, err := wire.Marshal(msg)
	require.NoError(t, err)
	return srz
}

func TestProvisionResponse(t *testing.T) {
	id := uuid.New()
	resp := NewProvisionResponse(id)
	require.Len(t, resp.UUID, 36)

	buf := make([]byte, 512)
	srz, err := MarshalResponse(resp, buf)
	require.NoError(t, err)
	out, err := DecodeResponse(srz)
	require.NoError(t, err)
	require.Equal(t, Response(resp), out)

	outId, err := out.(ProvisionResponse).ID()
	require.NoError(t, err)
	require.Equal(t, id, outId)
}

func TestProvisionResponseInvalid(t *testing.T) {
	testcases := []string{
		"",
		"not-a-uuid-not-a-uuid-not-a-uuid-xx",
		"0f8fad5b-d9cb-469f-a165-70867728950E",
		"{0f8fad5b-d9cb-469f-a165-70867728950e}",
	}
	for _, tc := range testcases {
		enc := wire.NewEncoder(make([]byte, 64))
		require.NoError(t, enc.String(0, true, tc))
		_, err := wire.Unmarshal(enc.Finish(), DecodeProvisionResponse)
		require.Error(t, err, "accepted %q", tc)
	}

	_, err := wire.Marshal(ProvisionResponse{UUID: "short"})
	require.ErrorIs(t, err, ErrInvalidUUID)
}

func TestEnvelope(t *testing.T) {
	req, err := NewProvisionRequest(1, newKeys(t, 1)...)
	require.NoError(t, err)
	srz, err := MarshalRequest(req)
	require.NoError(t, err)

	// tag 0, message, critical
	require.Equal(t, byte(0x0E), srz[0])

	_, err = DecodeRequest(append(srz, 0x02, 0x00))
	require.ErrorIs(t, err, wire.ErrTrailingData)

	// unknown request variant
	enc := wire.NewEncoder(make([]byte, 512))
	require.NoError(t, enc.Message(5, true, req))
	_, err = DecodeRequest(enc.Finish())
	require.ErrorIs(t, err, wire.ErrUnexpectedFieldHeader)

	_, err = MarshalRequest(nil)
	require.ErrorIs(t, err, ErrUnknownVariant)
}
