package client

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"code.armistice.org/golang/internal/transport"
	"code.armistice.org/golang/pkg/armistice"
	"code.armistice.org/golang/pkg/root"
	"code.armistice.org/golang/pkg/schema"
	"code.armistice.org/golang/pkg/wire"
)

func TestProvisionRoundTrip(t *testing.T) {
	ctx := context.Background()
	cli := newDeviceClient(t)
	keys := newKeys(t, 3)

	opts := ProvisionOptions{Timestamp: time.Now(), Digest: true}
	id, err := cli.Provision(ctx, 2, keys, opts)
	require.NoError(t, err)

	rootKeys, err := wire.VecOf[schema.PublicKey, wire.Cap8](keys...)
	require.NoError(t, err)
	expected, err := root.Identifier(2, rootKeys)
	require.NoError(t, err)
	require.Equal(t, expected, id)

	_, err = cli.Provision(ctx, 2, keys, ProvisionOptions{})
	require.ErrorIs(t, err, ErrDevice)
}

func TestProvisionRejected(t *testing.T) {
	ctx := context.Background()
	cli := newDeviceClient(t)

	_, err := cli.Provision(ctx, 2, newKeys(t, 1), ProvisionOptions{})
	require.ErrorIs(t, err, ErrDevice)

	// too many keys never leave the host
	_, err = cli.Provision(ctx, 1, newKeys(t, 9), ProvisionOptions{})
	require.ErrorIs(t, err, ErrEncoding)
	require.ErrorIs(t, err, wire.ErrCapacity)
}

func TestSendRequestTransportFailure(t *testing.T) {
	buf := new(bytes.Buffer)
	tr := transport.NewLimitTransport(transport.RWTransport{R: buf, W: buf})
	tr.SetWriteLimit(1)
	cli := Client{Transport: tr}

	req, err := schema.NewProvisionRequest(1, newKeys(t, 1)...)
	require.NoError(t, err)
	_, err = cli.SendRequest(context.Background(), req)
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, transport.WriteLimitError)
}

func TestSendRequestInvalidReply(t *testing.T) {
	testcases := []struct {
		name  string
		reply []byte
	}{
		{name: "garbage", reply: []byte{0xFF, 0x01}},
		{name: "empty", reply: []byte{}},
		{name: "request echo", reply: mustMarshalRequest(t)},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			cli := Client{Transport: &replyTransport{reply: tc.reply}}
			req, err := schema.NewProvisionRequest(1, newKeys(t, 1)...)
			require.NoError(t, err)

			_, err = cli.SendRequest(context.Background(), req)
			require.ErrorIs(t, err, ErrEncoding)
			require.False(t, errors.Is(err, ErrDevice))
		})
	}
}

// replyTransport answers every packet with reply.
type replyTransport struct {
	reply []byte
}

func (self *replyTransport) ReadBytes() ([]byte, error) {
	return self.reply, nil
}

func (self *replyTransport) WriteBytes(_ []byte) error {
	return nil
}

// newDeviceClient returns a Client connected through a net.Pipe to an in memory token.
func newDeviceClient(t *testing.T) Client {
	ctx := context.Background()
	core, err := armistice.New(ctx, armistice.Config{Device: "test"})
	require.NoError(t, err)
	session := armistice.NewSession(core)

	hostConn, deviceConn := net.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- session.Serve(ctx, transport.RWTransport{R: deviceConn, W: deviceConn})
	}()
	t.Cleanup(func() {
		hostConn.Close()
		require.NoError(t, <-done)
	})

	tr := transport.PacketTransport{
		Transport: transport.RWTransport{R: hostConn, W: hostConn},
		MaxSize:   armistice.MaxPacketSize,
	}
	return Client{Transport: tr}
}

func newKeys(t *testing.T, count int) []schema.PublicKey {
	keys := make([]schema.PublicKey, count)
	for pos := range keys {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		key, err := schema.NewEd25519PublicKey(pub)
		require.NoError(t, err)
		keys[pos] = key
	}
	return keys
}

func mustMarshalRequest(t *testing.T) []byte {
	req, err := schema.NewProvisionRequest(1, newKeys(t, 1)...)
	require.NoError(t, err)
	packet, err := schema.MarshalRequest(req)
	require.NoError(t, err)
	return packet
}
