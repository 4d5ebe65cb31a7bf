package stream

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/rabbitstream-io/rabbitstream/pkg/rsproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBroker speaks just enough of the protocol to take a client
// through the handshake and a few requests.
type fakeBroker struct {
	ln net.Listener
}

func startFakeBroker(t *testing.T) *fakeBroker {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	b := &fakeBroker{ln: ln}
	go b.acceptLoop()
	t.Cleanup(func() {
		_ = ln.Close()
	})
	return b
}

func (b *fakeBroker) addr() string {
	return b.ln.Addr().String()
}

func (b *fakeBroker) acceptLoop() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		go b.serve(conn)
	}
}

func (b *fakeBroker) reply(conn net.Conn, build func(enc *rsproto.Encoder)) {
	enc := rsproto.NewEncoder()
	defer enc.End()
	build(enc)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(enc.Len()))
	_, _ = conn.Write(lenBuf[:])
	_, _ = conn.Write(enc.Bytes())
}

func (b *fakeBroker) serve(conn net.Conn) {
	defer conn.Close()
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
			return
		}
		payload := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}

		dec := rsproto.NewDecoder(payload)
		key, _ := dec.Uint16()
		_, _ = dec.Uint16() // version

		switch key {
		case rsproto.CommandPeerProperties:
			corr, _ := dec.Uint32()
			b.reply(conn, func(enc *rsproto.Encoder) {
				enc.WriteUint16(rsproto.CommandPeerProperties | rsproto.ResponseFlag)
				enc.WriteUint16(rsproto.Version1)
				enc.WriteUint32(corr)
				enc.WriteUint16(uint16(rsproto.ResponseCodeOk))
				enc.WriteInt32(1)
				enc.WriteString("product")
				enc.WriteString("fake-broker")
			})
		case rsproto.CommandSaslHandshake:
			corr, _ := dec.Uint32()
			b.reply(conn, func(enc *rsproto.Encoder) {
				enc.WriteUint16(rsproto.CommandSaslHandshake | rsproto.ResponseFlag)
				enc.WriteUint16(rsproto.Version1)
				enc.WriteUint32(corr)
				enc.WriteUint16(uint16(rsproto.ResponseCodeOk))
				enc.WriteInt32(1)
				enc.WriteString("PLAIN")
			})
		case rsproto.CommandSaslAuthenticate:
			corr, _ := dec.Uint32()
			b.reply(conn, func(enc *rsproto.Encoder) {
				enc.WriteUint16(rsproto.CommandSaslAuthenticate | rsproto.ResponseFlag)
				enc.WriteUint16(rsproto.Version1)
				enc.WriteUint32(corr)
				enc.WriteUint16(uint16(rsproto.ResponseCodeOk))
			})
			// the broker opens tune negotiation on its own
			b.reply(conn, func(enc *rsproto.Encoder) {
				enc.WriteUint16(rsproto.CommandTune)
				enc.WriteUint16(rsproto.Version1)
				enc.WriteUint32(2 * 1048576)
				enc.WriteUint32(60)
			})
		case rsproto.CommandTune:
			// client's tune reply, nothing to answer
		case rsproto.CommandOpen:
			corr, _ := dec.Uint32()
			b.reply(conn, func(enc *rsproto.Encoder) {
				enc.WriteUint16(rsproto.CommandOpen | rsproto.ResponseFlag)
				enc.WriteUint16(rsproto.Version1)
				enc.WriteUint32(corr)
				enc.WriteUint16(uint16(rsproto.ResponseCodeOk))
				enc.WriteInt32(1)
				enc.WriteString("advertised_host")
				enc.WriteString("localhost")
			})
		case rsproto.CommandCreate:
			corr, _ := dec.Uint32()
			b.reply(conn, func(enc *rsproto.Encoder) {
				enc.WriteUint16(rsproto.CommandCreate | rsproto.ResponseFlag)
				enc.WriteUint16(rsproto.Version1)
				enc.WriteUint32(corr)
				enc.WriteUint16(uint16(rsproto.ResponseCodeOk))
			})
		case rsproto.CommandDelete:
			corr, _ := dec.Uint32()
			b.reply(conn, func(enc *rsproto.Encoder) {
				enc.WriteUint16(rsproto.CommandDelete | rsproto.ResponseFlag)
				enc.WriteUint16(rsproto.Version1)
				enc.WriteUint32(corr)
				enc.WriteUint16(uint16(rsproto.ResponseCodeStreamDoesNotExist))
			})
		case rsproto.CommandStreamStats:
			corr, _ := dec.Uint32()
			b.reply(conn, func(enc *rsproto.Encoder) {
				enc.WriteUint16(rsproto.CommandStreamStats | rsproto.ResponseFlag)
				enc.WriteUint16(rsproto.Version1)
				enc.WriteUint32(corr)
				enc.WriteUint16(uint16(rsproto.ResponseCodeOk))
				enc.WriteInt32(1)
				enc.WriteString("committed_chunk_id")
				enc.WriteInt64(4711)
			})
		case rsproto.CommandQueryOffset:
			corr, _ := dec.Uint32()
			b.reply(conn, func(enc *rsproto.Encoder) {
				enc.WriteUint16(rsproto.CommandQueryOffset | rsproto.ResponseFlag)
				enc.WriteUint16(rsproto.Version1)
				enc.WriteUint32(corr)
				enc.WriteUint16(uint16(rsproto.ResponseCodeNoOffset))
				enc.WriteUint64(0)
			})
		case rsproto.CommandRoute:
			corr, _ := dec.Uint32()
			b.reply(conn, func(enc *rsproto.Encoder) {
				enc.WriteUint16(rsproto.CommandRoute | rsproto.ResponseFlag)
				enc.WriteUint16(rsproto.Version1)
				enc.WriteUint32(corr)
				enc.WriteUint16(uint16(rsproto.ResponseCodeOk))
				enc.WriteInt32(1)
				enc.WriteString("invoices-0")
			})
		case rsproto.CommandClose:
			corr, _ := dec.Uint32()
			b.reply(conn, func(enc *rsproto.Encoder) {
				enc.WriteUint16(rsproto.CommandClose | rsproto.ResponseFlag)
				enc.WriteUint16(rsproto.Version1)
				enc.WriteUint32(corr)
				enc.WriteUint16(uint16(rsproto.ResponseCodeOk))
			})
			return
		default:
			// heartbeat, store offset, credit: nothing to answer
		}
	}
}

func TestDialHandshakeAndRequests(t *testing.T) {
	broker := startFakeBroker(t)

	client, err := Dial(broker.addr(),
		WithCredentials("guest", "guest"),
		WithVhost("/"),
		WithRequestTimeout(2*time.Second),
	)
	require.NoError(t, err)

	assert.Equal(t, "fake-broker", client.BrokerProperties()["product"])
	assert.Equal(t, "localhost", client.BrokerProperties()["advertised_host"])
	// client maximum wins against the broker's bigger offer
	assert.Equal(t, uint32(1048576), client.Tune().FrameMax)
	assert.Equal(t, uint32(60), client.Tune().Heartbeat)

	ctx := context.Background()

	require.NoError(t, client.CreateStream(ctx, "invoices", map[string]string{"max-age": "24h"}))

	err = client.DeleteStream(ctx, "missing")
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, rsproto.ResponseCodeStreamDoesNotExist, respErr.Code)

	stats, err := client.StreamStats(ctx, "invoices")
	require.NoError(t, err)
	assert.Equal(t, int64(4711), stats["committed_chunk_id"])

	offset, err := client.QueryOffset(ctx, "app-1", "invoices")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), offset)

	streams, err := client.Route(ctx, "se", "invoices")
	require.NoError(t, err)
	assert.Equal(t, []string{"invoices-0"}, streams)

	// second lookup comes from the cache, the broker only sees one Route
	streams, err = client.Route(ctx, "se", "invoices")
	require.NoError(t, err)
	assert.Equal(t, []string{"invoices-0"}, streams)

	require.NoError(t, client.Close(ctx))
	assert.Equal(t, true, client.IsClosed())
}

func TestDialRefusedEndpoint(t *testing.T) {
	_, err := Dial("127.0.0.1:1", WithConnectTimeout(200*time.Millisecond))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
