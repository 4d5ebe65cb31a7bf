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

func newTestDispatcher(t *testing.T, opts *Options) (*Dispatcher, *Connection, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	d := NewDispatcher(opts)
	c := newConnection(client, "pipe", d.OnFrame, nil, opts)
	d.Bind(c)
	t.Cleanup(func() {
		d.Shutdown()
		_ = c.Close()
		_ = server.Close()
	})
	return d, c, server
}

// readFrame pulls one length-prefixed frame off the server side.
func readFrame(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	var lenBuf [4]byte
	_, err := io.ReadFull(conn, lenBuf[:])
	require.NoError(t, err)
	payload := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
	_, err = io.ReadFull(conn, payload)
	require.NoError(t, err)
	return payload
}

// sendFrame writes one frame, the builder emits everything after the
// length prefix.
func sendFrame(t *testing.T, conn net.Conn, build func(enc *rsproto.Encoder)) {
	t.Helper()
	enc := rsproto.NewEncoder()
	defer enc.End()
	build(enc)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(enc.Len()))
	_, err := conn.Write(lenBuf[:])
	require.NoError(t, err)
	_, err = conn.Write(enc.Bytes())
	require.NoError(t, err)
}

func TestRequestResponse(t *testing.T) {
	d, _, server := newTestDispatcher(t, NewOptions())

	go func() {
		frame := readFrame(t, server)
		dec := rsproto.NewDecoder(frame)
		key, _ := dec.Uint16()
		_, _ = dec.Uint16() // version
		corr, _ := dec.Uint32()
		assert.Equal(t, rsproto.CommandStreamStats, key)

		sendFrame(t, server, func(enc *rsproto.Encoder) {
			enc.WriteUint16(rsproto.CommandStreamStats | rsproto.ResponseFlag)
			enc.WriteUint16(rsproto.Version1)
			enc.WriteUint32(corr)
			enc.WriteUint16(uint16(rsproto.ResponseCodeOk))
			enc.WriteInt32(1)
			enc.WriteString("committed_chunk_id")
			enc.WriteInt64(99)
		})
	}()

	resp, err := d.Request(context.Background(), rsproto.NewStreamStats("orders"))
	require.NoError(t, err)
	stats := resp.(*rsproto.StreamStatsResponse)
	assert.Equal(t, rsproto.ResponseCodeOk, stats.ResponseCode())
	assert.Equal(t, int64(99), stats.Stats["committed_chunk_id"])
}

func TestResponseWithoutWaiterDropped(t *testing.T) {
	_, c, server := newTestDispatcher(t, NewOptions())

	go sendFrame(t, server, func(enc *rsproto.Encoder) {
		enc.WriteUint16(rsproto.CommandDelete | rsproto.ResponseFlag)
		enc.WriteUint16(rsproto.Version1)
		enc.WriteUint32(999)
		enc.WriteUint16(uint16(rsproto.ResponseCodeOk))
	})

	require.Eventually(t, func() bool {
		return c.NumFrames() == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, false, c.IsClosed())
}

func TestUnknownCommandDropped(t *testing.T) {
	_, c, server := newTestDispatcher(t, NewOptions())

	go func() {
		sendFrame(t, server, func(enc *rsproto.Encoder) {
			enc.WriteUint16(0x7777)
			enc.WriteUint16(rsproto.Version1)
			enc.WriteUint32(12345)
		})
		// the connection must survive the unknown key
		sendFrame(t, server, func(enc *rsproto.Encoder) {
			enc.WriteUint16(rsproto.CommandHeartbeat)
			enc.WriteUint16(rsproto.Version1)
		})
	}()

	require.Eventually(t, func() bool {
		return c.NumFrames() == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, false, c.IsClosed())
}

func TestTuneNegotiation(t *testing.T) {
	opts := NewOptions()
	opts.FrameMax = 1048576
	opts.Heartbeat = 60
	d, c, server := newTestDispatcher(t, opts)

	tuneReply := make(chan *rsproto.Tune, 1)
	go func() {
		// broker offers bigger limits, the client must shrink them
		sendFrame(t, server, func(enc *rsproto.Encoder) {
			enc.WriteUint16(rsproto.CommandTune)
			enc.WriteUint16(rsproto.Version1)
			enc.WriteUint32(4 * 1048576)
			enc.WriteUint32(120)
		})
		frame := readFrame(t, server)
		dec := rsproto.NewDecoder(frame)
		key, _ := dec.Uint16()
		assert.Equal(t, rsproto.CommandTune, key)
		_, _ = dec.Uint16()
		frameMax, _ := dec.Uint32()
		heartbeat, _ := dec.Uint32()
		tuneReply <- rsproto.NewTune(frameMax, heartbeat)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	tune, err := d.AwaitTune(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1048576), tune.FrameMax)
	assert.Equal(t, uint32(60), tune.Heartbeat)

	select {
	case reply := <-tuneReply:
		assert.Equal(t, uint32(1048576), reply.FrameMax)
		assert.Equal(t, uint32(60), reply.Heartbeat)
	case <-time.After(2 * time.Second):
		t.Fatal("no tune reply on the wire")
	}
	assert.Equal(t, uint32(1048576), c.frameMax.Load())
}

func TestPushHandlers(t *testing.T) {
	d, c, server := newTestDispatcher(t, NewOptions())

	confirms := make(chan *rsproto.PublishConfirm, 1)
	delivers := make(chan *rsproto.Deliver, 1)
	updates := make(chan *rsproto.MetadataUpdate, 1)
	d.SetHandlers(PushHandlers{
		OnPublishConfirm: func(p *rsproto.PublishConfirm) { confirms <- p },
		OnDeliver:        func(dl *rsproto.Deliver) { delivers <- dl },
		OnMetadataUpdate: func(u *rsproto.MetadataUpdate) { updates <- u },
	})

	go func() {
		sendFrame(t, server, func(enc *rsproto.Encoder) {
			enc.WriteUint16(rsproto.CommandPublishConfirm)
			enc.WriteUint16(rsproto.Version1)
			enc.WriteUint8(1)
			enc.WriteInt32(2)
			enc.WriteUint64(7)
			enc.WriteUint64(8)
		})
		sendFrame(t, server, func(enc *rsproto.Encoder) {
			enc.WriteUint16(rsproto.CommandDeliver)
			enc.WriteUint16(rsproto.Version1)
			enc.WriteUint8(5)
			enc.WriteRaw([]byte{0xCA, 0xFE})
		})
		sendFrame(t, server, func(enc *rsproto.Encoder) {
			enc.WriteUint16(rsproto.CommandMetadataUpdate)
			enc.WriteUint16(rsproto.Version1)
			enc.WriteUint16(uint16(rsproto.ResponseCodeStreamNotAvailable))
			enc.WriteString("orders")
		})
	}()

	select {
	case confirm := <-confirms:
		assert.Equal(t, uint8(1), confirm.PublisherId)
		assert.Equal(t, []uint64{7, 8}, confirm.PublishingIds)
	case <-time.After(2 * time.Second):
		t.Fatal("no publish confirm")
	}
	select {
	case deliver := <-delivers:
		assert.Equal(t, uint8(5), deliver.SubscriptionId)
		assert.Equal(t, []byte{0xCA, 0xFE}, deliver.Chunk)
	case <-time.After(2 * time.Second):
		t.Fatal("no deliver")
	}
	select {
	case update := <-updates:
		assert.Equal(t, "orders", update.Stream)
	case <-time.After(2 * time.Second):
		t.Fatal("no metadata update")
	}
	assert.Equal(t, uint64(3), c.NumFrames())
}

func TestRequestTimeout(t *testing.T) {
	opts := NewOptions()
	opts.RequestTimeout = 50 * time.Millisecond
	d, _, server := newTestDispatcher(t, opts)

	// drain the request but never answer
	go func() {
		_ = readFrame(t, server)
	}()

	_, err := d.Request(context.Background(), rsproto.NewStreamStats("orders"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHeartbeatTimeoutClosesConnection(t *testing.T) {
	d, c, server := newTestDispatcher(t, NewOptions())

	// keep the pipe drained so the close sequence never blocks
	go func() {
		buf := make([]byte, 256)
		for {
			if _, err := server.Read(buf); err != nil {
				return
			}
		}
	}()

	d.heartbeatInterval.Store(1)
	d.lastActivity.Store(time.Now().Add(-3 * time.Second))
	d.processHeartbeatTimer()

	require.Eventually(t, c.IsClosed, 2*time.Second, 5*time.Millisecond)
}

func TestBrokerCloseAnswered(t *testing.T) {
	_, c, server := newTestDispatcher(t, NewOptions())

	replies := make(chan []byte, 1)
	go func() {
		sendFrame(t, server, func(enc *rsproto.Encoder) {
			enc.WriteUint16(rsproto.CommandClose)
			enc.WriteUint16(rsproto.Version1)
			enc.WriteUint32(77)
			enc.WriteUint16(uint16(rsproto.ResponseCodeOk))
			enc.WriteString("node shutdown")
		})
		replies <- readFrame(t, server)
	}()

	select {
	case reply := <-replies:
		dec := rsproto.NewDecoder(reply)
		key, _ := dec.Uint16()
		_, _ = dec.Uint16()
		corr, _ := dec.Uint32()
		code, _ := dec.Uint16()
		assert.Equal(t, rsproto.CommandClose|rsproto.ResponseFlag, key)
		assert.Equal(t, uint32(77), corr)
		assert.Equal(t, uint16(rsproto.ResponseCodeOk), code)
	case <-time.After(2 * time.Second):
		t.Fatal("no close response")
	}
	require.Eventually(t, c.IsClosed, 2*time.Second, 5*time.Millisecond)
}
