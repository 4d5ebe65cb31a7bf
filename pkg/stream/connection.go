package stream

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rabbitstream-io/rabbitstream/pkg/bytequeue"
	"github.com/rabbitstream-io/rabbitstream/pkg/rslog"
	"github.com/rabbitstream-io/rabbitstream/pkg/rsproto"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// shortWait bounds how long Close waits for the reader goroutine.
const shortWait = time.Second

const closeReasonNormal = "TCP Connection Closed"

var framePool = &bytebufferpool.Pool{}

// OnFrame receives one complete frame without the outer length prefix.
// The buffer is pooled and recycled when the callback returns, it must
// not be retained.
type OnFrame func(frame []byte) error

// OnClosed fires exactly once per connection lifetime.
type OnClosed func(reason string)

// Connection owns one socket. Writers are serialized by a
// single-permit gate, a background goroutine turns the inbound byte
// stream into frames.
type Connection struct {
	rslog.Log

	addr   string
	conn   net.Conn
	writer *bufio.Writer

	// single-permit write gate, holding the slot means holding the gate
	writeGate chan struct{}

	closed     atomic.Bool
	disposed   atomic.Bool
	numFrames  atomic.Uint64
	frameMax   atomic.Uint32 // 0 until Tune, then the negotiated max
	readerDone chan struct{}
	closedOnce sync.Once

	onFrame  OnFrame
	onClosed OnClosed
}

// NewConnection dials the endpoint and starts the frame reader.
func NewConnection(addr string, onFrame OnFrame, onClosed OnClosed, opts *Options) (*Connection, error) {
	conn, err := net.DialTimeout("tcp", addr, opts.ConnectTimeout)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
		_ = tcpConn.SetReadBuffer(opts.SocketBufSize)
		_ = tcpConn.SetWriteBuffer(opts.SocketBufSize)
	}
	if opts.TLS != nil {
		config := opts.TLS.Clone()
		if config.ServerName == "" {
			serverName := opts.ServerName
			if serverName == "" {
				if host, _, err := net.SplitHostPort(addr); err == nil {
					serverName = host
				}
			}
			config.ServerName = serverName
		}
		_ = conn.SetDeadline(time.Now().Add(opts.ConnectTimeout))
		tlsConn := tls.Client(conn, config)
		if err := tlsConn.Handshake(); err != nil {
			_ = conn.Close()
			return nil, errors.Wrapf(err, "tls handshake %s", addr)
		}
		_ = conn.SetDeadline(time.Time{})
		conn = tlsConn
	}
	return newConnection(conn, addr, onFrame, onClosed, opts), nil
}

// newConnection wraps an established transport. Split from
// NewConnection so tests can run over a pipe.
func newConnection(conn net.Conn, addr string, onFrame OnFrame, onClosed OnClosed, opts *Options) *Connection {
	c := &Connection{
		Log:        rslog.NewRSLog(fmt.Sprintf("Connection[%s]", addr)),
		addr:       addr,
		conn:       conn,
		writer:     bufio.NewWriterSize(conn, opts.ReadBufSize),
		writeGate:  make(chan struct{}, 1),
		readerDone: make(chan struct{}),
		onFrame:    onFrame,
		onClosed:   onClosed,
	}
	go c.loopRead(opts.ReadBufSize)
	return c
}

// IsClosed IsClosed
func (c *Connection) IsClosed() bool {
	return c.closed.Load()
}

// NumFrames counts inbound frames delivered so far.
func (c *Connection) NumFrames() uint64 {
	return c.numFrames.Load()
}

// SetFrameMax locks the inbound frame limit after Tune negotiation.
func (c *Connection) SetFrameMax(frameMax uint32) {
	c.frameMax.Store(frameMax)
}

// WriteCommand encodes the command, prefixes its length and flushes it
// to the socket. Safe for concurrent use, writers take the gate in
// turn and whole frames never interleave. Returns true once the bytes
// have been handed to the transport.
func (c *Connection) WriteCommand(ctx context.Context, cmd rsproto.Command) (bool, error) {
	if c.closed.Load() {
		return false, ErrConnectionClosed
	}
	select {
	case c.writeGate <- struct{}{}:
		// fast path, gate was free
	default:
		select {
		case c.writeGate <- struct{}{}:
		case <-ctx.Done():
			// cancelled while queued, gate never acquired
			return false, ctx.Err()
		}
	}
	defer func() {
		<-c.writeGate
	}()

	// the connection may have closed while we waited on the gate
	if c.closed.Load() {
		return false, ErrConnectionClosed
	}
	n, err := rsproto.WriteCommand(cmd, c.writer)
	if err != nil {
		return false, err
	}
	if err := c.writer.Flush(); err != nil {
		return false, errors.Wrapf(err, "flush %s", c.addr)
	}
	bytesWrittenTotal.Add(float64(n))
	return true, nil
}

func (c *Connection) loopRead(readBufSize int) {
	reason := closeReasonNormal
	buff := make([]byte, readBufSize)
	queue := bytequeue.New()
	defer queue.Reset()

	for !c.closed.Load() {
		n, err := c.conn.Read(buff)
		if n > 0 {
			_, _ = queue.Write(buff[:n])
			if derr := c.drainFrames(queue); derr != nil {
				if !c.closed.Load() {
					c.Error("inbound frame error", zap.Error(derr))
				}
				reason = derr.Error()
				break
			}
		}
		if err != nil {
			if err == io.EOF {
				c.Debug("read loop eof")
			} else if !c.closed.Load() {
				c.Error("read error", zap.Error(err))
			} else {
				c.Debug("read loop exit", zap.Error(err))
			}
			break
		}
	}
	c.closed.Store(true)
	close(c.readerDone)
	c.fireOnClosed(reason)
}

// drainFrames slices every complete frame out of the queue and hands
// each to the frame callback in a pooled buffer.
func (c *Connection) drainFrames(queue *bytequeue.ByteQueue) error {
	for {
		pos := queue.ReadPosition()
		head := queue.Peek(pos, queue.Len())
		payload, ok := rsproto.PeekFrameLen(head)
		if !ok {
			return nil
		}
		if max := c.frameMax.Load(); max > 0 && payload > max {
			return errors.Wrapf(ErrFrameTooLarge, "payload %d, frame max %d", payload, max)
		}
		frame, consumed := rsproto.TryReadFrame(head)
		if consumed == 0 {
			return nil
		}

		fb := framePool.Get()
		fb.B = append(fb.B[:0], frame...)
		err := c.onFrame(fb.B)
		framePool.Put(fb)

		c.numFrames.Inc()
		framesReadTotal.Inc()
		queue.Discard(pos + uint64(consumed))
		if err != nil {
			return err
		}
	}
}

func (c *Connection) fireOnClosed(reason string) {
	c.closedOnce.Do(func() {
		if c.onClosed != nil {
			c.onClosed(reason)
		}
		c.Debug("connection closed", zap.String("reason", reason))
	})
}

// Close is idempotent. It stops writers, closes the socket and waits
// briefly for the reader goroutine to drain out.
func (c *Connection) Close() error {
	if !c.disposed.CompareAndSwap(false, true) {
		return nil
	}
	c.closed.Store(true)
	err := c.conn.Close()
	select {
	case <-c.readerDone:
	case <-time.After(shortWait):
		c.Error("reader did not exit in time", zap.Duration("shortWait", shortWait))
	}
	return err
}
