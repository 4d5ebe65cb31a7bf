package stream

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rabbitstream-io/rabbitstream/pkg/rslog"
	"github.com/rabbitstream-io/rabbitstream/pkg/rsproto"
	"github.com/rabbitstream-io/rabbitstream/pkg/wait"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// PushHandlers are the hooks for inbound commands the broker sends on
// its own initiative.
type PushHandlers struct {
	OnPublishConfirm     func(*rsproto.PublishConfirm)
	OnPublishError       func(*rsproto.PublishError)
	OnDeliver            func(*rsproto.Deliver)
	OnMetadataUpdate     func(*rsproto.MetadataUpdate)
	OnCreditNotification func(*rsproto.CreditNotification)
}

// Dispatcher sits behind the connection's frame callback. Responses
// are routed to the waiter registered under their correlation id,
// pushes to their handler, unknown keys are logged and dropped.
type Dispatcher struct {
	rslog.Log

	opts *Options
	conn *Connection

	w        wait.Wait
	corrIDs  atomic.Uint32
	handlers PushHandlers

	lastActivity atomic.Time

	// negotiated during Tune, 0 until then
	heartbeatInterval atomic.Uint32
	tuned             chan *rsproto.Tune

	heartbeatLock  sync.Mutex
	heartbeatTimer *time.Timer
}

// NewDispatcher NewDispatcher
func NewDispatcher(opts *Options) *Dispatcher {
	d := &Dispatcher{
		Log:   rslog.NewRSLog("Dispatcher"),
		opts:  opts,
		w:     wait.New(),
		tuned: make(chan *rsproto.Tune, 1),
	}
	d.lastActivity.Store(time.Now())
	return d
}

// Bind attaches the connection the dispatcher writes through. The
// dispatcher never owns the connection, callers dispose it.
func (d *Dispatcher) Bind(conn *Connection) {
	d.conn = conn
}

// SetHandlers SetHandlers
func (d *Dispatcher) SetHandlers(handlers PushHandlers) {
	d.handlers = handlers
}

// OnFrame is registered as the connection's frame callback. The frame
// buffer is only valid for the duration of the call, decoded pushes
// that keep bytes (Deliver chunks) copy them out.
func (d *Dispatcher) OnFrame(frame []byte) error {
	d.lastActivity.Store(time.Now())

	if len(frame) == 0 {
		d.Debug("empty frame, dropping")
		return nil
	}
	dec := rsproto.NewDecoder(frame)
	key, err := dec.Uint16()
	if err != nil {
		return errors.Wrap(err, "frame key")
	}
	version, err := dec.Uint16()
	if err != nil {
		return errors.Wrap(err, "frame version")
	}
	if version != rsproto.Version1 {
		d.Warn("unsupported command version, dropping frame",
			zap.Uint16("key", key), zap.Uint16("version", version))
		return nil
	}

	if key&rsproto.ResponseFlag != 0 {
		return d.handleResponse(key&^rsproto.ResponseFlag, dec)
	}
	return d.handlePush(key, dec)
}

func (d *Dispatcher) handleResponse(key uint16, dec *rsproto.Decoder) error {
	// the credit "response" carries no correlation id, it is a push in
	// response clothing
	if key == rsproto.CommandCredit {
		notification, err := rsproto.DecodeCreditNotification(dec)
		if err != nil {
			return err
		}
		d.Warn("credit for unknown subscription",
			zap.Uint8("subscriptionId", notification.SubscriptionId),
			zap.String("code", notification.Code.String()))
		if d.handlers.OnCreditNotification != nil {
			d.handlers.OnCreditNotification(notification)
		}
		return nil
	}

	resp, known, err := rsproto.DecodeResponse(key, dec)
	if !known {
		d.Warn("unknown response command, dropping frame", zap.Uint16("key", key))
		return nil
	}
	if err != nil {
		// layout violations are fatal for the connection
		return errors.Wrapf(err, "decode %s response", rsproto.CommandName(key))
	}
	if !d.w.IsRegistered(resp.CorrelationId()) {
		d.Warn("no waiter for correlation id, dropping response",
			zap.String("command", rsproto.CommandName(key)),
			zap.Uint32("correlationId", resp.CorrelationId()))
		return nil
	}
	d.w.Trigger(resp.CorrelationId(), resp)
	return nil
}

func (d *Dispatcher) handlePush(key uint16, dec *rsproto.Decoder) error {
	switch key {
	case rsproto.CommandHeartbeat:
		d.Debug("heartbeat received")
	case rsproto.CommandTune:
		tune, err := rsproto.DecodeTune(dec)
		if err != nil {
			return err
		}
		d.handleTune(tune)
	case rsproto.CommandPublishConfirm:
		confirm, err := rsproto.DecodePublishConfirm(dec)
		if err != nil {
			return err
		}
		if d.handlers.OnPublishConfirm != nil {
			d.handlers.OnPublishConfirm(confirm)
		}
	case rsproto.CommandPublishError:
		publishError, err := rsproto.DecodePublishError(dec)
		if err != nil {
			return err
		}
		if d.handlers.OnPublishError != nil {
			d.handlers.OnPublishError(publishError)
		}
	case rsproto.CommandDeliver:
		deliver, err := rsproto.DecodeDeliver(dec)
		if err != nil {
			return err
		}
		if d.handlers.OnDeliver != nil {
			// the chunk aliases the pooled frame buffer
			deliver.Chunk = append([]byte(nil), deliver.Chunk...)
			d.handlers.OnDeliver(deliver)
		}
	case rsproto.CommandMetadataUpdate:
		update, err := rsproto.DecodeMetadataUpdate(dec)
		if err != nil {
			return err
		}
		if d.handlers.OnMetadataUpdate != nil {
			d.handlers.OnMetadataUpdate(update)
		}
	case rsproto.CommandClose:
		brokerClose, err := rsproto.DecodeClose(dec)
		if err != nil {
			return err
		}
		d.handleBrokerClose(brokerClose)
	default:
		d.Warn("unknown command, dropping frame",
			zap.Uint16("key", key), zap.Error(rsproto.ErrUnknownCommand))
	}
	return nil
}

// handleTune intersects the broker's limits with ours, answers with
// the result and locks it in for the rest of the connection.
func (d *Dispatcher) handleTune(tune *rsproto.Tune) {
	frameMax := negotiate(tune.FrameMax, d.opts.FrameMax)
	heartbeat := negotiate(tune.Heartbeat, d.opts.Heartbeat)

	reply := rsproto.NewTune(frameMax, heartbeat)
	if _, err := d.conn.WriteCommand(context.Background(), reply); err != nil {
		d.Error("tune reply failed", zap.Error(err))
		return
	}
	d.conn.SetFrameMax(frameMax)
	d.heartbeatInterval.Store(heartbeat)
	d.startHeartbeat()

	d.Debug("tuned", zap.Uint32("frameMax", frameMax), zap.Uint32("heartbeat", heartbeat))
	select {
	case d.tuned <- reply:
	default:
	}
}

// negotiate takes the smaller of two limits, zero meaning unbounded.
func negotiate(server, client uint32) uint32 {
	if client == 0 {
		return server
	}
	if server == 0 {
		return client
	}
	if server < client {
		return server
	}
	return client
}

// AwaitTune blocks until Tune negotiation has completed.
func (d *Dispatcher) AwaitTune(ctx context.Context) (*rsproto.Tune, error) {
	select {
	case tune := <-d.tuned:
		return tune, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "await tune")
	}
}

func (d *Dispatcher) handleBrokerClose(brokerClose *rsproto.Close) {
	d.Info("broker requested close",
		zap.String("code", brokerClose.ClosingCode.String()),
		zap.String("reason", brokerClose.Reason))
	resp := rsproto.NewCloseResponse(brokerClose.CorrelationId(), rsproto.ResponseCodeOk)
	if _, err := d.conn.WriteCommand(context.Background(), resp); err != nil {
		d.Warn("close response failed", zap.Error(err))
	}
	d.Shutdown()
	// handleBrokerClose runs on the reader goroutine, Close waits for
	// that same goroutine to exit
	go func() {
		_ = d.conn.Close()
	}()
}

func (d *Dispatcher) startHeartbeat() {
	interval := time.Duration(d.heartbeatInterval.Load()) * time.Second
	if interval <= 0 {
		return
	}
	d.heartbeatLock.Lock()
	defer d.heartbeatLock.Unlock()
	if d.heartbeatTimer != nil {
		d.heartbeatTimer.Stop()
	}
	d.heartbeatTimer = time.AfterFunc(interval, d.processHeartbeatTimer)
}

func (d *Dispatcher) processHeartbeatTimer() {
	if d.conn == nil || d.conn.IsClosed() {
		return
	}
	interval := time.Duration(d.heartbeatInterval.Load()) * time.Second
	if d.lastActivity.Load().Add(2 * interval).Before(time.Now()) {
		d.Error("no inbound frame within two heartbeat intervals",
			zap.Error(ErrHeartbeatTimeout))
		_ = d.conn.Close()
		return
	}
	if _, err := d.conn.WriteCommand(context.Background(), rsproto.NewHeartbeat()); err != nil {
		d.Warn("send heartbeat failed", zap.Error(err))
		return
	}
	heartbeatsSentTotal.Inc()
	d.heartbeatLock.Lock()
	if d.heartbeatTimer != nil {
		d.heartbeatTimer.Reset(interval)
	}
	d.heartbeatLock.Unlock()
}

// Shutdown stops the heartbeat timer. Safe to call more than once.
func (d *Dispatcher) Shutdown() {
	d.heartbeatLock.Lock()
	defer d.heartbeatLock.Unlock()
	if d.heartbeatTimer != nil {
		d.heartbeatTimer.Stop()
		d.heartbeatTimer = nil
	}
}

// Request writes a correlated command and waits for its response. The
// correlation id is assigned here, duplicate registration panics.
func (d *Dispatcher) Request(ctx context.Context, cmd rsproto.Correlated) (rsproto.Response, error) {
	id := d.corrIDs.Inc()
	cmd.SetCorrelationId(id)

	ch := d.w.Register(id)
	if _, err := d.conn.WriteCommand(ctx, cmd); err != nil {
		d.w.Deregister(id)
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, d.opts.RequestTimeout)
	defer cancel()
	select {
	case x := <-ch:
		resp, ok := x.(rsproto.Response)
		if !ok {
			return nil, errors.Errorf("unexpected waiter payload %T", x)
		}
		return resp, nil
	case <-timeoutCtx.Done():
		d.w.Deregister(id)
		return nil, errors.Wrapf(timeoutCtx.Err(), "request %s", rsproto.CommandName(cmd.Key()))
	}
}

// Send writes an uncorrelated command, nothing to wait for.
func (d *Dispatcher) Send(ctx context.Context, cmd rsproto.Command) error {
	_, err := d.conn.WriteCommand(ctx, cmd)
	return err
}
