package stream

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/rabbitstream-io/rabbitstream/pkg/rslog"
	"github.com/rabbitstream-io/rabbitstream/pkg/rsproto"
	"go.uber.org/zap"
)

const saslMechanismPlain = "PLAIN"

// Client is the typed surface over one connection: connect handshake,
// correlated requests, push hooks.
type Client struct {
	rslog.Log

	opts       *Options
	conn       *Connection
	dispatcher *Dispatcher

	// broker connection properties collected during the handshake
	brokerProperties map[string]string
	tune             *rsproto.Tune

	// per-stream topology answers, invalidated on MetadataUpdate
	routeCache *lru.Cache[string, []string]

	onMetadataUpdate func(*rsproto.MetadataUpdate)
	onClosed         OnClosed
}

// Dial connects, authenticates and opens the virtual host.
func Dial(addr string, opt ...Option) (*Client, error) {
	opts := NewOptions()
	for _, op := range opt {
		if op != nil {
			op(opts)
		}
	}

	routeCache, err := lru.New[string, []string](opts.MetadataCacheSize)
	if err != nil {
		return nil, err
	}
	c := &Client{
		Log:        rslog.NewRSLog(fmt.Sprintf("Client[%s]", addr)),
		opts:       opts,
		routeCache: routeCache,
	}

	c.dispatcher = NewDispatcher(opts)
	c.dispatcher.SetHandlers(PushHandlers{
		OnMetadataUpdate: c.handleMetadataUpdate,
	})
	conn, err := NewConnection(addr, c.dispatcher.OnFrame, c.handleConnClosed, opts)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.dispatcher.Bind(conn)

	if err := c.handshake(); err != nil {
		c.dispatcher.Shutdown()
		_ = conn.Close()
		return nil, err
	}
	c.Info("connected", zap.Uint32("frameMax", c.tune.FrameMax), zap.Uint32("heartbeat", c.tune.Heartbeat))
	return c, nil
}

func (c *Client) handshake() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.RequestTimeout)
	defer cancel()

	resp, err := c.dispatcher.Request(ctx, rsproto.NewPeerProperties(c.opts.ClientProperties))
	if err != nil {
		return errors.Wrap(err, "peer properties")
	}
	if err := checkResponse(resp); err != nil {
		return err
	}
	c.brokerProperties = resp.(*rsproto.PeerPropertiesResponse).Properties

	resp, err = c.dispatcher.Request(ctx, rsproto.NewSaslHandshake())
	if err != nil {
		return errors.Wrap(err, "sasl handshake")
	}
	if err := checkResponse(resp); err != nil {
		return err
	}
	if !contains(resp.(*rsproto.SaslHandshakeResponse).Mechanisms, saslMechanismPlain) {
		return ErrSaslMechanismUnsupported
	}

	saslData := []byte("\x00" + c.opts.Username + "\x00" + c.opts.Password)
	resp, err = c.dispatcher.Request(ctx, rsproto.NewSaslAuthenticate(saslMechanismPlain, saslData))
	if err != nil {
		return errors.Wrap(err, "sasl authenticate")
	}
	if err := checkResponse(resp); err != nil {
		return err
	}

	// the broker opens Tune negotiation right after authentication
	tune, err := c.dispatcher.AwaitTune(ctx)
	if err != nil {
		return err
	}
	c.tune = tune

	resp, err = c.dispatcher.Request(ctx, rsproto.NewOpen(c.opts.Vhost))
	if err != nil {
		return errors.Wrap(err, "open")
	}
	if err := checkResponse(resp); err != nil {
		return err
	}
	for k, v := range resp.(*rsproto.OpenResponse).Properties {
		c.brokerProperties[k] = v
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func (c *Client) handleMetadataUpdate(update *rsproto.MetadataUpdate) {
	c.Info("metadata update", zap.String("stream", update.Stream), zap.String("code", update.Code.String()))
	// cached lookups touching the stream are stale now
	c.routeCache.Purge()
	if c.onMetadataUpdate != nil {
		c.onMetadataUpdate(update)
	}
}

func (c *Client) handleConnClosed(reason string) {
	c.dispatcher.Shutdown()
	if c.onClosed != nil {
		c.onClosed(reason)
	}
}

// SetHandlers installs push hooks. The metadata-update hook runs after
// the client's own cache invalidation.
func (c *Client) SetHandlers(handlers PushHandlers) {
	c.onMetadataUpdate = handlers.OnMetadataUpdate
	handlers.OnMetadataUpdate = c.handleMetadataUpdate
	c.dispatcher.SetHandlers(handlers)
}

// SetOnClosed SetOnClosed
func (c *Client) SetOnClosed(onClosed OnClosed) {
	c.onClosed = onClosed
}

// BrokerProperties returns the properties collected during the
// handshake, advertised host and port included.
func (c *Client) BrokerProperties() map[string]string {
	return c.brokerProperties
}

// Tune returns the negotiated frame max and heartbeat.
func (c *Client) Tune() *rsproto.Tune {
	return c.tune
}

// IsClosed IsClosed
func (c *Client) IsClosed() bool {
	return c.conn.IsClosed()
}

// DeclarePublisher DeclarePublisher
func (c *Client) DeclarePublisher(ctx context.Context, publisherId uint8, publisherRef string, stream string) error {
	resp, err := c.dispatcher.Request(ctx, rsproto.NewDeclarePublisher(publisherId, publisherRef, stream))
	if err != nil {
		return err
	}
	return checkResponse(resp)
}

// DeletePublisher DeletePublisher
func (c *Client) DeletePublisher(ctx context.Context, publisherId uint8) error {
	resp, err := c.dispatcher.Request(ctx, rsproto.NewDeletePublisher(publisherId))
	if err != nil {
		return err
	}
	return checkResponse(resp)
}

// CreateStream CreateStream
func (c *Client) CreateStream(ctx context.Context, stream string, arguments map[string]string) error {
	resp, err := c.dispatcher.Request(ctx, rsproto.NewCreate(stream, arguments))
	if err != nil {
		return err
	}
	return checkResponse(resp)
}

// DeleteStream DeleteStream
func (c *Client) DeleteStream(ctx context.Context, stream string) error {
	resp, err := c.dispatcher.Request(ctx, rsproto.NewDelete(stream))
	if err != nil {
		return err
	}
	return checkResponse(resp)
}

// Subscribe Subscribe
func (c *Client) Subscribe(ctx context.Context, subscriptionId uint8, stream string, offset rsproto.OffsetSpec, credit uint16, properties map[string]string) error {
	resp, err := c.dispatcher.Request(ctx, rsproto.NewSubscribe(subscriptionId, stream, offset, credit, properties))
	if err != nil {
		return err
	}
	return checkResponse(resp)
}

// Unsubscribe Unsubscribe
func (c *Client) Unsubscribe(ctx context.Context, subscriptionId uint8) error {
	resp, err := c.dispatcher.Request(ctx, rsproto.NewUnsubscribe(subscriptionId))
	if err != nil {
		return err
	}
	return checkResponse(resp)
}

// Credit tops up a subscription. Fire-and-forget.
func (c *Client) Credit(ctx context.Context, subscriptionId uint8, credit uint16) error {
	return c.dispatcher.Send(ctx, rsproto.NewCredit(subscriptionId, credit))
}

// StoreOffset StoreOffset. Fire-and-forget.
func (c *Client) StoreOffset(ctx context.Context, reference string, stream string, offset uint64) error {
	return c.dispatcher.Send(ctx, rsproto.NewStoreOffset(reference, stream, offset))
}

// QueryOffset reads back a stored consumer offset. A NoOffset reply
// means nothing was stored and returns offset zero with no error.
func (c *Client) QueryOffset(ctx context.Context, reference string, stream string) (uint64, error) {
	resp, err := c.dispatcher.Request(ctx, rsproto.NewQueryOffset(reference, stream))
	if err != nil {
		return 0, err
	}
	if resp.ResponseCode() == rsproto.ResponseCodeNoOffset {
		return 0, nil
	}
	if err := checkResponse(resp); err != nil {
		return 0, err
	}
	return resp.(*rsproto.QueryOffsetResponse).Offset, nil
}

// QueryPublisherSequence QueryPublisherSequence
func (c *Client) QueryPublisherSequence(ctx context.Context, publisherRef string, stream string) (uint64, error) {
	resp, err := c.dispatcher.Request(ctx, rsproto.NewQueryPublisherSequence(publisherRef, stream))
	if err != nil {
		return 0, err
	}
	if err := checkResponse(resp); err != nil {
		return 0, err
	}
	return resp.(*rsproto.QueryPublisherSequenceResponse).Sequence, nil
}

// Route resolves the streams behind a routing key. Answers are cached
// until the next metadata update.
func (c *Client) Route(ctx context.Context, routingKey string, superStream string) ([]string, error) {
	cacheKey := superStream + "/" + routingKey
	if streams, ok := c.routeCache.Get(cacheKey); ok {
		return streams, nil
	}
	resp, err := c.dispatcher.Request(ctx, rsproto.NewRoute(routingKey, superStream))
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	streams := resp.(*rsproto.RouteResponse).Streams
	c.routeCache.Add(cacheKey, streams)
	return streams, nil
}

// Partitions lists the partition streams of a super stream, cached
// like Route.
func (c *Client) Partitions(ctx context.Context, superStream string) ([]string, error) {
	cacheKey := superStream + "/#partitions"
	if streams, ok := c.routeCache.Get(cacheKey); ok {
		return streams, nil
	}
	resp, err := c.dispatcher.Request(ctx, rsproto.NewPartitions(superStream))
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	streams := resp.(*rsproto.PartitionsResponse).Streams
	c.routeCache.Add(cacheKey, streams)
	return streams, nil
}

// StreamStats StreamStats
func (c *Client) StreamStats(ctx context.Context, stream string) (map[string]int64, error) {
	resp, err := c.dispatcher.Request(ctx, rsproto.NewStreamStats(stream))
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.(*rsproto.StreamStatsResponse).Stats, nil
}

// Close sends a graceful Close and disposes the connection whatever
// the broker answered.
func (c *Client) Close(ctx context.Context) error {
	c.dispatcher.Shutdown()
	closeCmd := rsproto.NewClose(rsproto.ResponseCodeOk, "client shutdown")
	if _, err := c.dispatcher.Request(ctx, closeCmd); err != nil {
		c.Warn("graceful close failed", zap.Error(err))
	}
	return c.conn.Close()
}
