package stream

import (
	"crypto/tls"
	"time"
)

const (
	defaultFrameMax      = 1048576 // 1MiB, matches the broker default
	defaultHeartbeat     = 60      // seconds
	defaultSocketBufSize = 10 * 64 * 1024
	defaultReadBufSize   = 64 * 1024
)

// Options Options
type Options struct {
	Username    string
	Password    string
	Vhost       string
	TLS         *tls.Config // nil means plain TCP
	ServerName  string      // TLS server name, host part of the address when empty

	ConnectTimeout time.Duration
	RequestTimeout time.Duration

	// FrameMax and Heartbeat are the client maxima offered during Tune
	// negotiation. Zero means unlimited / disabled.
	FrameMax  uint32
	Heartbeat uint32 // seconds

	// SocketBufSize is applied to the TCP send and receive buffers,
	// scaled well above the OS default for throughput.
	SocketBufSize int
	ReadBufSize   int

	ClientProperties map[string]string

	// MetadataCacheSize bounds the per-stream topology cache.
	MetadataCacheSize int
}

// NewOptions default configuration
func NewOptions() *Options {
	return &Options{
		Username:       "guest",
		Password:       "guest",
		Vhost:          "/",
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 10 * time.Second,
		FrameMax:       defaultFrameMax,
		Heartbeat:      defaultHeartbeat,
		SocketBufSize:  defaultSocketBufSize,
		ReadBufSize:    defaultReadBufSize,
		ClientProperties: map[string]string{
			"product":  "rabbitstream",
			"platform": "golang",
		},
		MetadataCacheSize: 128,
	}
}

// Option Option
type Option func(*Options)

// WithCredentials WithCredentials
func WithCredentials(username string, password string) Option {
	return func(opts *Options) {
		opts.Username = username
		opts.Password = password
	}
}

// WithVhost WithVhost
func WithVhost(vhost string) Option {
	return func(opts *Options) {
		opts.Vhost = vhost
	}
}

// WithTLS enables TLS with the given config.
func WithTLS(config *tls.Config) Option {
	return func(opts *Options) {
		opts.TLS = config
	}
}

// WithConnectTimeout WithConnectTimeout
func WithConnectTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.ConnectTimeout = timeout
	}
}

// WithRequestTimeout WithRequestTimeout
func WithRequestTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.RequestTimeout = timeout
	}
}

// WithFrameMax WithFrameMax
func WithFrameMax(frameMax uint32) Option {
	return func(opts *Options) {
		opts.FrameMax = frameMax
	}
}

// WithHeartbeat heartbeat interval in seconds, 0 disables
func WithHeartbeat(heartbeat uint32) Option {
	return func(opts *Options) {
		opts.Heartbeat = heartbeat
	}
}
