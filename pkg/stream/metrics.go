package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesReadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rabbitstream",
		Name:      "frames_read_total",
		Help:      "Inbound frames decoded across all connections.",
	})
	bytesWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rabbitstream",
		Name:      "bytes_written_total",
		Help:      "Bytes flushed to the transport across all connections.",
	})
	heartbeatsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rabbitstream",
		Name:      "heartbeats_sent_total",
		Help:      "Outbound heartbeat commands.",
	})
)
