package stream

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rabbitstream-io/rabbitstream/pkg/rsproto"
)

var (
	// ErrConnectionClosed a write was attempted after the connection
	// closed.
	ErrConnectionClosed = errors.New("stream: connection closed")

	// ErrFrameTooLarge an inbound frame exceeded the tuned frame max.
	// Fatal, the connection is torn down.
	ErrFrameTooLarge = errors.New("stream: frame larger than negotiated frame max")

	// ErrHeartbeatTimeout nothing arrived for two heartbeat intervals.
	ErrHeartbeatTimeout = errors.New("stream: heartbeat timeout")

	// ErrSaslMechanismUnsupported the broker offers none of the
	// mechanisms this client speaks.
	ErrSaslMechanismUnsupported = errors.New("stream: no supported sasl mechanism")
)

// ResponseError carries a broker response code other than Ok.
type ResponseError struct {
	Code rsproto.ResponseCode
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("stream: broker responded %s", e.Code)
}

// checkResponse maps a non-Ok response code to a ResponseError.
func checkResponse(resp rsproto.Response) error {
	if resp.ResponseCode().IsOk() {
		return nil
	}
	return &ResponseError{Code: resp.ResponseCode()}
}
