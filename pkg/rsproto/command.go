package rsproto

// Command is one member of the closed command family. SizeNeeded is
// the exact byte count Write emits, which becomes the outer length
// prefix on the wire.
type Command interface {
	Key() uint16
	Version() uint16
	SizeNeeded() int
	// Write emits key, version, correlation id where carried, then the
	// body, into the encoder. The returned count must equal SizeNeeded.
	Write(enc *Encoder) (int, error)
}

// Correlated is a Command that carries a correlation id pairing it
// with its response.
type Correlated interface {
	Command
	SetCorrelationId(id uint32)
	CorrelationId() uint32
}

// Response is a decoded correlated reply from the broker.
type Response interface {
	CorrelationId() uint32
	ResponseCode() ResponseCode
}

// correlation is the embedded id carried by correlated commands and
// responses.
type correlation struct {
	correlationId uint32
}

func (c *correlation) SetCorrelationId(id uint32) {
	c.correlationId = id
}

func (c *correlation) CorrelationId() uint32 {
	return c.correlationId
}

// writeHeader emits key, version and correlation id, the common front
// of every correlated request.
func (c *correlation) writeHeader(enc *Encoder, key uint16) int {
	n := enc.WriteUint16(key)
	n += enc.WriteUint16(Version1)
	n += enc.WriteUint32(c.correlationId)
	return n
}

// readHeader consumes the correlation id and response code that lead
// every plain response body. The key and version have already been
// consumed by the dispatcher.
func readHeader(dec *Decoder) (uint32, ResponseCode, error) {
	id, err := dec.Uint32()
	if err != nil {
		return 0, 0, err
	}
	code, err := dec.Uint16()
	if err != nil {
		return 0, 0, err
	}
	return id, ResponseCode(code), nil
}
