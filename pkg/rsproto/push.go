package rsproto

// Push commands arrive unsolicited, without a correlation id. The key
// and version are consumed by the dispatcher before these decoders
// run.

// PublishConfirm acknowledges publishing ids.
type PublishConfirm struct {
	PublisherId   uint8
	PublishingIds []uint64
}

func DecodePublishConfirm(dec *Decoder) (*PublishConfirm, error) {
	publisherId, err := dec.Uint8()
	if err != nil {
		return nil, err
	}
	count, err := dec.Int32()
	if err != nil {
		return nil, err
	}
	p := &PublishConfirm{
		PublisherId:   publisherId,
		PublishingIds: make([]uint64, 0, count),
	}
	for i := int32(0); i < count; i++ {
		id, err := dec.Uint64()
		if err != nil {
			return nil, err
		}
		p.PublishingIds = append(p.PublishingIds, id)
	}
	return p, nil
}

// PublishingError pairs a failed publishing id with its code.
type PublishingError struct {
	PublishingId uint64
	Code         ResponseCode
}

// PublishError reports publishing ids the broker refused.
type PublishError struct {
	PublisherId uint8
	Errors      []PublishingError
}

func DecodePublishError(dec *Decoder) (*PublishError, error) {
	publisherId, err := dec.Uint8()
	if err != nil {
		return nil, err
	}
	count, err := dec.Int32()
	if err != nil {
		return nil, err
	}
	p := &PublishError{
		PublisherId: publisherId,
		Errors:      make([]PublishingError, 0, count),
	}
	for i := int32(0); i < count; i++ {
		id, err := dec.Uint64()
		if err != nil {
			return nil, err
		}
		code, err := dec.Uint16()
		if err != nil {
			return nil, err
		}
		p.Errors = append(p.Errors, PublishingError{PublishingId: id, Code: ResponseCode(code)})
	}
	return p, nil
}

// Deliver hands a subscription one chunk. The chunk bytes are kept
// raw, chunk parsing belongs to the consumer machinery above this
// core. Chunk aliases the frame buffer and must be copied before the
// frame callback returns.
type Deliver struct {
	SubscriptionId uint8
	Chunk          []byte
}

func DecodeDeliver(dec *Decoder) (*Deliver, error) {
	subscriptionId, err := dec.Uint8()
	if err != nil {
		return nil, err
	}
	return &Deliver{
		SubscriptionId: subscriptionId,
		Chunk:          dec.BytesAll(),
	}, nil
}

// MetadataUpdate signals that a stream's topology changed and cached
// lookups are stale.
type MetadataUpdate struct {
	Code   ResponseCode
	Stream string
}

func DecodeMetadataUpdate(dec *Decoder) (*MetadataUpdate, error) {
	code, err := dec.Uint16()
	if err != nil {
		return nil, err
	}
	stream, err := dec.String()
	if err != nil {
		return nil, err
	}
	return &MetadataUpdate{Code: ResponseCode(code), Stream: stream}, nil
}

// CreditNotification is the broker's complaint about a Credit for an
// unknown subscription. No correlation id.
type CreditNotification struct {
	Code           ResponseCode
	SubscriptionId uint8
}

func DecodeCreditNotification(dec *Decoder) (*CreditNotification, error) {
	code, err := dec.Uint16()
	if err != nil {
		return nil, err
	}
	subscriptionId, err := dec.Uint8()
	if err != nil {
		return nil, err
	}
	return &CreditNotification{Code: ResponseCode(code), SubscriptionId: subscriptionId}, nil
}
