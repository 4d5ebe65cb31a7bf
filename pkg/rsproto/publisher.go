package rsproto

// DeclarePublisher registers a named publisher on a stream.
type DeclarePublisher struct {
	correlation
	PublisherId  uint8
	PublisherRef string
	Stream       string
}

func NewDeclarePublisher(publisherId uint8, publisherRef string, stream string) *DeclarePublisher {
	return &DeclarePublisher{
		PublisherId:  publisherId,
		PublisherRef: publisherRef,
		Stream:       stream,
	}
}

func (d *DeclarePublisher) Key() uint16 {
	return CommandDeclarePublisher
}

func (d *DeclarePublisher) Version() uint16 {
	return Version1
}

func (d *DeclarePublisher) SizeNeeded() int {
	return correlatedHeaderSize + 1 + StringSize(d.PublisherRef) + StringSize(d.Stream)
}

func (d *DeclarePublisher) Write(enc *Encoder) (int, error) {
	n := d.writeHeader(enc, CommandDeclarePublisher)
	n += enc.WriteUint8(d.PublisherId)
	n += enc.WriteString(d.PublisherRef)
	n += enc.WriteString(d.Stream)
	return n, nil
}

// DeletePublisher DeletePublisher
type DeletePublisher struct {
	correlation
	PublisherId uint8
}

func NewDeletePublisher(publisherId uint8) *DeletePublisher {
	return &DeletePublisher{PublisherId: publisherId}
}

func (d *DeletePublisher) Key() uint16 {
	return CommandDeletePublisher
}

func (d *DeletePublisher) Version() uint16 {
	return Version1
}

func (d *DeletePublisher) SizeNeeded() int {
	return correlatedHeaderSize + 1
}

func (d *DeletePublisher) Write(enc *Encoder) (int, error) {
	n := d.writeHeader(enc, CommandDeletePublisher)
	n += enc.WriteUint8(d.PublisherId)
	return n, nil
}

// QueryPublisherSequence asks for the last publishing id stored for a
// publisher reference on a stream.
type QueryPublisherSequence struct {
	correlation
	PublisherRef string
	Stream       string
}

func NewQueryPublisherSequence(publisherRef string, stream string) *QueryPublisherSequence {
	return &QueryPublisherSequence{
		PublisherRef: publisherRef,
		Stream:       stream,
	}
}

func (q *QueryPublisherSequence) Key() uint16 {
	return CommandQueryPublisherSequence
}

func (q *QueryPublisherSequence) Version() uint16 {
	return Version1
}

func (q *QueryPublisherSequence) SizeNeeded() int {
	return correlatedHeaderSize + StringSize(q.PublisherRef) + StringSize(q.Stream)
}

func (q *QueryPublisherSequence) Write(enc *Encoder) (int, error) {
	n := q.writeHeader(enc, CommandQueryPublisherSequence)
	n += enc.WriteString(q.PublisherRef)
	n += enc.WriteString(q.Stream)
	return n, nil
}

// QueryPublisherSequenceResponse QueryPublisherSequenceResponse
type QueryPublisherSequenceResponse struct {
	correlation
	Code     ResponseCode
	Sequence uint64
}

func (q *QueryPublisherSequenceResponse) ResponseCode() ResponseCode {
	return q.Code
}

func DecodeQueryPublisherSequenceResponse(dec *Decoder) (*QueryPublisherSequenceResponse, error) {
	id, code, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	resp := &QueryPublisherSequenceResponse{Code: code}
	resp.SetCorrelationId(id)
	if resp.Sequence, err = dec.Uint64(); err != nil {
		return nil, err
	}
	return resp, nil
}
