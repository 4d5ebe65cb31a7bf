package rsproto

// Offset spec types for Subscribe.
const (
	OffsetTypeFirst     uint16 = 1
	OffsetTypeLast      uint16 = 2
	OffsetTypeNext      uint16 = 3
	OffsetTypeOffset    uint16 = 4
	OffsetTypeTimestamp uint16 = 5
)

// OffsetSpec says where a subscription starts reading. First, Last and
// Next carry no operand.
type OffsetSpec struct {
	Type      uint16
	Offset    uint64 // when Type == OffsetTypeOffset
	Timestamp int64  // when Type == OffsetTypeTimestamp
}

func OffsetFirst() OffsetSpec {
	return OffsetSpec{Type: OffsetTypeFirst}
}

func OffsetLast() OffsetSpec {
	return OffsetSpec{Type: OffsetTypeLast}
}

func OffsetNext() OffsetSpec {
	return OffsetSpec{Type: OffsetTypeNext}
}

func OffsetAt(offset uint64) OffsetSpec {
	return OffsetSpec{Type: OffsetTypeOffset, Offset: offset}
}

func OffsetSince(timestamp int64) OffsetSpec {
	return OffsetSpec{Type: OffsetTypeTimestamp, Timestamp: timestamp}
}

func (o OffsetSpec) size() int {
	switch o.Type {
	case OffsetTypeOffset:
		return 2 + 8
	case OffsetTypeTimestamp:
		return 2 + 8
	default:
		return 2
	}
}

func (o OffsetSpec) write(enc *Encoder) int {
	n := enc.WriteUint16(o.Type)
	switch o.Type {
	case OffsetTypeOffset:
		n += enc.WriteUint64(o.Offset)
	case OffsetTypeTimestamp:
		n += enc.WriteInt64(o.Timestamp)
	}
	return n
}

// Subscribe attaches a subscription to a stream with an initial credit
// budget.
type Subscribe struct {
	correlation
	SubscriptionId uint8
	Stream         string
	Offset         OffsetSpec
	Credit         uint16
	Properties     map[string]string
}

func NewSubscribe(subscriptionId uint8, stream string, offset OffsetSpec, credit uint16, properties map[string]string) *Subscribe {
	return &Subscribe{
		SubscriptionId: subscriptionId,
		Stream:         stream,
		Offset:         offset,
		Credit:         credit,
		Properties:     properties,
	}
}

func (s *Subscribe) Key() uint16 {
	return CommandSubscribe
}

func (s *Subscribe) Version() uint16 {
	return Version1
}

func (s *Subscribe) SizeNeeded() int {
	size := correlatedHeaderSize + 1 + StringSize(s.Stream) + s.Offset.size() + 2 + 4
	for k, v := range s.Properties {
		size += StringSize(k) + StringSize(v)
	}
	return size
}

func (s *Subscribe) Write(enc *Encoder) (int, error) {
	n := s.writeHeader(enc, CommandSubscribe)
	n += enc.WriteUint8(s.SubscriptionId)
	n += enc.WriteString(s.Stream)
	n += s.Offset.write(enc)
	n += enc.WriteUint16(s.Credit)
	n += enc.WriteInt32(int32(len(s.Properties)))
	for k, v := range s.Properties {
		n += enc.WriteString(k)
		n += enc.WriteString(v)
	}
	return n, nil
}

// Unsubscribe Unsubscribe
type Unsubscribe struct {
	correlation
	SubscriptionId uint8
}

func NewUnsubscribe(subscriptionId uint8) *Unsubscribe {
	return &Unsubscribe{SubscriptionId: subscriptionId}
}

func (u *Unsubscribe) Key() uint16 {
	return CommandUnsubscribe
}

func (u *Unsubscribe) Version() uint16 {
	return Version1
}

func (u *Unsubscribe) SizeNeeded() int {
	return correlatedHeaderSize + 1
}

func (u *Unsubscribe) Write(enc *Encoder) (int, error) {
	n := u.writeHeader(enc, CommandUnsubscribe)
	n += enc.WriteUint8(u.SubscriptionId)
	return n, nil
}

// Credit tops up a subscription's chunk budget. Fire-and-forget, the
// broker only answers when the subscription id is unknown.
type Credit struct {
	SubscriptionId uint8
	Credit         uint16
}

func NewCredit(subscriptionId uint8, credit uint16) *Credit {
	return &Credit{SubscriptionId: subscriptionId, Credit: credit}
}

func (c *Credit) Key() uint16 {
	return CommandCredit
}

func (c *Credit) Version() uint16 {
	return Version1
}

func (c *Credit) SizeNeeded() int {
	return headerSize + 1 + 2
}

func (c *Credit) Write(enc *Encoder) (int, error) {
	n := enc.WriteUint16(CommandCredit)
	n += enc.WriteUint16(Version1)
	n += enc.WriteUint8(c.SubscriptionId)
	n += enc.WriteUint16(c.Credit)
	return n, nil
}

// StoreOffset persists a consumer offset under a reference.
// Fire-and-forget.
type StoreOffset struct {
	Reference string
	Stream    string
	Offset    uint64
}

func NewStoreOffset(reference string, stream string, offset uint64) *StoreOffset {
	return &StoreOffset{Reference: reference, Stream: stream, Offset: offset}
}

func (s *StoreOffset) Key() uint16 {
	return CommandStoreOffset
}

func (s *StoreOffset) Version() uint16 {
	return Version1
}

func (s *StoreOffset) SizeNeeded() int {
	return headerSize + StringSize(s.Reference) + StringSize(s.Stream) + 8
}

func (s *StoreOffset) Write(enc *Encoder) (int, error) {
	n := enc.WriteUint16(CommandStoreOffset)
	n += enc.WriteUint16(Version1)
	n += enc.WriteString(s.Reference)
	n += enc.WriteString(s.Stream)
	n += enc.WriteUint64(s.Offset)
	return n, nil
}

// QueryOffset reads back an offset stored with StoreOffset.
type QueryOffset struct {
	correlation
	Reference string
	Stream    string
}

func NewQueryOffset(reference string, stream string) *QueryOffset {
	return &QueryOffset{Reference: reference, Stream: stream}
}

func (q *QueryOffset) Key() uint16 {
	return CommandQueryOffset
}

func (q *QueryOffset) Version() uint16 {
	return Version1
}

func (q *QueryOffset) SizeNeeded() int {
	return correlatedHeaderSize + StringSize(q.Reference) + StringSize(q.Stream)
}

func (q *QueryOffset) Write(enc *Encoder) (int, error) {
	n := q.writeHeader(enc, CommandQueryOffset)
	n += enc.WriteString(q.Reference)
	n += enc.WriteString(q.Stream)
	return n, nil
}

// QueryOffsetResponse QueryOffsetResponse
type QueryOffsetResponse struct {
	correlation
	Code   ResponseCode
	Offset uint64
}

func (q *QueryOffsetResponse) ResponseCode() ResponseCode {
	return q.Code
}

func DecodeQueryOffsetResponse(dec *Decoder) (*QueryOffsetResponse, error) {
	id, code, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	resp := &QueryOffsetResponse{Code: code}
	resp.SetCorrelationId(id)
	if resp.Offset, err = dec.Uint64(); err != nil {
		return nil, err
	}
	return resp, nil
}
