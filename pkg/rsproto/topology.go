package rsproto

// Route resolves the streams behind a routing key of a super stream.
type Route struct {
	correlation
	RoutingKey  string
	SuperStream string
}

func NewRoute(routingKey string, superStream string) *Route {
	return &Route{RoutingKey: routingKey, SuperStream: superStream}
}

func (r *Route) Key() uint16 {
	return CommandRoute
}

func (r *Route) Version() uint16 {
	return Version1
}

func (r *Route) SizeNeeded() int {
	return correlatedHeaderSize + StringSize(r.RoutingKey) + StringSize(r.SuperStream)
}

func (r *Route) Write(enc *Encoder) (int, error) {
	n := r.writeHeader(enc, CommandRoute)
	n += enc.WriteString(r.RoutingKey)
	n += enc.WriteString(r.SuperStream)
	return n, nil
}

// RouteResponse RouteResponse
type RouteResponse struct {
	correlation
	Code    ResponseCode
	Streams []string
}

func (r *RouteResponse) ResponseCode() ResponseCode {
	return r.Code
}

func DecodeRouteResponse(dec *Decoder) (*RouteResponse, error) {
	id, code, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	resp := &RouteResponse{Code: code}
	resp.SetCorrelationId(id)
	if resp.Streams, err = decodeStringList(dec); err != nil {
		return nil, err
	}
	return resp, nil
}

// Partitions lists the partition streams of a super stream.
type Partitions struct {
	correlation
	SuperStream string
}

func NewPartitions(superStream string) *Partitions {
	return &Partitions{SuperStream: superStream}
}

func (p *Partitions) Key() uint16 {
	return CommandPartitions
}

func (p *Partitions) Version() uint16 {
	return Version1
}

func (p *Partitions) SizeNeeded() int {
	return correlatedHeaderSize + StringSize(p.SuperStream)
}

func (p *Partitions) Write(enc *Encoder) (int, error) {
	n := p.writeHeader(enc, CommandPartitions)
	n += enc.WriteString(p.SuperStream)
	return n, nil
}

// PartitionsResponse PartitionsResponse
type PartitionsResponse struct {
	correlation
	Code    ResponseCode
	Streams []string
}

func (p *PartitionsResponse) ResponseCode() ResponseCode {
	return p.Code
}

func DecodePartitionsResponse(dec *Decoder) (*PartitionsResponse, error) {
	id, code, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	resp := &PartitionsResponse{Code: code}
	resp.SetCorrelationId(id)
	if resp.Streams, err = decodeStringList(dec); err != nil {
		return nil, err
	}
	return resp, nil
}

// StreamStats asks for the first/committed/last offsets of a stream.
type StreamStats struct {
	correlation
	Stream string
}

func NewStreamStats(stream string) *StreamStats {
	return &StreamStats{Stream: stream}
}

func (s *StreamStats) Key() uint16 {
	return CommandStreamStats
}

func (s *StreamStats) Version() uint16 {
	return Version1
}

func (s *StreamStats) SizeNeeded() int {
	return correlatedHeaderSize + StringSize(s.Stream)
}

func (s *StreamStats) Write(enc *Encoder) (int, error) {
	n := s.writeHeader(enc, CommandStreamStats)
	n += enc.WriteString(s.Stream)
	return n, nil
}

// StreamStatsResponse StreamStatsResponse
type StreamStatsResponse struct {
	correlation
	Code  ResponseCode
	Stats map[string]int64
}

func (s *StreamStatsResponse) ResponseCode() ResponseCode {
	return s.Code
}

func DecodeStreamStatsResponse(dec *Decoder) (*StreamStatsResponse, error) {
	id, code, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	resp := &StreamStatsResponse{Code: code, Stats: map[string]int64{}}
	resp.SetCorrelationId(id)
	count, err := dec.Int32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < count; i++ {
		k, err := dec.String()
		if err != nil {
			return nil, err
		}
		v, err := dec.Int64()
		if err != nil {
			return nil, err
		}
		resp.Stats[k] = v
	}
	return resp, nil
}

func decodeStringList(dec *Decoder) ([]string, error) {
	count, err := dec.Int32()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, count)
	for i := int32(0); i < count; i++ {
		s, err := dec.String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
