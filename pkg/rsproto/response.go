package rsproto

// SimpleResponse is the correlation id plus response code layout
// shared by most correlated replies.
type SimpleResponse struct {
	correlation
	Code ResponseCode
}

func NewSimpleResponse(correlationId uint32, code ResponseCode) *SimpleResponse {
	r := &SimpleResponse{Code: code}
	r.SetCorrelationId(correlationId)
	return r
}

func (s *SimpleResponse) ResponseCode() ResponseCode {
	return s.Code
}

func DecodeSimpleResponse(dec *Decoder) (*SimpleResponse, error) {
	id, code, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	resp := &SimpleResponse{Code: code}
	resp.SetCorrelationId(id)
	return resp, nil
}

// DecodeResponse picks the typed decoder for a response key (response
// flag stripped). The bool is false for keys this core does not know.
func DecodeResponse(key uint16, dec *Decoder) (Response, bool, error) {
	var resp Response
	var err error
	switch key {
	case CommandDeclarePublisher, CommandDeletePublisher, CommandSubscribe,
		CommandUnsubscribe, CommandCreate, CommandDelete, CommandClose:
		resp, err = DecodeSimpleResponse(dec)
	case CommandQueryPublisherSequence:
		resp, err = DecodeQueryPublisherSequenceResponse(dec)
	case CommandQueryOffset:
		resp, err = DecodeQueryOffsetResponse(dec)
	case CommandPeerProperties:
		resp, err = DecodePeerPropertiesResponse(dec)
	case CommandSaslHandshake:
		resp, err = DecodeSaslHandshakeResponse(dec)
	case CommandSaslAuthenticate:
		resp, err = DecodeSaslAuthenticateResponse(dec)
	case CommandOpen:
		resp, err = DecodeOpenResponse(dec)
	case CommandRoute:
		resp, err = DecodeRouteResponse(dec)
	case CommandPartitions:
		resp, err = DecodePartitionsResponse(dec)
	case CommandStreamStats:
		resp, err = DecodeStreamStatsResponse(dec)
	default:
		return nil, false, nil
	}
	return resp, true, err
}
