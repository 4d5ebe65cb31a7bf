package rsproto

// PeerProperties advertises client properties and collects the
// broker's. First command of the connect handshake.
type PeerProperties struct {
	correlation
	Properties map[string]string
}

func NewPeerProperties(properties map[string]string) *PeerProperties {
	return &PeerProperties{Properties: properties}
}

func (p *PeerProperties) Key() uint16 {
	return CommandPeerProperties
}

func (p *PeerProperties) Version() uint16 {
	return Version1
}

func (p *PeerProperties) SizeNeeded() int {
	size := correlatedHeaderSize + 4
	for k, v := range p.Properties {
		size += StringSize(k) + StringSize(v)
	}
	return size
}

func (p *PeerProperties) Write(enc *Encoder) (int, error) {
	n := p.writeHeader(enc, CommandPeerProperties)
	n += enc.WriteInt32(int32(len(p.Properties)))
	for k, v := range p.Properties {
		n += enc.WriteString(k)
		n += enc.WriteString(v)
	}
	return n, nil
}

// PeerPropertiesResponse PeerPropertiesResponse
type PeerPropertiesResponse struct {
	correlation
	Code       ResponseCode
	Properties map[string]string
}

func (p *PeerPropertiesResponse) ResponseCode() ResponseCode {
	return p.Code
}

func DecodePeerPropertiesResponse(dec *Decoder) (*PeerPropertiesResponse, error) {
	id, code, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	resp := &PeerPropertiesResponse{Code: code}
	resp.SetCorrelationId(id)
	count, err := dec.Int32()
	if err != nil {
		return nil, err
	}
	resp.Properties = make(map[string]string, count)
	for i := int32(0); i < count; i++ {
		k, err := dec.String()
		if err != nil {
			return nil, err
		}
		v, err := dec.String()
		if err != nil {
			return nil, err
		}
		resp.Properties[k] = v
	}
	return resp, nil
}

// SaslHandshake asks the broker for its SASL mechanisms. Empty body.
type SaslHandshake struct {
	correlation
}

func NewSaslHandshake() *SaslHandshake {
	return &SaslHandshake{}
}

func (s *SaslHandshake) Key() uint16 {
	return CommandSaslHandshake
}

func (s *SaslHandshake) Version() uint16 {
	return Version1
}

func (s *SaslHandshake) SizeNeeded() int {
	return correlatedHeaderSize
}

func (s *SaslHandshake) Write(enc *Encoder) (int, error) {
	return s.writeHeader(enc, CommandSaslHandshake), nil
}

// SaslHandshakeResponse SaslHandshakeResponse
type SaslHandshakeResponse struct {
	correlation
	Code       ResponseCode
	Mechanisms []string
}

func (s *SaslHandshakeResponse) ResponseCode() ResponseCode {
	return s.Code
}

func DecodeSaslHandshakeResponse(dec *Decoder) (*SaslHandshakeResponse, error) {
	id, code, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	resp := &SaslHandshakeResponse{Code: code}
	resp.SetCorrelationId(id)
	count, err := dec.Int32()
	if err != nil {
		return nil, err
	}
	resp.Mechanisms = make([]string, 0, count)
	for i := int32(0); i < count; i++ {
		m, err := dec.String()
		if err != nil {
			return nil, err
		}
		resp.Mechanisms = append(resp.Mechanisms, m)
	}
	return resp, nil
}

// SaslAuthenticate carries one round of the chosen mechanism.
type SaslAuthenticate struct {
	correlation
	Mechanism string
	SaslData  []byte
}

func NewSaslAuthenticate(mechanism string, saslData []byte) *SaslAuthenticate {
	return &SaslAuthenticate{Mechanism: mechanism, SaslData: saslData}
}

func (s *SaslAuthenticate) Key() uint16 {
	return CommandSaslAuthenticate
}

func (s *SaslAuthenticate) Version() uint16 {
	return Version1
}

func (s *SaslAuthenticate) SizeNeeded() int {
	return correlatedHeaderSize + StringSize(s.Mechanism) + BytesSize(s.SaslData)
}

func (s *SaslAuthenticate) Write(enc *Encoder) (int, error) {
	n := s.writeHeader(enc, CommandSaslAuthenticate)
	n += enc.WriteString(s.Mechanism)
	n += enc.WriteBytes(s.SaslData)
	return n, nil
}

// SaslAuthenticateResponse SaslAuthenticateResponse
type SaslAuthenticateResponse struct {
	correlation
	Code      ResponseCode
	Challenge []byte
}

func (s *SaslAuthenticateResponse) ResponseCode() ResponseCode {
	return s.Code
}

func DecodeSaslAuthenticateResponse(dec *Decoder) (*SaslAuthenticateResponse, error) {
	id, code, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	resp := &SaslAuthenticateResponse{Code: code}
	resp.SetCorrelationId(id)
	if dec.Len() > 0 {
		if resp.Challenge, err = dec.Bytes(); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// Open picks the virtual host after authentication.
type Open struct {
	correlation
	VirtualHost string
}

func NewOpen(virtualHost string) *Open {
	return &Open{VirtualHost: virtualHost}
}

func (o *Open) Key() uint16 {
	return CommandOpen
}

func (o *Open) Version() uint16 {
	return Version1
}

func (o *Open) SizeNeeded() int {
	return correlatedHeaderSize + StringSize(o.VirtualHost)
}

func (o *Open) Write(enc *Encoder) (int, error) {
	n := o.writeHeader(enc, CommandOpen)
	n += enc.WriteString(o.VirtualHost)
	return n, nil
}

// OpenResponse OpenResponse. Brokers newer than 3.11 append connection
// properties (advertised host/port), older ones stop after the code.
type OpenResponse struct {
	correlation
	Code       ResponseCode
	Properties map[string]string
}

func (o *OpenResponse) ResponseCode() ResponseCode {
	return o.Code
}

func DecodeOpenResponse(dec *Decoder) (*OpenResponse, error) {
	id, code, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	resp := &OpenResponse{Code: code, Properties: map[string]string{}}
	resp.SetCorrelationId(id)
	if dec.Len() == 0 {
		return resp, nil
	}
	count, err := dec.Int32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < count; i++ {
		k, err := dec.String()
		if err != nil {
			return nil, err
		}
		v, err := dec.String()
		if err != nil {
			return nil, err
		}
		resp.Properties[k] = v
	}
	return resp, nil
}

// Close is sent by whichever side wants to end the connection. The
// other side answers with a plain response before the socket goes
// away.
type Close struct {
	correlation
	ClosingCode ResponseCode
	Reason      string
}

func NewClose(code ResponseCode, reason string) *Close {
	return &Close{ClosingCode: code, Reason: reason}
}

func (c *Close) Key() uint16 {
	return CommandClose
}

func (c *Close) Version() uint16 {
	return Version1
}

func (c *Close) SizeNeeded() int {
	return correlatedHeaderSize + 2 + StringSize(c.Reason)
}

func (c *Close) Write(enc *Encoder) (int, error) {
	n := c.writeHeader(enc, CommandClose)
	n += enc.WriteUint16(uint16(c.ClosingCode))
	n += enc.WriteString(c.Reason)
	return n, nil
}

// DecodeClose decodes a broker-initiated Close request. The key and
// version have already been consumed.
func DecodeClose(dec *Decoder) (*Close, error) {
	id, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	closingCode, err := dec.Uint16()
	if err != nil {
		return nil, err
	}
	reason, err := dec.String()
	if err != nil {
		return nil, err
	}
	c := &Close{ClosingCode: ResponseCode(closingCode), Reason: reason}
	c.SetCorrelationId(id)
	return c, nil
}

// CloseResponse answers a broker-initiated Close.
type CloseResponse struct {
	correlation
	Code ResponseCode
}

func NewCloseResponse(correlationId uint32, code ResponseCode) *CloseResponse {
	c := &CloseResponse{Code: code}
	c.SetCorrelationId(correlationId)
	return c
}

func (c *CloseResponse) Key() uint16 {
	return CommandClose | ResponseFlag
}

func (c *CloseResponse) Version() uint16 {
	return Version1
}

func (c *CloseResponse) ResponseCode() ResponseCode {
	return c.Code
}

func (c *CloseResponse) SizeNeeded() int {
	return correlatedHeaderSize + 2
}

func (c *CloseResponse) Write(enc *Encoder) (int, error) {
	n := c.writeHeader(enc, CommandClose|ResponseFlag)
	n += enc.WriteUint16(uint16(c.Code))
	return n, nil
}

// Tune fixes frame max and heartbeat for the connection. Flows both
// ways with the same layout and no correlation id.
type Tune struct {
	FrameMax  uint32
	Heartbeat uint32
}

func NewTune(frameMax uint32, heartbeat uint32) *Tune {
	return &Tune{FrameMax: frameMax, Heartbeat: heartbeat}
}

func (t *Tune) Key() uint16 {
	return CommandTune
}

func (t *Tune) Version() uint16 {
	return Version1
}

func (t *Tune) SizeNeeded() int {
	return headerSize + 4 + 4
}

func (t *Tune) Write(enc *Encoder) (int, error) {
	n := enc.WriteUint16(CommandTune)
	n += enc.WriteUint16(Version1)
	n += enc.WriteUint32(t.FrameMax)
	n += enc.WriteUint32(t.Heartbeat)
	return n, nil
}

// DecodeTune DecodeTune
func DecodeTune(dec *Decoder) (*Tune, error) {
	frameMax, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	heartbeat, err := dec.Uint32()
	if err != nil {
		return nil, err
	}
	return &Tune{FrameMax: frameMax, Heartbeat: heartbeat}, nil
}
