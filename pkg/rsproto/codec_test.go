package rsproto

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIntRoundTrip(t *testing.T) {
	enc := NewEncoder()
	defer enc.End()

	enc.WriteUint8(0xAB)
	enc.WriteUint16(0xBEEF)
	enc.WriteUint32(0xDEADBEEF)
	enc.WriteUint64(0x0102030405060708)
	enc.WriteInt16(-1)
	enc.WriteInt32(-2)
	enc.WriteInt64(-3)
	enc.WriteBool(true)
	enc.WriteBool(false)

	dec := NewDecoder(enc.Bytes())

	u8, err := dec.Uint8()
	assert.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)

	u16, err := dec.Uint16()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), u16)

	u32, err := dec.Uint32()
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	u64, err := dec.Uint64()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)

	i16, err := dec.Int16()
	assert.NoError(t, err)
	assert.Equal(t, int16(-1), i16)

	i32, err := dec.Int32()
	assert.NoError(t, err)
	assert.Equal(t, int32(-2), i32)

	i64, err := dec.Int64()
	assert.NoError(t, err)
	assert.Equal(t, int64(-3), i64)

	b, err := dec.Bool()
	assert.NoError(t, err)
	assert.Equal(t, true, b)
	b, err = dec.Bool()
	assert.NoError(t, err)
	assert.Equal(t, false, b)

	assert.Equal(t, 0, dec.Len())
}

func TestStringRoundTrip(t *testing.T) {
	enc := NewEncoder()
	defer enc.End()

	n := enc.WriteString("stream-1")
	assert.Equal(t, StringSize("stream-1"), n)
	n = enc.WriteString("")
	assert.Equal(t, 2, n)
	n = enc.WriteNullString()
	assert.Equal(t, 2, n)

	dec := NewDecoder(enc.Bytes())

	s, err := dec.String()
	assert.NoError(t, err)
	assert.Equal(t, "stream-1", s)

	s, err = dec.String()
	assert.NoError(t, err)
	assert.Equal(t, "", s)

	// null decodes like empty
	s, err = dec.String()
	assert.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestStringWireFormat(t *testing.T) {
	enc := NewEncoder()
	defer enc.End()
	enc.WriteString("p1")
	assert.Equal(t, []byte{0x00, 0x02, 0x70, 0x31}, enc.Bytes())

	enc2 := NewEncoder()
	defer enc2.End()
	enc2.WriteNullString()
	assert.Equal(t, []byte{0xFF, 0xFF}, enc2.Bytes())
}

func TestBytesRoundTrip(t *testing.T) {
	enc := NewEncoder()
	defer enc.End()

	enc.WriteBytes([]byte{1, 2, 3})
	enc.WriteBytes([]byte{})
	enc.WriteBytes(nil)

	dec := NewDecoder(enc.Bytes())

	b, err := dec.Bytes()
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)

	b, err = dec.Bytes()
	assert.NoError(t, err)
	assert.Equal(t, []byte{}, b)

	b, err = dec.Bytes()
	assert.NoError(t, err)
	assert.Nil(t, b)
}

func TestDecoderUnderflow(t *testing.T) {
	dec := NewDecoder([]byte{0x01})
	_, err := dec.Uint32()
	assert.Equal(t, ErrUnderflow, errors.Cause(err))

	dec = NewDecoder([]byte{})
	_, err = dec.Uint8()
	assert.Equal(t, ErrUnderflow, errors.Cause(err))
}

func TestDecoderOversizeString(t *testing.T) {
	// length field claims 16 bytes, only 2 remain
	dec := NewDecoder([]byte{0x00, 0x10, 0x61, 0x62})
	_, err := dec.String()
	assert.Equal(t, ErrOversizeString, errors.Cause(err))
}

func TestWriteStringTooLongPanics(t *testing.T) {
	enc := NewEncoder()
	defer enc.End()
	big := make([]byte, 1<<16)
	assert.Panics(t, func() {
		enc.WriteString(string(big))
	})
}
