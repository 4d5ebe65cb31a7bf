package rsproto

import (
	"math"

	"github.com/valyala/bytebufferpool"
)

var encoderPool = &bytebufferpool.Pool{}

// Encoder stages command bytes before they go to the socket. The
// backing buffer is pooled, call End when done.
type Encoder struct {
	w *bytebufferpool.ByteBuffer
}

// NewEncoder NewEncoder
func NewEncoder() *Encoder {
	return &Encoder{
		w: encoderPool.Get(),
	}
}

// Bytes Bytes
func (e *Encoder) Bytes() []byte {
	return e.w.B
}

// Len Len
func (e *Encoder) Len() int {
	return e.w.Len()
}

// End returns the backing buffer to the pool. The slice from Bytes is
// invalid afterwards.
func (e *Encoder) End() {
	encoderPool.Put(e.w)
	e.w = nil
}

// WriteUint8 WriteUint8
func (e *Encoder) WriteUint8(i uint8) int {
	_ = e.w.WriteByte(byte(i))
	return 1
}

// WriteUint16 WriteUint16
func (e *Encoder) WriteUint16(i uint16) int {
	_, _ = e.w.Write([]byte{byte(i >> 8), byte(i & 0xFF)})
	return 2
}

// WriteInt16 WriteInt16
func (e *Encoder) WriteInt16(i int16) int {
	return e.WriteUint16(uint16(i))
}

// WriteUint32 WriteUint32
func (e *Encoder) WriteUint32(i uint32) int {
	_, _ = e.w.Write([]byte{
		byte(i >> 24),
		byte(i >> 16),
		byte(i >> 8),
		byte(i & 0xFF),
	})
	return 4
}

// WriteInt32 WriteInt32
func (e *Encoder) WriteInt32(i int32) int {
	return e.WriteUint32(uint32(i))
}

// WriteUint64 WriteUint64
func (e *Encoder) WriteUint64(i uint64) int {
	_, _ = e.w.Write([]byte{
		byte(i >> 56),
		byte(i >> 48),
		byte(i >> 40),
		byte(i >> 32),
		byte(i >> 24),
		byte(i >> 16),
		byte(i >> 8),
		byte(i & 0xFF),
	})
	return 8
}

// WriteInt64 WriteInt64
func (e *Encoder) WriteInt64(i int64) int {
	return e.WriteUint64(uint64(i))
}

// WriteBool booleans go on the wire as a single byte, 0 or 1.
func (e *Encoder) WriteBool(b bool) int {
	if b {
		return e.WriteUint8(1)
	}
	return e.WriteUint8(0)
}

// WriteString writes an i16 length prefix followed by the UTF-8 bytes.
// A string longer than math.MaxInt16 is a programming error.
func (e *Encoder) WriteString(str string) int {
	if len(str) > math.MaxInt16 {
		panic("rsproto: string too long for i16 length prefix")
	}
	n := e.WriteInt16(int16(len(str)))
	w, _ := e.w.WriteString(str)
	return n + w
}

// WriteNullString writes the null string marker, length -1.
func (e *Encoder) WriteNullString() int {
	return e.WriteInt16(-1)
}

// WriteBytes writes an i32 length prefix followed by the raw bytes.
// nil writes the null marker, length -1.
func (e *Encoder) WriteBytes(b []byte) int {
	if b == nil {
		return e.WriteInt32(-1)
	}
	n := e.WriteInt32(int32(len(b)))
	w, _ := e.w.Write(b)
	return n + w
}

// WriteRaw writes bytes with no length prefix.
func (e *Encoder) WriteRaw(b []byte) int {
	n, _ := e.w.Write(b)
	return n
}

// StringSize is the encoded size of an i16-prefixed string.
func StringSize(str string) int {
	return 2 + len(str)
}

// BytesSize is the encoded size of an i32-prefixed byte array. nil
// encodes as the 4-byte null marker.
func BytesSize(b []byte) int {
	return 4 + len(b)
}
