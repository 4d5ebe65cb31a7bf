package rsproto

import (
	"github.com/pkg/errors"
)

// Decoder walks a decoded frame. The input slice is not copied, values
// returned by Bytes alias it.
type Decoder struct {
	p      []byte
	offset int
}

// NewDecoder NewDecoder
func NewDecoder(p []byte) *Decoder {
	return &Decoder{
		p: p,
	}
}

// Len remaining bytes
func (d *Decoder) Len() int {
	return len(d.p) - d.offset
}

func (d *Decoder) underflow(want int) error {
	return errors.Wrapf(ErrUnderflow, "need %d bytes at offset %d of %d", want, d.offset, len(d.p))
}

// Uint8 Uint8
func (d *Decoder) Uint8() (uint8, error) {
	if d.offset+1 > len(d.p) {
		return 0, d.underflow(1)
	}
	b := d.p[d.offset]
	d.offset += 1
	return b, nil
}

// Bool Bool
func (d *Decoder) Bool() (bool, error) {
	b, err := d.Uint8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// Int16 Int16
func (d *Decoder) Int16() (int16, error) {
	if d.offset+2 > len(d.p) {
		return 0, d.underflow(2)
	}
	b := d.p[d.offset : d.offset+2]
	d.offset += 2
	return (int16(b[0]) << 8) | int16(b[1]), nil
}

// Uint16 Uint16
func (d *Decoder) Uint16() (uint16, error) {
	i, err := d.Int16()
	if err != nil {
		return 0, err
	}
	return uint16(i), nil
}

// Int32 Int32
func (d *Decoder) Int32() (int32, error) {
	if d.offset+4 > len(d.p) {
		return 0, d.underflow(4)
	}
	b := d.p[d.offset : d.offset+4]
	d.offset += 4
	return (int32(b[0]) << 24) | (int32(b[1]) << 16) | (int32(b[2]) << 8) | int32(b[3]), nil
}

// Uint32 Uint32
func (d *Decoder) Uint32() (uint32, error) {
	i, err := d.Int32()
	if err != nil {
		return 0, err
	}
	return uint32(i), nil
}

// Int64 Int64
func (d *Decoder) Int64() (int64, error) {
	if d.offset+8 > len(d.p) {
		return 0, d.underflow(8)
	}
	b := d.p[d.offset : d.offset+8]
	d.offset += 8
	return (int64(b[0]) << 56) | (int64(b[1]) << 48) | (int64(b[2]) << 40) | int64(b[3])<<32 | int64(b[4])<<24 | int64(b[5])<<16 | int64(b[6])<<8 | int64(b[7]), nil
}

// Uint64 Uint64
func (d *Decoder) Uint64() (uint64, error) {
	i, err := d.Int64()
	if err != nil {
		return 0, err
	}
	return uint64(i), nil
}

// String reads an i16 length prefix and the UTF-8 bytes behind it.
// Length -1 is the null string, returned as "".
func (d *Decoder) String() (string, error) {
	size, err := d.Int16()
	if err != nil {
		return "", err
	}
	if size <= 0 {
		return "", nil
	}
	if d.offset+int(size) > len(d.p) {
		return "", errors.Wrapf(ErrOversizeString, "length %d with %d bytes remaining", size, d.Len())
	}
	b := d.p[d.offset : d.offset+int(size)]
	d.offset += int(size)
	return string(b), nil
}

// Bytes reads an i32 length prefix and the raw bytes behind it. Length
// -1 is the null array, returned as nil.
func (d *Decoder) Bytes() ([]byte, error) {
	size, err := d.Int32()
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, nil
	}
	if size == 0 {
		return []byte{}, nil
	}
	if d.offset+int(size) > len(d.p) {
		return nil, errors.Wrapf(ErrUnderflow, "byte array length %d with %d bytes remaining", size, d.Len())
	}
	b := d.p[d.offset : d.offset+int(size)]
	d.offset += int(size)
	return b, nil
}

// BytesAll returns everything left in the frame.
func (d *Decoder) BytesAll() []byte {
	b := d.p[d.offset:]
	d.offset = len(d.p)
	return b
}
