package rsproto

import (
	"io"

	"github.com/pkg/errors"
)

// WriteCommand stages the outer length prefix plus the command bytes
// in one pooled buffer and hands them to the writer in a single call.
// It does not serialize concurrent callers; the Connection's write gate
// does that.
func WriteCommand(cmd Command, w io.Writer) (int, error) {
	size := cmd.SizeNeeded()
	enc := NewEncoder()
	defer enc.End()

	enc.WriteUint32(uint32(size))
	n, err := cmd.Write(enc)
	if err != nil {
		return 0, err
	}
	if n != size {
		return 0, errors.Wrapf(ErrEncodeSizeMismatch, "%s wrote %d, size needed %d", CommandName(cmd.Key()), n, size)
	}
	return w.Write(enc.Bytes())
}

// TryReadFrame slices one length-delimited frame off the front of buf.
// Returns the frame payload (without the length prefix) and the number
// of bytes consumed, or (nil, 0) when buf does not yet hold a complete
// frame. A zero-length payload yields an empty, non-nil frame.
func TryReadFrame(buf []byte) ([]byte, int) {
	if len(buf) < LenPrefixSize {
		return nil, 0
	}
	payload := int(uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]))
	if len(buf) < LenPrefixSize+payload {
		return nil, 0
	}
	return buf[LenPrefixSize : LenPrefixSize+payload], LenPrefixSize + payload
}

// PeekFrameLen reads the outer length prefix without consuming bytes.
// ok is false when fewer than four bytes are available.
func PeekFrameLen(buf []byte) (uint32, bool) {
	if len(buf) < LenPrefixSize {
		return 0, false
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), true
}
