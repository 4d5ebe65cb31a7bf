package bytequeue

import "github.com/valyala/bytebufferpool"

// ByteQueue accumulates inbound socket bytes until complete frames can
// be sliced off the front. Positions are absolute over the life of the
// queue so callers can peek ahead and discard up to a position later.
type ByteQueue struct {
	buffer     *bytebufferpool.ByteBuffer
	offsetSize uint64 // bytes discarded so far
	totalSize  uint64 // bytes written so far
}

func New() *ByteQueue {
	return &ByteQueue{
		buffer: bytebufferpool.Get(),
	}
}

// Write appends bytes to the tail of the queue.
func (b *ByteQueue) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := b.buffer.Write(p)
	if err != nil {
		return 0, err
	}
	b.totalSize += uint64(n)
	return n, nil
}

// Peek reads up to n bytes starting at the absolute position without
// consuming them. The returned slice is valid until the next Write or
// Discard.
func (b *ByteQueue) Peek(startPosition uint64, n int) []byte {
	if b.totalSize == 0 {
		return nil
	}
	if startPosition >= b.totalSize {
		return nil
	}
	startIndex := int(startPosition - b.offsetSize)
	if startIndex < 0 {
		return nil
	}
	if startIndex+n > len(b.buffer.B) {
		n = len(b.buffer.B) - startIndex
	}
	return b.buffer.B[startIndex : startIndex+n]
}

// Len returns the number of unconsumed bytes.
func (b *ByteQueue) Len() int {
	return len(b.buffer.B)
}

// ReadPosition returns the absolute position of the first unconsumed byte.
func (b *ByteQueue) ReadPosition() uint64 {
	return b.offsetSize
}

// Discard consumes everything before the absolute end position.
func (b *ByteQueue) Discard(endPosition uint64) {
	n := int(endPosition - b.offsetSize)
	_ = b.discard(n)
}

func (b *ByteQueue) discard(n int) int {
	if n <= 0 {
		return 0
	}
	if n >= len(b.buffer.B) {
		n = len(b.buffer.B)
		b.offsetSize += uint64(n)
		b.buffer.B = b.buffer.B[:0]
		return n
	}
	b.buffer.B = b.buffer.B[n:]
	b.offsetSize += uint64(n)
	return n
}

// Reset empties the queue and returns the backing buffer to the pool.
func (b *ByteQueue) Reset() {
	b.buffer.Reset()
	b.offsetSize = 0
	b.totalSize = 0
	bytebufferpool.Put(b.buffer)
}
