package bytequeue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteAndPeek(t *testing.T) {
	q := New()
	defer q.Reset()

	_, err := q.Write([]byte{1, 2, 3, 4})
	assert.NoError(t, err)

	b := q.Peek(0, 4)
	assert.Equal(t, []byte{1, 2, 3, 4}, b)
	assert.Equal(t, 4, q.Len())
}

func TestPeekPastEnd(t *testing.T) {
	q := New()
	defer q.Reset()

	_, _ = q.Write([]byte{1, 2})
	b := q.Peek(0, 10)
	assert.Equal(t, []byte{1, 2}, b)

	assert.Nil(t, q.Peek(5, 1))
}

func TestDiscard(t *testing.T) {
	q := New()
	defer q.Reset()

	_, _ = q.Write([]byte{1, 2, 3, 4, 5, 6})
	q.Discard(4)
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, uint64(4), q.ReadPosition())
	assert.Equal(t, []byte{5, 6}, q.Peek(4, 2))

	// positions stay absolute across further writes
	_, _ = q.Write([]byte{7, 8})
	assert.Equal(t, []byte{5, 6, 7, 8}, q.Peek(4, 4))
	q.Discard(8)
	assert.Equal(t, 0, q.Len())
}
