package jsonsax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCarryBufferAppendAndClear(t *testing.T) {
	c := newCarryBuffer()
	c.Append([]byte("hello world"), 0, 5)
	require.Equal(t, "hello", string(c.Bytes()))
	require.Equal(t, 5, c.Len())

	c.Clear()
	require.Equal(t, 0, c.Len())
	require.Equal(t, "", string(c.Bytes()))
}

func TestCarryBufferAppendByteGrowsPastInitialCapacity(t *testing.T) {
	c := newCarryBuffer()
	var grew bool
	c.debug = func(format string, args ...interface{}) { grew = true }

	for i := 0; i < initialCarrySize+10; i++ {
		c.AppendByte(byte('a' + i%26))
	}
	require.Equal(t, initialCarrySize+10, c.Len())
	require.True(t, grew, "expected at least one growth debug callback")
}

func TestCarryBufferAppendGrowsToFitLargeSource(t *testing.T) {
	c := newCarryBuffer()
	src := make([]byte, initialCarrySize*3)
	for i := range src {
		src[i] = byte(i)
	}
	c.Append(src, 0, len(src))
	require.Equal(t, src, c.Bytes())
}
