package jsonsax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringDeepCopy(t *testing.T) {
	for _, in := range []string{"hello, world!", ""} {
		out := StringDeepCopy(in)
		require.Equal(t, in, out)
	}
}

func TestBorrowedStringCloneIsIndependentOfSource(t *testing.T) {
	src := []byte("mutate me")
	bs := BorrowedString{s: unsafeStringFromBytes(src)}
	require.Equal(t, "mutate me", bs.String())
	require.Equal(t, 9, bs.Len())

	cloned := bs.Clone()
	copy(src, "zzzzzzzzz")

	require.Equal(t, "mutate me", cloned)
	require.Equal(t, "zzzzzzzzz", bs.String(), "the borrowed view should reflect the mutation, proving it wasn't copied")
}
