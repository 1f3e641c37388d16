package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFloat64Slice(t *testing.T) {
	xs, cleanup := GetFloat64Slice(100)
	require.Len(t, xs, 100)
	xs[99] = 1.5
	cleanup()

	small, cleanup2 := GetFloat64Slice(10)
	defer cleanup2()
	require.Len(t, small, 10)

	empty, cleanup3 := GetFloat64Slice(0)
	defer cleanup3()
	require.Empty(t, empty)
}
