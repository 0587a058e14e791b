package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("alice", "bob"), PairKey("bob", "alice"))
	assert.Equal(t, "5:alice#bob", PairKey("bob", "alice"))
}

func TestPairKey_HandlesContainingSeparatorDoNotCollide(t *testing.T) {
	assert.NotEqual(t, PairKey("a#b", "c"), PairKey("a", "b#c"))
	assert.NotEqual(t, PairKey("a", "#b"), PairKey("a#", "b"))
}

func TestSplitPairKey(t *testing.T) {
	for _, pair := range [][2]string{{"alice", "bob"}, {"a#b", "c"}, {"a", "b#c"}, {"", "x"}} {
		low, high, ok := SplitPairKey(PairKey(pair[0], pair[1]))
		require.True(t, ok)
		wantLow, wantHigh := CanonicalPair(pair[0], pair[1])
		assert.Equal(t, wantLow, low)
		assert.Equal(t, wantHigh, high)
	}

	for _, bad := range []string{"alice#bob", "9:alice#bob", "x:alice#bob", "5:alicebob"} {
		_, _, ok := SplitPairKey(bad)
		assert.False(t, ok, bad)
	}
}

func TestValidUserID(t *testing.T) {
	assert.True(t, ValidUserID("alice"))
	assert.False(t, ValidUserID(""))
	assert.False(t, ValidUserID("a#b"))
}
