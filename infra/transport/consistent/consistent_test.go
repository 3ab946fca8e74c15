package consistent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type member string

func (m member) String() string { return string(m) }

func TestGetNEmptyRing(t *testing.T) {
	c := New[member]()
	_, err := c.GetN("key", 1)
	assert.ErrorIs(t, err, ErrEmptyRing)
}

func TestGetNReturnsAllWhenNExceedsMembers(t *testing.T) {
	c := New[member]()
	c.Set([]member{"a", "b"})

	out, err := c.GetN("any-key", 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []member{"a", "b"}, out)
}

func TestGetNIsDeterministicForSameKey(t *testing.T) {
	c := New[member]()
	c.Set([]member{"a", "b", "c", "d"})

	first, err := c.GetN("sticky-key", 1)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := c.GetN("sticky-key", 1)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGetNReturnsDistinctMembers(t *testing.T) {
	c := New[member]()
	c.Set([]member{"a", "b", "c", "d", "e"})

	out, err := c.GetN("key", 3)
	require.NoError(t, err)
	require.Len(t, out, 3)

	seen := make(map[member]bool)
	for _, m := range out {
		assert.False(t, seen[m], "member %v returned twice", m)
		seen[m] = true
	}
}

func TestSetRebuildsRingOnMembershipChange(t *testing.T) {
	c := New[member]()
	c.Set([]member{"a"})

	out, err := c.GetN("key", 1)
	require.NoError(t, err)
	assert.Equal(t, []member{"a"}, out)

	c.Set([]member{"a", "b"})
	out, err = c.GetN("key", 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []member{"a", "b"}, out)
}
