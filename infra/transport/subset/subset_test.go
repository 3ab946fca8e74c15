package subset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type addr string

func (a addr) String() string { return string(a) }

func TestSubsetReturnsEverythingWhenUnderCap(t *testing.T) {
	in := []addr{"a", "b"}
	out := Subset("key", in, 5)
	assert.Equal(t, in, out)
}

func TestSubsetBoundsToRequestedCount(t *testing.T) {
	in := []addr{"a", "b", "c", "d", "e"}
	out := Subset("key", in, 2)
	assert.Len(t, out, 2)
}

func TestSubsetIsStickyForSameKey(t *testing.T) {
	in := []addr{"a", "b", "c", "d", "e"}
	first := Subset("sender-42", in, 1)
	for i := 0; i < 10; i++ {
		again := Subset("sender-42", in, 1)
		assert.Equal(t, first, again)
	}
}
