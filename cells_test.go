package bag

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zone string

func (zone) Storer() Replace { return Replace{} }

type label string

func (label) Storer() Append { return Append{} }

func TestCellKeysArePolicyTypes(t *testing.T) {
	l := NewLayer("keys")
	StorePut(l, zone("a"))
	StoreAppend(l, label("x"))

	require.Len(t, l.props, 2)
	assert.Contains(t, l.props, keyOf[ReplaceStore[zone]]())
	assert.Contains(t, l.props, keyOf[AppendStore[label]]())
}

func TestMismatchedCellPanics(t *testing.T) {
	l := NewLayer("corrupt")
	StorePut(l, zone("a"))
	// plant a cell of the wrong shape under the zone key
	l.props[keyOf[ReplaceStore[zone]]()] = &typedCell[AppendStore[label], []label, iterLabels]{}

	assert.Panics(t, func() {
		Load[zone](l)
	})
}

func TestSlotCreatesZeroValue(t *testing.T) {
	props := cells{}
	v := slot[AppendStore[label], []label, iterLabels](props)
	assert.True(t, v.IsSet())
	items, _ := v.Get()
	assert.Empty(t, items)
	assert.Len(t, props, 1)
}

func TestCloneKeepsUnsetMarkers(t *testing.T) {
	l := NewLayer("unset")
	Unset[zone](l)
	clone := l.Clone()

	v, ok := lookup[ReplaceStore[zone], zone, Value[zone]](clone.props)
	require.True(t, ok)
	assert.True(t, v.IsUnset())
	assert.Equal(t, "bag.zone", v.Reason())
}

type iterLabels = iter.Seq[label]
