package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadlineQueuePopDueOrderedAndCapped(t *testing.T) {
	q := NewDeadlineQueue[string](10)
	require.NoError(t, q.Insert("c", 30))
	require.NoError(t, q.Insert("a", 10))
	require.NoError(t, q.Insert("b", 20))

	due := q.PopDue(25, 2)
	assert.Equal(t, []string{"a", "b"}, due)
	assert.Equal(t, 1, q.Len())

	due = q.PopDue(100, 10)
	assert.Equal(t, []string{"c"}, due)
	assert.Equal(t, 0, q.Len())
}

func TestDeadlineQueueUpdateResorts(t *testing.T) {
	q := NewDeadlineQueue[string](10)
	require.NoError(t, q.Insert("a", 10))
	require.NoError(t, q.Insert("b", 20))

	assert.True(t, q.Update("a", 30))
	due := q.PopDue(20, 10)
	assert.Equal(t, []string{"b"}, due)
}

func TestDeadlineQueueUpdateMissingKey(t *testing.T) {
	q := NewDeadlineQueue[string](10)
	assert.False(t, q.Update("missing", 10))
}

func TestDeadlineQueueRemove(t *testing.T) {
	q := NewDeadlineQueue[string](10)
	require.NoError(t, q.Insert("a", 10))
	assert.True(t, q.Remove("a"))
	assert.False(t, q.Remove("a"))
	assert.Equal(t, 0, q.Len())
}

func TestDeadlineQueueCapacity(t *testing.T) {
	q := NewDeadlineQueue[string](1)
	require.NoError(t, q.Insert("a", 10))
	err := q.Insert("b", 20)
	require.Error(t, err)
}
