package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollection_LatestLoadWins(t *testing.T) {
	var c Collection[string]

	first := c.Begin()
	second := c.Begin()
	assert.True(t, c.Snapshot().Loading)

	assert.True(t, c.Finish(second, []string{"new"}, ""))
	assert.False(t, c.Finish(first, []string{"old"}, ""))

	s := c.Snapshot()
	assert.Equal(t, []string{"new"}, s.Items)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Err)
}

func TestCollection_ErrorEmptiesItems(t *testing.T) {
	var c Collection[int]
	c.Finish(c.Begin(), []int{1, 2}, "")

	c.Finish(c.Begin(), nil, "Failed to load")
	s := c.Snapshot()
	assert.Empty(t, s.Items)
	assert.Equal(t, "Failed to load", s.Err)
}

func TestCollection_SnapshotIsACopy(t *testing.T) {
	var c Collection[int]
	c.Finish(c.Begin(), []int{1, 2}, "")

	items := c.Items()
	items[0] = 99
	assert.Equal(t, []int{1, 2}, c.Items())

	v, ok := c.Find(func(i int) bool { return i == 2 })
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestCurrent(t *testing.T) {
	var c Current[string]
	v := "a"
	c.Finish(c.Begin(), &v, "")
	assert.Equal(t, "a", *c.Snapshot().Value)

	gen := c.Begin()
	s := c.Snapshot()
	assert.Nil(t, s.Value)
	assert.True(t, s.Loading)

	c.Finish(gen, nil, "Not found.")
	s = c.Snapshot()
	assert.Nil(t, s.Value)
	assert.Equal(t, "Not found.", s.Err)
	assert.False(t, s.Loading)
}
