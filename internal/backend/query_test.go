package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRange(t *testing.T) {
	q := From("Novels").Range(10, 19)
	assert.Equal(t, 10, q.Offset)
	assert.Equal(t, 10, q.Limit)
	assert.False(t, q.Empty)

	q = From("Novels").Range(-5, 4)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, 5, q.Limit)
}

func TestRange_BackwardsIsEmpty(t *testing.T) {
	q := From("Novels").Range(5, 4)
	assert.True(t, q.Empty)
	assert.Equal(t, 0, q.Limit)

	q.Range(0, 0)
	assert.False(t, q.Empty)
	assert.Equal(t, 1, q.Limit)
}

func TestPageRange(t *testing.T) {
	from, to := PageRange(3, 20)
	assert.Equal(t, 40, from)
	assert.Equal(t, 59, to)

	from, to = PageRange(0, 0)
	assert.Equal(t, 0, from)
	assert.Equal(t, 0, to)

	assert.True(t, HasMore(41, 2, 20))
	assert.False(t, HasMore(40, 2, 20))
	assert.Equal(t, 3, TotalPages(41, 20))
}
