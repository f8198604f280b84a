package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageResultDerivesPagination(t *testing.T) {
	// 41 条、每页 20：共 3 页
	first := NewPageResult(nil, 41, 1, 20)
	assert.Equal(t, int64(3), first.Pages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)

	middle := NewPageResult(nil, 41, 2, 20)
	assert.True(t, middle.HasNext)
	assert.True(t, middle.HasPrev)

	last := NewPageResult(nil, 41, 3, 20)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)
}

func TestNewPageResultEmptySet(t *testing.T) {
	empty := NewPageResult(nil, 0, 1, 20)
	assert.Zero(t, empty.Pages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}
