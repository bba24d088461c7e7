package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationDefaults(t *testing.T) {
	p := Pagination{}
	assert.Equal(t, 0, p.OffsetOrDefault())
	assert.Equal(t, -1, p.LimitOrDefault())

	offset, limit := 5, 10
	p = NewPagination(&offset, &limit)
	assert.Equal(t, 5, p.OffsetOrDefault())
	assert.Equal(t, 10, p.LimitOrDefault())
}

func TestTodoTableName(t *testing.T) {
	assert.Equal(t, "todos", Todo{}.TableName())
}
