package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	page, meta := paginate(all, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, 3, meta.TotalPages)

	page, _ = paginate(all, 3, 2)
	assert.Equal(t, []int{5}, page)

	page, _ = paginate(all, 4, 2)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestPaginate_HugePageNumber(t *testing.T) {
	all := []int{1, 2, 3}

	for _, p := range []int{math.MaxInt, 1 << 62, math.MaxInt / DefaultPerPage} {
		assert.NotPanics(t, func() {
			page, meta := paginate(all, p, DefaultPerPage)
			assert.Empty(t, page)
			assert.Equal(t, 3, meta.Total)
			assert.Equal(t, p, meta.Page)
		})
	}
}

func TestPaginate_Defaults(t *testing.T) {
	all := make([]int, 30)

	page, meta := paginate(all, 0, 0)
	assert.Len(t, page, DefaultPerPage)
	assert.Equal(t, 1, meta.Page)

	_, meta = paginate(all, 1, MaxPerPage+1)
	assert.Equal(t, DefaultPerPage, meta.PerPage)
}
