package service

import "github.com/ewhamarket/backend/internal/common"

// Pagination defaults
const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

// normalizePage applies defaults: page < 1 → 1, perPage < 1 or > MaxPerPage → DefaultPerPage
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}
	return page, perPage
}

// paginate slices an ordered list into one page.
func paginate[T any](all []T, page, perPage int) ([]T, *common.PageMeta) {
	page, perPage = normalizePage(page, perPage)
	total := len(all)

	// page-1 is compared before multiplying so a huge ?page= cannot overflow
	start := total
	if page-1 <= total/perPage {
		start = min((page-1)*perPage, total)
	}
	end := start + perPage
	if end > total {
		end = total
	}

	out := make([]T, end-start)
	copy(out, all[start:end])
	return out, common.NewPageMeta(page, perPage, total)
}
