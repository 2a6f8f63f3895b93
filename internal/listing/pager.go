package listing

// DefaultMaxVisible is the pager width used when a screen does not set one.
const DefaultMaxVisible = 5

// PageNumbers returns the contiguous pager window for current out of total
// pages: min(maxVisible, total) numbers, centered on current where possible
// and clamped to [1, total].
func PageNumbers(current, total, maxVisible int) []int {
	if total <= 0 {
		return []int{}
	}
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisible
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	start := max(1, current-maxVisible/2)
	end := min(total, start+maxVisible-1)
	if end-start < maxVisible-1 {
		start = max(1, end-maxVisible+1)
	}

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// TotalPages returns ceil(count/pageSize).
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}
