package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// parseChapterSelection converts a selection string like "1,3,5-7" or
// "all" into sorted 0-based indices. Out-of-range entries are dropped.
func parseChapterSelection(selection string, total int) ([]int, error) {
	selection = strings.ToLower(strings.TrimSpace(selection))

	if selection == "all" {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid selection range %q", part)
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid selection range %q", part)
			}
			for n := start; n <= end; n++ {
				seen[n-1] = struct{}{}
			}
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid selection entry %q", part)
		}
		seen[n-1] = struct{}{}
	}

	var indices []int
	for i := range seen {
		if i >= 0 && i < total {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	return indices, nil
}
