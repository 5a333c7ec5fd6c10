package genre

import (
	"cmp"
	"slices"
)

func sortCounts(counts []Count) {
	slices.SortStableFunc(counts, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Genre, b.Genre)
	})
}
