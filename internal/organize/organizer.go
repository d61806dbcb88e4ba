package organize

import (
	"fmt"
	"sort"
	"strings"

	"curator/internal/media"
)

// Organize sorts candidates ascending by capture time, then fills in the
// bucket key and assigned name for each. The input items must carry a
// verified CapturedAt; items without one are rejected rather than given
// a fallback date.
//
// The returned slice is a new ordering of the same values. Within one
// run, items that would collide on an assigned name receive a numeric
// suffix in timeline order, so output names are unique and stable for
// identical inputs.
func Organize(candidates []media.ProcessedItem, strategy Strategy) ([]media.ProcessedItem, error) {
	for _, item := range candidates {
		if item.CapturedAt.IsZero() {
			return nil, fmt.Errorf("organize: item %s has no verified capture time", item.Identity)
		}
	}

	items := make([]media.ProcessedItem, len(candidates))
	copy(items, candidates)

	// Timeline order is load-bearing: manifests and naming suffixes
	// both assume it. Ties break on original name, then identity, to
	// keep the ordering total and reproducible.
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CapturedAt.Equal(items[j].CapturedAt) {
			return items[i].CapturedAt.Before(items[j].CapturedAt)
		}
		if items[i].OriginalName != items[j].OriginalName {
			return items[i].OriginalName < items[j].OriginalName
		}
		return items[i].Identity < items[j].Identity
	})

	seen := make(map[string]int, len(items))
	for i := range items {
		items[i].BucketKey = BucketKey(items[i].CapturedAt, strategy)
		name := AssignedName(items[i].CapturedAt, items[i].OriginalName)
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = withSuffix(name, n+1)
		} else {
			seen[name] = 1
		}
		items[i].AssignedName = name
	}
	return items, nil
}

// withSuffix inserts a collision counter before the extension.
func withSuffix(name string, n int) string {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return fmt.Sprintf("%s_%d", name, n)
	}
	return fmt.Sprintf("%s_%d%s", name[:dot], n, name[dot:])
}

// BucketCounts tallies organized items per bucket key.
func BucketCounts(items []media.ProcessedItem) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item.BucketKey]++
	}
	return counts
}
