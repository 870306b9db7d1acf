package engine

import "sort"

// interval is a half-open-by-convention [start, end] span in
// milliseconds; start <= end always holds for intervals this package
// constructs.
type interval struct {
	start, end int64
}

func (iv interval) length() int64 {
	if iv.end <= iv.start {
		return 0
	}
	return iv.end - iv.start
}

// mergeIntervals sorts and coalesces overlapping or touching intervals.
func mergeIntervals(in []interval) []interval {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]interval, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	merged := []interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.start <= last.end {
			if iv.end > last.end {
				last.end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// subtractIntervals returns the portions of a's intervals not covered
// by any interval in b, i.e. a \ union(b).
func subtractIntervals(a, b []interval) []interval {
	bMerged := mergeIntervals(b)
	var out []interval
	for _, av := range mergeIntervals(a) {
		cur := av
		for _, bv := range bMerged {
			if bv.end <= cur.start || bv.start >= cur.end {
				continue
			}
			if bv.start > cur.start {
				out = append(out, interval{cur.start, bv.start})
			}
			if bv.end > cur.start {
				cur.start = bv.end
			}
			if cur.start >= cur.end {
				break
			}
		}
		if cur.start < cur.end {
			out = append(out, cur)
		}
	}
	return out
}

func measure(intervals []interval) int64 {
	var total int64
	for _, iv := range mergeIntervals(intervals) {
		total += iv.length()
	}
	return total
}
