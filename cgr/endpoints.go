// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package cgr

import (
	"sort"

	"github.com/ud3tn/godtn/bpv7"
)

// EndpointListUnion returns the sorted, deduplicated union of a and b, ordered by EID string
// comparison.
//
// The source's endpoint_list_union destructively consumes b's intrusive list nodes into a; in
// this slice-based model there is nothing to free, so the caller simply keeps the returned
// slice in place of both inputs.
func EndpointListUnion(a, b []bpv7.EndpointID) []bpv7.EndpointID {
	merged := make([]bpv7.EndpointID, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return EndpointListStripAndSort(merged)
}

// EndpointListDifference removes every EID present in b from a, returning the remainder.
func EndpointListDifference(a, b []bpv7.EndpointID) []bpv7.EndpointID {
	if len(b) == 0 {
		return a
	}

	remove := make(map[string]struct{}, len(b))
	for _, eid := range b {
		remove[eid.String()] = struct{}{}
	}

	result := make([]bpv7.EndpointID, 0, len(a))
	for _, eid := range a {
		if _, found := remove[eid.String()]; !found {
			result = append(result, eid)
		}
	}
	return result
}

// EndpointListStripAndSort deduplicates list in place and returns it sorted by EID string.
func EndpointListStripAndSort(list []bpv7.EndpointID) []bpv7.EndpointID {
	sort.Slice(list, func(i, j int) bool {
		return list[i].String() < list[j].String()
	})

	out := list[:0]
	var prev string
	first := true
	for _, eid := range list {
		s := eid.String()
		if first || s != prev {
			out = append(out, eid)
			prev = s
			first = false
		}
	}
	return out
}
