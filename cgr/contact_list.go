// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package cgr

import "sort"

// ContactListUnion is the central contact graph merge algorithm. Both a and b are assumed
// sorted by From. Every contact in b is either merged into an existing contact of a that
// belongs to the same node (by EID) and whose interval overlaps, or spliced into a as a new
// entry. A contact widened by a merge also absorbs every further contact of the same node it
// now overlaps. The result is sorted by From and overlap-free within each node, provided a and
// b individually were.
//
// Every a-side contact whose capacity-relevant fields changed because of a merge is appended
// to modified, in merge order.
func ContactListUnion(a, b []*Contact) (merged []*Contact, modified []*Contact) {
	merged = append(append([]*Contact(nil), a...))

	for _, cb := range b {
		target := findOverlappingSameNode(merged, cb)
		if target == nil {
			merged = append(merged, cb)
			continue
		}

		changed := mergeContact(target, cb)
		// The widened target may now overlap more contacts of the same node; absorb them too.
		for i := 0; i < len(merged); i++ {
			if ca := merged[i]; ca != target && ca.Node.EID == target.Node.EID && ca.Overlaps(target) {
				changed = mergeContact(target, ca) || changed
				merged = append(merged[:i], merged[i+1:]...)
				i = -1
			}
		}
		if changed {
			modified = append(modified, target)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].From < merged[j].From
	})

	return merged, modified
}

func findOverlappingSameNode(contacts []*Contact, cb *Contact) *Contact {
	for _, ca := range contacts {
		if ca.Node.EID == cb.Node.EID && ca.Overlaps(cb) {
			return ca
		}
	}
	return nil
}

// mergeContact merges new into old in place: old.From/To expand to cover both windows,
// endpoints become their union, and if the bitrate or duration changed, the bitrate is
// overwritten by new's and capacities are recalculated. Ownership of new's endpoint list
// passes to old; new itself is discarded by the caller. Returns true iff capacity was
// recalculated.
func mergeContact(old, new *Contact) bool {
	oldDuration := old.To - old.From
	oldBitrate := old.Bitrate

	if new.From < old.From {
		old.From = new.From
	}
	if new.To > old.To {
		old.To = new.To
	}
	old.Endpoints = EndpointListUnion(old.Endpoints, new.Endpoints)

	newDuration := old.To - old.From
	if new.Bitrate != oldBitrate || newDuration != oldDuration {
		old.Bitrate = new.Bitrate
		old.RecalculateCapacity()
		return true
	}
	return false
}

// ContactListDifference removes from a every contact whose (From, To) matches an entry in b
// exactly. A b-entry with no per-contact endpoints removes the whole a-entry (appended to
// deleted unless it is active, in which case it is left alone); a b-entry with endpoints only
// subtracts those endpoints from the a-entry's per-contact list and records the a-entry in
// modified.
func ContactListDifference(a, b []*Contact) (remaining []*Contact, modified []*Contact, deleted []*Contact) {
	removeSet := make(map[*Contact]struct{})

	for _, cb := range b {
		ca := findExactWindowSameNode(a, cb)
		if ca == nil {
			continue
		}

		if len(cb.Endpoints) == 0 {
			if ca.Active {
				continue
			}
			removeSet[ca] = struct{}{}
			deleted = append(deleted, ca)
		} else {
			ca.Endpoints = EndpointListDifference(ca.Endpoints, cb.Endpoints)
			modified = append(modified, ca)
		}
	}

	if len(removeSet) == 0 {
		return a, modified, deleted
	}

	remaining = make([]*Contact, 0, len(a)-len(removeSet))
	for _, ca := range a {
		if _, gone := removeSet[ca]; !gone {
			remaining = append(remaining, ca)
		}
	}
	return remaining, modified, deleted
}

func findExactWindowSameNode(contacts []*Contact, cb *Contact) *Contact {
	for _, ca := range contacts {
		if ca.Node.EID == cb.Node.EID && ca.From == cb.From && ca.To == cb.To {
			return ca
		}
	}
	return nil
}
