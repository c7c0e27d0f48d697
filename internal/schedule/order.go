package schedule

import (
	"github.com/Kerhoff/dayplan/internal/models"
)

// Reconcile returns stored restricted to the live ids, followed by live ids
// the stored order has never seen, in their live order. Unknown stored ids
// are dropped silently.
func Reconcile(stored, live []string) []string {
	present := make(map[string]bool, len(live))
	for _, id := range live {
		present[id] = true
	}

	out := make([]string, 0, len(live))
	seen := make(map[string]bool, len(live))
	for _, id := range stored {
		if present[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, id := range live {
		if !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}

// CompletedLast is the auto-mode order: open items first, then completed
// ones, each group in input order.
func CompletedLast(items []*models.Item) []*models.Item {
	out := make([]*models.Item, 0, len(items))
	for _, item := range items {
		if !item.Completed {
			out = append(out, item)
		}
	}
	for _, item := range items {
		if item.Completed {
			out = append(out, item)
		}
	}
	return out
}

// CompletedLastIDs partitions an id order the same way CompletedLast does.
func CompletedLastIDs(ids []string, completed func(id string) bool) []string {
	out := make([]string, 0, len(ids))
	var done []string
	for _, id := range ids {
		if completed(id) {
			done = append(done, id)
		} else {
			out = append(out, id)
		}
	}
	return append(out, done...)
}

// MergeVisible writes next, a permutation of visible, into the slots that
// visible ids occupy in order. Hidden ids keep their positions. order must
// contain every visible id.
func MergeVisible(order, visible, next []string) ([]string, error) {
	if len(next) != len(visible) {
		return nil, Invalidf("reorder has %d ids, expected %d", len(next), len(visible))
	}

	want := make(map[string]bool, len(visible))
	for _, id := range visible {
		want[id] = true
	}
	seen := make(map[string]bool, len(next))
	for _, id := range next {
		if !want[id] {
			return nil, Invalidf("id %q is not visible in this list", id)
		}
		if seen[id] {
			return nil, Invalidf("id %q appears more than once", id)
		}
		seen[id] = true
	}

	out := make([]string, len(order))
	k := 0
	for i, id := range order {
		if want[id] {
			out[i] = next[k]
			k++
		} else {
			out[i] = id
		}
	}
	if k != len(next) {
		return nil, Invalidf("stored order is missing visible ids")
	}
	return out, nil
}

// PlaceFirst moves head (restricted to live) to the front in head order
// and appends the remaining live ids in their current relative order.
func PlaceFirst(live, head []string) []string {
	present := make(map[string]bool, len(live))
	for _, id := range live {
		present[id] = true
	}

	out := make([]string, 0, len(live))
	placed := make(map[string]bool, len(head))
	for _, id := range head {
		if present[id] && !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	for _, id := range live {
		if !placed[id] {
			out = append(out, id)
		}
	}
	return out
}

// IDs returns the ids of items in order.
func IDs(items []*models.Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// Arrange returns items sorted by order. Items missing from order are
// appended in input order.
func Arrange(items []*models.Item, order []string) []*models.Item {
	byID := make(map[string]*models.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	out := make([]*models.Item, 0, len(items))
	for _, id := range Reconcile(order, IDs(items)) {
		out = append(out, byID[id])
	}
	return out
}
