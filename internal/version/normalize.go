package version

import (
	"sort"

	"github.com/alexanderramin/railorder/internal/domain"
)

// NormalizeItems rebuilds the derived structure of an order's item
// collection after an arbitrary edit: child-id lists are recomputed
// from parent pointers, orphans (parent id not in the collection) are
// treated as roots, parent-pointer cycles are broken at their
// earliest-positioned member, and version paths are reassigned
// depth-first.
//
// Numbering is hint-preserving: an item whose existing version path is
// exactly one level deeper than its parent's new path keeps its
// trailing index, and new siblings are appended after the highest
// claimed index. Repeated normalization without structural change
// therefore never reshuffles version numbers already shown to users.
//
// The input list is not mutated. Output order follows input order; no
// entries are dropped or duplicated.
func NormalizeItems(items []*domain.OrderItem) []*domain.OrderItem {
	out := make([]*domain.OrderItem, len(items))
	index := make(map[string]*domain.OrderItem, len(items))
	position := make(map[string]int, len(items))
	for i, item := range items {
		out[i] = EnsureItemDefaults(item)
		index[out[i].ID] = out[i]
		position[out[i].ID] = i
	}

	// Rebuild child lists from parent pointers. Unresolved parents
	// demote the item to a root.
	for _, item := range out {
		item.ChildItemIDs = []string{}
	}
	var roots []*domain.OrderItem
	for _, item := range out {
		if item.ParentItemID != nil {
			if parent, ok := index[*item.ParentItemID]; ok {
				parent.ChildItemIDs = append(parent.ChildItemIDs, item.ID)
				continue
			}
		}
		roots = append(roots, item)
	}

	// Roots are numbered by input position.
	visited := make(map[string]bool, len(out))
	for i, root := range roots {
		root.VersionPath = []int{i + 1}
		visited[root.ID] = true
		assignChildPaths(root, index, position, visited)
	}

	// A parent-pointer cycle leaves every member unreachable from the
	// root set. Break each cycle at its earliest-positioned member:
	// detach that item from its parent and number it as an extra root.
	for {
		var member *domain.OrderItem
		for _, item := range out {
			if !visited[item.ID] {
				member = item
				break
			}
		}
		if member == nil {
			break
		}
		if parent, ok := index[*member.ParentItemID]; ok {
			parent.ChildItemIDs = removeID(parent.ChildItemIDs, member.ID)
		}
		member.ParentItemID = nil
		roots = append(roots, member)
		member.VersionPath = []int{len(roots)}
		visited[member.ID] = true
		assignChildPaths(member, index, position, visited)
	}

	return out
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// assignChildPaths numbers the children of parent depth-first. Children
// iterate in input order; a child carrying a usable hint (a prior path
// one level deeper than the parent's) keeps its trailing index, and the
// rest are appended after the highest claimed slot.
func assignChildPaths(parent *domain.OrderItem, index map[string]*domain.OrderItem, position map[string]int, visited map[string]bool) {
	children := make([]*domain.OrderItem, 0, len(parent.ChildItemIDs))
	for _, id := range parent.ChildItemIDs {
		children = append(children, index[id])
	}
	sort.SliceStable(children, func(i, j int) bool {
		return position[children[i].ID] < position[children[j].ID]
	})

	claimed := make(map[int]bool)
	maxSlot := 0
	slots := make([]int, len(children))

	// First pass: honor hints.
	for i, child := range children {
		slot := pathHint(child, parent)
		if slot > 0 && !claimed[slot] {
			claimed[slot] = true
			slots[i] = slot
			if slot > maxSlot {
				maxSlot = slot
			}
		}
	}

	// Second pass: new (or conflicting) children go after the highest
	// claimed slot, in input order.
	for i := range children {
		if slots[i] == 0 {
			maxSlot++
			slots[i] = maxSlot
		}
	}

	// Rewrite child-id order to match assigned slots so the cached list
	// reflects version numbering.
	order := make([]int, len(children))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return slots[order[a]] < slots[order[b]] })

	parent.ChildItemIDs = parent.ChildItemIDs[:0]
	for _, idx := range order {
		child := children[idx]
		child.VersionPath = append(append([]int{}, parent.VersionPath...), slots[idx])
		parent.ChildItemIDs = append(parent.ChildItemIDs, child.ID)
		visited[child.ID] = true
		assignChildPaths(child, index, position, visited)
	}
}

// pathHint returns the trailing index a child previously held under
// this parent, or 0 when the old path cannot serve as a hint.
func pathHint(child, parent *domain.OrderItem) int {
	if len(child.VersionPath) != len(parent.VersionPath)+1 {
		return 0
	}
	last := child.VersionPath[len(child.VersionPath)-1]
	if last <= 0 {
		return 0
	}
	return last
}
