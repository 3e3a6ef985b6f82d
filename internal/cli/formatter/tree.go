package formatter

import (
	"sort"
	"strings"

	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a version tree display.
type TreeItem struct {
	Title   string
	Version string // dotted version label; "" means don't display
	Level   int
	IsLast  bool
	Badge   string // styled variant badge or ""
	Detail  string // validity summary, right-aligned
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. Detail text is right-aligned
// past the widest line.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		detail  string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// Pass 1: build each line's content and track max visible width.
	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				prefix += treePipe
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		if item.Version != "" {
			title = StyleBlue.Render("v"+item.Version) + " " + title
		}
		if item.Badge != "" {
			title += " " + item.Badge
		}

		content := prefix + title
		lines[idx].content = content
		lines[idx].detail = item.Detail

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	// Pass 2: render with right-aligned detail columns.
	var b strings.Builder
	for _, li := range lines {
		if li.detail != "" {
			pad := maxContentWidth - lipgloss.Width(li.content)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + Dim(li.detail) + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}

	return b.String()
}

type treeNode struct {
	item   *domain.OrderItem
	level  int
	isLast bool
}

func flattenVersionOrder(items []*domain.OrderItem) []treeNode {
	byID := make(map[string]*domain.OrderItem, len(items))
	var roots []*domain.OrderItem
	for _, item := range items {
		byID[item.ID] = item
		if item.IsRoot() {
			roots = append(roots, item)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		return versionLess(roots[i].VersionPath, roots[j].VersionPath)
	})

	var out []treeNode
	var walk func(item *domain.OrderItem, level int, isLast bool)
	walk = func(item *domain.OrderItem, level int, isLast bool) {
		out = append(out, treeNode{item: item, level: level, isLast: isLast})
		children := make([]*domain.OrderItem, 0, len(item.ChildItemIDs))
		for _, childID := range item.ChildItemIDs {
			if child, ok := byID[childID]; ok {
				children = append(children, child)
			}
		}
		sort.Slice(children, func(i, j int) bool {
			return versionLess(children[i].VersionPath, children[j].VersionPath)
		})
		for i, child := range children {
			walk(child, level+1, i == len(children)-1)
		}
	}
	for i, root := range roots {
		walk(root, 0, i == len(roots)-1)
	}
	return out
}

// BuildVersionTree flattens normalized order items into TreeItems in
// depth-first version order. detailFor supplies the right-aligned column
// for each item and may return "".
func BuildVersionTree(items []*domain.OrderItem, detailFor func(*domain.OrderItem) string) []TreeItem {
	nodes := flattenVersionOrder(items)
	out := make([]TreeItem, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, TreeItem{
			Title:   n.item.Title,
			Version: n.item.VersionLabel(),
			Level:   n.level,
			IsLast:  n.isLast,
			Badge:   VariantBadge(n.item),
			Detail:  detailFor(n.item),
		})
	}
	return out
}

// VersionOrder returns the items in the same depth-first order that
// BuildVersionTree renders them, for cursor-based browsing.
func VersionOrder(items []*domain.OrderItem) []*domain.OrderItem {
	nodes := flattenVersionOrder(items)
	out := make([]*domain.OrderItem, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.item)
	}
	return out
}

func versionLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
