package domain

import (
	"strconv"
	"strings"
	"time"
)

// OrderItem is one schedulable line within a transport order: a
// recurring service with a calendar of valid operating days. Items form
// a version forest per order — splitting an item's validity produces a
// time-bounded child, and productive/simulation variants of a lineage
// are tracked as parallel siblings.
type OrderItem struct {
	ID      string
	OrderID string
	Title   string

	// Scalar schedule window. Fallback source of validity when neither
	// explicit segments nor a traffic-period link exist.
	Start *time.Time
	End   *time.Time

	// Explicit validity segments. nil means validity is derived from
	// the traffic period or the scalar window; an empty non-nil slice
	// means the item currently has zero operating days (legal after a
	// full-range split).
	Validity []ValiditySegment

	// Version tree. ChildItemIDs is a cached projection of
	// ParentItemID and is rebuilt by the normalizer; VersionPath is the
	// root-to-node path of 1-based sibling indices.
	ParentItemID *string
	ChildItemIDs []string
	VersionPath  []int

	// Variant lifecycle.
	VariantType     VariantType
	VariantGroupID  *string
	VariantOfItemID *string
	MergeStatus     MergeStatus
	MergeTargetID   *string

	// External collaborator references, exclusively owned by this item.
	TrainPlanID      *string
	TrafficPeriodID  *string
	GeneratedRefID   *string
	ProcessLinkIDs   []string
	Tags             []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRoot reports whether the item has no parent in the version tree.
func (i *OrderItem) IsRoot() bool {
	return i.ParentItemID == nil
}

// IsSimulation reports whether the item is a simulation variant.
func (i *OrderItem) IsSimulation() bool {
	return i.VariantType == VariantSimulation
}

// VersionLabel renders the version path as a dotted label, e.g. "1.2.1".
func (i *OrderItem) VersionLabel() string {
	if len(i.VersionPath) == 0 {
		return ""
	}
	parts := make([]string, len(i.VersionPath))
	for k, v := range i.VersionPath {
		parts[k] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// EffectiveGroupID returns the variant group the item belongs to. Items
// without an explicit group anchor their own lineage.
func (i *OrderItem) EffectiveGroupID() string {
	if i.VariantGroupID != nil && *i.VariantGroupID != "" {
		return *i.VariantGroupID
	}
	return i.ID
}

// Clone returns a deep copy. Mutable slice and pointer fields are
// copied so callers never alias shared references.
func (i *OrderItem) Clone() *OrderItem {
	out := *i
	out.Start = cloneTimePtr(i.Start)
	out.End = cloneTimePtr(i.End)
	out.Validity = CloneSegments(i.Validity)
	out.ParentItemID = cloneStrPtr(i.ParentItemID)
	out.ChildItemIDs = cloneStrSlice(i.ChildItemIDs)
	out.VersionPath = cloneIntSlice(i.VersionPath)
	out.VariantGroupID = cloneStrPtr(i.VariantGroupID)
	out.VariantOfItemID = cloneStrPtr(i.VariantOfItemID)
	out.MergeTargetID = cloneStrPtr(i.MergeTargetID)
	out.TrainPlanID = cloneStrPtr(i.TrainPlanID)
	out.TrafficPeriodID = cloneStrPtr(i.TrafficPeriodID)
	out.GeneratedRefID = cloneStrPtr(i.GeneratedRefID)
	out.ProcessLinkIDs = cloneStrSlice(i.ProcessLinkIDs)
	out.Tags = cloneStrSlice(i.Tags)
	return &out
}

func cloneStrPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrSlice(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneIntSlice(s []int) []int {
	if s == nil {
		return nil
	}
	out := make([]int, len(s))
	copy(out, s)
	return out
}

// ParseVersionPath parses a dotted version label ("1.2.1") back into a
// path slice. Empty input yields nil.
func ParseVersionPath(label string) []int {
	if label == "" {
		return nil
	}
	parts := strings.Split(label, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}
