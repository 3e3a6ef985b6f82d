package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/alexanderramin/railorder/internal/validity"
)

// FormatSegments renders a segment list as a compact comma-joined
// string with a day total, e.g.
// "2025-01-01..2025-01-09, 2025-01-16..2025-01-31 (25d)".
func FormatSegments(segs []domain.ValiditySegment) string {
	if segs == nil {
		return Dim("derived")
	}
	if len(segs) == 0 {
		return StyleRed.Render("no operating days")
	}
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return fmt.Sprintf("%s %s",
		strings.Join(parts, ", "),
		Dim(fmt.Sprintf("(%dd)", validity.TotalDays(segs))))
}

// FormatSegmentsPlain is FormatSegments without styling, for logs and
// non-TTY output.
func FormatSegmentsPlain(segs []domain.ValiditySegment) string {
	if segs == nil {
		return "derived"
	}
	if len(segs) == 0 {
		return "no operating days"
	}
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return fmt.Sprintf("%s (%dd)", strings.Join(parts, ", "), validity.TotalDays(segs))
}

// VersionLabel renders an item's dotted version with a leading "v".
func VersionLabel(item *domain.OrderItem) string {
	label := item.VersionLabel()
	if label == "" {
		return Dim("v?")
	}
	return StyleBlue.Render("v" + label)
}
