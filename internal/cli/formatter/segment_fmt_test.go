package formatter

import (
	"testing"

	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatSegmentsPlain(t *testing.T) {
	segs := []domain.ValiditySegment{
		{Start: domain.MustDate("2025-01-01"), End: domain.MustDate("2025-01-09")},
		{Start: domain.MustDate("2025-01-16"), End: domain.MustDate("2025-01-31")},
	}
	got := FormatSegmentsPlain(segs)
	assert.Equal(t, "2025-01-01..2025-01-09, 2025-01-16..2025-01-31 (25d)", got)
}

func TestFormatSegmentsPlain_NilVsEmpty(t *testing.T) {
	assert.Equal(t, "derived", FormatSegmentsPlain(nil))
	assert.Equal(t, "no operating days", FormatSegmentsPlain([]domain.ValiditySegment{}))
}

func TestFormatSegments_ContainsDayCount(t *testing.T) {
	segs := []domain.ValiditySegment{
		{Start: domain.MustDate("2025-06-01"), End: domain.MustDate("2025-06-30")},
	}
	assert.Contains(t, FormatSegments(segs), "(30d)")
}

func TestVariantBadge(t *testing.T) {
	tests := []struct {
		name     string
		item     *domain.OrderItem
		contains string
	}{
		{"productive", &domain.OrderItem{VariantType: domain.VariantProductive}, "PRODUCTIVE"},
		{"open simulation", &domain.OrderItem{VariantType: domain.VariantSimulation, MergeStatus: domain.MergeOpen}, "SIMULATION"},
		{"applied simulation", &domain.OrderItem{VariantType: domain.VariantSimulation, MergeStatus: domain.MergeApplied}, "applied"},
		{"proposed simulation", &domain.OrderItem{VariantType: domain.VariantSimulation, MergeStatus: domain.MergeProposed}, "proposed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, VariantBadge(tt.item), tt.contains)
		})
	}
}
