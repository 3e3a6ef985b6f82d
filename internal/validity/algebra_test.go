package validity

import (
	"testing"
	"time"

	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(start, end string) domain.ValiditySegment {
	return domain.NewSegment(domain.MustDate(start), domain.MustDate(end))
}

func TestNormalize_MergesOverlappingAndTouching(t *testing.T) {
	tests := []struct {
		name string
		in   []domain.ValiditySegment
		want []domain.ValiditySegment
	}{
		{
			name: "empty input",
			in:   nil,
			want: []domain.ValiditySegment{},
		},
		{
			name: "already normalized",
			in:   []domain.ValiditySegment{seg("2025-01-01", "2025-01-10")},
			want: []domain.ValiditySegment{seg("2025-01-01", "2025-01-10")},
		},
		{
			name: "unsorted input gets sorted",
			in: []domain.ValiditySegment{
				seg("2025-03-01", "2025-03-10"),
				seg("2025-01-01", "2025-01-10"),
			},
			want: []domain.ValiditySegment{
				seg("2025-01-01", "2025-01-10"),
				seg("2025-03-01", "2025-03-10"),
			},
		},
		{
			name: "overlapping ranges merge",
			in: []domain.ValiditySegment{
				seg("2025-01-01", "2025-01-15"),
				seg("2025-01-10", "2025-01-31"),
			},
			want: []domain.ValiditySegment{seg("2025-01-01", "2025-01-31")},
		},
		{
			name: "adjacent ranges merge",
			in: []domain.ValiditySegment{
				seg("2025-01-01", "2025-01-15"),
				seg("2025-01-16", "2025-01-31"),
			},
			want: []domain.ValiditySegment{seg("2025-01-01", "2025-01-31")},
		},
		{
			name: "one day gap stays split",
			in: []domain.ValiditySegment{
				seg("2025-01-01", "2025-01-15"),
				seg("2025-01-17", "2025-01-31"),
			},
			want: []domain.ValiditySegment{
				seg("2025-01-01", "2025-01-15"),
				seg("2025-01-17", "2025-01-31"),
			},
		},
		{
			name: "inverted range dropped",
			in: []domain.ValiditySegment{
				seg("2025-01-10", "2025-01-01"),
				seg("2025-02-01", "2025-02-05"),
			},
			want: []domain.ValiditySegment{seg("2025-02-01", "2025-02-05")},
		},
		{
			name: "contained range absorbed",
			in: []domain.ValiditySegment{
				seg("2025-01-01", "2025-01-31"),
				seg("2025-01-10", "2025-01-15"),
			},
			want: []domain.ValiditySegment{seg("2025-01-01", "2025-01-31")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := []domain.ValiditySegment{
		seg("2025-03-01", "2025-03-10"),
		seg("2025-01-01", "2025-01-15"),
		seg("2025-01-10", "2025-01-20"),
		seg("2025-01-21", "2025-01-25"),
	}
	once := Normalize(in)
	twice := Normalize(once)
	assert.Equal(t, once, twice)
}

func TestSubtract_PartialCoverSplitsInTwo(t *testing.T) {
	base := []domain.ValiditySegment{seg("2025-01-01", "2025-01-31")}
	got := Subtract(base, []domain.ValiditySegment{seg("2025-01-10", "2025-01-15")})
	assert.Equal(t, []domain.ValiditySegment{
		seg("2025-01-01", "2025-01-09"),
		seg("2025-01-16", "2025-01-31"),
	}, got)
}

func TestSubtract_EdgeCases(t *testing.T) {
	base := []domain.ValiditySegment{seg("2025-01-01", "2025-01-31")}

	t.Run("remove leading edge", func(t *testing.T) {
		got := Subtract(base, []domain.ValiditySegment{seg("2024-12-15", "2025-01-10")})
		assert.Equal(t, []domain.ValiditySegment{seg("2025-01-11", "2025-01-31")}, got)
	})

	t.Run("remove trailing edge", func(t *testing.T) {
		got := Subtract(base, []domain.ValiditySegment{seg("2025-01-20", "2025-02-15")})
		assert.Equal(t, []domain.ValiditySegment{seg("2025-01-01", "2025-01-19")}, got)
	})

	t.Run("remove everything", func(t *testing.T) {
		got := Subtract(base, []domain.ValiditySegment{seg("2024-01-01", "2026-01-01")})
		assert.Empty(t, got)
	})

	t.Run("remove nothing", func(t *testing.T) {
		got := Subtract(base, []domain.ValiditySegment{seg("2025-03-01", "2025-03-10")})
		assert.Equal(t, Normalize(base), got)
	})

	t.Run("remove single day", func(t *testing.T) {
		got := Subtract(base, []domain.ValiditySegment{seg("2025-01-01", "2025-01-01")})
		assert.Equal(t, []domain.ValiditySegment{seg("2025-01-02", "2025-01-31")}, got)
	})
}

func TestSplitAtRange_Basic(t *testing.T) {
	base := []domain.ValiditySegment{seg("2025-01-01", "2025-01-31")}
	retained, extracted := SplitAtRange(base, domain.MustDate("2025-01-10"), domain.MustDate("2025-01-15"))

	assert.Equal(t, []domain.ValiditySegment{seg("2025-01-10", "2025-01-15")}, extracted)
	assert.Equal(t, []domain.ValiditySegment{
		seg("2025-01-01", "2025-01-09"),
		seg("2025-01-16", "2025-01-31"),
	}, retained)
}

func TestSplitAtRange_NoIntersection(t *testing.T) {
	base := []domain.ValiditySegment{seg("2025-01-01", "2025-01-31")}
	retained, extracted := SplitAtRange(base, domain.MustDate("2025-06-01"), domain.MustDate("2025-06-30"))

	assert.Empty(t, extracted, "no overlap must yield empty extraction")
	assert.Equal(t, Normalize(base), retained)
}

func TestSplitAtRange_FullCover(t *testing.T) {
	base := []domain.ValiditySegment{seg("2025-01-01", "2025-01-31")}
	retained, extracted := SplitAtRange(base, domain.MustDate("2024-12-01"), domain.MustDate("2025-02-28"))

	assert.Equal(t, []domain.ValiditySegment{seg("2025-01-01", "2025-01-31")}, extracted,
		"extraction clips to base, not to the requested window")
	assert.Empty(t, retained)
}

func TestSplitAtRange_AcrossMultipleSegments(t *testing.T) {
	base := []domain.ValiditySegment{
		seg("2025-01-01", "2025-01-10"),
		seg("2025-02-01", "2025-02-10"),
	}
	retained, extracted := SplitAtRange(base, domain.MustDate("2025-01-05"), domain.MustDate("2025-02-05"))

	assert.Equal(t, []domain.ValiditySegment{
		seg("2025-01-05", "2025-01-10"),
		seg("2025-02-01", "2025-02-05"),
	}, extracted)
	assert.Equal(t, []domain.ValiditySegment{
		seg("2025-01-01", "2025-01-04"),
		seg("2025-02-06", "2025-02-10"),
	}, retained)
}

func TestOverlaps(t *testing.T) {
	a := seg("2025-01-01", "2025-01-10")

	assert.True(t, Overlaps(a, seg("2025-01-10", "2025-01-20")), "shared boundary day overlaps")
	assert.True(t, Overlaps(a, seg("2025-01-05", "2025-01-07")))
	assert.True(t, Overlaps(a, seg("2024-12-01", "2025-02-01")))
	assert.False(t, Overlaps(a, seg("2025-01-11", "2025-01-20")), "adjacent days do not overlap")
	assert.False(t, Overlaps(a, seg("2024-12-01", "2024-12-31")))
}

func TestCovers(t *testing.T) {
	segs := []domain.ValiditySegment{
		seg("2025-01-01", "2025-01-10"),
		seg("2025-02-01", "2025-02-10"),
	}

	assert.True(t, Covers(segs, []domain.ValiditySegment{seg("2025-01-02", "2025-01-05")}))
	assert.True(t, Covers(segs, nil), "empty candidate is trivially covered")
	assert.False(t, Covers(segs, []domain.ValiditySegment{seg("2025-01-05", "2025-01-12")}),
		"candidate leaking past a segment edge is not covered")
	assert.False(t, Covers(segs, []domain.ValiditySegment{seg("2025-01-05", "2025-02-05")}),
		"candidate bridging a gap is not covered")
}

func TestExpandToDates(t *testing.T) {
	dates, err := ExpandToDates([]domain.ValiditySegment{
		seg("2025-01-30", "2025-02-02"),
	})
	require.NoError(t, err)
	require.Len(t, dates, 4)
	assert.Equal(t, domain.MustDate("2025-01-30"), dates[0])
	assert.Equal(t, domain.MustDate("2025-02-02"), dates[3], "expansion crosses month boundary")
}

func TestExpandToDates_ExceedsCap(t *testing.T) {
	_, err := ExpandToDates([]domain.ValiditySegment{
		seg("2020-01-01", "2030-01-01"),
	})
	require.Error(t, err)
	var expErr *ExpansionError
	require.ErrorAs(t, err, &expErr)
	assert.Equal(t, MaxExpandDays, expErr.Limit)
}

func TestFromDates_CollapsesConsecutiveDays(t *testing.T) {
	dates := []time.Time{
		domain.MustDate("2025-01-03"),
		domain.MustDate("2025-01-01"),
		domain.MustDate("2025-01-02"),
		domain.MustDate("2025-01-10"),
	}
	got := FromDates(dates)
	assert.Equal(t, []domain.ValiditySegment{
		seg("2025-01-01", "2025-01-03"),
		seg("2025-01-10", "2025-01-10"),
	}, got)
}

func TestTotalDaysAndSpan(t *testing.T) {
	segs := []domain.ValiditySegment{
		seg("2025-01-01", "2025-01-10"),
		seg("2025-02-01", "2025-02-05"),
	}
	assert.Equal(t, 15, TotalDays(segs))

	span, ok := Span(segs)
	require.True(t, ok)
	assert.Equal(t, seg("2025-01-01", "2025-02-05"), span)

	_, ok = Span(nil)
	assert.False(t, ok)
}

func TestContainsDate(t *testing.T) {
	segs := []domain.ValiditySegment{seg("2025-01-01", "2025-01-10")}
	assert.True(t, ContainsDate(segs, domain.MustDate("2025-01-01")))
	assert.True(t, ContainsDate(segs, domain.MustDate("2025-01-10")))
	assert.False(t, ContainsDate(segs, domain.MustDate("2025-01-11")))
}
