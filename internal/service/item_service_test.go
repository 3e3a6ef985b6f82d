package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/alexanderramin/railorder/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveValidity_ExplicitSegmentsWin(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	period := testutil.NewTestPeriod("Ignored calendar",
		testutil.WithRule(domain.MustDate("2025-02-01"),
			testutil.DateRange(domain.MustDate("2025-02-01"), domain.MustDate("2025-02-28"))...))
	require.NoError(t, stack.periods.Create(ctx, period))

	item := stack.seedItem(t, o.ID,
		testutil.WithTrafficPeriod(period.ID),
		testutil.WithValidity(domain.ValiditySegment{
			Start: domain.MustDate("2025-01-01"), End: domain.MustDate("2025-01-10")}))

	segs, err := stack.itemSvc.EffectiveValidity(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "2025-01-01..2025-01-10", segs[0].String())
}

func TestEffectiveValidity_CalendarFallback(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	period := testutil.NewTestPeriod("Mondays",
		testutil.WithRule(domain.MustDate("2025-01-01"),
			domain.MustDate("2025-01-06"), domain.MustDate("2025-01-13"), domain.MustDate("2025-01-20")))
	require.NoError(t, stack.periods.Create(ctx, period))

	item := stack.seedItem(t, o.ID, testutil.WithTrafficPeriod(period.ID))

	segs, err := stack.itemSvc.EffectiveValidity(ctx, item.ID)
	require.NoError(t, err)
	// Non-consecutive days stay separate segments.
	assert.Len(t, segs, 3)
}

func TestEffectiveValidity_ScalarFallback(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	item := stack.seedItem(t, o.ID,
		testutil.WithScalarWindow(domain.MustDate("2025-04-01"), domain.MustDate("2025-04-30")))

	segs, err := stack.itemSvc.EffectiveValidity(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "2025-04-01..2025-04-30", segs[0].String())
}

func TestEffectiveValidity_YearBoundsFallback(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t) // timetable year 2025
	item := stack.seedItem(t, o.ID)

	segs, err := stack.itemSvc.EffectiveValidity(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "2024-12-15..2025-12-13", segs[0].String())
}

func TestEffectiveValidity_EmptyIsExplicit(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	item := stack.seedItem(t, o.ID,
		testutil.WithEmptyValidity(),
		testutil.WithScalarWindow(domain.MustDate("2025-04-01"), domain.MustDate("2025-04-30")))

	segs, err := stack.itemSvc.EffectiveValidity(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, segs, 0, "zero-day item must not fall back to the scalar window")
}

func TestItemService_CreateAssignsRootPath(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)

	first := testutil.NewTestItem(o.ID, "First")
	require.NoError(t, stack.itemSvc.Create(ctx, first))
	second := testutil.NewTestItem(o.ID, "Second")
	require.NoError(t, stack.itemSvc.Create(ctx, second))

	assert.Equal(t, []int{1}, first.VersionPath)
	assert.Equal(t, []int{2}, second.VersionPath)
}

func TestItemService_ListByOrder_Normalizes(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	parent := stack.seedItem(t, o.ID, testutil.WithVersionPath(1))
	child := testutil.NewTestItem(o.ID, "Child", testutil.WithParent(parent.ID))
	require.NoError(t, stack.items.Create(ctx, child))

	listed, err := stack.itemSvc.ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	byID := make(map[string]*domain.OrderItem)
	for _, item := range listed {
		byID[item.ID] = item
	}
	assert.Equal(t, []string{child.ID}, byID[parent.ID].ChildItemIDs)
	assert.Equal(t, []int{1, 1}, byID[child.ID].VersionPath)
}
