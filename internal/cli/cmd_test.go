package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/alexanderramin/railorder/internal/repository"
	"github.com/alexanderramin/railorder/internal/service"
	"github.com/alexanderramin/railorder/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)

	orderRepo := repository.NewSQLiteOrderRepo(database)
	itemRepo := repository.NewSQLiteOrderItemRepo(database)
	periodRepo := repository.NewSQLiteTrafficPeriodRepo(database)
	yearRepo := repository.NewSQLiteTimetableYearRepo(database)
	planRepo := repository.NewSQLiteTrainPlanRepo(database)
	uow := testutil.NewTestUoW(database)

	syncSvc := service.NewCalendarSyncService(periodRepo)

	return &App{
		Orders:   service.NewOrderService(orderRepo),
		Items:    service.NewItemService(orderRepo, itemRepo, periodRepo, yearRepo),
		Split:    service.NewSplitService(orderRepo, itemRepo, periodRepo, yearRepo, planRepo, syncSvc, uow),
		Variants: service.NewVariantService(orderRepo, itemRepo, planRepo, uow),
		Periods:  periodRepo,
		// IsInteractive left nil — wizard fallbacks stay off in tests.
	}
}

// seedOrderWithItem creates an order with one item for CLI tests.
func seedOrderWithItem(t *testing.T, app *App) (*domain.Order, *domain.OrderItem) {
	t.Helper()
	ctx := context.Background()

	o := testutil.NewTestOrder("CLI Test Order", testutil.WithShortID("CLI01"))
	require.NoError(t, app.Orders.Create(ctx, o))

	item := testutil.NewTestItem(o.ID, "Mainline",
		testutil.WithValidity(domain.ValiditySegment{
			Start: domain.MustDate("2025-03-01"), End: domain.MustDate("2025-03-31")}))
	require.NoError(t, app.Items.Create(ctx, item))

	return o, item
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// --- Order ID resolution ---

func TestResolveOrderID_ShortID(t *testing.T) {
	app := testApp(t)
	o, _ := seedOrderWithItem(t, app)

	id, err := resolveOrderID(context.Background(), app, "cli01")
	require.NoError(t, err)
	assert.Equal(t, o.ID, id)
}

func TestResolveOrderID_UUIDPrefix(t *testing.T) {
	app := testApp(t)
	o, _ := seedOrderWithItem(t, app)

	id, err := resolveOrderID(context.Background(), app, o.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, o.ID, id)
}

func TestResolveOrderID_NotFound(t *testing.T) {
	app := testApp(t)
	seedOrderWithItem(t, app)

	_, err := resolveOrderID(context.Background(), app, "nope")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "order not found")
}

// --- Item resolution by version label ---

func TestResolveItemID_VersionLabel(t *testing.T) {
	app := testApp(t)
	o, item := seedOrderWithItem(t, app)

	id, err := resolveItemID(context.Background(), app, o.ID, "v1")
	require.NoError(t, err)
	assert.Equal(t, item.ID, id)

	// Bare label works too.
	id, err = resolveItemID(context.Background(), app, o.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, item.ID, id)
}

// --- Command round trips ---

func TestOrderAddAndListCmd(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "order", "add",
		"--id", "ORD01", "--name", "Coal shuttle", "--year", "2025")
	require.NoError(t, err)

	o, err := app.Orders.GetByShortID(context.Background(), "ORD01")
	require.NoError(t, err)
	assert.Equal(t, "Coal shuttle", o.Name)
	assert.Equal(t, domain.OrderActive, o.Status)
}

func TestItemSplitCmd(t *testing.T) {
	app := testApp(t)
	o, item := seedOrderWithItem(t, app)

	_, err := executeCmd(t, app, "item", "split", o.ShortID, "v1",
		"--from", "2025-03-10", "--to", "2025-03-15", "--title", "Carved")
	require.NoError(t, err)

	items, err := app.Items.ListByOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := make(map[string]*domain.OrderItem)
	for _, it := range items {
		byID[it.ID] = it
	}
	parent := byID[item.ID]
	require.NotNil(t, parent)
	require.Len(t, parent.ChildItemIDs, 1)
	child := byID[parent.ChildItemIDs[0]]
	require.NotNil(t, child)
	assert.Equal(t, "Carved", child.Title)
	assert.Equal(t, "2025-03-10..2025-03-15", child.Validity[0].String())
}

func TestItemSplitCmd_MissingRange(t *testing.T) {
	app := testApp(t)
	o, _ := seedOrderWithItem(t, app)

	_, err := executeCmd(t, app, "item", "split", o.ShortID, "v1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--from")
}

func TestVariantBranchAndMergeCmd(t *testing.T) {
	app := testApp(t)
	o, item := seedOrderWithItem(t, app)
	ctx := context.Background()

	_, err := executeCmd(t, app, "variant", "branch", o.ShortID, item.ID)
	require.NoError(t, err)

	items, err := app.Items.ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var sim *domain.OrderItem
	for _, it := range items {
		if it.IsSimulation() {
			sim = it
		}
	}
	require.NotNil(t, sim)
	assert.Equal(t, domain.MergeOpen, sim.MergeStatus)

	_, err = executeCmd(t, app, "variant", "merge", o.ShortID, sim.ID)
	require.NoError(t, err)

	merged, err := app.Items.GetByID(ctx, sim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MergeApplied, merged.MergeStatus)
}

func TestParseSegmentList(t *testing.T) {
	segs, err := parseSegmentList("2025-01-01..2025-01-31, 2025-03-01..2025-03-15")
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "2025-03-01..2025-03-15", segs[1].String())

	_, err = parseSegmentList("2025-01-01")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "START..END")
}
