package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/railorder/internal/db"
	"github.com/alexanderramin/railorder/internal/domain"
)

// orderItemColumns is the canonical SELECT column list for order_items.
const orderItemColumns = `id, order_id, position, title, start_date, end_date, has_validity,
		parent_item_id, version_path, variant_type, variant_group_id, variant_of_item_id,
		merge_status, merge_target_id, train_plan_id, traffic_period_id, generated_ref_id,
		process_link_ids, tags, created_at, updated_at`

// SQLiteOrderItemRepo implements OrderItemRepo using a SQLite database.
// Validity segments live in the order_item_segments side table; the
// has_validity flag distinguishes "no explicit segments" (derive from
// calendar or scalar window) from "explicitly zero operating days".
type SQLiteOrderItemRepo struct {
	db db.DBTX
}

// NewSQLiteOrderItemRepo creates a new SQLiteOrderItemRepo.
func NewSQLiteOrderItemRepo(dbtx db.DBTX) *SQLiteOrderItemRepo {
	return &SQLiteOrderItemRepo{db: dbtx}
}

func (r *SQLiteOrderItemRepo) Create(ctx context.Context, item *domain.OrderItem) error {
	var pos int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM order_items WHERE order_id = ?`,
		item.OrderID).Scan(&pos)
	if err != nil {
		return fmt.Errorf("computing item position: %w", err)
	}
	return r.insertItem(ctx, item, pos)
}

func (r *SQLiteOrderItemRepo) insertItem(ctx context.Context, item *domain.OrderItem, position int) error {
	query := `INSERT INTO order_items (` + orderItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.OrderID,
		position,
		item.Title,
		nullableTimeToString(item.Start, dateLayout),
		nullableTimeToString(item.End, dateLayout),
		boolToInt(item.Validity != nil),
		nullableStrToValue(item.ParentItemID),
		item.VersionLabel(),
		string(item.VariantType),
		nullableStrToValue(item.VariantGroupID),
		nullableStrToValue(item.VariantOfItemID),
		string(item.MergeStatus),
		nullableStrToValue(item.MergeTargetID),
		nullableStrToValue(item.TrainPlanID),
		nullableStrToValue(item.TrafficPeriodID),
		nullableStrToValue(item.GeneratedRefID),
		joinList(item.ProcessLinkIDs),
		joinList(item.Tags),
		item.CreatedAt.Format(time.RFC3339),
		item.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting order item: %w", err)
	}
	return r.replaceSegments(ctx, item.ID, item.Validity)
}

func (r *SQLiteOrderItemRepo) GetByID(ctx context.Context, id string) (*domain.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE id = ?`
	item, err := r.scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadSegments(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *SQLiteOrderItemRepo) ListByOrder(ctx context.Context, orderID string) ([]*domain.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		item, err := r.scanItemRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}
	for _, item := range items {
		if err := r.loadSegments(ctx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *SQLiteOrderItemRepo) Update(ctx context.Context, item *domain.OrderItem) error {
	query := `UPDATE order_items SET title = ?, start_date = ?, end_date = ?, has_validity = ?,
		parent_item_id = ?, version_path = ?, variant_type = ?, variant_group_id = ?,
		variant_of_item_id = ?, merge_status = ?, merge_target_id = ?, train_plan_id = ?,
		traffic_period_id = ?, generated_ref_id = ?, process_link_ids = ?, tags = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		item.Title,
		nullableTimeToString(item.Start, dateLayout),
		nullableTimeToString(item.End, dateLayout),
		boolToInt(item.Validity != nil),
		nullableStrToValue(item.ParentItemID),
		item.VersionLabel(),
		string(item.VariantType),
		nullableStrToValue(item.VariantGroupID),
		nullableStrToValue(item.VariantOfItemID),
		string(item.MergeStatus),
		nullableStrToValue(item.MergeTargetID),
		nullableStrToValue(item.TrainPlanID),
		nullableStrToValue(item.TrafficPeriodID),
		nullableStrToValue(item.GeneratedRefID),
		joinList(item.ProcessLinkIDs),
		joinList(item.Tags),
		item.UpdatedAt.Format(time.RFC3339),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating order item: %w", err)
	}
	return r.replaceSegments(ctx, item.ID, item.Validity)
}

// ReplaceForOrder swaps the complete item collection of an order. Run
// this on a tx-scoped repository so a failure leaves the old collection
// untouched.
func (r *SQLiteOrderItemRepo) ReplaceForOrder(ctx context.Context, orderID string, items []*domain.OrderItem) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM order_item_segments WHERE item_id IN (SELECT id FROM order_items WHERE order_id = ?)`,
		orderID); err != nil {
		return fmt.Errorf("clearing item segments: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return fmt.Errorf("clearing order items: %w", err)
	}
	for i, item := range items {
		if err := r.insertItem(ctx, item, i+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteOrderItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_item_segments WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("deleting item segments: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting order item: %w", err)
	}
	return nil
}

func (r *SQLiteOrderItemRepo) replaceSegments(ctx context.Context, itemID string, segs []domain.ValiditySegment) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_item_segments WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("clearing segments: %w", err)
	}
	for i, s := range segs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO order_item_segments (item_id, position, start_date, end_date) VALUES (?, ?, ?, ?)`,
			itemID, i+1, s.Start.Format(dateLayout), s.End.Format(dateLayout))
		if err != nil {
			return fmt.Errorf("inserting segment: %w", err)
		}
	}
	return nil
}

func (r *SQLiteOrderItemRepo) loadSegments(ctx context.Context, item *domain.OrderItem) error {
	if item.Validity == nil {
		return nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT start_date, end_date FROM order_item_segments WHERE item_id = ? ORDER BY position`,
		item.ID)
	if err != nil {
		return fmt.Errorf("loading segments: %w", err)
	}
	defer rows.Close()

	segs := []domain.ValiditySegment{}
	for rows.Next() {
		var startStr, endStr string
		if err := rows.Scan(&startStr, &endStr); err != nil {
			return fmt.Errorf("scanning segment: %w", err)
		}
		start, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return fmt.Errorf("parsing segment start: %w", err)
		}
		end, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return fmt.Errorf("parsing segment end: %w", err)
		}
		segs = append(segs, domain.ValiditySegment{Start: start, End: end})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating segments: %w", err)
	}
	item.Validity = segs
	return nil
}

func (r *SQLiteOrderItemRepo) scanItem(row *sql.Row) (*domain.OrderItem, error) {
	var raw itemRow
	err := row.Scan(raw.dest()...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order item: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning order item: %w", err)
	}
	return raw.toDomain()
}

func (r *SQLiteOrderItemRepo) scanItemRow(rows *sql.Rows) (*domain.OrderItem, error) {
	var raw itemRow
	if err := rows.Scan(raw.dest()...); err != nil {
		return nil, fmt.Errorf("scanning order item row: %w", err)
	}
	return raw.toDomain()
}

// itemRow holds raw scanned columns before conversion to the domain type.
type itemRow struct {
	id, orderID, title               string
	position                         int
	startStr, endStr                 sql.NullString
	hasValidity                      int
	parentID                         sql.NullString
	versionPath, variantType         string
	variantGroupID, variantOfItemID  sql.NullString
	mergeStatus                      string
	mergeTargetID, trainPlanID       sql.NullString
	trafficPeriodID, generatedRefID  sql.NullString
	processLinks, tags               string
	createdAtStr, updatedAtStr       string
}

func (raw *itemRow) dest() []any {
	return []any{
		&raw.id, &raw.orderID, &raw.position, &raw.title, &raw.startStr, &raw.endStr,
		&raw.hasValidity, &raw.parentID, &raw.versionPath, &raw.variantType,
		&raw.variantGroupID, &raw.variantOfItemID, &raw.mergeStatus, &raw.mergeTargetID,
		&raw.trainPlanID, &raw.trafficPeriodID, &raw.generatedRefID,
		&raw.processLinks, &raw.tags, &raw.createdAtStr, &raw.updatedAtStr,
	}
}

func (raw *itemRow) toDomain() (*domain.OrderItem, error) {
	item := &domain.OrderItem{
		ID:              raw.id,
		OrderID:         raw.orderID,
		Title:           raw.title,
		Start:           parseNullableTime(raw.startStr, dateLayout),
		End:             parseNullableTime(raw.endStr, dateLayout),
		ParentItemID:    nullStringToPtr(raw.parentID),
		VersionPath:     domain.ParseVersionPath(raw.versionPath),
		VariantType:     domain.VariantType(raw.variantType),
		VariantGroupID:  nullStringToPtr(raw.variantGroupID),
		VariantOfItemID: nullStringToPtr(raw.variantOfItemID),
		MergeStatus:     domain.MergeStatus(raw.mergeStatus),
		MergeTargetID:   nullStringToPtr(raw.mergeTargetID),
		TrainPlanID:     nullStringToPtr(raw.trainPlanID),
		TrafficPeriodID: nullStringToPtr(raw.trafficPeriodID),
		GeneratedRefID:  nullStringToPtr(raw.generatedRefID),
		ProcessLinkIDs:  splitList(raw.processLinks),
		Tags:            splitList(raw.tags),
	}
	if intToBool(raw.hasValidity) {
		// Marker slice; actual segments are loaded separately.
		item.Validity = []domain.ValiditySegment{}
	}

	var parseErr error
	item.CreatedAt, parseErr = time.Parse(time.RFC3339, raw.createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	item.UpdatedAt, parseErr = time.Parse(time.RFC3339, raw.updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return item, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}
