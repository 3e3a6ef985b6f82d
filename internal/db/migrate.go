package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillVariantGroups(db); err != nil {
		return fmt.Errorf("backfilling variant group ids: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id                   TEXT PRIMARY KEY,
		name                 TEXT NOT NULL,
		short_id             TEXT NOT NULL DEFAULT '',
		customer_ref         TEXT NOT NULL DEFAULT '',
		timetable_year_label TEXT NOT NULL DEFAULT '',
		status               TEXT NOT NULL DEFAULT 'draft'
		                     CHECK(status IN ('draft','active','closed','archived')),
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_short_id ON orders(short_id) WHERE short_id != ''`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id                 TEXT PRIMARY KEY,
		order_id           TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		position           INTEGER NOT NULL DEFAULT 0,
		title              TEXT NOT NULL,
		start_date         TEXT,
		end_date           TEXT,
		has_validity       INTEGER NOT NULL DEFAULT 0,
		parent_item_id     TEXT,
		version_path       TEXT NOT NULL DEFAULT '',
		variant_type       TEXT NOT NULL DEFAULT 'productive'
		                   CHECK(variant_type IN ('productive','simulation')),
		variant_group_id   TEXT,
		variant_of_item_id TEXT,
		merge_status       TEXT NOT NULL DEFAULT ''
		                   CHECK(merge_status IN ('','open','applied','proposed')),
		merge_target_id    TEXT,
		train_plan_id      TEXT,
		traffic_period_id  TEXT,
		process_link_ids   TEXT NOT NULL DEFAULT '',
		tags               TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_parent ON order_items(parent_item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_variant_group ON order_items(variant_group_id)`,

	// Validity segments: one row per inclusive date range. An item with
	// has_validity = 1 and zero rows here is a valid zero-day item.
	`CREATE TABLE IF NOT EXISTS order_item_segments (
		item_id    TEXT NOT NULL REFERENCES order_items(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date   TEXT NOT NULL,
		PRIMARY KEY (item_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS traffic_periods (
		id                   TEXT PRIMARY KEY,
		name                 TEXT NOT NULL,
		timetable_year_label TEXT NOT NULL DEFAULT '',
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS traffic_period_rules (
		period_id      TEXT NOT NULL REFERENCES traffic_periods(id) ON DELETE CASCADE,
		position       INTEGER NOT NULL,
		validity_start TEXT NOT NULL,
		included_dates TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (period_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS traffic_period_exclusions (
		period_id     TEXT NOT NULL REFERENCES traffic_periods(id) ON DELETE CASCADE,
		excluded_date TEXT NOT NULL,
		PRIMARY KEY (period_id, excluded_date)
	)`,

	`CREATE TABLE IF NOT EXISTS timetable_years (
		label      TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date   TEXT NOT NULL
	)`,

	// Timetable years change on the December change date, second
	// Saturday/Sunday boundary in December of the preceding calendar year.
	`INSERT OR IGNORE INTO timetable_years (label, start_date, end_date) VALUES
		('2024', '2023-12-10', '2024-12-14'),
		('2025', '2024-12-15', '2025-12-13'),
		('2026', '2025-12-14', '2026-12-12'),
		('2027', '2026-12-13', '2027-12-11')`,

	`CREATE TABLE IF NOT EXISTS train_plans (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		train_number   TEXT NOT NULL DEFAULT '',
		phase          TEXT NOT NULL DEFAULT 'draft'
		               CHECK(phase IN ('draft','ordered','published')),
		variant_type   TEXT NOT NULL DEFAULT 'productive'
		               CHECK(variant_type IN ('productive','simulation')),
		base_plan_id   TEXT,
		first_run_date TEXT,
		last_run_date  TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	// Add generated_ref_id to order_items (external reference assigned
	// when a merge produces a modification proposal)
	`ALTER TABLE order_items ADD COLUMN generated_ref_id TEXT`,
}

// migrateBackfillVariantGroups assigns variant_group_id to productive
// items created before variant tracking existed (NULL group on a
// productive root of a variant family). Each such item becomes the
// anchor of its own group. Idempotent: only touches NULL rows.
func migrateBackfillVariantGroups(db *sql.DB) error {
	ctx := context.Background()

	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE variant_group_id IS NULL AND variant_type = 'productive'`).Scan(&count)
	if err != nil {
		if strings.Contains(err.Error(), "no such column") {
			return nil
		}
		return fmt.Errorf("checking variant groups: %w", err)
	}
	if count == 0 {
		return nil
	}

	_, err = db.ExecContext(ctx,
		`UPDATE order_items SET variant_group_id = id
		WHERE variant_group_id IS NULL AND variant_type = 'productive'`)
	if err != nil {
		return fmt.Errorf("assigning variant groups: %w", err)
	}
	return nil
}
