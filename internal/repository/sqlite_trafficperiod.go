package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/railorder/internal/db"
	"github.com/alexanderramin/railorder/internal/domain"
)

// SQLiteTrafficPeriodRepo implements TrafficPeriodRepo using a SQLite
// database. Rules live in the traffic_period_rules side table with
// their contributed dates encoded as a CSV date column; exclusions sit
// in traffic_period_exclusions one row per date so AddExclusionDates
// can append without rewriting the period.
type SQLiteTrafficPeriodRepo struct {
	db db.DBTX
}

// NewSQLiteTrafficPeriodRepo creates a new SQLiteTrafficPeriodRepo.
func NewSQLiteTrafficPeriodRepo(dbtx db.DBTX) *SQLiteTrafficPeriodRepo {
	return &SQLiteTrafficPeriodRepo{db: dbtx}
}

func (r *SQLiteTrafficPeriodRepo) Create(ctx context.Context, p *domain.TrafficPeriod) error {
	query := `INSERT INTO traffic_periods (id, name, timetable_year_label, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.TimetableYearLabel,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting traffic period: %w", err)
	}
	for i, rule := range p.Rules {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO traffic_period_rules (period_id, position, validity_start, included_dates)
			VALUES (?, ?, ?, ?)`,
			p.ID, i+1, rule.ValidityStart.Format(dateLayout), joinDates(rule.IncludedDates))
		if err != nil {
			return fmt.Errorf("inserting traffic period rule: %w", err)
		}
	}
	return r.insertExclusions(ctx, p.ID, p.ExcludedDates)
}

func (r *SQLiteTrafficPeriodRepo) GetByID(ctx context.Context, id string) (*domain.TrafficPeriod, error) {
	var p domain.TrafficPeriod
	var createdAtStr, updatedAtStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, timetable_year_label, created_at, updated_at FROM traffic_periods WHERE id = ?`,
		id).Scan(&p.ID, &p.Name, &p.TimetableYearLabel, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("traffic period: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning traffic period: %w", err)
	}

	var parseErr error
	p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	p.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	if err := r.loadRules(ctx, &p); err != nil {
		return nil, err
	}
	if err := r.loadExclusions(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddExclusionDates appends exclusion rows for the given dates,
// skipping dates already excluded. Touches updated_at so downstream
// consumers see the calendar changed.
func (r *SQLiteTrafficPeriodRepo) AddExclusionDates(ctx context.Context, id string, dates []time.Time) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM traffic_periods WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking traffic period: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("traffic period: %w", ErrNotFound)
	}

	for _, d := range dates {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO traffic_period_exclusions (period_id, excluded_date) VALUES (?, ?)`,
			id, domain.DateOnly(d).Format(dateLayout))
		if err != nil {
			return fmt.Errorf("inserting exclusion date: %w", err)
		}
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE traffic_periods SET updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("touching traffic period: %w", err)
	}
	return nil
}

func (r *SQLiteTrafficPeriodRepo) insertExclusions(ctx context.Context, id string, dates []time.Time) error {
	for _, d := range dates {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO traffic_period_exclusions (period_id, excluded_date) VALUES (?, ?)`,
			id, domain.DateOnly(d).Format(dateLayout))
		if err != nil {
			return fmt.Errorf("inserting exclusion date: %w", err)
		}
	}
	return nil
}

func (r *SQLiteTrafficPeriodRepo) loadRules(ctx context.Context, p *domain.TrafficPeriod) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT validity_start, included_dates FROM traffic_period_rules
		WHERE period_id = ? ORDER BY position`, p.ID)
	if err != nil {
		return fmt.Errorf("loading traffic period rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var startStr, datesStr string
		if err := rows.Scan(&startStr, &datesStr); err != nil {
			return fmt.Errorf("scanning traffic period rule: %w", err)
		}
		start, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return fmt.Errorf("parsing rule validity start: %w", err)
		}
		p.Rules = append(p.Rules, domain.TrafficPeriodRule{
			ValidityStart: start,
			IncludedDates: splitDates(datesStr),
		})
	}
	return rows.Err()
}

func (r *SQLiteTrafficPeriodRepo) loadExclusions(ctx context.Context, p *domain.TrafficPeriod) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT excluded_date FROM traffic_period_exclusions
		WHERE period_id = ? ORDER BY excluded_date`, p.ID)
	if err != nil {
		return fmt.Errorf("loading traffic period exclusions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return fmt.Errorf("scanning exclusion date: %w", err)
		}
		d, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return fmt.Errorf("parsing exclusion date: %w", err)
		}
		p.ExcludedDates = append(p.ExcludedDates, d)
	}
	return rows.Err()
}
