package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/railorder/internal/db"
	"github.com/alexanderramin/railorder/internal/domain"
)

// SQLiteTimetableYearRepo implements TimetableYearRepo. Year rows are
// seeded by the migration; the repo is read-only.
type SQLiteTimetableYearRepo struct {
	db db.DBTX
}

// NewSQLiteTimetableYearRepo creates a new SQLiteTimetableYearRepo.
func NewSQLiteTimetableYearRepo(dbtx db.DBTX) *SQLiteTimetableYearRepo {
	return &SQLiteTimetableYearRepo{db: dbtx}
}

func (r *SQLiteTimetableYearRepo) GetByLabel(ctx context.Context, label string) (*domain.TimetableYear, error) {
	return r.scanYear(r.db.QueryRowContext(ctx,
		`SELECT label, start_date, end_date FROM timetable_years WHERE label = ?`, label))
}

// GetByDate resolves the timetable year containing the sample date.
// Bounds are inclusive on both ends.
func (r *SQLiteTimetableYearRepo) GetByDate(ctx context.Context, sample time.Time) (*domain.TimetableYear, error) {
	day := domain.DateOnly(sample).Format(dateLayout)
	return r.scanYear(r.db.QueryRowContext(ctx,
		`SELECT label, start_date, end_date FROM timetable_years
		WHERE start_date <= ? AND end_date >= ?`, day, day))
}

func (r *SQLiteTimetableYearRepo) scanYear(row *sql.Row) (*domain.TimetableYear, error) {
	var y domain.TimetableYear
	var startStr, endStr string
	err := row.Scan(&y.Label, &startStr, &endStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("timetable year: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning timetable year: %w", err)
	}
	y.Start, err = time.Parse(dateLayout, startStr)
	if err != nil {
		return nil, fmt.Errorf("parsing year start: %w", err)
	}
	y.End, err = time.Parse(dateLayout, endStr)
	if err != nil {
		return nil, fmt.Errorf("parsing year end: %w", err)
	}
	return &y, nil
}
