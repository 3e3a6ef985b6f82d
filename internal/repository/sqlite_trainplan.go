package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/railorder/internal/db"
	"github.com/alexanderramin/railorder/internal/domain"
)

// planColumns is the canonical SELECT column list for train_plans.
const planColumns = `id, name, train_number, phase, variant_type, base_plan_id,
		first_run_date, last_run_date, created_at, updated_at`

// SQLiteTrainPlanRepo implements TrainPlanRepo using a SQLite database.
type SQLiteTrainPlanRepo struct {
	db db.DBTX
}

// NewSQLiteTrainPlanRepo creates a new SQLiteTrainPlanRepo.
func NewSQLiteTrainPlanRepo(dbtx db.DBTX) *SQLiteTrainPlanRepo {
	return &SQLiteTrainPlanRepo{db: dbtx}
}

func (r *SQLiteTrainPlanRepo) Create(ctx context.Context, p *domain.TrainPlan) error {
	query := `INSERT INTO train_plans (` + planColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.TrainNumber,
		string(p.Phase),
		string(p.VariantType),
		nullableStrToValue(p.BasePlanID),
		nullableTimeToString(p.FirstRunDate, dateLayout),
		nullableTimeToString(p.LastRunDate, dateLayout),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting train plan: %w", err)
	}
	return nil
}

func (r *SQLiteTrainPlanRepo) GetByID(ctx context.Context, id string) (*domain.TrainPlan, error) {
	query := `SELECT ` + planColumns + ` FROM train_plans WHERE id = ?`
	return r.scanPlan(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteTrainPlanRepo) Update(ctx context.Context, p *domain.TrainPlan) error {
	query := `UPDATE train_plans SET name = ?, train_number = ?, phase = ?, variant_type = ?,
		base_plan_id = ?, first_run_date = ?, last_run_date = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		p.Name,
		p.TrainNumber,
		string(p.Phase),
		string(p.VariantType),
		nullableStrToValue(p.BasePlanID),
		nullableTimeToString(p.FirstRunDate, dateLayout),
		nullableTimeToString(p.LastRunDate, dateLayout),
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating train plan: %w", err)
	}
	return nil
}

// CreateVariant clones an existing plan for a new variant. The clone
// keeps the run window and train number, records the source as its
// base plan, and starts over in draft phase so simulation edits never
// touch the original.
func (r *SQLiteTrainPlanRepo) CreateVariant(ctx context.Context, planID string, target domain.VariantType, label string) (*domain.TrainPlan, error) {
	base, err := r.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	clone := &domain.TrainPlan{
		ID:           uuid.New().String(),
		Name:         label,
		TrainNumber:  base.TrainNumber,
		Phase:        domain.PhaseDraft,
		VariantType:  target,
		BasePlanID:   &base.ID,
		FirstRunDate: cloneDatePtr(base.FirstRunDate),
		LastRunDate:  cloneDatePtr(base.LastRunDate),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.Create(ctx, clone); err != nil {
		return nil, err
	}
	return clone, nil
}

// CreateModification derives a modification plan from a published base
// plan. Unlike a variant clone it is productive from the start: it
// represents a change request against an already published timetable.
func (r *SQLiteTrainPlanRepo) CreateModification(ctx context.Context, basePlanID string, label string) (*domain.TrainPlan, error) {
	base, err := r.GetByID(ctx, basePlanID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	mod := &domain.TrainPlan{
		ID:           uuid.New().String(),
		Name:         label,
		TrainNumber:  base.TrainNumber,
		Phase:        domain.PhaseDraft,
		VariantType:  domain.VariantProductive,
		BasePlanID:   &base.ID,
		FirstRunDate: cloneDatePtr(base.FirstRunDate),
		LastRunDate:  cloneDatePtr(base.LastRunDate),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.Create(ctx, mod); err != nil {
		return nil, err
	}
	return mod, nil
}

func (r *SQLiteTrainPlanRepo) scanPlan(row *sql.Row) (*domain.TrainPlan, error) {
	var p domain.TrainPlan
	var phaseStr, variantStr, createdAtStr, updatedAtStr string
	var baseID, firstRun, lastRun sql.NullString

	err := row.Scan(&p.ID, &p.Name, &p.TrainNumber, &phaseStr, &variantStr,
		&baseID, &firstRun, &lastRun, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("train plan: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning train plan: %w", err)
	}

	p.Phase = domain.PlanPhase(phaseStr)
	p.VariantType = domain.VariantType(variantStr)
	p.BasePlanID = nullStringToPtr(baseID)
	p.FirstRunDate = parseNullableTime(firstRun, dateLayout)
	p.LastRunDate = parseNullableTime(lastRun, dateLayout)

	var parseErr error
	p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	p.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &p, nil
}

func cloneDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
