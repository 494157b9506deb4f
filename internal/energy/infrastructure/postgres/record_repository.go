package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	energy "energy-audit/internal/energy/domain"
)

const defaultRecordsTable = "energy_records"

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RecordRepository is a Postgres implementation for energy records.
type RecordRepository struct {
	db    DBTX
	table string
}

// NewRecordRepository constructs a repository.
func NewRecordRepository(db DBTX, opts ...RecordOption) *RecordRepository {
	repo := &RecordRepository{db: db, table: defaultRecordsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RecordOption configures the repository.
type RecordOption func(*RecordRepository)

// WithRecordsTable overrides the default table name.
func WithRecordsTable(table string) RecordOption {
	return func(repo *RecordRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

var recordColumns = []string{
	"id", "project_id", "fuel_kind",
	"unit_cost", "monthly_average_cost", "annual_cost", "emission_factor", "annual_emissions",
	"monthly_consumption", "annual_consumption",
	"calorific_value", "calorific_unit", "variety",
	"monthly_kwh", "annual_kwh", "cost_per_kwh",
	"created_at", "updated_at",
}

type recordRow struct {
	ID                 string    `db:"id"`
	ProjectID          string    `db:"project_id"`
	FuelKind           string    `db:"fuel_kind"`
	UnitCost           float64   `db:"unit_cost"`
	MonthlyAverageCost float64   `db:"monthly_average_cost"`
	AnnualCost         float64   `db:"annual_cost"`
	EmissionFactor     float64   `db:"emission_factor"`
	AnnualEmissions    float64   `db:"annual_emissions"`
	MonthlyConsumption float64   `db:"monthly_consumption"`
	AnnualConsumption  float64   `db:"annual_consumption"`
	CalorificValue     float64   `db:"calorific_value"`
	CalorificUnit      string    `db:"calorific_unit"`
	Variety            string    `db:"variety"`
	MonthlyKWh         float64   `db:"monthly_kwh"`
	AnnualKWh          float64   `db:"annual_kwh"`
	CostPerKWh         float64   `db:"cost_per_kwh"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (row recordRow) toDomain() energy.Record {
	return energy.Record{
		ID:                 row.ID,
		ProjectID:          row.ProjectID,
		Kind:               energy.FuelKind(row.FuelKind),
		UnitCost:           row.UnitCost,
		MonthlyAverageCost: row.MonthlyAverageCost,
		AnnualCost:         row.AnnualCost,
		EmissionFactor:     row.EmissionFactor,
		AnnualEmissions:    row.AnnualEmissions,
		MonthlyConsumption: row.MonthlyConsumption,
		AnnualConsumption:  row.AnnualConsumption,
		CalorificValue:     row.CalorificValue,
		CalorificUnit:      row.CalorificUnit,
		Variety:            row.Variety,
		MonthlyKWh:         row.MonthlyKWh,
		AnnualKWh:          row.AnnualKWh,
		CostPerKWh:         row.CostPerKWh,
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
	}
}

// Upsert inserts or replaces the record keyed by (project_id, fuel_kind).
// The unique constraint makes concurrent submissions converge on one row.
func (r *RecordRepository) Upsert(ctx context.Context, rec *energy.Record) error {
	if r == nil || r.db == nil {
		return errors.New("record repo: nil db")
	}
	if rec == nil {
		return errors.New("record repo: nil record")
	}
	if rec.ProjectID == "" {
		return energy.ErrEmptyProjectID
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	project_id,
	fuel_kind,
	unit_cost,
	monthly_average_cost,
	annual_cost,
	emission_factor,
	annual_emissions,
	monthly_consumption,
	annual_consumption,
	calorific_value,
	calorific_unit,
	variety,
	monthly_kwh,
	annual_kwh,
	cost_per_kwh
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
)
ON CONFLICT (project_id, fuel_kind)
DO UPDATE SET
	unit_cost = EXCLUDED.unit_cost,
	monthly_average_cost = EXCLUDED.monthly_average_cost,
	annual_cost = EXCLUDED.annual_cost,
	emission_factor = EXCLUDED.emission_factor,
	annual_emissions = EXCLUDED.annual_emissions,
	monthly_consumption = EXCLUDED.monthly_consumption,
	annual_consumption = EXCLUDED.annual_consumption,
	calorific_value = EXCLUDED.calorific_value,
	calorific_unit = EXCLUDED.calorific_unit,
	variety = EXCLUDED.variety,
	monthly_kwh = EXCLUDED.monthly_kwh,
	annual_kwh = EXCLUDED.annual_kwh,
	cost_per_kwh = EXCLUDED.cost_per_kwh,
	updated_at = NOW()
RETURNING id, created_at, updated_at`, r.table)

	var createdAt, updatedAt time.Time
	if err := r.db.QueryRowContext(
		ctx,
		query,
		uuid.NewString(),
		rec.ProjectID,
		string(rec.Kind),
		rec.UnitCost,
		rec.MonthlyAverageCost,
		rec.AnnualCost,
		rec.EmissionFactor,
		rec.AnnualEmissions,
		rec.MonthlyConsumption,
		rec.AnnualConsumption,
		rec.CalorificValue,
		rec.CalorificUnit,
		rec.Variety,
		rec.MonthlyKWh,
		rec.AnnualKWh,
		rec.CostPerKWh,
	).Scan(&rec.ID, &createdAt, &updatedAt); err != nil {
		return err
	}
	rec.CreatedAt = createdAt.UTC()
	rec.UpdatedAt = updatedAt.UTC()
	return nil
}

// Get loads the record of a fuel in a project.
func (r *RecordRepository) Get(ctx context.Context, projectID string, kind energy.FuelKind) (*energy.Record, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("record repo: nil db")
	}
	query, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(recordColumns...).
		From(r.table).
		Where(squirrel.Eq{"project_id": projectID, "fuel_kind": string(kind)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var row recordRow
	if err := sqlscan.Get(ctx, r.db, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, energy.ErrRecordNotFound
		}
		return nil, err
	}
	rec := row.toDomain()
	return &rec, nil
}

// ListByProject returns the records of a project in fuel order.
func (r *RecordRepository) ListByProject(ctx context.Context, projectID string) ([]energy.Record, error) {
	grouped, err := r.ListByProjects(ctx, []string{projectID})
	if err != nil {
		return nil, err
	}
	return grouped[projectID], nil
}

// ListByProjects fetches the records of many projects in one query.
func (r *RecordRepository) ListByProjects(ctx context.Context, projectIDs []string) (map[string][]energy.Record, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("record repo: nil db")
	}
	result := make(map[string][]energy.Record, len(projectIDs))
	if len(projectIDs) == 0 {
		return result, nil
	}
	query, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(recordColumns...).
		From(r.table).
		Where(squirrel.Eq{"project_id": projectIDs}).
		OrderBy("project_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []recordRow
	if err := sqlscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ProjectID] = append(result[row.ProjectID], row.toDomain())
	}
	for _, records := range result {
		energy.SortRecords(records)
	}
	return result, nil
}

// Count returns the number of stored records.
func (r *RecordRepository) Count(ctx context.Context) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("record repo: nil db")
	}
	var count int
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)).Scan(&count)
	return count, err
}
