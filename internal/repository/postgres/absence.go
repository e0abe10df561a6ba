package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

type absenceRepo struct {
	q querier
}

func scanAbsence(scan func(...interface{}) error) (*entity.Absence, error) {
	var a entity.Absence
	if err := scan(&a.ID, &a.PersonID, &a.StartDate, &a.EndDate, &a.Type, &a.DeploymentOrders); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *absenceRepo) Create(ctx context.Context, a *entity.Absence) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO absences (id, person_id, start_date, end_date, type, deployment_orders)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.PersonID, a.StartDate, a.EndDate, a.Type, a.DeploymentOrders)
	if err != nil {
		return fmt.Errorf("failed to create absence: %w", err)
	}
	return nil
}

func (r *absenceRepo) GetByPerson(ctx context.Context, personID entity.PersonID) ([]*entity.Absence, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, person_id, start_date, end_date, type, deployment_orders
		FROM absences WHERE person_id = $1 ORDER BY start_date`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to get absences by person: %w", err)
	}
	defer rows.Close()
	return scanAbsences(rows)
}

func (r *absenceRepo) GetByPersonAndDateRange(ctx context.Context, personID entity.PersonID, start, end time.Time) ([]*entity.Absence, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, person_id, start_date, end_date, type, deployment_orders
		FROM absences
		WHERE person_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date`, personID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get absences by person and date range: %w", err)
	}
	defer rows.Close()
	return scanAbsences(rows)
}

func scanAbsences(rows *sql.Rows) ([]*entity.Absence, error) {
	var out []*entity.Absence
	for rows.Next() {
		a, err := scanAbsence(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan absence: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *absenceRepo) ListAll(ctx context.Context) ([]*entity.Absence, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, person_id, start_date, end_date, type, deployment_orders
		FROM absences ORDER BY start_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list absences: %w", err)
	}
	defer rows.Close()
	return scanAbsences(rows)
}

func (r *absenceRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM absences`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count absences: %w", err)
	}
	return n, nil
}
