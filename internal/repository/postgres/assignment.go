package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

type assignmentRepo struct {
	q querier
}

func scanAssignment(scan func(...interface{}) error) (*entity.Assignment, error) {
	var a entity.Assignment
	var rotationID sql.NullString

	if err := scan(&a.ID, &a.BlockID, &a.PersonID, &rotationID, &a.Role, &a.Notes, &a.CreatedAt); err != nil {
		return nil, err
	}
	if rotationID.Valid {
		id, err := uuidParse(rotationID.String)
		if err == nil {
			a.RotationTemplateID = &id
		}
	}
	return &a, nil
}

func (r *assignmentRepo) Create(ctx context.Context, a *entity.Assignment) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = entity.Now()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO assignments (id, block_id, person_id, rotation_template_id, role, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.BlockID, a.PersonID, nullableRotationTemplateID(a.RotationTemplateID), a.Role, a.Notes, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return &repository.ValidationError{Field: "block_id,person_id", Message: "assignment already exists for this block and person"}
		}
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (r *assignmentRepo) GetByID(ctx context.Context, id entity.AssignmentID) (*entity.Assignment, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, block_id, person_id, rotation_template_id, role, notes, created_at
		FROM assignments WHERE id = $1`, id)
	a, err := scanAssignment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "Assignment", ResourceID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}

func (r *assignmentRepo) GetByBlockAndPerson(ctx context.Context, blockID entity.BlockID, personID entity.PersonID) (*entity.Assignment, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, block_id, person_id, rotation_template_id, role, notes, created_at
		FROM assignments WHERE block_id = $1 AND person_id = $2`, blockID, personID)
	a, err := scanAssignment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "Assignment", ResourceID: blockID.String() + "/" + personID.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment by block and person: %w", err)
	}
	return a, nil
}

func (r *assignmentRepo) GetByPerson(ctx context.Context, personID entity.PersonID) ([]*entity.Assignment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, block_id, person_id, rotation_template_id, role, notes, created_at
		FROM assignments WHERE person_id = $1`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments by person: %w", err)
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (r *assignmentRepo) GetByPersonAndDateRange(ctx context.Context, personID entity.PersonID, start, end time.Time) ([]*entity.Assignment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT a.id, a.block_id, a.person_id, a.rotation_template_id, a.role, a.notes, a.created_at
		FROM assignments a
		JOIN blocks b ON b.id = a.block_id
		WHERE a.person_id = $1 AND b.date BETWEEN $2 AND $3
		ORDER BY b.date, b.block_number`, personID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments by person and date range: %w", err)
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (r *assignmentRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Assignment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT a.id, a.block_id, a.person_id, a.rotation_template_id, a.role, a.notes, a.created_at
		FROM assignments a
		JOIN blocks b ON b.id = a.block_id
		WHERE b.date BETWEEN $1 AND $2
		ORDER BY b.date, b.block_number`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments by date range: %w", err)
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func scanAssignments(rows *sql.Rows) ([]*entity.Assignment, error) {
	var out []*entity.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *assignmentRepo) Update(ctx context.Context, a *entity.Assignment) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE assignments SET
			block_id = $2, person_id = $3, rotation_template_id = $4, role = $5, notes = $6
		WHERE id = $1`,
		a.ID, a.BlockID, a.PersonID, nullableRotationTemplateID(a.RotationTemplateID), a.Role, a.Notes)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return &repository.NotFoundError{ResourceType: "Assignment", ResourceID: a.ID.String()}
	}
	return nil
}

func (r *assignmentRepo) Delete(ctx context.Context, id entity.AssignmentID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return &repository.NotFoundError{ResourceType: "Assignment", ResourceID: id.String()}
	}
	return nil
}

func (r *assignmentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM assignments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return n, nil
}
