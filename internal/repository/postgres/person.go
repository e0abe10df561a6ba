package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

// personRepo is read-only: Person is externally managed reference data
// (spec.md §3), synced into this table by a process outside the core.
type personRepo struct {
	q querier
}

func scanPerson(scan func(...interface{}) error) (*entity.Person, error) {
	var p entity.Person
	var pgyLevel sql.NullInt64
	var role sql.NullString
	var tags pq.StringArray

	if err := scan(&p.ID, &p.DisplayName, &p.Email, &p.Type, &pgyLevel, &role,
		&p.PerformsProcedures, &tags); err != nil {
		return nil, err
	}
	if pgyLevel.Valid {
		lvl := entity.PGYLevel(pgyLevel.Int64)
		p.PGYLevel = &lvl
	}
	if role.Valid {
		r := entity.FacultyRole(role.String)
		p.Role = &r
	}
	p.SpecialtyTags = []string(tags)
	return &p, nil
}

func (r *personRepo) GetByID(ctx context.Context, id entity.PersonID) (*entity.Person, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, display_name, email, type, pgy_level, role, performs_procedures, specialty_tags
		FROM people WHERE id = $1`, id)

	p, err := scanPerson(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "Person", ResourceID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}

func (r *personRepo) ListAll(ctx context.Context) ([]*entity.Person, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, display_name, email, type, pgy_level, role, performs_procedures, specialty_tags
		FROM people ORDER BY display_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var out []*entity.Person
	for rows.Next() {
		p, err := scanPerson(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *personRepo) ListByIDs(ctx context.Context, ids []entity.PersonID) ([]*entity.Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, display_name, email, type, pgy_level, role, performs_procedures, specialty_tags
		FROM people WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list people by ids: %w", err)
	}
	defer rows.Close()

	var out []*entity.Person
	for rows.Next() {
		p, err := scanPerson(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *personRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM people`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count people: %w", err)
	}
	return n, nil
}
