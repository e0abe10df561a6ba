package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

type rotationRepo struct {
	q querier
}

func scanRotation(scan func(...interface{}) error) (*entity.RotationTemplate, error) {
	var rt entity.RotationTemplate
	var archivedAt sql.NullTime
	var archivedBy sql.NullString

	if err := scan(&rt.ID, &rt.Name, &rt.ActivityType, &rt.Abbreviation, &rt.MaxResidents,
		&rt.SupervisionRequired, &rt.MaxSupervisionRatio, &rt.ClinicLocation,
		&rt.IsArchived, &archivedAt, &archivedBy); err != nil {
		return nil, err
	}
	if archivedAt.Valid {
		rt.ArchivedAt = &archivedAt.Time
	}
	if archivedBy.Valid {
		id, err := uuidParse(archivedBy.String)
		if err == nil {
			rt.ArchivedBy = &id
		}
	}
	return &rt, nil
}

func (r *rotationRepo) Create(ctx context.Context, rt *entity.RotationTemplate) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO rotation_templates
			(id, name, activity_type, abbreviation, max_residents, supervision_required,
			 max_supervision_ratio, clinic_location, is_archived, archived_at, archived_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rt.ID, rt.Name, rt.ActivityType, rt.Abbreviation, rt.MaxResidents, rt.SupervisionRequired,
		rt.MaxSupervisionRatio, rt.ClinicLocation, rt.IsArchived, rt.ArchivedAt, nullablePersonID(rt.ArchivedBy))
	if err != nil {
		return fmt.Errorf("failed to create rotation template: %w", err)
	}
	return nil
}

func (r *rotationRepo) GetByID(ctx context.Context, id entity.RotationTemplateID) (*entity.RotationTemplate, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, activity_type, abbreviation, max_residents, supervision_required,
		       max_supervision_ratio, clinic_location, is_archived, archived_at, archived_by
		FROM rotation_templates WHERE id = $1`, id)
	rt, err := scanRotation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "RotationTemplate", ResourceID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation template: %w", err)
	}
	return rt, nil
}

func (r *rotationRepo) GetByName(ctx context.Context, name string) (*entity.RotationTemplate, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, activity_type, abbreviation, max_residents, supervision_required,
		       max_supervision_ratio, clinic_location, is_archived, archived_at, archived_by
		FROM rotation_templates WHERE name = $1`, name)
	rt, err := scanRotation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "RotationTemplate", ResourceID: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation template by name: %w", err)
	}
	return rt, nil
}

func (r *rotationRepo) ListActive(ctx context.Context) ([]*entity.RotationTemplate, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, activity_type, abbreviation, max_residents, supervision_required,
		       max_supervision_ratio, clinic_location, is_archived, archived_at, archived_by
		FROM rotation_templates WHERE is_archived = false ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rotation templates: %w", err)
	}
	defer rows.Close()

	var out []*entity.RotationTemplate
	for rows.Next() {
		rt, err := scanRotation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rotation template: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *rotationRepo) Update(ctx context.Context, rt *entity.RotationTemplate) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE rotation_templates SET
			name = $2, activity_type = $3, abbreviation = $4, max_residents = $5,
			supervision_required = $6, max_supervision_ratio = $7, clinic_location = $8,
			is_archived = $9, archived_at = $10, archived_by = $11
		WHERE id = $1`,
		rt.ID, rt.Name, rt.ActivityType, rt.Abbreviation, rt.MaxResidents, rt.SupervisionRequired,
		rt.MaxSupervisionRatio, rt.ClinicLocation, rt.IsArchived, rt.ArchivedAt, nullablePersonID(rt.ArchivedBy))
	if err != nil {
		return fmt.Errorf("failed to update rotation template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return &repository.NotFoundError{ResourceType: "RotationTemplate", ResourceID: rt.ID.String()}
	}
	return nil
}

func (r *rotationRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM rotation_templates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rotation templates: %w", err)
	}
	return n, nil
}
