package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

type stagedRepo struct {
	q querier
}

func scanStaged(scan func(...interface{}) error) (*entity.ImportStagedAssignment, error) {
	var s entity.ImportStagedAssignment
	var matchedPerson sql.NullString
	var matchedRotation sql.NullString
	var existingAssignment sql.NullString
	var createdAssignment sql.NullString
	var validationErrors pq.StringArray
	var validationWarnings pq.StringArray

	if err := scan(&s.ID, &s.ImportBatchID, &s.RowNumber, &s.PersonName, &s.RotationName,
		&s.TargetDate, &s.Slot, &matchedPerson, &s.PersonMatchConfidence, &matchedRotation,
		&s.RotationMatchConfidence, &s.ConflictType, &existingAssignment, &s.Status,
		&createdAssignment, &validationErrors, &validationWarnings); err != nil {
		return nil, err
	}
	if matchedPerson.Valid {
		if id, err := uuidParse(matchedPerson.String); err == nil {
			s.MatchedPersonID = &id
		}
	}
	if matchedRotation.Valid {
		if id, err := uuidParse(matchedRotation.String); err == nil {
			s.MatchedRotationID = &id
		}
	}
	if existingAssignment.Valid {
		if id, err := uuidParse(existingAssignment.String); err == nil {
			s.ExistingAssignmentID = &id
		}
	}
	if createdAssignment.Valid {
		if id, err := uuidParse(createdAssignment.String); err == nil {
			s.CreatedAssignmentID = &id
		}
	}
	s.ValidationErrors = []string(validationErrors)
	s.ValidationWarnings = []string(validationWarnings)
	return &s, nil
}

func (r *stagedRepo) CreateBatch(ctx context.Context, rows []*entity.ImportStagedAssignment) error {
	for _, s := range rows {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO import_staged_assignments
				(id, import_batch_id, row_number, person_name, rotation_name, target_date, slot,
				 matched_person_id, person_match_confidence, matched_rotation_id, rotation_match_confidence,
				 conflict_type, existing_assignment_id, status, created_assignment_id,
				 validation_errors, validation_warnings)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			s.ID, s.ImportBatchID, s.RowNumber, s.PersonName, s.RotationName, s.TargetDate, s.Slot,
			nullablePersonID(s.MatchedPersonID), s.PersonMatchConfidence,
			nullableRotationTemplateID(s.MatchedRotationID), s.RotationMatchConfidence,
			s.ConflictType, nullableAssignmentID(s.ExistingAssignmentID), s.Status,
			nullableAssignmentID(s.CreatedAssignmentID), pq.Array(s.ValidationErrors), pq.Array(s.ValidationWarnings))
		if err != nil {
			return fmt.Errorf("failed to create staged assignment row %d: %w", s.RowNumber, err)
		}
	}
	return nil
}

func (r *stagedRepo) GetByImportBatch(ctx context.Context, batchID entity.ImportBatchID) ([]*entity.ImportStagedAssignment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, import_batch_id, row_number, person_name, rotation_name, target_date, slot,
		       matched_person_id, person_match_confidence, matched_rotation_id, rotation_match_confidence,
		       conflict_type, existing_assignment_id, status, created_assignment_id,
		       validation_errors, validation_warnings
		FROM import_staged_assignments WHERE import_batch_id = $1 ORDER BY row_number`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get staged assignments by batch: %w", err)
	}
	defer rows.Close()
	return scanStagedRows(rows)
}

func (r *stagedRepo) GetPage(ctx context.Context, batchID entity.ImportBatchID, page, size int) ([]*entity.ImportStagedAssignment, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, `
		SELECT count(*) FROM import_staged_assignments WHERE import_batch_id = $1`, batchID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count staged assignments: %w", err)
	}

	offset := page * size
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, import_batch_id, row_number, person_name, rotation_name, target_date, slot,
		       matched_person_id, person_match_confidence, matched_rotation_id, rotation_match_confidence,
		       conflict_type, existing_assignment_id, status, created_assignment_id,
		       validation_errors, validation_warnings
		FROM import_staged_assignments WHERE import_batch_id = $1
		ORDER BY row_number LIMIT $2 OFFSET $3`, batchID, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get staged assignment page: %w", err)
	}
	defer rows.Close()

	out, err := scanStagedRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanStagedRows(rows *sql.Rows) ([]*entity.ImportStagedAssignment, error) {
	var out []*entity.ImportStagedAssignment
	for rows.Next() {
		s, err := scanStaged(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staged assignment: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *stagedRepo) Update(ctx context.Context, row *entity.ImportStagedAssignment) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE import_staged_assignments SET
			matched_person_id = $2, person_match_confidence = $3, matched_rotation_id = $4,
			rotation_match_confidence = $5, conflict_type = $6, existing_assignment_id = $7,
			status = $8, created_assignment_id = $9, validation_errors = $10, validation_warnings = $11
		WHERE id = $1`,
		row.ID, nullablePersonID(row.MatchedPersonID), row.PersonMatchConfidence,
		nullableRotationTemplateID(row.MatchedRotationID), row.RotationMatchConfidence,
		row.ConflictType, nullableAssignmentID(row.ExistingAssignmentID), row.Status,
		nullableAssignmentID(row.CreatedAssignmentID), pq.Array(row.ValidationErrors), pq.Array(row.ValidationWarnings))
	if err != nil {
		return fmt.Errorf("failed to update staged assignment: %w", err)
	}
	return nil
}
