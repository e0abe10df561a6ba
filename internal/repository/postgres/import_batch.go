package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

type importBatchRepo struct {
	q querier
}

func scanImportBatch(scan func(...interface{}) error) (*entity.ImportBatch, error) {
	var b entity.ImportBatch
	var appliedAt sql.NullTime
	var appliedBy sql.NullString
	var rollbackExpiresAt sql.NullTime

	if err := scan(&b.ID, &b.CreatedAt, &b.CreatedBy, &b.Filename, &b.FileHash, &b.FileSize,
		&b.Status, &b.ConflictResolution, &appliedAt, &appliedBy, &b.RollbackAvailable,
		&rollbackExpiresAt, &b.RowCount, &b.ErrorCount, &b.WarningCount); err != nil {
		return nil, err
	}
	if appliedAt.Valid {
		b.AppliedAt = &appliedAt.Time
	}
	if appliedBy.Valid {
		id, err := uuidParse(appliedBy.String)
		if err == nil {
			b.AppliedBy = &id
		}
	}
	if rollbackExpiresAt.Valid {
		b.RollbackExpiresAt = &rollbackExpiresAt.Time
	}
	return &b, nil
}

func (r *importBatchRepo) Create(ctx context.Context, b *entity.ImportBatch) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = entity.Now()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO import_batches
			(id, created_at, created_by, filename, file_hash, file_size, status,
			 conflict_resolution, applied_at, applied_by, rollback_available,
			 rollback_expires_at, row_count, error_count, warning_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		b.ID, b.CreatedAt, b.CreatedBy, b.Filename, b.FileHash, b.FileSize, b.Status,
		b.ConflictResolution, b.AppliedAt, nullablePersonID(b.AppliedBy), b.RollbackAvailable,
		b.RollbackExpiresAt, b.RowCount, b.ErrorCount, b.WarningCount)
	if err != nil {
		return fmt.Errorf("failed to create import batch: %w", err)
	}
	return nil
}

func (r *importBatchRepo) GetByID(ctx context.Context, id entity.ImportBatchID) (*entity.ImportBatch, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, created_at, created_by, filename, file_hash, file_size, status,
		       conflict_resolution, applied_at, applied_by, rollback_available,
		       rollback_expires_at, row_count, error_count, warning_count
		FROM import_batches WHERE id = $1`, id)
	b, err := scanImportBatch(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "ImportBatch", ResourceID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import batch: %w", err)
	}
	return b, nil
}

// GetActiveByFileHash backs the file_hash-unique-among-{staged,approved}
// dedup invariant (spec.md §3).
func (r *importBatchRepo) GetActiveByFileHash(ctx context.Context, hash string) (*entity.ImportBatch, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, created_at, created_by, filename, file_hash, file_size, status,
		       conflict_resolution, applied_at, applied_by, rollback_available,
		       rollback_expires_at, row_count, error_count, warning_count
		FROM import_batches
		WHERE file_hash = $1 AND status IN ('staged', 'approved')
		LIMIT 1`, hash)
	b, err := scanImportBatch(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "ImportBatch", ResourceID: hash}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active import batch by file hash: %w", err)
	}
	return b, nil
}

func (r *importBatchRepo) Update(ctx context.Context, b *entity.ImportBatch) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE import_batches SET
			status = $2, conflict_resolution = $3, applied_at = $4, applied_by = $5,
			rollback_available = $6, rollback_expires_at = $7,
			row_count = $8, error_count = $9, warning_count = $10
		WHERE id = $1`,
		b.ID, b.Status, b.ConflictResolution, b.AppliedAt, nullablePersonID(b.AppliedBy),
		b.RollbackAvailable, b.RollbackExpiresAt, b.RowCount, b.ErrorCount, b.WarningCount)
	if err != nil {
		return fmt.Errorf("failed to update import batch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return &repository.NotFoundError{ResourceType: "ImportBatch", ResourceID: b.ID.String()}
	}
	return nil
}

func (r *importBatchRepo) List(ctx context.Context, limit, offset int) ([]*entity.ImportBatch, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, created_at, created_by, filename, file_hash, file_size, status,
		       conflict_resolution, applied_at, applied_by, rollback_available,
		       rollback_expires_at, row_count, error_count, warning_count
		FROM import_batches ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list import batches: %w", err)
	}
	defer rows.Close()

	var out []*entity.ImportBatch
	for rows.Next() {
		b, err := scanImportBatch(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *importBatchRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM import_batches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count import batches: %w", err)
	}
	return n, nil
}
