package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

type blockRepo struct {
	q querier
}

func scanBlock(scan func(...interface{}) error) (*entity.Block, error) {
	var b entity.Block
	if err := scan(&b.ID, &b.Date, &b.TimeOfDay, &b.BlockNumber, &b.IsWeekend, &b.IsHoliday); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *blockRepo) Create(ctx context.Context, block *entity.Block) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO blocks (id, date, time_of_day, block_number, is_weekend, is_holiday)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		block.ID, block.Date, block.TimeOfDay, block.BlockNumber, block.IsWeekend, block.IsHoliday)
	if err != nil {
		return fmt.Errorf("failed to create block: %w", err)
	}
	return nil
}

func (r *blockRepo) GetByID(ctx context.Context, id entity.BlockID) (*entity.Block, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, date, time_of_day, block_number, is_weekend, is_holiday
		FROM blocks WHERE id = $1`, id)

	b, err := scanBlock(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "Block", ResourceID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get block: %w", err)
	}
	return b, nil
}

func (r *blockRepo) GetByDate(ctx context.Context, date time.Time) ([]*entity.Block, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, date, time_of_day, block_number, is_weekend, is_holiday
		FROM blocks WHERE date = $1 ORDER BY block_number`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get blocks by date: %w", err)
	}
	defer rows.Close()
	return scanBlocks(rows)
}

func (r *blockRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Block, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, date, time_of_day, block_number, is_weekend, is_holiday
		FROM blocks WHERE date BETWEEN $1 AND $2 ORDER BY date, block_number`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get blocks by date range: %w", err)
	}
	defer rows.Close()
	return scanBlocks(rows)
}

func scanBlocks(rows *sql.Rows) ([]*entity.Block, error) {
	var out []*entity.Block
	for rows.Next() {
		b, err := scanBlock(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// FindOrCreate returns the existing Block for (date, slot) or creates one
// on demand, preserving the teacher's lenient coverage-resolution behavior
// (spec.md §9 open question) rather than requiring callers to pre-seed
// blocks before staging an import.
func (r *blockRepo) FindOrCreate(ctx context.Context, date time.Time, slot entity.TimeOfDay) (*entity.Block, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, date, time_of_day, block_number, is_weekend, is_holiday
		FROM blocks WHERE date = $1 AND time_of_day = $2`, date, slot)
	b, err := scanBlock(row.Scan)
	if err == nil {
		return b, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up block: %w", err)
	}

	blockNumber := 1
	if slot == entity.TimeOfDayPM {
		blockNumber = 2
	}
	newBlock := &entity.Block{
		ID:          uuidNew(),
		Date:        date,
		TimeOfDay:   slot,
		BlockNumber: blockNumber,
		IsWeekend:   date.Weekday() == time.Saturday || date.Weekday() == time.Sunday,
	}
	if err := r.Create(ctx, newBlock); err != nil {
		return nil, err
	}
	return newBlock, nil
}

func (r *blockRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT count(*) FROM blocks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count blocks: %w", err)
	}
	return n, nil
}
