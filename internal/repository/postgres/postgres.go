// Package postgres implements repository.Database against a real Postgres
// instance, grounded on the teacher's repository/postgres idiom: manual
// parameterized SQL over database/sql, github.com/lib/pq for slice columns
// and the driver registration, sql.ErrNoRows translated to
// repository.NotFoundError.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

// querier is satisfied by both *sql.DB and *sql.Tx, letting every repo type
// be instantiated against either a bare connection or an open transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Database wraps a *sql.DB and implements repository.Database.
type Database struct {
	db *sql.DB
}

// New opens a connection pool and verifies connectivity.
func New(connString string) (*Database, error) {
	sqldb, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{db: sqldb}, nil
}

func (d *Database) Close() error { return d.db.Close() }

func (d *Database) Health(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// CurrentVersionID is unsupported on the bare Postgres connection: there is
// no separate version table in this schema (spec.md §4.2's versioning is
// served by ImportBatch's own state machine instead).
func (d *Database) CurrentVersionID(ctx context.Context) (int64, bool) {
	return 0, false
}

func (d *Database) BeginTx(ctx context.Context) (repository.Transaction, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

func (d *Database) PersonRepository() repository.PersonRepository { return &personRepo{q: d.db} }
func (d *Database) BlockRepository() repository.BlockRepository   { return &blockRepo{q: d.db} }
func (d *Database) RotationTemplateRepository() repository.RotationTemplateRepository {
	return &rotationRepo{q: d.db}
}
func (d *Database) AssignmentRepository() repository.AssignmentRepository {
	return &assignmentRepo{q: d.db}
}
func (d *Database) AbsenceRepository() repository.AbsenceRepository { return &absenceRepo{q: d.db} }
func (d *Database) ImportBatchRepository() repository.ImportBatchRepository {
	return &importBatchRepo{q: d.db}
}
func (d *Database) ImportStagedAssignmentRepository() repository.ImportStagedAssignmentRepository {
	return &stagedRepo{q: d.db}
}
func (d *Database) CalendarSubscriptionRepository() repository.CalendarSubscriptionRepository {
	return &subscriptionRepo{q: d.db}
}
func (d *Database) WebhookSecretRepository() repository.WebhookSecretRepository {
	return &webhookSecretRepo{q: d.db}
}
func (d *Database) WebhookDeliveryRepository() repository.WebhookDeliveryRepository {
	return &webhookDeliveryRepo{q: d.db}
}

// Tx wraps a *sql.Tx and implements repository.Transaction. All accessors
// return repositories bound to the same transaction.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

func (t *Tx) PersonRepository() repository.PersonRepository { return &personRepo{q: t.tx} }
func (t *Tx) BlockRepository() repository.BlockRepository   { return &blockRepo{q: t.tx} }
func (t *Tx) RotationTemplateRepository() repository.RotationTemplateRepository {
	return &rotationRepo{q: t.tx}
}
func (t *Tx) AssignmentRepository() repository.AssignmentRepository {
	return &assignmentRepo{q: t.tx}
}
func (t *Tx) AbsenceRepository() repository.AbsenceRepository { return &absenceRepo{q: t.tx} }
func (t *Tx) ImportBatchRepository() repository.ImportBatchRepository {
	return &importBatchRepo{q: t.tx}
}
func (t *Tx) ImportStagedAssignmentRepository() repository.ImportStagedAssignmentRepository {
	return &stagedRepo{q: t.tx}
}
func (t *Tx) CalendarSubscriptionRepository() repository.CalendarSubscriptionRepository {
	return &subscriptionRepo{q: t.tx}
}
func (t *Tx) WebhookSecretRepository() repository.WebhookSecretRepository {
	return &webhookSecretRepo{q: t.tx}
}
func (t *Tx) WebhookDeliveryRepository() repository.WebhookDeliveryRepository {
	return &webhookDeliveryRepo{q: t.tx}
}
