// Package repository defines the persistence interface the core consumes
// (spec.md §1: "the core consumes a persistence interface — entity CRUD,
// transactional scopes"). Concrete implementations live in memory/ (tests)
// and postgres/ (production).
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// Database provides access to all repositories plus transactional scopes.
type Database interface {
	BeginTx(ctx context.Context) (Transaction, error)

	PersonRepository() PersonRepository
	BlockRepository() BlockRepository
	RotationTemplateRepository() RotationTemplateRepository
	AssignmentRepository() AssignmentRepository
	AbsenceRepository() AbsenceRepository
	ImportBatchRepository() ImportBatchRepository
	ImportStagedAssignmentRepository() ImportStagedAssignmentRepository
	CalendarSubscriptionRepository() CalendarSubscriptionRepository
	WebhookSecretRepository() WebhookSecretRepository
	WebhookDeliveryRepository() WebhookDeliveryRepository

	// CurrentVersionID exposes a monotonic transaction/version id if the
	// backing store tracks one (spec.md §4.2 "Versioning"). Returns ok=false
	// when unsupported; never an error, since absence is a normal case.
	CurrentVersionID(ctx context.Context) (id int64, ok bool)

	Close() error
	Health(ctx context.Context) error
}

// Transaction is a transactional scope: all repository accessors returned
// from it participate in the same underlying transaction. Callers commit or
// roll back exactly once.
type Transaction interface {
	Commit() error
	Rollback() error

	PersonRepository() PersonRepository
	BlockRepository() BlockRepository
	RotationTemplateRepository() RotationTemplateRepository
	AssignmentRepository() AssignmentRepository
	AbsenceRepository() AbsenceRepository
	ImportBatchRepository() ImportBatchRepository
	ImportStagedAssignmentRepository() ImportStagedAssignmentRepository
	CalendarSubscriptionRepository() CalendarSubscriptionRepository
	WebhookSecretRepository() WebhookSecretRepository
	WebhookDeliveryRepository() WebhookDeliveryRepository
}

// PersonRepository is read-only: Person is externally managed reference
// data (spec.md §3).
type PersonRepository interface {
	GetByID(ctx context.Context, id entity.PersonID) (*entity.Person, error)
	ListAll(ctx context.Context) ([]*entity.Person, error)
	ListByIDs(ctx context.Context, ids []entity.PersonID) ([]*entity.Person, error)
	Count(ctx context.Context) (int64, error)
}

// BlockRepository provides CRUD for scheduling blocks, indexed by date per
// spec.md §6.
type BlockRepository interface {
	Create(ctx context.Context, block *entity.Block) error
	GetByID(ctx context.Context, id entity.BlockID) (*entity.Block, error)
	GetByDate(ctx context.Context, date time.Time) ([]*entity.Block, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Block, error)
	FindOrCreate(ctx context.Context, date time.Time, slot entity.TimeOfDay) (*entity.Block, error)
	Count(ctx context.Context) (int64, error)
}

// RotationTemplateRepository provides CRUD for rotation templates.
type RotationTemplateRepository interface {
	Create(ctx context.Context, rt *entity.RotationTemplate) error
	GetByID(ctx context.Context, id entity.RotationTemplateID) (*entity.RotationTemplate, error)
	GetByName(ctx context.Context, name string) (*entity.RotationTemplate, error)
	ListActive(ctx context.Context) ([]*entity.RotationTemplate, error)
	Update(ctx context.Context, rt *entity.RotationTemplate) error
	Count(ctx context.Context) (int64, error)
}

// AssignmentRepository provides CRUD for assignments. GetByBlockAndPerson
// backs the (block_id, person_id) uniqueness invariant (spec.md §8 #1).
type AssignmentRepository interface {
	Create(ctx context.Context, a *entity.Assignment) error
	GetByID(ctx context.Context, id entity.AssignmentID) (*entity.Assignment, error)
	GetByBlockAndPerson(ctx context.Context, blockID entity.BlockID, personID entity.PersonID) (*entity.Assignment, error)
	GetByPerson(ctx context.Context, personID entity.PersonID) ([]*entity.Assignment, error)
	GetByPersonAndDateRange(ctx context.Context, personID entity.PersonID, start, end time.Time) ([]*entity.Assignment, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Assignment, error)
	Update(ctx context.Context, a *entity.Assignment) error
	Delete(ctx context.Context, id entity.AssignmentID) error
	Count(ctx context.Context) (int64, error)
}

// AbsenceRepository provides CRUD for absences, indexed by (person_id,
// start_date) per spec.md §6.
type AbsenceRepository interface {
	Create(ctx context.Context, a *entity.Absence) error
	GetByPerson(ctx context.Context, personID entity.PersonID) ([]*entity.Absence, error)
	GetByPersonAndDateRange(ctx context.Context, personID entity.PersonID, start, end time.Time) ([]*entity.Absence, error)
	ListAll(ctx context.Context) ([]*entity.Absence, error)
	Count(ctx context.Context) (int64, error)
}

// ImportBatchRepository provides CRUD for import batches, with a dedicated
// accessor for the file-hash dedup invariant (spec.md §3).
type ImportBatchRepository interface {
	Create(ctx context.Context, b *entity.ImportBatch) error
	GetByID(ctx context.Context, id entity.ImportBatchID) (*entity.ImportBatch, error)
	GetActiveByFileHash(ctx context.Context, hash string) (*entity.ImportBatch, error)
	Update(ctx context.Context, b *entity.ImportBatch) error
	List(ctx context.Context, limit, offset int) ([]*entity.ImportBatch, error)
	Count(ctx context.Context) (int64, error)
}

// ImportStagedAssignmentRepository provides CRUD for staged rows.
type ImportStagedAssignmentRepository interface {
	CreateBatch(ctx context.Context, rows []*entity.ImportStagedAssignment) error
	GetByImportBatch(ctx context.Context, batchID entity.ImportBatchID) ([]*entity.ImportStagedAssignment, error)
	GetPage(ctx context.Context, batchID entity.ImportBatchID, page, size int) ([]*entity.ImportStagedAssignment, int, error)
	Update(ctx context.Context, row *entity.ImportStagedAssignment) error
}

// CalendarSubscriptionRepository provides CRUD for webcal subscriptions.
type CalendarSubscriptionRepository interface {
	Create(ctx context.Context, s *entity.CalendarSubscription) error
	GetByToken(ctx context.Context, token string) (*entity.CalendarSubscription, error)
	Update(ctx context.Context, s *entity.CalendarSubscription) error
}

// WebhookSecretRepository provides lookup and rotation storage for
// per-source signing secrets (spec.md §4.6).
type WebhookSecretRepository interface {
	GetByWebhookID(ctx context.Context, webhookID string) (*entity.WebhookSecret, error)
	Upsert(ctx context.Context, s *entity.WebhookSecret) error
}

// WebhookDeliveryRepository backs replay detection (spec.md §4.6 point 8).
type WebhookDeliveryRepository interface {
	Exists(ctx context.Context, webhookID, deliveryID string) (bool, error)
	Record(ctx context.Context, d *entity.WebhookDelivery) error
}

// NotFoundError represents a missing-entity lookup.
type NotFoundError struct {
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.ResourceType + " " + e.ResourceID
}

// IsNotFound reports whether err is (or wraps) a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError represents a repository-level input validation failure
// (distinct from the validation package's declarative rule framework,
// which governs higher-level business rules).
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
