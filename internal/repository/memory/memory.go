// Package memory implements repository.Database entirely in process memory,
// grounded on lcgerke-schedCU/v2's in-memory repository pattern: one
// sync.RWMutex-guarded map per entity type plus a query-count counter for
// test assertions, extended here to cover the full persistence interface
// spec.md §1 names (entity CRUD, transactional scopes).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

// Database is an in-memory repository.Database, the default backing store
// for Phase 0 / tests, matching the teacher's cmd/server/main.go precedent
// of using an in-memory repository before a Postgres one is wired in.
type Database struct {
	mu sync.RWMutex

	persons      map[entity.PersonID]*entity.Person
	blocks       map[entity.BlockID]*entity.Block
	rotations    map[entity.RotationTemplateID]*entity.RotationTemplate
	assignments  map[entity.AssignmentID]*entity.Assignment
	absences     map[entity.AbsenceID]*entity.Absence
	batches      map[entity.ImportBatchID]*entity.ImportBatch
	stagedRows   map[entity.ImportStagedAssignmentID]*entity.ImportStagedAssignment
	subscriptions map[string]*entity.CalendarSubscription // keyed by token
	webhookSecrets    map[string]*entity.WebhookSecret  // keyed by webhook id
	webhookDeliveries map[string]*entity.WebhookDelivery // keyed by webhookID+":"+deliveryID

	versionCounter int64
	queryCount     int
}

// New creates an empty in-memory database.
func New() *Database {
	return &Database{
		persons:       make(map[entity.PersonID]*entity.Person),
		blocks:        make(map[entity.BlockID]*entity.Block),
		rotations:     make(map[entity.RotationTemplateID]*entity.RotationTemplate),
		assignments:   make(map[entity.AssignmentID]*entity.Assignment),
		absences:      make(map[entity.AbsenceID]*entity.Absence),
		batches:       make(map[entity.ImportBatchID]*entity.ImportBatch),
		stagedRows:    make(map[entity.ImportStagedAssignmentID]*entity.ImportStagedAssignment),
		subscriptions: make(map[string]*entity.CalendarSubscription),
		webhookSecrets:    make(map[string]*entity.WebhookSecret),
		webhookDeliveries: make(map[string]*entity.WebhookDelivery),
	}
}

// QueryCount returns the number of repository operations executed so far,
// for test assertions (e.g. spec.md E6's cache-hit-skips-queries check).
func (d *Database) QueryCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.queryCount
}

func (d *Database) bump() {
	d.queryCount++
}

// SeedPerson inserts reference Person data directly (Person is externally
// managed, so there is no Create method on PersonRepository).
func (d *Database) SeedPerson(p *entity.Person) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.persons[p.ID] = p
}

func (d *Database) Close() error { return nil }

func (d *Database) Health(ctx context.Context) error { return nil }

// CurrentVersionID increments and returns a monotonic counter, standing in
// for a backing store's transaction id (spec.md §4.2 "Versioning").
func (d *Database) CurrentVersionID(ctx context.Context) (int64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.versionCounter++
	return d.versionCounter, true
}

func (d *Database) BeginTx(ctx context.Context) (repository.Transaction, error) {
	return &tx{db: d}, nil
}

func (d *Database) PersonRepository() repository.PersonRepository           { return (*personRepo)(d) }
func (d *Database) BlockRepository() repository.BlockRepository             { return (*blockRepo)(d) }
func (d *Database) RotationTemplateRepository() repository.RotationTemplateRepository {
	return (*rotationRepo)(d)
}
func (d *Database) AssignmentRepository() repository.AssignmentRepository { return (*assignmentRepo)(d) }
func (d *Database) AbsenceRepository() repository.AbsenceRepository       { return (*absenceRepo)(d) }
func (d *Database) ImportBatchRepository() repository.ImportBatchRepository {
	return (*importBatchRepo)(d)
}
func (d *Database) ImportStagedAssignmentRepository() repository.ImportStagedAssignmentRepository {
	return (*stagedRepo)(d)
}
func (d *Database) CalendarSubscriptionRepository() repository.CalendarSubscriptionRepository {
	return (*subscriptionRepo)(d)
}
func (d *Database) WebhookSecretRepository() repository.WebhookSecretRepository {
	return (*webhookSecretRepo)(d)
}
func (d *Database) WebhookDeliveryRepository() repository.WebhookDeliveryRepository {
	return (*webhookDeliveryRepo)(d)
}

// tx is a no-op transactional scope: the in-memory store has no durable
// log to roll back, so Commit/Rollback are bookkeeping only. It still
// implements the full interface so service code written against
// repository.Transaction works unchanged against tests.
type tx struct {
	db        *Database
	committed bool
	rolled    bool
}

func (t *tx) Commit() error   { t.committed = true; return nil }
func (t *tx) Rollback() error { t.rolled = true; return nil }

func (t *tx) PersonRepository() repository.PersonRepository { return t.db.PersonRepository() }
func (t *tx) BlockRepository() repository.BlockRepository   { return t.db.BlockRepository() }
func (t *tx) RotationTemplateRepository() repository.RotationTemplateRepository {
	return t.db.RotationTemplateRepository()
}
func (t *tx) AssignmentRepository() repository.AssignmentRepository {
	return t.db.AssignmentRepository()
}
func (t *tx) AbsenceRepository() repository.AbsenceRepository { return t.db.AbsenceRepository() }
func (t *tx) ImportBatchRepository() repository.ImportBatchRepository {
	return t.db.ImportBatchRepository()
}
func (t *tx) ImportStagedAssignmentRepository() repository.ImportStagedAssignmentRepository {
	return t.db.ImportStagedAssignmentRepository()
}
func (t *tx) CalendarSubscriptionRepository() repository.CalendarSubscriptionRepository {
	return t.db.CalendarSubscriptionRepository()
}
func (t *tx) WebhookSecretRepository() repository.WebhookSecretRepository {
	return t.db.WebhookSecretRepository()
}
func (t *tx) WebhookDeliveryRepository() repository.WebhookDeliveryRepository {
	return t.db.WebhookDeliveryRepository()
}

// --- PersonRepository ---

type personRepo Database

func (r *personRepo) GetByID(ctx context.Context, id entity.PersonID) (*entity.Person, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	p, ok := d.persons[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "Person", ResourceID: id.String()}
	}
	return p, nil
}

func (r *personRepo) ListAll(ctx context.Context) ([]*entity.Person, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	out := make([]*entity.Person, 0, len(d.persons))
	for _, p := range d.persons {
		out = append(out, p)
	}
	return out, nil
}

func (r *personRepo) ListByIDs(ctx context.Context, ids []entity.PersonID) ([]*entity.Person, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	out := make([]*entity.Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := d.persons[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *personRepo) Count(ctx context.Context) (int64, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	return int64(len(d.persons)), nil
}

// --- BlockRepository ---

type blockRepo Database

func (r *blockRepo) Create(ctx context.Context, b *entity.Block) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	d.blocks[b.ID] = b
	return nil
}

func (r *blockRepo) GetByID(ctx context.Context, id entity.BlockID) (*entity.Block, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	b, ok := d.blocks[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "Block", ResourceID: id.String()}
	}
	return b, nil
}

func (r *blockRepo) GetByDate(ctx context.Context, date time.Time) ([]*entity.Block, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	var out []*entity.Block
	for _, b := range d.blocks {
		if sameDay(b.Date, date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *blockRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Block, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	var out []*entity.Block
	for _, b := range d.blocks {
		if !b.Date.Before(start) && !b.Date.After(end) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// FindOrCreate implements the open question in spec.md §9: apply_batch
// creates a Block on demand for a row's date/slot if none exists yet.
func (r *blockRepo) FindOrCreate(ctx context.Context, date time.Time, slot entity.TimeOfDay) (*entity.Block, error) {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	for _, b := range d.blocks {
		if sameDay(b.Date, date) && b.TimeOfDay == slot {
			return b, nil
		}
	}
	b := &entity.Block{
		ID:        uuidNew(),
		Date:      date,
		TimeOfDay: slot,
		IsWeekend: date.Weekday() == time.Saturday || date.Weekday() == time.Sunday,
	}
	d.blocks[b.ID] = b
	return b, nil
}

func (r *blockRepo) Count(ctx context.Context) (int64, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	return int64(len(d.blocks)), nil
}

// --- RotationTemplateRepository ---

type rotationRepo Database

func (r *rotationRepo) Create(ctx context.Context, rt *entity.RotationTemplate) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	d.rotations[rt.ID] = rt
	return nil
}

func (r *rotationRepo) GetByID(ctx context.Context, id entity.RotationTemplateID) (*entity.RotationTemplate, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	rt, ok := d.rotations[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "RotationTemplate", ResourceID: id.String()}
	}
	return rt, nil
}

func (r *rotationRepo) GetByName(ctx context.Context, name string) (*entity.RotationTemplate, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	for _, rt := range d.rotations {
		if rt.Name == name {
			return rt, nil
		}
	}
	return nil, &repository.NotFoundError{ResourceType: "RotationTemplate", ResourceID: name}
}

func (r *rotationRepo) ListActive(ctx context.Context) ([]*entity.RotationTemplate, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	var out []*entity.RotationTemplate
	for _, rt := range d.rotations {
		if !rt.IsArchived {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (r *rotationRepo) Update(ctx context.Context, rt *entity.RotationTemplate) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	if _, ok := d.rotations[rt.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "RotationTemplate", ResourceID: rt.ID.String()}
	}
	d.rotations[rt.ID] = rt
	return nil
}

func (r *rotationRepo) Count(ctx context.Context) (int64, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	return int64(len(d.rotations)), nil
}

// --- AssignmentRepository ---

type assignmentRepo Database

func (r *assignmentRepo) Create(ctx context.Context, a *entity.Assignment) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	for _, existing := range d.assignments {
		if existing.BlockID == a.BlockID && existing.PersonID == a.PersonID {
			return &repository.ValidationError{Field: "block_id,person_id", Message: "assignment already exists"}
		}
	}
	d.assignments[a.ID] = a
	return nil
}

func (r *assignmentRepo) GetByID(ctx context.Context, id entity.AssignmentID) (*entity.Assignment, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	a, ok := d.assignments[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "Assignment", ResourceID: id.String()}
	}
	return a, nil
}

func (r *assignmentRepo) GetByBlockAndPerson(ctx context.Context, blockID entity.BlockID, personID entity.PersonID) (*entity.Assignment, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	for _, a := range d.assignments {
		if a.BlockID == blockID && a.PersonID == personID {
			return a, nil
		}
	}
	return nil, &repository.NotFoundError{ResourceType: "Assignment", ResourceID: blockID.String() + "/" + personID.String()}
}

func (r *assignmentRepo) GetByPerson(ctx context.Context, personID entity.PersonID) ([]*entity.Assignment, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	var out []*entity.Assignment
	for _, a := range d.assignments {
		if a.PersonID == personID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *assignmentRepo) GetByPersonAndDateRange(ctx context.Context, personID entity.PersonID, start, end time.Time) ([]*entity.Assignment, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	var out []*entity.Assignment
	for _, a := range d.assignments {
		if a.PersonID != personID {
			continue
		}
		b, ok := d.blocks[a.BlockID]
		if !ok {
			continue
		}
		if !b.Date.Before(start) && !b.Date.After(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *assignmentRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Assignment, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	var out []*entity.Assignment
	for _, a := range d.assignments {
		b, ok := d.blocks[a.BlockID]
		if !ok {
			continue
		}
		if !b.Date.Before(start) && !b.Date.After(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *assignmentRepo) Update(ctx context.Context, a *entity.Assignment) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	if _, ok := d.assignments[a.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "Assignment", ResourceID: a.ID.String()}
	}
	d.assignments[a.ID] = a
	return nil
}

func (r *assignmentRepo) Delete(ctx context.Context, id entity.AssignmentID) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	if _, ok := d.assignments[id]; !ok {
		return &repository.NotFoundError{ResourceType: "Assignment", ResourceID: id.String()}
	}
	delete(d.assignments, id)
	return nil
}

func (r *assignmentRepo) Count(ctx context.Context) (int64, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	return int64(len(d.assignments)), nil
}

// --- AbsenceRepository ---

type absenceRepo Database

func (r *absenceRepo) Create(ctx context.Context, a *entity.Absence) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	d.absences[a.ID] = a
	return nil
}

func (r *absenceRepo) GetByPerson(ctx context.Context, personID entity.PersonID) ([]*entity.Absence, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	var out []*entity.Absence
	for _, a := range d.absences {
		if a.PersonID == personID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *absenceRepo) GetByPersonAndDateRange(ctx context.Context, personID entity.PersonID, start, end time.Time) ([]*entity.Absence, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	var out []*entity.Absence
	for _, a := range d.absences {
		if a.PersonID == personID && !a.EndDate.Before(start) && !a.StartDate.After(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *absenceRepo) Count(ctx context.Context) (int64, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	return int64(len(d.absences)), nil
}

func (r *absenceRepo) ListAll(ctx context.Context) ([]*entity.Absence, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	out := make([]*entity.Absence, 0, len(d.absences))
	for _, a := range d.absences {
		out = append(out, a)
	}
	return out, nil
}

// --- ImportBatchRepository ---

type importBatchRepo Database

func (r *importBatchRepo) Create(ctx context.Context, b *entity.ImportBatch) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	d.batches[b.ID] = b
	return nil
}

func (r *importBatchRepo) GetByID(ctx context.Context, id entity.ImportBatchID) (*entity.ImportBatch, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	b, ok := d.batches[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "ImportBatch", ResourceID: id.String()}
	}
	return b, nil
}

func (r *importBatchRepo) GetActiveByFileHash(ctx context.Context, hash string) (*entity.ImportBatch, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	for _, b := range d.batches {
		if b.FileHash == hash && b.IsActive() {
			return b, nil
		}
	}
	return nil, &repository.NotFoundError{ResourceType: "ImportBatch", ResourceID: hash}
}

func (r *importBatchRepo) Update(ctx context.Context, b *entity.ImportBatch) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	if _, ok := d.batches[b.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "ImportBatch", ResourceID: b.ID.String()}
	}
	d.batches[b.ID] = b
	return nil
}

func (r *importBatchRepo) List(ctx context.Context, limit, offset int) ([]*entity.ImportBatch, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	all := make([]*entity.ImportBatch, 0, len(d.batches))
	for _, b := range d.batches {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []*entity.ImportBatch{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *importBatchRepo) Count(ctx context.Context) (int64, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	return int64(len(d.batches)), nil
}

// --- ImportStagedAssignmentRepository ---

type stagedRepo Database

func (r *stagedRepo) CreateBatch(ctx context.Context, rows []*entity.ImportStagedAssignment) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	for _, row := range rows {
		d.stagedRows[row.ID] = row
	}
	return nil
}

func (r *stagedRepo) GetByImportBatch(ctx context.Context, batchID entity.ImportBatchID) ([]*entity.ImportStagedAssignment, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	var out []*entity.ImportStagedAssignment
	for _, row := range d.stagedRows {
		if row.ImportBatchID == batchID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RowNumber < out[j].RowNumber })
	return out, nil
}

func (r *stagedRepo) GetPage(ctx context.Context, batchID entity.ImportBatchID, page, size int) ([]*entity.ImportStagedAssignment, int, error) {
	all, err := r.GetByImportBatch(ctx, batchID)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	start := page * size
	if start >= total {
		return []*entity.ImportStagedAssignment{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *stagedRepo) Update(ctx context.Context, row *entity.ImportStagedAssignment) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	if _, ok := d.stagedRows[row.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "ImportStagedAssignment", ResourceID: row.ID.String()}
	}
	d.stagedRows[row.ID] = row
	return nil
}

// --- CalendarSubscriptionRepository ---

type subscriptionRepo Database

func (r *subscriptionRepo) Create(ctx context.Context, s *entity.CalendarSubscription) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	d.subscriptions[s.Token] = s
	return nil
}

func (r *subscriptionRepo) GetByToken(ctx context.Context, token string) (*entity.CalendarSubscription, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	s, ok := d.subscriptions[token]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "CalendarSubscription", ResourceID: token}
	}
	return s, nil
}

func (r *subscriptionRepo) Update(ctx context.Context, s *entity.CalendarSubscription) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	if _, ok := d.subscriptions[s.Token]; !ok {
		return &repository.NotFoundError{ResourceType: "CalendarSubscription", ResourceID: s.Token}
	}
	d.subscriptions[s.Token] = s
	return nil
}

// --- WebhookSecretRepository ---

type webhookSecretRepo Database

func (r *webhookSecretRepo) GetByWebhookID(ctx context.Context, webhookID string) (*entity.WebhookSecret, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	s, ok := d.webhookSecrets[webhookID]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "WebhookSecret", ResourceID: webhookID}
	}
	return s, nil
}

func (r *webhookSecretRepo) Upsert(ctx context.Context, s *entity.WebhookSecret) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	d.webhookSecrets[s.ID] = s
	return nil
}

// --- WebhookDeliveryRepository ---

type webhookDeliveryRepo Database

func deliveryKey(webhookID, deliveryID string) string {
	return webhookID + ":" + deliveryID
}

func (r *webhookDeliveryRepo) Exists(ctx context.Context, webhookID, deliveryID string) (bool, error) {
	d := (*Database)(r)
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.bump()
	_, ok := d.webhookDeliveries[deliveryKey(webhookID, deliveryID)]
	return ok, nil
}

func (r *webhookDeliveryRepo) Record(ctx context.Context, del *entity.WebhookDelivery) error {
	d := (*Database)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bump()
	d.webhookDeliveries[deliveryKey(del.WebhookID, del.DeliveryID)] = del
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
