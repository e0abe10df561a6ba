package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

// Validator fetches the data the ACGME rules need and delegates the
// actual checking to the pure functions in rules.go.
type Validator struct {
	persons     repository.PersonRepository
	blocks      repository.BlockRepository
	assignments repository.AssignmentRepository
	absences    repository.AbsenceRepository
}

func NewValidator(db repository.Database) *Validator {
	return &Validator{
		persons:     db.PersonRepository(),
		blocks:      db.BlockRepository(),
		assignments: db.AssignmentRepository(),
		absences:    db.AbsenceRepository(),
	}
}

// Validate runs the rules selected by opts over [start, end] inclusive
// (spec.md §4.1's validate contract).
func (v *Validator) Validate(ctx context.Context, start, end time.Time, opts Options) (*Result, error) {
	if end.Before(start) {
		return nil, entity.ErrInvalidDateRange
	}

	assignments, err := v.assignments.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	blockList, err := v.blocks.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocks: %w", err)
	}

	blockByID := make(map[entity.BlockID]*entity.Block, len(blockList))
	for _, b := range blockList {
		blockByID[b.ID] = b
	}

	personIDSet := make(map[entity.PersonID]bool)
	for _, a := range assignments {
		personIDSet[a.PersonID] = true
	}
	personIDs := make([]entity.PersonID, 0, len(personIDSet))
	for id := range personIDSet {
		personIDs = append(personIDs, id)
	}
	personList, err := v.persons.ListByIDs(ctx, personIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load persons: %w", err)
	}
	personByID := make(map[entity.PersonID]*entity.Person, len(personList))
	for _, p := range personList {
		personByID[p.ID] = p
	}

	ctxs := make([]assignmentContext, 0, len(assignments))
	blockAssignments := make(map[entity.BlockID][]*entity.Assignment)
	for _, a := range assignments {
		ctxs = append(ctxs, assignmentContext{Assignment: a, Block: blockByID[a.BlockID]})
		blockAssignments[a.BlockID] = append(blockAssignments[a.BlockID], a)
	}
	byPerson := groupByPerson(ctxs)

	result := &Result{}
	totalEvaluations := 0

	if opts.CheckWorkHours {
		violations := checkWorkHours(byPerson, personByID)
		result.Violations = append(result.Violations, violations...)
		totalEvaluations += len(byPerson)
	}

	if opts.CheckConsecutiveDuty {
		violations := checkOneInSeven(byPerson, personByID)
		result.Violations = append(result.Violations, violations...)
		totalEvaluations += len(byPerson)
	}

	if opts.CheckSupervision {
		violations := checkSupervisionRatio(blockAssignments, blockByID, personByID)
		result.Violations = append(result.Violations, violations...)
		totalEvaluations += len(blockAssignments)
	}

	if opts.CheckRestPeriods {
		absencesByPerson, err := v.loadAbsences(ctx, personIDs, start, end)
		if err != nil {
			return nil, err
		}
		violations := checkAbsenceOverlap(byPerson, absencesByPerson)
		result.Violations = append(result.Violations, violations...)
		totalEvaluations += len(byPerson)
	}

	criticalCount := 0
	for _, viol := range result.Violations {
		if viol.Severity == SeverityCritical {
			criticalCount++
		}
	}
	result.ComplianceRate = complianceRate(totalEvaluations, criticalCount)

	return result, nil
}

func (v *Validator) loadAbsences(ctx context.Context, personIDs []entity.PersonID, start, end time.Time) (map[entity.PersonID][]*entity.Absence, error) {
	out := make(map[entity.PersonID][]*entity.Absence, len(personIDs))
	for _, id := range personIDs {
		abs, err := v.absences.GetByPersonAndDateRange(ctx, id, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to load absences for person %s: %w", id, err)
		}
		if len(abs) > 0 {
			out[id] = abs
		}
	}
	return out, nil
}
