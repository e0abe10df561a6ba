package contingency

import (
	"context"
	"fmt"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

// Analyzer runs N-1/N-2 simulations and centrality scoring over a
// scheduling period. Like compliance.Validator, it owns all repository
// access so every function in simulation.go/centrality.go/phase.go stays
// pure.
type Analyzer struct {
	db         repository.Database
	persons    repository.PersonRepository
	blocks     repository.BlockRepository
	assignments repository.AssignmentRepository
	templates  repository.RotationTemplateRepository
}

func NewAnalyzer(db repository.Database) *Analyzer {
	return &Analyzer{
		db:          db,
		persons:     db.PersonRepository(),
		blocks:      db.BlockRepository(),
		assignments: db.AssignmentRepository(),
		templates:   db.RotationTemplateRepository(),
	}
}

// Analyze runs the full N-1/N-2/centrality/phase-transition pipeline over
// [start, end] (spec.md §4.2's contract).
func (a *Analyzer) Analyze(ctx context.Context, start, end time.Time, opts Options) (*Report, error) {
	analyzedAt := entity.Now()
	startedAt := time.Now()

	faculty, blocks, assignments, templates, err := a.loadData(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if len(faculty) == 0 || len(blocks) == 0 {
		return emptyReport(analyzedAt, start, end), nil
	}

	l := buildLookups(faculty, blocks, assignments, templates)

	coverageRequirements := opts.CoverageRequirements
	if coverageRequirements == nil {
		coverageRequirements = make(map[entity.BlockID]int, len(blocks))
		for _, b := range blocks {
			coverageRequirements[b.ID] = 1
		}
	}
	maxN2Pairs := opts.MaxN2Pairs
	if maxN2Pairs <= 0 {
		maxN2Pairs = DefaultMaxN2Pairs
	}

	n1Sims := runN1(faculty, len(blocks), coverageRequirements, l)
	vulnerabilities := buildVulnerabilities(n1Sims, faculty, len(blocks), coverageRequirements, l)

	n1Pass := true
	criticalN1Count := 0
	for _, v := range vulnerabilities {
		if v.Severity == SeverityCritical {
			n1Pass = false
			criticalN1Count++
		}
	}

	var n2Sims []N2Simulation
	var fatalPairs []FatalPair
	n2Pass := true
	if opts.IncludeN2 {
		candidates := selectN2Candidates(vulnerabilities, faculty, l)
		n2Sims = runN2(candidates, coverageRequirements, maxN2Pairs, l)
		fatalPairs = buildFatalPairs(n2Sims, l)
		n2Pass = len(fatalPairs) == 0
	}

	centralityScores := calculateCentrality(faculty, len(assignments), l)

	phaseRisk, indicators := detectPhaseTransition(opts.CurrentUtilization, criticalN1Count, len(fatalPairs))
	recommendations := buildRecommendations(n1Pass, n2Pass, phaseRisk, vulnerabilities)

	mostCritical := make([]entity.PersonID, 0, 5)
	for _, v := range vulnerabilities {
		if v.Severity != SeverityCritical && v.Severity != SeverityHigh {
			continue
		}
		mostCritical = append(mostCritical, v.FacultyID)
		if len(mostCritical) == 5 {
			break
		}
	}

	report := &Report{
		AnalyzedAt:          analyzedAt,
		PeriodStart:         start,
		PeriodEnd:           end,
		N1Pass:              n1Pass,
		N1Vulnerabilities:   vulnerabilities,
		N1Simulations:       n1Sims,
		N2Pass:              n2Pass,
		N2FatalPairs:        fatalPairs,
		N2Simulations:       n2Sims,
		CentralityScores:    centralityScores,
		MostCriticalFaculty: mostCritical,
		PhaseTransitionRisk: phaseRisk,
		LeadingIndicators:   indicators,
		RecommendedActions:  recommendations,
		AnalysisDurationMs:  float64(time.Since(startedAt).Microseconds()) / 1000.0,
	}
	if versionID, ok := a.db.CurrentVersionID(ctx); ok {
		report.VersionID = versionID
		report.HasVersionID = true
	}

	return report, nil
}

// GetVulnerabilityAssessment is the cheaper N-1-only quick-path (spec.md
// SUPPLEMENTED FEATURES; RESOLVED AMBIGUITY 5: TotalBlocks is the union of
// uncovered blocks across every N-1 simulation, not the period's block
// count).
func (a *Analyzer) GetVulnerabilityAssessment(ctx context.Context, start, end time.Time) (*VulnerabilityAssessment, error) {
	report, err := a.Analyze(ctx, start, end, Options{IncludeN2: false})
	if err != nil {
		return nil, err
	}

	critical := 0
	for _, v := range report.N1Vulnerabilities {
		if v.Severity == SeverityCritical {
			critical++
		}
	}

	uncoveredUnion := make(map[entity.BlockID]bool)
	for _, sim := range report.N1Simulations {
		for _, b := range sim.UncoveredBlocks {
			uncoveredUnion[b] = true
		}
	}
	totalBlocks := 0
	if len(report.N1Simulations) > 0 {
		totalBlocks = len(uncoveredUnion)
	}

	return &VulnerabilityAssessment{
		AssessedAt:              report.AnalyzedAt,
		PeriodStart:             start,
		PeriodEnd:               end,
		TotalFaculty:            len(report.N1Simulations),
		TotalBlocks:             totalBlocks,
		N1Pass:                  report.N1Pass,
		N2Pass:                  report.N2Pass,
		PhaseTransitionRisk:     report.PhaseTransitionRisk,
		VulnerabilitiesCount:    len(report.N1Vulnerabilities),
		CriticalVulnerabilities: critical,
		FatalPairsCount:         len(report.N2FatalPairs),
	}, nil
}

// SimulateFacultyLoss runs a single N-1 simulation for one faculty member,
// without the full vulnerability/centrality/phase pipeline.
func (a *Analyzer) SimulateFacultyLoss(ctx context.Context, facultyID entity.PersonID, start, end time.Time) (*N1Simulation, error) {
	faculty, blocks, assignments, templates, err := a.loadData(ctx, start, end)
	if err != nil {
		return nil, err
	}

	var target *entity.Person
	for _, f := range faculty {
		if f.ID == facultyID {
			target = f
			break
		}
	}
	if target == nil {
		return &N1Simulation{FacultyID: facultyID, FacultyName: "Unknown", CoverageRemaining: 1.0}, nil
	}

	l := buildLookups(faculty, blocks, assignments, templates)
	coverageRequirements := make(map[entity.BlockID]int, len(blocks))
	for _, b := range blocks {
		coverageRequirements[b.ID] = 1
	}

	sim := simulateSingleLoss(target, len(blocks), coverageRequirements, l)
	return &sim, nil
}

// CalculateCentrality scores every faculty member's importance for
// [start, end] without running the simulation pipeline.
func (a *Analyzer) CalculateCentrality(ctx context.Context, start, end time.Time) ([]Centrality, error) {
	faculty, blocks, assignments, templates, err := a.loadData(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(faculty) == 0 {
		return nil, nil
	}
	l := buildLookups(faculty, blocks, assignments, templates)
	return calculateCentrality(faculty, len(assignments), l), nil
}

func (a *Analyzer) loadData(ctx context.Context, start, end time.Time) ([]*entity.Person, []*entity.Block, []*entity.Assignment, map[entity.RotationTemplateID]*entity.RotationTemplate, error) {
	allPersons, err := a.persons.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load persons: %w", err)
	}
	var faculty []*entity.Person
	for _, p := range allPersons {
		if p.Type == entity.PersonTypeFaculty {
			faculty = append(faculty, p)
		}
	}

	blocks, err := a.blocks.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load blocks: %w", err)
	}

	assignments, err := a.assignments.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	templateList, err := a.templates.ListActive(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load rotation templates: %w", err)
	}
	templates := make(map[entity.RotationTemplateID]*entity.RotationTemplate, len(templateList))
	for _, rt := range templateList {
		templates[rt.ID] = rt
	}

	return faculty, blocks, assignments, templates, nil
}

func emptyReport(analyzedAt, start, end time.Time) *Report {
	return &Report{
		AnalyzedAt:          analyzedAt,
		PeriodStart:         start,
		PeriodEnd:           end,
		N1Pass:              true,
		N2Pass:              true,
		PhaseTransitionRisk: "low",
	}
}
