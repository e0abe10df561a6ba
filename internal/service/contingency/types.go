// Package contingency implements the N-1/N-2 resilience simulation and
// faculty centrality scoring described in spec.md §4.2, grounded on
// original_source/backend/app/services/resilience/contingency.py. Like
// internal/service/compliance, a thin orchestrator loads and joins data
// once and hands plain structures to pure simulation functions.
package contingency

import (
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// Severity is an N-1 vulnerability's severity tier, ordered
// critical > high > medium > low for sorting.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

func severityOrder(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// Vulnerability is one faculty member's N-1 exposure.
type Vulnerability struct {
	FacultyID        entity.PersonID
	FacultyName      string
	Severity         Severity
	AffectedBlocks   int
	IsUniqueProvider bool
	AffectedServices []string
	Details          string
}

// FatalPair is an N-2 pair whose simultaneous loss leaves a block
// uncovered.
type FatalPair struct {
	Faculty1ID         entity.PersonID
	Faculty1Name       string
	Faculty2ID         entity.PersonID
	Faculty2Name       string
	UncoverableBlocks  int
	AffectedServices   []string
	ProbabilityEstimate string
}

// Centrality is one faculty member's importance score in the coverage
// network, per the replacement_difficulty/workload_share fallback formula
// (spec.md §4.2's "without the library" branch — the only branch this
// port implements; no graph library appears anywhere in the retrieved
// corpus, see DESIGN.md).
type Centrality struct {
	FacultyID             entity.PersonID
	FacultyName           string
	Score                 float64
	ServicesCovered       int
	UniqueCoverageSlots   int
	ReplacementDifficulty float64
	WorkloadShare         float64
}

// N1Simulation is the raw simulation result for one faculty member's
// hypothetical loss, independent of its derived Severity.
type N1Simulation struct {
	FacultyID        entity.PersonID
	FacultyName      string
	BlocksAffected   int
	CoverageRemaining float64
	IsCritical       bool
	UncoveredBlocks  []entity.BlockID
}

// N2Simulation is the raw simulation result for one faculty pair's
// hypothetical simultaneous loss.
type N2Simulation struct {
	Faculty1ID        entity.PersonID
	Faculty2ID        entity.PersonID
	BlocksAffected    int
	CoverageRemaining float64
	IsFatal           bool
	UncoveredBlocks   []entity.BlockID
}

// VulnerabilityAssessment is the cheaper, N-1-only summary returned by
// GetVulnerabilityAssessment (spec.md SUPPLEMENTED FEATURES: a quick-path
// for dashboards that don't need the full N-2 analysis).
type VulnerabilityAssessment struct {
	AssessedAt             time.Time
	PeriodStart            time.Time
	PeriodEnd              time.Time
	TotalFaculty           int
	TotalBlocks            int
	N1Pass                 bool
	N2Pass                 bool
	PhaseTransitionRisk    string
	VulnerabilitiesCount   int
	CriticalVulnerabilities int
	FatalPairsCount        int
}

// Report is the full output of Analyze.
type Report struct {
	AnalyzedAt            time.Time
	PeriodStart           time.Time
	PeriodEnd             time.Time
	N1Pass                bool
	N1Vulnerabilities     []Vulnerability
	N1Simulations         []N1Simulation
	N2Pass                bool
	N2FatalPairs          []FatalPair
	N2Simulations         []N2Simulation
	CentralityScores      []Centrality
	MostCriticalFaculty   []entity.PersonID
	PhaseTransitionRisk   string
	LeadingIndicators     []string
	RecommendedActions    []string
	AnalysisDurationMs    float64
	VersionID             int64
	HasVersionID          bool
}

// Options configures Analyze. CoverageRequirements defaults to 1 per block
// when nil. CurrentUtilization feeds the phase-transition detector.
type Options struct {
	CoverageRequirements map[entity.BlockID]int
	CurrentUtilization   float64
	IncludeN2            bool
	MaxN2Pairs           int
}

// DefaultMaxN2Pairs matches the original service's analyze_contingency
// default.
const DefaultMaxN2Pairs = 100
