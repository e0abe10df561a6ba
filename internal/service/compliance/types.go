// Package compliance implements the ACGME work-hour and supervision rule
// checks (spec.md §4.1), grounded on
// lcgerke-schedCU/v2/internal/service/coverage/algorithm.go's
// pure-function-over-already-fetched-data style: a thin Validator fetches
// assignments/blocks/persons/absences, then hands them to side-effect-free
// rule functions in rules.go.
package compliance

import (
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// Severity mirrors spec.md §4.1's three-level scale. Distinct from
// validation.Severity (ERROR/WARNING/INFO) because ACGME rule violations
// carry their own vocabulary ("critical" regulatory breach vs. a plain
// input error).
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// RuleType identifies which ACGME rule produced a Violation.
type RuleType string

const (
	RuleWorkHours        RuleType = "work_hours"
	RuleOneInSeven       RuleType = "one_in_seven"
	RuleSupervisionRatio RuleType = "supervision_ratio"
	RuleAbsenceOverlap   RuleType = "absence_overlap"
)

// Violation is one rule breach or warning, scoped to a person and/or date
// range (spec.md §4.1: "structured details; optional suggested_fix").
type Violation struct {
	Severity     Severity
	RuleType     RuleType
	PersonID     *entity.PersonID
	StartDate    time.Time
	EndDate      time.Time
	Details      map[string]interface{}
	SuggestedFix string
}

// Options selects which rules to run. Field names follow spec.md §4.1's
// contract verbatim; check_rest_periods maps to the absence-overlap rule
// and check_consecutive_duty to the 1-in-7 rule (the spec names the
// options and the rules separately without pairing them explicitly — this
// port pairs "rest periods" with absences and "consecutive duty" with the
// 1-in-7 run-length check, the natural reading of each name).
type Options struct {
	CheckWorkHours       bool
	CheckSupervision     bool
	CheckRestPeriods     bool
	CheckConsecutiveDuty bool
}

// AllChecks enables every rule.
func AllChecks() Options {
	return Options{
		CheckWorkHours:       true,
		CheckSupervision:     true,
		CheckRestPeriods:     true,
		CheckConsecutiveDuty: true,
	}
}

// Result is the outcome of a Validate call.
type Result struct {
	Violations     []Violation
	ComplianceRate float64 // [0,1]; see rules.go's complianceRate for the formula
}

// HasCritical reports whether any violation is critical-severity.
func (r *Result) HasCritical() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
