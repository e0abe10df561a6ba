// Package equilibrium implements the Le Chatelier equilibrium analyzer
// (spec.md §4.3): a stateful model of system capacity/demand under stress
// and compensation, grounded on
// original_source/backend/tests/resilience/test_le_chatelier.py (the
// implementation file itself was not retrieved into the corpus; the test
// suite pins its exact arithmetic and is treated as the ground truth).
package equilibrium

import (
	"time"

	"github.com/google/uuid"
)

// StressType enumerates the kinds of shock the system can absorb.
type StressType string

const (
	StressFacultyLoss      StressType = "faculty_loss"
	StressDemandSurge      StressType = "demand_surge"
	StressQualityPressure  StressType = "quality_pressure"
	StressTimeCompression  StressType = "time_compression"
	StressResourceScarcity StressType = "resource_scarcity"
	StressExternalPressure StressType = "external_pressure"
)

// CompensationType enumerates the kinds of response the system can apply
// against an active stress.
type CompensationType string

const (
	CompensationOvertime         CompensationType = "overtime"
	CompensationCrossCoverage    CompensationType = "cross_coverage"
	CompensationDeferredLeave    CompensationType = "deferred_leave"
	CompensationServiceReduction CompensationType = "service_reduction"
	CompensationEfficiencyGain   CompensationType = "efficiency_gain"
	CompensationBackupActivation CompensationType = "backup_activation"
	CompensationQualityTrade     CompensationType = "quality_trade"
)

// EquilibriumState is the system's current classification, ordered
// stable > compensating > stressed > unsustainable > critical by severity.
type EquilibriumState string

const (
	StateStable        EquilibriumState = "stable"
	StateCompensating  EquilibriumState = "compensating"
	StateStressed      EquilibriumState = "stressed"
	StateUnsustainable EquilibriumState = "unsustainable"
	StateCritical      EquilibriumState = "critical"
)

// Stress is one imposed shock on the system (spec.md §4.3's six stress
// types). CapacityImpact is added directly to capacity; DemandImpact is
// applied multiplicatively: demand *= (1 + DemandImpact).
type Stress struct {
	ID             uuid.UUID
	Type           StressType
	Description    string
	AppliedAt      time.Time
	Magnitude      float64
	DurationDays   int
	IsAcute        bool
	IsReversible   bool
	CapacityImpact float64
	DemandImpact   float64
	IsActive       bool
	ResolvedAt     *time.Time
}

// Compensation is one response initiated against a Stress.
type Compensation struct {
	ID                     uuid.UUID
	StressID               uuid.UUID
	Type                   CompensationType
	Description            string
	InitiatedAt            time.Time
	CompensationMagnitude  float64
	Effectiveness          float64
	ImmediateCost          float64
	HiddenCost             float64
	SustainabilityDays     int
	IsActive               bool
	EndedAt                *time.Time
	EndReason              string
}

// Shift is the result of CalculateEquilibriumShift: a full recomputation
// of the operating point from a given baseline, folding in every active
// stress and compensation.
type Shift struct {
	OriginalCapacity      float64
	OriginalDemand        float64
	TotalCapacityImpact   float64
	TotalDemandImpact     float64
	Stresses              []Stress
	Compensations         []Compensation
	SustainableCapacity   float64 // capacity after stress, before compensation
	TotalCompensation     float64 // effective compensation after diminishing returns
	CompensationEfficiency float64 // total_compensation / sum(raw magnitudes); 1.0 if no compensation
	NewCapacity           float64
	NewDemand             float64
	NewCoverageRate       float64
	BurnoutRisk           float64
	DaysUntilExhaustion   *int
	EquilibriumState      EquilibriumState
}

// StressResponsePrediction is the result of PredictStressResponse: a
// what-if simulation that never mutates analyzer state.
type StressResponsePrediction struct {
	StressType                  StressType
	StressMagnitude             float64
	StressDurationDays          int
	PredictedNewCapacity        float64
	PredictedNewDemand          float64
	PredictedCoverageRate       float64
	PredictedCompensation       float64
	PredictedDailyCost          float64
	PredictedTotalCost          float64
	AdditionalInterventionNeeded float64
	SustainabilityAssessment    string
	RecommendedActions          []string
}

// Report is the output of GetReport: a snapshot of the analyzer's current
// state plus derived risk metrics and recommendations.
type Report struct {
	GeneratedAt                time.Time
	CurrentEquilibriumState    EquilibriumState
	CurrentCapacity            float64
	CurrentDemand              float64
	CurrentCoverageRate        float64
	ActiveStresses             []Stress
	ActiveCompensations        []Compensation
	TotalStressMagnitude       float64
	TotalCompensationMagnitude float64
	CompensationDebt           float64
	BurnoutRisk                float64
	DaysUntilExhaustion        *int
	SustainabilityScore        float64
	Recommendations            []string
}

// MinCapacity is the floor below which the system cannot be modeled
// (spec.md §4.3).
const MinCapacity = 0.1

// diminishingReturnsDecay is the per-additional-compensation efficiency
// penalty on the same stress (spec.md §4.3's "effective compensation"
// formula).
const diminishingReturnsDecay = 0.15
