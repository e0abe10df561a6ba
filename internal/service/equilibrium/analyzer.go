package equilibrium

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Analyzer is a stateful Le Chatelier equilibrium model: it owns the
// current capacity/demand operating point plus every stress and
// compensation ever applied, and is safe for concurrent use (it is
// invoked from worker-context calls driven by the task scheduler's
// cooperative executor loop, per spec.md §4.4).
type Analyzer struct {
	mu sync.RWMutex

	baseCompensationRate      float64
	compensationCostMultiplier float64
	sustainabilityThreshold   float64

	currentCapacity  float64
	currentDemand    float64
	compensationDebt float64

	stresses      map[uuid.UUID]*Stress
	compensations map[uuid.UUID]*Compensation
	shifts        []Shift
}

// Option configures a new Analyzer.
type Option func(*Analyzer)

// WithBaseCompensationRate overrides the default 0.5 natural-compensation
// fraction used by CalculateNewEquilibrium.
func WithBaseCompensationRate(rate float64) Option {
	return func(a *Analyzer) { a.baseCompensationRate = rate }
}

// WithCompensationCostMultiplier overrides the default 1.5 cost multiplier
// used when pricing predicted compensation.
func WithCompensationCostMultiplier(mult float64) Option {
	return func(a *Analyzer) { a.compensationCostMultiplier = mult }
}

// WithSustainabilityThreshold overrides the default 0.7 threshold used by
// report recommendations.
func WithSustainabilityThreshold(threshold float64) Option {
	return func(a *Analyzer) { a.sustainabilityThreshold = threshold }
}

// NewAnalyzer returns an Analyzer starting at full capacity (1.0) and
// baseline demand (0.8), matching the teacher-independent defaults spec.md
// §4.3 assumes for a freshly-initialized system.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		baseCompensationRate:       0.5,
		compensationCostMultiplier: 1.5,
		sustainabilityThreshold:    0.7,
		currentCapacity:            1.0,
		currentDemand:              0.8,
		stresses:                   make(map[uuid.UUID]*Stress),
		compensations:              make(map[uuid.UUID]*Compensation),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetCurrentState overrides the analyzer's current operating point
// directly, used by callers seeding a known system state.
func (a *Analyzer) SetCurrentState(capacity, demand float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentCapacity = capacity
	a.currentDemand = demand
}

// ResetCompensationDebt zeroes the accumulated hidden-cost debt, used
// after a billing/reconciliation cycle.
func (a *Analyzer) ResetCompensationDebt() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.compensationDebt = 0
}

// ApplyStress records a new Stress and immediately updates the analyzer's
// capacity/demand (spec.md §4.3: "updates capacity by its capacity_impact
// and demand by (1 + demand_impact)").
func (a *Analyzer) ApplyStress(stressType StressType, description string, magnitude float64, durationDays int, capacityImpact, demandImpact float64, isAcute, isReversible bool) *Stress {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := &Stress{
		ID:             uuid.New(),
		Type:           stressType,
		Description:    description,
		AppliedAt:      time.Now(),
		Magnitude:      magnitude,
		DurationDays:   durationDays,
		IsAcute:        isAcute,
		IsReversible:   isReversible,
		CapacityImpact: capacityImpact,
		DemandImpact:   demandImpact,
		IsActive:       true,
	}
	a.stresses[s.ID] = s

	a.currentCapacity = clampCapacity(a.currentCapacity + capacityImpact)
	a.currentDemand = a.currentDemand * (1 + demandImpact)

	return s
}

// ResolveStress ends a stress, restores its capacity/demand contribution,
// and ends every compensation still linked to it with reason
// "stress_resolved". Resolving an unknown id is a safe no-op.
func (a *Analyzer) ResolveStress(stressID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.stresses[stressID]
	if s == nil || !s.IsActive {
		return
	}

	now := time.Now()
	s.IsActive = false
	s.ResolvedAt = &now

	a.currentCapacity = clampCapacity(a.currentCapacity - s.CapacityImpact)
	if denom := 1 + s.DemandImpact; denom != 0 {
		a.currentDemand = a.currentDemand / denom
	}

	for _, c := range a.compensations {
		if c.StressID == stressID && c.IsActive {
			c.IsActive = false
			c.EndedAt = &now
			c.EndReason = "stress_resolved"
		}
	}
}

// InitiateCompensation records a new Compensation against stressID and
// adds hiddenCost to the accumulated debt. Returns nil if stressID is
// unknown (spec.md §4.3). effectiveness/sustainabilityDays default to 1.0
// and 30 respectively when <= 0, matching the teacher-independent
// defaults a zero-value caller would expect.
func (a *Analyzer) InitiateCompensation(stressID uuid.UUID, compType CompensationType, description string, magnitude, effectiveness float64, sustainabilityDays int, immediateCost, hiddenCost float64) *Compensation {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.stresses[stressID]; !ok {
		return nil
	}

	if effectiveness <= 0 {
		effectiveness = 1.0
	}
	if sustainabilityDays <= 0 {
		sustainabilityDays = 30
	}

	c := &Compensation{
		ID:                    uuid.New(),
		StressID:              stressID,
		Type:                  compType,
		Description:           description,
		InitiatedAt:           time.Now(),
		CompensationMagnitude: magnitude,
		Effectiveness:         effectiveness,
		ImmediateCost:         immediateCost,
		HiddenCost:            hiddenCost,
		SustainabilityDays:    sustainabilityDays,
		IsActive:              true,
	}
	a.compensations[c.ID] = c
	a.compensationDebt += hiddenCost

	return c
}

// EndCompensation ends a compensation with the given reason. Ending an
// unknown id is a safe no-op.
func (a *Analyzer) EndCompensation(compensationID uuid.UUID, reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.compensations[compensationID]
	if c == nil || !c.IsActive {
		return
	}
	now := time.Now()
	c.IsActive = false
	c.EndedAt = &now
	c.EndReason = reason
}

func clampCapacity(c float64) float64 {
	if c < MinCapacity {
		return MinCapacity
	}
	return c
}

// activeStressesLocked/activeCompensationsLocked return snapshots sorted by applied/
// initiated time, for deterministic diminishing-returns ordering.
func (a *Analyzer) activeStressesLocked() []*Stress {
	var out []*Stress
	for _, s := range a.stresses {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.Before(out[j].AppliedAt) })
	return out
}

func (a *Analyzer) activeCompensationsLocked() []*Compensation {
	var out []*Compensation
	for _, c := range a.compensations {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InitiatedAt.Before(out[j].InitiatedAt) })
	return out
}
