// Package search implements faceted search over {person, rotation,
// assignment, procedure, absence} (spec.md §4.7), grounded on
// original_source/backend/app/search/faceted_search.py.
//
// The original names a fifth entity type "swap"; this port's data model
// (spec.md §3) has no swap-request entity, only Absence (the event that
// necessitates a schedule change). This port searches Absence under the
// "swap" entity-type name so the facet contract's five-type shape survives
// unchanged while staying grounded in the actual data model. Likewise
// "procedure" has no standalone catalog entity in spec.md §3 — it searches
// Person records flagged PerformsProcedures, the data model's only
// procedure-adjacent field.
package search

import "time"

// FacetType enumerates the kinds of facet a Facet can be.
type FacetType string

const (
	FacetTypeTerm         FacetType = "term"
	FacetTypeDateRange    FacetType = "date_range"
	FacetTypeHierarchical FacetType = "hierarchical"
)

// FacetOrder is the display-ordering strategy for a facet's values.
type FacetOrder string

const (
	FacetOrderCountDesc FacetOrder = "count_desc"
	FacetOrderValueAsc  FacetOrder = "value_asc"
	FacetOrderCustom    FacetOrder = "custom"
)

// DateRangePeriod names one of the fixed date-range buckets (spec.md §4.7).
type DateRangePeriod string

const (
	PeriodToday      DateRangePeriod = "today"
	PeriodThisWeek   DateRangePeriod = "this_week"
	PeriodThisMonth  DateRangePeriod = "this_month"
	PeriodLast7Days  DateRangePeriod = "last_7_days"
	PeriodLast30Days DateRangePeriod = "last_30_days"
	PeriodLast90Days DateRangePeriod = "last_90_days"
	PeriodLastYear   DateRangePeriod = "last_year"
	PeriodCustom     DateRangePeriod = "custom"
)

// EntityType enumerates the five searchable entity buckets spec.md §4.7
// names.
type EntityType string

const (
	EntityPerson     EntityType = "person"
	EntityRotation   EntityType = "rotation"
	EntityAssignment EntityType = "assignment"
	EntityProcedure  EntityType = "procedure"
	EntitySwap       EntityType = "swap"
)

// AllEntityTypes is the default set searched when the caller supplies none.
var AllEntityTypes = []EntityType{
	EntityPerson, EntityRotation, EntityAssignment, EntityProcedure, EntitySwap,
}

// ResultItem is one search hit, entity-type-agnostic for aggregation and
// pagination purposes.
type ResultItem struct {
	ID       string
	Type     EntityType
	Title    string
	Subtitle string
	Entity   map[string]any
}

// FacetValue is one value within a term or hierarchical facet.
type FacetValue struct {
	Value    string
	Key      string
	Count    int
	Selected bool
	Parent   string
	Children []FacetValue
}

// DateRangeFacetValue is one bucket within a date-range facet.
type DateRangeFacetValue struct {
	Label     string
	Period    DateRangePeriod
	StartDate time.Time
	EndDate   time.Time
	Count     int
	Selected  bool
}

// Facet is one facet dimension with its aggregated values.
type Facet struct {
	Name            string
	Label           string
	Type            FacetType
	Values          []FacetValue
	DateRangeValues []DateRangeFacetValue
	TotalCount      int
	Order           FacetOrder
	MultiSelect     bool
}

// FacetConfig controls which facets are computed and how they're limited.
type FacetConfig struct {
	EnabledFacets    []string
	MaxFacetValues   int
	MinFacetCount    int
	EnableHierarchical bool
	EnableDateFacets bool
	DynamicOrdering  bool
}

// DefaultFacetConfig mirrors the original source's FacetConfig defaults.
func DefaultFacetConfig() FacetConfig {
	return FacetConfig{
		EnabledFacets: []string{
			"person_type", "pgy_level", "faculty_role", "rotation_type",
			"status", "date_range", "specialty",
		},
		MaxFacetValues:     10,
		MinFacetCount:      1,
		EnableHierarchical: true,
		EnableDateFacets:   true,
		DynamicOrdering:    true,
	}
}

// FacetSelectionOperator combines multiple selected values within one facet
// (spec.md §4.7's "Multi-select combination": OR by default, AND across
// facets is always implicit).
type FacetSelectionOperator string

const (
	OperatorOR  FacetSelectionOperator = "OR"
	OperatorAND FacetSelectionOperator = "AND"
)

// FacetSelection is one applied facet filter.
type FacetSelection struct {
	FacetName string
	Values    []string
	DateStart *time.Time
	DateEnd   *time.Time
	Operator  FacetSelectionOperator
}

// FacetAnalytics tracks historical usage of one facet, driving dynamic
// ordering (spec.md §4.7's "analytics accumulator").
type FacetAnalytics struct {
	FacetName         string
	TotalSelections   int
	AvgResultReduction float64
	LastUpdated       time.Time
}

// Response is the full result of a faceted search call.
type Response struct {
	Items          []ResultItem
	Total          int
	Page           int
	PageSize       int
	TotalPages     int
	Facets         []Facet
	AppliedFacets  []FacetSelection
	Query          string
	ExecutionTime  time.Duration
	CacheHit       bool
}
