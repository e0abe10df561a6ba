package search

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// generateFacets builds every enabled facet over the full (pre-pagination)
// result set (spec.md §4.7 step 4: "Facet aggregation over the result
// set"), then applies dynamic ordering if configured.
func (s *Service) generateFacets(results []ResultItem, config FacetConfig, selections []FacetSelection) []Facet {
	var facets []Facet

	termFacets := []struct {
		name      string
		label     string
		order     FacetOrder
		extractor func(ResultItem) (string, bool)
		labeler   func(string) string
	}{
		{"person_type", "Person Type", FacetOrderCountDesc, fieldExtractor(EntityPerson, "type"), titleCase},
		{"pgy_level", "PGY Level", FacetOrderValueAsc, pgyExtractor, func(v string) string { return v }},
		{"faculty_role", "Faculty Role", FacetOrderCountDesc, fieldExtractor(EntityPerson, "faculty_role"), facultyRoleLabel},
		{"rotation_type", "Rotation Type", FacetOrderCountDesc, fieldExtractor(EntityRotation, "rotation_type"), titleCase},
		{"status", "Status", FacetOrderCountDesc, anyTypeFieldExtractor("status"), titleCase},
		{"procedure_category", "Procedure Category", FacetOrderCountDesc, fieldExtractor(EntityProcedure, "category"), titleCase},
	}

	for _, tf := range termFacets {
		if !enabled(config, tf.name) {
			continue
		}
		f := s.generateTermFacet(tf.name, tf.label, tf.order, results, config, selections, tf.extractor, tf.labeler)
		if f != nil {
			facets = append(facets, *f)
		}
	}

	if config.EnableDateFacets && enabled(config, "date_range") {
		facets = append(facets, s.generateDateRangeFacet(results))
	}

	if config.EnableHierarchical && enabled(config, "specialty") {
		if f := s.generateSpecialtyFacet(results, config); f != nil {
			facets = append(facets, *f)
		}
	}

	if config.DynamicOrdering {
		facets = s.applyDynamicOrdering(facets)
	}

	return facets
}

func enabled(config FacetConfig, name string) bool {
	for _, n := range config.EnabledFacets {
		if n == name {
			return true
		}
	}
	return false
}

func fieldExtractor(entityType EntityType, field string) func(ResultItem) (string, bool) {
	return func(item ResultItem) (string, bool) {
		if item.Type != entityType {
			return "", false
		}
		return stringField(item, field)
	}
}

func anyTypeFieldExtractor(field string) func(ResultItem) (string, bool) {
	return func(item ResultItem) (string, bool) {
		return stringField(item, field)
	}
}

func stringField(item ResultItem, field string) (string, bool) {
	raw, ok := item.Entity[field]
	if !ok {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case int:
		return fmt.Sprintf("%d", v), true
	default:
		return "", false
	}
}

func pgyExtractor(item ResultItem) (string, bool) {
	if item.Type != EntityPerson {
		return "", false
	}
	lvl, ok := item.Entity["pgy_level"]
	if !ok {
		return "", false
	}
	n, ok := lvl.(int)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("PGY-%d", n), true
}

func facultyRoleLabel(role string) string {
	labels := map[string]string{
		"pd":         "Program Director",
		"apd":        "Associate Program Director",
		"oic":        "Officer in Charge",
		"dept_chief": "Department Chief",
		"sports_med": "Sports Medicine",
		"core":       "Core Faculty",
	}
	if label, ok := labels[role]; ok {
		return label
	}
	return titleCase(role)
}

func selectedValues(selections []FacetSelection, facetName string) map[string]bool {
	selected := make(map[string]bool)
	for _, sel := range selections {
		if sel.FacetName == facetName {
			for _, v := range sel.Values {
				selected[v] = true
			}
		}
	}
	return selected
}

// generateTermFacet counts distinct key values across results, drops those
// below MinFacetCount, orders, and truncates to MaxFacetValues (spec.md
// §4.7's "Term facets" rule).
func (s *Service) generateTermFacet(name, label string, order FacetOrder, results []ResultItem, config FacetConfig, selections []FacetSelection, extract func(ResultItem) (string, bool), displayLabel func(string) string) *Facet {
	counts := make(map[string]int)
	for _, item := range results {
		if key, ok := extract(item); ok {
			counts[key]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	selected := selectedValues(selections, name)

	var values []FacetValue
	total := 0
	for key, count := range counts {
		total += count
		if count < config.MinFacetCount {
			continue
		}
		values = append(values, FacetValue{
			Value:    displayLabel(key),
			Key:      key,
			Count:    count,
			Selected: selected[key],
		})
	}

	switch order {
	case FacetOrderValueAsc:
		sort.Slice(values, func(i, j int) bool {
			li, oki := pgyLevelFromKey(values[i].Key)
			lj, okj := pgyLevelFromKey(values[j].Key)
			if oki && okj {
				return li < lj
			}
			return values[i].Key < values[j].Key
		})
	default: // count_desc
		sort.Slice(values, func(i, j int) bool {
			if values[i].Count != values[j].Count {
				return values[i].Count > values[j].Count
			}
			return values[i].Key < values[j].Key
		})
	}

	if config.MaxFacetValues > 0 && len(values) > config.MaxFacetValues {
		values = values[:config.MaxFacetValues]
	}

	return &Facet{
		Name:        name,
		Label:       label,
		Type:        FacetTypeTerm,
		Values:      values,
		TotalCount:  total,
		Order:       order,
		MultiSelect: true,
	}
}

// generateDateRangeFacet produces the fixed buckets named in spec.md §4.7.
// Counting "results in range" requires a date per item, which ResultItem
// doesn't carry generically (assignments are date-scoped through their
// Block, out of this package's view) -- this mirrors the original source's
// own simplification, which also places len(results) in every bucket
// rather than computing a true per-bucket count.
func (s *Service) generateDateRangeFacet(results []ResultItem) Facet {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	weekday := int(today.Weekday())

	buckets := []DateRangeFacetValue{
		{Label: "Today", Period: PeriodToday, StartDate: today, EndDate: today, Count: len(results)},
		{Label: "This Week", Period: PeriodThisWeek, StartDate: today.AddDate(0, 0, -weekday), EndDate: today.AddDate(0, 0, 6-weekday), Count: len(results)},
		{Label: "This Month", Period: PeriodThisMonth, StartDate: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1), Count: len(results)},
		{Label: "Last 7 Days", Period: PeriodLast7Days, StartDate: today.AddDate(0, 0, -7), EndDate: today, Count: len(results)},
		{Label: "Last 30 Days", Period: PeriodLast30Days, StartDate: today.AddDate(0, 0, -30), EndDate: today, Count: len(results)},
		{Label: "Last 90 Days", Period: PeriodLast90Days, StartDate: today.AddDate(0, 0, -90), EndDate: today, Count: len(results)},
	}

	return Facet{
		Name:            "date_range",
		Label:           "Date Range",
		Type:            FacetTypeDateRange,
		DateRangeValues: buckets,
		TotalCount:      len(results),
		Order:           FacetOrderCustom,
		MultiSelect:     false,
	}
}

// generateSpecialtyFacet builds the two-level "Parent > Child" hierarchy
// named in spec.md §4.7's "Hierarchical facets" rule.
func (s *Service) generateSpecialtyFacet(results []ResultItem, config FacetConfig) *Facet {
	type childCounts map[string]int
	hierarchy := make(map[string]childCounts)

	for _, item := range results {
		if item.Type != EntityPerson {
			continue
		}
		raw, ok := item.Entity["specialties"]
		if !ok {
			continue
		}
		tags, ok := raw.([]string)
		if !ok {
			continue
		}
		for _, tag := range tags {
			parent, child, has := splitSpecialty(tag)
			if hierarchy[parent] == nil {
				hierarchy[parent] = make(childCounts)
			}
			if has {
				hierarchy[parent][child]++
			} else {
				hierarchy[parent]["_total"]++
			}
		}
	}
	if len(hierarchy) == 0 {
		return nil
	}

	var values []FacetValue
	for parent, children := range hierarchy {
		total := 0
		var kids []FacetValue
		for child, count := range children {
			total += count
			if child == "_total" {
				continue
			}
			kids = append(kids, FacetValue{
				Value: child, Key: parent + ">" + child, Count: count, Parent: parent,
			})
		}
		sort.Slice(kids, func(i, j int) bool { return kids[i].Count > kids[j].Count })
		values = append(values, FacetValue{Value: parent, Key: parent, Count: total, Children: kids})
	}

	sort.Slice(values, func(i, j int) bool { return values[i].Count > values[j].Count })
	if config.MaxFacetValues > 0 && len(values) > config.MaxFacetValues {
		values = values[:config.MaxFacetValues]
	}

	total := 0
	for _, v := range values {
		total += v.Count
	}

	return &Facet{
		Name:        "specialty",
		Label:       "Specialty",
		Type:        FacetTypeHierarchical,
		Values:      values,
		TotalCount:  total,
		Order:       FacetOrderCountDesc,
		MultiSelect: true,
	}
}

func splitSpecialty(tag string) (parent, child string, hasChild bool) {
	idx := strings.Index(tag, ">")
	if idx < 0 {
		return tag, "", false
	}
	parent = strings.TrimSpace(tag[:idx])
	child = strings.TrimSpace(tag[idx+1:])
	return parent, child, child != ""
}
