package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// searchLimit caps per-type result volume the same way the original
// source's `.limit(100)` does on every per-type query.
const searchLimit = 100

func containsFold(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// titleCase upper-cases the first rune of each underscore/space-separated
// word, used for display subtitles (strings.Title is deprecated; this
// avoids it while keeping the original source's `.title()` display style).
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func (s *Service) searchPersons(ctx context.Context, query string, selections []FacetSelection) ([]ResultItem, error) {
	people, err := s.db.PersonRepository().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("search persons: %w", err)
	}

	var typeValues, pgyValues, roleValues []string
	for _, sel := range selections {
		switch sel.FacetName {
		case "person_type":
			typeValues = sel.Values
		case "pgy_level":
			pgyValues = sel.Values
		case "faculty_role":
			roleValues = sel.Values
		}
	}

	var out []ResultItem
	for _, p := range people {
		if len(out) >= searchLimit {
			break
		}
		if query != "" && !containsFold(p.DisplayName, query) && !containsFold(p.Email, query) && !containsFold(string(p.Type), query) {
			continue
		}
		if len(typeValues) > 0 && !valueIn(string(p.Type), typeValues) {
			continue
		}
		if len(pgyValues) > 0 {
			if p.PGYLevel == nil || !valueIn(fmt.Sprintf("PGY-%d", *p.PGYLevel), pgyValues) {
				continue
			}
		}
		if len(roleValues) > 0 {
			if p.Role == nil || !valueIn(string(*p.Role), roleValues) {
				continue
			}
		}

		ent := map[string]any{
			"id":    p.ID.String(),
			"name":  p.DisplayName,
			"email": p.Email,
			"type":  string(p.Type),
		}
		if p.PGYLevel != nil {
			ent["pgy_level"] = int(*p.PGYLevel)
		}
		if p.Role != nil {
			ent["faculty_role"] = string(*p.Role)
		}
		if len(p.SpecialtyTags) > 0 {
			ent["specialties"] = p.SpecialtyTags
		}

		out = append(out, ResultItem{
			ID:       p.ID.String(),
			Type:     EntityPerson,
			Title:    p.DisplayName,
			Subtitle: titleCase(string(p.Type)),
			Entity:   ent,
		})
	}
	return out, nil
}

func (s *Service) searchRotations(ctx context.Context, query string, selections []FacetSelection) ([]ResultItem, error) {
	rotations, err := s.db.RotationTemplateRepository().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("search rotations: %w", err)
	}

	var rotationTypeValues []string
	for _, sel := range selections {
		if sel.FacetName == "rotation_type" {
			rotationTypeValues = sel.Values
		}
	}

	var out []ResultItem
	for _, rt := range rotations {
		if len(out) >= searchLimit {
			break
		}
		if query != "" && !containsFold(rt.Name, query) && !containsFold(rt.ActivityType, query) {
			continue
		}
		if len(rotationTypeValues) > 0 && !valueIn(rt.ActivityType, rotationTypeValues) {
			continue
		}

		out = append(out, ResultItem{
			ID:       rt.ID.String(),
			Type:     EntityRotation,
			Title:    rt.Name,
			Subtitle: titleCase(rt.ActivityType),
			Entity: map[string]any{
				"id":            rt.ID.String(),
				"name":          rt.Name,
				"rotation_type": rt.ActivityType,
			},
		})
	}
	return out, nil
}

func (s *Service) searchAssignments(ctx context.Context, query string, selections []FacetSelection, start, end time.Time) ([]ResultItem, error) {
	assignments, err := s.db.AssignmentRepository().GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("search assignments: %w", err)
	}

	var roleValues []string
	for _, sel := range selections {
		if sel.FacetName == "assignment_role" {
			roleValues = sel.Values
		}
	}

	var out []ResultItem
	for _, a := range assignments {
		if len(out) >= searchLimit {
			break
		}
		if query != "" && !containsFold(string(a.Role), query) && !containsFold(a.Notes, query) {
			continue
		}
		if len(roleValues) > 0 && !valueIn(string(a.Role), roleValues) {
			continue
		}

		out = append(out, ResultItem{
			ID:       a.ID.String(),
			Type:     EntityAssignment,
			Title:    "Assignment - " + string(a.Role),
			Subtitle: titleCase(string(a.Role)),
			Entity: map[string]any{
				"id":   a.ID.String(),
				"role": string(a.Role),
			},
		})
	}
	return out, nil
}

// searchProcedures targets Person records flagged PerformsProcedures, the
// data model's only procedure-adjacent field (package doc explains why
// there is no standalone Procedure catalog entity here).
func (s *Service) searchProcedures(ctx context.Context, query string, selections []FacetSelection) ([]ResultItem, error) {
	people, err := s.db.PersonRepository().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("search procedures: %w", err)
	}

	var categoryValues []string
	for _, sel := range selections {
		if sel.FacetName == "procedure_category" {
			categoryValues = sel.Values
		}
	}

	var out []ResultItem
	for _, p := range people {
		if !p.PerformsProcedures {
			continue
		}
		if len(out) >= searchLimit {
			break
		}
		if query != "" && !containsFold(p.DisplayName, query) {
			allTagsMiss := true
			for _, tag := range p.SpecialtyTags {
				if containsFold(tag, query) {
					allTagsMiss = false
					break
				}
			}
			if allTagsMiss {
				continue
			}
		}
		category := "general"
		if len(p.SpecialtyTags) > 0 {
			category = p.SpecialtyTags[0]
		}
		if len(categoryValues) > 0 && !valueIn(category, categoryValues) {
			continue
		}

		out = append(out, ResultItem{
			ID:       p.ID.String(),
			Type:     EntityProcedure,
			Title:    p.DisplayName,
			Subtitle: category,
			Entity: map[string]any{
				"id":       p.ID.String(),
				"name":     p.DisplayName,
				"category": category,
			},
		})
	}
	return out, nil
}

// searchSwaps targets Absence records under the "swap" entity-type name
// (package doc explains the data-model mapping).
func (s *Service) searchSwaps(ctx context.Context, query string, selections []FacetSelection) ([]ResultItem, error) {
	absences, err := s.db.AbsenceRepository().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("search swaps: %w", err)
	}

	var statusValues []string
	for _, sel := range selections {
		if sel.FacetName == "status" {
			statusValues = sel.Values
		}
	}

	var out []ResultItem
	for _, a := range absences {
		if len(out) >= searchLimit {
			break
		}
		if query != "" && !containsFold(string(a.Type), query) {
			continue
		}
		if len(statusValues) > 0 && !valueIn(string(a.Type), statusValues) {
			continue
		}

		out = append(out, ResultItem{
			ID:       a.ID.String(),
			Type:     EntitySwap,
			Title:    "Absence - " + string(a.Type),
			Subtitle: titleCase(string(a.Type)),
			Entity: map[string]any{
				"id":     a.ID.String(),
				"status": string(a.Type),
			},
		})
	}
	return out, nil
}

func valueIn(v string, values []string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

// pgyLevelFromKey parses a "PGY-N" facet key back into an int, used when
// rendering the pgy_level facet's sort key.
func pgyLevelFromKey(key string) (int, bool) {
	if !strings.HasPrefix(key, "PGY-") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(key, "PGY-"))
	if err != nil {
		return 0, false
	}
	return n, true
}
