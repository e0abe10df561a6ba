package compliance

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

const (
	maxWeeklyHours        = 80.0
	weeklyHoursWarnRatio  = 0.95
	rollingWindowDays     = 28 // 4 weeks inclusive
	maxConsecutiveDutyDays = 6 // >6 consecutive days -> critical
)

// assignmentContext is everything a rule needs about one assignment,
// pre-joined by Validator so the rule functions below stay pure and
// free of repository access (grounded on coverage/algorithm.go's
// "no side effects, no database calls, no I/O" discipline).
type assignmentContext struct {
	Assignment *entity.Assignment
	Block      *entity.Block
}

// groupByPerson buckets assignment contexts by person id, sorted by date,
// skipping any assignment whose block could not be resolved.
func groupByPerson(ctxs []assignmentContext) map[entity.PersonID][]assignmentContext {
	out := make(map[entity.PersonID][]assignmentContext)
	for _, c := range ctxs {
		if c.Block == nil {
			continue
		}
		out[c.Assignment.PersonID] = append(out[c.Assignment.PersonID], c)
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].Block.Date.Before(list[j].Block.Date) })
	}
	return out
}

// checkWorkHours implements spec.md §4.1's 80-hour rule: ISO-week totals
// plus rolling 28-day windows anchored at every distinct assignment date.
func checkWorkHours(byPerson map[entity.PersonID][]assignmentContext, persons map[entity.PersonID]*entity.Person) []Violation {
	var out []Violation

	for personID, list := range byPerson {
		p := persons[personID]
		if p == nil || !p.IsResident() {
			continue
		}

		out = append(out, checkISOWeekHours(personID, list)...)
		out = append(out, checkRollingWindowHours(personID, list)...)
	}

	return out
}

func checkISOWeekHours(personID entity.PersonID, list []assignmentContext) []Violation {
	type weekKey struct {
		year, week int
	}
	hoursByWeek := make(map[weekKey]float64)
	rangeByWeek := make(map[weekKey][2]time.Time)

	for _, c := range list {
		year, week := c.Block.Date.ISOWeek()
		key := weekKey{year, week}
		hoursByWeek[key] += entity.HoursPerBlock
		r, ok := rangeByWeek[key]
		if !ok {
			rangeByWeek[key] = [2]time.Time{c.Block.Date, c.Block.Date}
			continue
		}
		if c.Block.Date.Before(r[0]) {
			r[0] = c.Block.Date
		}
		if c.Block.Date.After(r[1]) {
			r[1] = c.Block.Date
		}
		rangeByWeek[key] = r
	}

	var out []Violation
	for key, hours := range hoursByWeek {
		r := rangeByWeek[key]
		if sev, ok := workHoursSeverity(hours); ok {
			out = append(out, Violation{
				Severity:  sev,
				RuleType:  RuleWorkHours,
				PersonID:  &personID,
				StartDate: r[0],
				EndDate:   r[1],
				Details: map[string]interface{}{
					"iso_year":     key.year,
					"iso_week":     key.week,
					"weekly_hours": hours,
				},
				SuggestedFix: "reduce assignments in this ISO week or reassign to another resident",
			})
		}
	}
	return out
}

func checkRollingWindowHours(personID entity.PersonID, list []assignmentContext) []Violation {
	var out []Violation
	seen := make(map[string]bool) // dedup by window start date

	for _, anchor := range list {
		windowStart := anchor.Block.Date
		windowEnd := windowStart.AddDate(0, 0, rollingWindowDays-1)
		key := windowStart.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true

		var totalHours float64
		for _, c := range list {
			if !c.Block.Date.Before(windowStart) && !c.Block.Date.After(windowEnd) {
				totalHours += entity.HoursPerBlock
			}
		}
		avgWeekly := totalHours / 4

		if sev, ok := workHoursSeverity(avgWeekly); ok {
			out = append(out, Violation{
				Severity:  sev,
				RuleType:  RuleWorkHours,
				PersonID:  &personID,
				StartDate: windowStart,
				EndDate:   windowEnd,
				Details: map[string]interface{}{
					"window_days":        rollingWindowDays,
					"total_hours":        totalHours,
					"avg_weekly_hours":   round1(avgWeekly),
				},
				SuggestedFix: "redistribute duty within this 4-week window to bring the average under 80 hours/week",
			})
		}
	}
	return out
}

func workHoursSeverity(hours float64) (Severity, bool) {
	switch {
	case hours > maxWeeklyHours:
		return SeverityCritical, true
	case hours > weeklyHoursWarnRatio*maxWeeklyHours:
		return SeverityWarning, true
	default:
		return "", false
	}
}

// checkOneInSeven implements spec.md §4.1's 1-in-7 rule: the longest run
// of consecutive calendar days with at least one assignment, per resident.
func checkOneInSeven(byPerson map[entity.PersonID][]assignmentContext, persons map[entity.PersonID]*entity.Person) []Violation {
	var out []Violation

	for personID, list := range byPerson {
		p := persons[personID]
		if p == nil || !p.IsResident() {
			continue
		}

		days := uniqueSortedDays(list)
		runStart, runLen := longestConsecutiveRun(days)
		if runLen > maxConsecutiveDutyDays {
			out = append(out, Violation{
				Severity:  SeverityCritical,
				RuleType:  RuleOneInSeven,
				PersonID:  &personID,
				StartDate: runStart,
				EndDate:   runStart.AddDate(0, 0, runLen-1),
				Details: map[string]interface{}{
					"consecutive_duty_days": runLen,
				},
				SuggestedFix: "schedule a day off within this run of consecutive duty days",
			})
		}
	}

	return out
}

func uniqueSortedDays(list []assignmentContext) []time.Time {
	seen := make(map[string]time.Time)
	for _, c := range list {
		d := c.Block.Date.Truncate(24 * time.Hour)
		seen[d.Format("2006-01-02")] = d
	}
	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func longestConsecutiveRun(days []time.Time) (start time.Time, length int) {
	if len(days) == 0 {
		return time.Time{}, 0
	}
	bestStart := days[0]
	bestLen := 1
	curStart := days[0]
	curLen := 1

	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			curLen++
		} else {
			curStart = days[i]
			curLen = 1
		}
		if curLen > bestLen {
			bestLen = curLen
			bestStart = curStart
		}
	}
	return bestStart, bestLen
}

// checkSupervisionRatio implements spec.md §4.1's supervision-ratio rule
// per block: required faculty = ceil(pgy1_count/2) + ceil(other_count/4),
// floored at 1.
func checkSupervisionRatio(blockAssignments map[entity.BlockID][]*entity.Assignment, blocks map[entity.BlockID]*entity.Block, persons map[entity.PersonID]*entity.Person) []Violation {
	var out []Violation

	for blockID, assignments := range blockAssignments {
		block := blocks[blockID]
		if block == nil {
			continue
		}

		var pgy1Count, otherResidentCount, facultyCount int
		for _, a := range assignments {
			p := persons[a.PersonID]
			if p == nil {
				continue
			}
			if p.Type == entity.PersonTypeFaculty {
				facultyCount++
				continue
			}
			if p.PGYLevel != nil && *p.PGYLevel == entity.PGY1 {
				pgy1Count++
			} else {
				otherResidentCount++
			}
		}

		if pgy1Count+otherResidentCount == 0 {
			continue // no resident assignment on this block
		}

		required := int(math.Ceil(float64(pgy1Count)/2)) + int(math.Ceil(float64(otherResidentCount)/4))
		if required < 1 {
			required = 1
		}

		if facultyCount < required {
			out = append(out, Violation{
				Severity:  SeverityCritical,
				RuleType:  RuleSupervisionRatio,
				StartDate: block.Date,
				EndDate:   block.Date,
				Details: map[string]interface{}{
					"block_id":             blockID,
					"pgy1_count":           pgy1Count,
					"other_resident_count": otherResidentCount,
					"required_faculty":     required,
					"assigned_faculty":     facultyCount,
					"deficit":              required - facultyCount,
				},
				SuggestedFix: fmt.Sprintf("assign %d more faculty to this block", required-facultyCount),
			})
		}
	}

	return out
}

// checkAbsenceOverlap implements spec.md §4.1's absence-overlap rule: a
// warning for any assignment whose block date falls within an absence of
// the same person.
func checkAbsenceOverlap(byPerson map[entity.PersonID][]assignmentContext, absencesByPerson map[entity.PersonID][]*entity.Absence) []Violation {
	var out []Violation

	for personID, list := range byPerson {
		absences := absencesByPerson[personID]
		if len(absences) == 0 {
			continue
		}
		for _, c := range list {
			for _, abs := range absences {
				if abs.Overlaps(c.Block.Date) {
					out = append(out, Violation{
						Severity:  SeverityWarning,
						RuleType:  RuleAbsenceOverlap,
						PersonID:  &personID,
						StartDate: c.Block.Date,
						EndDate:   c.Block.Date,
						Details: map[string]interface{}{
							"assignment_id": c.Assignment.ID,
							"absence_type":  abs.Type,
						},
						SuggestedFix: "remove or reassign this block; the resident is on recorded absence",
					})
					break
				}
			}
		}
	}

	return out
}

// complianceRate is [0,1]: the share of rule evaluations that produced no
// critical violation. This port resolves spec.md §4.1's otherwise-silent
// "overall compliance_rate" as 1 minus the fraction of evaluations
// (person-rule or block-rule checks) that came back critical, a direct
// generalization of coverage/algorithm.go's "assigned/required" ratio
// style (documented as an Open Question resolution in DESIGN.md).
func complianceRate(totalEvaluations, criticalCount int) float64 {
	if totalEvaluations == 0 {
		return 1
	}
	rate := 1 - float64(criticalCount)/float64(totalEvaluations)
	if rate < 0 {
		rate = 0
	}
	// compliance_rate is a [0,1] ratio, not a percentage; round to the
	// ratio-scale equivalent of "percentages rounded to one decimal"
	// (spec.md §4.1), i.e. nearest 0.1%.
	return math.Round(rate*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
