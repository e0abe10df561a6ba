package contingency

import (
	"sort"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// lookups is the pre-joined view over one analysis window's assignments,
// built once by loadData/buildLookups so every simulation below runs in
// O(1) per access (grounded on contingency.py's _build_lookup_tables).
type lookups struct {
	assignmentsByFaculty map[entity.PersonID][]*entity.Assignment
	assignmentsByBlock   map[entity.BlockID][]*entity.Assignment
	facultyByID          map[entity.PersonID]*entity.Person
	blockByID            map[entity.BlockID]*entity.Block
	facultyAssignmentCount map[entity.PersonID]int
	// servicesByFaculty maps each faculty to the set of rotation-template
	// activity types ("services") they are assigned to cover in this
	// window, and serviceFaculty is the reverse index. Populated from
	// RotationTemplate.ActivityType on each assignment, since nothing in
	// the Go port's data model hands the analyzer a pre-built service
	// capability table the way the original source's (always-empty) call
	// site does -- see DESIGN.md for why this port wires real data here
	// instead of reproducing that degenerate branch.
	servicesByFaculty map[entity.PersonID]map[string]bool
	serviceFaculty    map[string]map[entity.PersonID]bool
}

func buildLookups(faculty []*entity.Person, blocks []*entity.Block, assignments []*entity.Assignment, templates map[entity.RotationTemplateID]*entity.RotationTemplate) *lookups {
	l := &lookups{
		assignmentsByFaculty:   make(map[entity.PersonID][]*entity.Assignment),
		assignmentsByBlock:     make(map[entity.BlockID][]*entity.Assignment),
		facultyByID:            make(map[entity.PersonID]*entity.Person, len(faculty)),
		blockByID:              make(map[entity.BlockID]*entity.Block, len(blocks)),
		facultyAssignmentCount: make(map[entity.PersonID]int),
		servicesByFaculty:      make(map[entity.PersonID]map[string]bool),
		serviceFaculty:         make(map[string]map[entity.PersonID]bool),
	}

	for _, f := range faculty {
		l.facultyByID[f.ID] = f
	}
	for _, b := range blocks {
		l.blockByID[b.ID] = b
	}
	for _, a := range assignments {
		l.assignmentsByFaculty[a.PersonID] = append(l.assignmentsByFaculty[a.PersonID], a)
		l.assignmentsByBlock[a.BlockID] = append(l.assignmentsByBlock[a.BlockID], a)
		l.facultyAssignmentCount[a.PersonID]++

		if a.RotationTemplateID == nil {
			continue
		}
		rt := templates[*a.RotationTemplateID]
		if rt == nil || rt.ActivityType == "" {
			continue
		}
		if l.servicesByFaculty[a.PersonID] == nil {
			l.servicesByFaculty[a.PersonID] = make(map[string]bool)
		}
		l.servicesByFaculty[a.PersonID][rt.ActivityType] = true
		if l.serviceFaculty[rt.ActivityType] == nil {
			l.serviceFaculty[rt.ActivityType] = make(map[entity.PersonID]bool)
		}
		l.serviceFaculty[rt.ActivityType][a.PersonID] = true
	}

	return l
}

// sortedFacultyByAssignmentCount returns faculty ids sorted by descending
// assignment count, ties broken by id for determinism (used by the N-2
// fallback selection).
func sortedFacultyByAssignmentCount(faculty []*entity.Person, l *lookups) []entity.PersonID {
	ids := make([]entity.PersonID, len(faculty))
	for i, f := range faculty {
		ids[i] = f.ID
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := l.facultyAssignmentCount[ids[i]], l.facultyAssignmentCount[ids[j]]
		if ci != cj {
			return ci > cj
		}
		return ids[i].String() < ids[j].String()
	})
	return ids
}

func facultyName(l *lookups, id entity.PersonID) string {
	if f := l.facultyByID[id]; f != nil {
		return f.DisplayName
	}
	return "Unknown"
}
