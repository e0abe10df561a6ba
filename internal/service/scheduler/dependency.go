package scheduler

import (
	"fmt"
	"sync"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// DependencyGraph tracks task dependency edges as a DAG (spec.md §4.4's
// "Dependency graph"). AddTask validates acyclicity before committing;
// on a detected cycle the edges are rolled back and an error returned,
// matching the original's add-then-check-then-rollback sequence.
type DependencyGraph struct {
	mu      sync.Mutex
	forward map[entity.ScheduledTaskID]map[entity.ScheduledTaskID]bool // task -> its dependencies
	reverse map[entity.ScheduledTaskID]map[entity.ScheduledTaskID]bool // dependency -> its dependents
}

// NewDependencyGraph returns an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		forward: make(map[entity.ScheduledTaskID]map[entity.ScheduledTaskID]bool),
		reverse: make(map[entity.ScheduledTaskID]map[entity.ScheduledTaskID]bool),
	}
}

// AddTask registers taskID with the given dependencies, rejecting the
// change entirely if it would create a cycle.
func (g *DependencyGraph) AddTask(taskID entity.ScheduledTaskID, deps []entity.TaskDependency) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.forward[taskID] == nil {
		g.forward[taskID] = make(map[entity.ScheduledTaskID]bool)
	}

	added := make([]entity.ScheduledTaskID, 0, len(deps))
	for _, dep := range deps {
		g.forward[taskID][dep.DependsOnTaskID] = true
		if g.reverse[dep.DependsOnTaskID] == nil {
			g.reverse[dep.DependsOnTaskID] = make(map[entity.ScheduledTaskID]bool)
		}
		g.reverse[dep.DependsOnTaskID][taskID] = true
		added = append(added, dep.DependsOnTaskID)
	}

	if g.hasCycle() {
		for _, depID := range added {
			delete(g.forward[taskID], depID)
			delete(g.reverse[depID], taskID)
		}
		return fmt.Errorf("adding task %s would create a circular dependency", taskID)
	}
	return nil
}

// RemoveTask deletes taskID and all edges touching it.
func (g *DependencyGraph) RemoveTask(taskID entity.ScheduledTaskID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for depID := range g.forward[taskID] {
		delete(g.reverse[depID], taskID)
	}
	delete(g.forward, taskID)

	for dependentID := range g.reverse[taskID] {
		delete(g.forward[dependentID], taskID)
	}
	delete(g.reverse, taskID)
}

// Dependencies returns taskID's direct dependencies.
func (g *DependencyGraph) Dependencies(taskID entity.ScheduledTaskID) []entity.ScheduledTaskID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return setKeys(g.forward[taskID])
}

// Dependents returns the tasks that directly depend on taskID.
func (g *DependencyGraph) Dependents(taskID entity.ScheduledTaskID) []entity.ScheduledTaskID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return setKeys(g.reverse[taskID])
}

func setKeys(m map[entity.ScheduledTaskID]bool) []entity.ScheduledTaskID {
	out := make([]entity.ScheduledTaskID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// hasCycle runs DFS with recursion-stack tracking over the forward graph.
// Caller must hold g.mu.
func (g *DependencyGraph) hasCycle() bool {
	visited := make(map[entity.ScheduledTaskID]bool)
	onStack := make(map[entity.ScheduledTaskID]bool)

	var visit func(entity.ScheduledTaskID) bool
	visit = func(node entity.ScheduledTaskID) bool {
		if onStack[node] {
			return true
		}
		if visited[node] {
			return false
		}
		visited[node] = true
		onStack[node] = true
		for neighbor := range g.forward[node] {
			if visit(neighbor) {
				return true
			}
		}
		onStack[node] = false
		return false
	}

	for node := range g.forward {
		if visit(node) {
			return true
		}
	}
	return false
}

// GetReadyTasks returns every registered task in dependency-first
// topological order: a task never precedes one of its own dependencies.
// Error if the graph (unexpectedly) contains a cycle.
func (g *DependencyGraph) GetReadyTasks() ([]entity.ScheduledTaskID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hasCycle() {
		return nil, fmt.Errorf("dependency graph contains a cycle")
	}

	visited := make(map[entity.ScheduledTaskID]bool)
	var result []entity.ScheduledTaskID

	var visit func(entity.ScheduledTaskID)
	visit = func(node entity.ScheduledTaskID) {
		if visited[node] {
			return
		}
		visited[node] = true
		for neighbor := range g.forward[node] {
			visit(neighbor)
		}
		result = append(result, node)
	}

	for node := range g.forward {
		visit(node)
	}

	return result, nil
}
