// Package task defines the workflow tasks and executes them in dependency
// order. Execution is strictly sequential: every dependency runs to
// completion before its dependents, and the first failure stops the run with
// the remaining planned tasks marked skipped.
package task

import (
	"context"
	"fmt"
	"sort"

	"github.com/leapstack-labs/conveyor/internal/dag"
)

// Task is a named unit of work with static dependency edges.
type Task struct {
	// Name is the unique task name, e.g. "check_format".
	Name string
	// Aliases are alternative names resolving to this task.
	Aliases []string
	// Summary is a one-line description for listings.
	Summary string
	// Deps are the names of tasks that must succeed before this one runs.
	Deps []string
	// Run performs the work. A nil Run makes the task an aggregate whose
	// sole effect is sequencing its dependencies.
	Run func(ctx context.Context) error
}

// Registry holds the registered tasks and their aliases.
type Registry struct {
	tasks   map[string]*Task
	aliases map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks:   make(map[string]*Task),
		aliases: make(map[string]string),
	}
}

// Register adds t, rejecting duplicate names and aliases.
func (r *Registry) Register(t *Task) error {
	if t.Name == "" {
		return fmt.Errorf("task name is required")
	}
	if _, exists := r.tasks[t.Name]; exists {
		return fmt.Errorf("task %q already registered", t.Name)
	}
	if _, exists := r.aliases[t.Name]; exists {
		return fmt.Errorf("task %q collides with an alias", t.Name)
	}
	for _, alias := range t.Aliases {
		if _, exists := r.tasks[alias]; exists {
			return fmt.Errorf("alias %q collides with task %q", alias, alias)
		}
		if owner, exists := r.aliases[alias]; exists {
			return fmt.Errorf("alias %q already registered for task %q", alias, owner)
		}
	}

	r.tasks[t.Name] = t
	for _, alias := range t.Aliases {
		r.aliases[alias] = t.Name
	}
	return nil
}

// Resolve returns the task registered under name or one of its aliases.
func (r *Registry) Resolve(name string) (*Task, bool) {
	if t, ok := r.tasks[name]; ok {
		return t, true
	}
	if canonical, ok := r.aliases[name]; ok {
		return r.tasks[canonical], true
	}
	return nil, false
}

// All returns every registered task sorted by name.
func (r *Registry) All() []*Task {
	tasks := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	return tasks
}

// Graph builds the dependency graph of every registered task. Unknown
// dependencies and cycles are reported as errors.
func (r *Registry) Graph() (*dag.Graph[*Task], error) {
	g := dag.New[*Task]()
	for name, t := range r.tasks {
		g.AddNode(name, t)
	}
	for name, t := range r.tasks {
		for _, dep := range t.Deps {
			canonical := dep
			if resolved, ok := r.aliases[dep]; ok {
				canonical = resolved
			}
			if _, ok := r.tasks[canonical]; !ok {
				return nil, fmt.Errorf("task %q depends on unknown task %q", name, dep)
			}
			if err := g.AddEdge(canonical, name); err != nil {
				return nil, err
			}
		}
	}
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("task dependency cycle: %v", cyclePath)
	}
	return g, nil
}
