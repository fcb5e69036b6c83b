package task

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	errDuplicateTask = errors.New("duplicate task name")
	errUnknownPre    = errors.New("unknown prerequisite task")
	errAmbiguousDef  = errors.New("task defines both a command and removal targets")
)

// Registry is an immutable mapping from task name to task definition,
// built once by explicit construction rather than load-time side effects.
// Namespaces are name prefixes ("clean.pytest" lives in "clean"); a
// namespace may declare a default task that a bare namespace name resolves
// to.
type Registry struct {
	tasks    map[string]Task
	order    []string
	defaults map[string]string
}

// NewRegistry builds a registry from task definitions and namespace
// defaults. It rejects duplicate names, prerequisite references that do
// not resolve, and tasks defining both a command and removal targets.
func NewRegistry(defs []Task, defaults map[string]string) (*Registry, error) {
	r := &Registry{
		tasks:    make(map[string]Task, len(defs)),
		order:    make([]string, 0, len(defs)),
		defaults: make(map[string]string, len(defaults)),
	}

	for _, t := range defs {
		if _, exists := r.tasks[t.Name]; exists {
			return nil, fmt.Errorf("%w: %s", errDuplicateTask, t.Name)
		}
		if t.Command != nil && t.Targets != nil {
			return nil, fmt.Errorf("%w: %s", errAmbiguousDef, t.Name)
		}
		r.tasks[t.Name] = t
		r.order = append(r.order, t.Name)
	}

	for _, t := range defs {
		for _, pre := range t.Pre {
			if _, ok := r.tasks[pre]; !ok {
				return nil, fmt.Errorf("%w: %s (required by %s)", errUnknownPre, pre, t.Name)
			}
		}
	}

	for ns, name := range defaults {
		t, ok := r.tasks[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s (default of namespace %s)", errUnknownPre, name, ns)
		}
		if !strings.HasPrefix(t.Name, ns+".") {
			return nil, fmt.Errorf("default task %s is not in namespace %s", name, ns)
		}
		r.defaults[ns] = name
	}

	return r, nil
}

// Get returns the task definition for an exact name.
func (r *Registry) Get(name string) (Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// Resolve maps a requested name to a task, following namespace defaults:
// "clean" resolves to the default task of the clean namespace.
func (r *Registry) Resolve(name string) (Task, bool) {
	if t, ok := r.tasks[name]; ok {
		return t, true
	}
	if def, ok := r.defaults[name]; ok {
		return r.tasks[def], true
	}
	return Task{}, false
}

// Names returns all task names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Namespace returns the names of all tasks under a namespace prefix,
// sorted.
func (r *Registry) Namespace(ns string) []string {
	var out []string
	for name := range r.tasks {
		if strings.HasPrefix(name, ns+".") {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
