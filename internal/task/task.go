package task

import (
	"devtask/internal/command"
)

// TargetsFunc computes the removal targets of a clean task at execution
// time. Returned paths are absolute. Static target lists are fixed funcs;
// enumerating tasks (eggs, pycache) inspect the tree under root.
type TargetsFunc func(root string) []string

// Task is a named, invokable unit of automation. Exactly one of Command
// and Targets is set for a runnable task; an aggregation task like
// clean.all carries neither and exists for its prerequisite chain.
type Task struct {
	Name    string
	Summary string

	// Pre lists prerequisite task names, run in order before this task.
	// Chains are fixed short literal lists, acyclic by construction.
	Pre []string

	// Command is the external tool invocation for this task, if any.
	Command *command.Invocation

	// Targets computes the paths a clean task removes, if any.
	Targets TargetsFunc
}

// IsClean reports whether the task removes filesystem paths.
func (t Task) IsClean() bool {
	return t.Targets != nil
}

// IsAggregate reports whether the task only exists for its prerequisites.
func (t Task) IsAggregate() bool {
	return t.Command == nil && t.Targets == nil
}

// StaticTargets returns a TargetsFunc for a fixed list of root-relative
// paths.
func StaticTargets(relPaths ...string) TargetsFunc {
	return func(root string) []string {
		out := make([]string, 0, len(relPaths))
		for _, p := range relPaths {
			out = append(out, joinRoot(root, p))
		}
		return out
	}
}
