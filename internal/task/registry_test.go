package task

import (
	"errors"
	"testing"

	"devtask/internal/command"
)

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	defs := []Task{
		{Name: "pytest", Command: &command.Invocation{Program: "pytest"}},
		{Name: "pytest", Command: &command.Invocation{Program: "pytest"}},
	}

	_, err := NewRegistry(defs, nil)
	if !errors.Is(err, errDuplicateTask) {
		t.Errorf("err = %v, want errDuplicateTask", err)
	}
}

func TestNewRegistryRejectsUnknownPre(t *testing.T) {
	defs := []Task{
		{Name: "sdist", Pre: []string{"clean.all"}, Command: &command.Invocation{Program: "python"}},
	}

	_, err := NewRegistry(defs, nil)
	if !errors.Is(err, errUnknownPre) {
		t.Errorf("err = %v, want errUnknownPre", err)
	}
}

func TestNewRegistryRejectsAmbiguousDefinition(t *testing.T) {
	defs := []Task{
		{
			Name:    "broken",
			Command: &command.Invocation{Program: "pytest"},
			Targets: StaticTargets("build"),
		},
	}

	_, err := NewRegistry(defs, nil)
	if !errors.Is(err, errAmbiguousDef) {
		t.Errorf("err = %v, want errAmbiguousDef", err)
	}
}

func TestNewRegistryRejectsBadNamespaceDefault(t *testing.T) {
	defs := []Task{
		{Name: "clean.build", Targets: StaticTargets("build")},
		{Name: "pytest", Command: &command.Invocation{Program: "pytest"}},
	}

	// Default naming a task that does not exist
	if _, err := NewRegistry(defs, map[string]string{"clean": "clean.all"}); err == nil {
		t.Error("expected error for default naming a missing task")
	}

	// Default naming a task outside the namespace
	if _, err := NewRegistry(defs, map[string]string{"clean": "pytest"}); err == nil {
		t.Error("expected error for default outside its namespace")
	}
}

func TestRegistryResolveFollowsDefaults(t *testing.T) {
	defs := []Task{
		{Name: "clean.build", Targets: StaticTargets("build")},
		{Name: "clean.all", Pre: []string{"clean.build"}},
	}
	registry, err := NewRegistry(defs, map[string]string{"clean": "clean.all"})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	got, ok := registry.Resolve("clean")
	if !ok {
		t.Fatal("Resolve(clean) = not found")
	}
	if got.Name != "clean.all" {
		t.Errorf("Resolve(clean) = %s, want clean.all", got.Name)
	}

	got, ok = registry.Resolve("clean.build")
	if !ok || got.Name != "clean.build" {
		t.Errorf("Resolve(clean.build) = %v, %v; want exact match", got.Name, ok)
	}

	if _, ok := registry.Resolve("nonexistent"); ok {
		t.Error("Resolve(nonexistent) = found, want not found")
	}
}

func TestRegistryNamesPreserveOrder(t *testing.T) {
	defs := []Task{
		{Name: "zebra", Command: &command.Invocation{Program: "z"}},
		{Name: "alpha", Command: &command.Invocation{Program: "a"}},
	}
	registry, err := NewRegistry(defs, nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	names := registry.Names()
	if len(names) != 2 || names[0] != "zebra" || names[1] != "alpha" {
		t.Errorf("Names() = %v, want registration order [zebra alpha]", names)
	}
}

func TestRegistryNamespace(t *testing.T) {
	defs := []Task{
		{Name: "clean.build", Targets: StaticTargets("build")},
		{Name: "clean.dist", Targets: StaticTargets("dist")},
		{Name: "pytest", Command: &command.Invocation{Program: "pytest"}},
	}
	registry, err := NewRegistry(defs, nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	got := registry.Namespace("clean")
	if len(got) != 2 || got[0] != "clean.build" || got[1] != "clean.dist" {
		t.Errorf("Namespace(clean) = %v, want [clean.build clean.dist]", got)
	}
}

func TestTaskKinds(t *testing.T) {
	cmd := Task{Name: "pytest", Command: &command.Invocation{Program: "pytest"}}
	clean := Task{Name: "clean.build", Targets: StaticTargets("build")}
	agg := Task{Name: "clean.all", Pre: []string{"clean.build"}}

	if cmd.IsClean() || !clean.IsClean() || agg.IsClean() {
		t.Error("IsClean() misclassified a task")
	}
	if cmd.IsAggregate() || clean.IsAggregate() || !agg.IsAggregate() {
		t.Error("IsAggregate() misclassified a task")
	}
}
