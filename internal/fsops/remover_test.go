package fsops

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestRemovePathsMixedTargets verifies the core removal contract:
// existing files, existing directories, and nonexistent paths are all
// attempted, nothing remains, and nothing panics or errors.
func TestRemovePathsMixedTargets(t *testing.T) {
	tmpDir := t.TempDir()

	file := filepath.Join(tmpDir, "stale.coverage")
	if err := os.WriteFile(file, []byte("data"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	dir := filepath.Join(tmpDir, "htmlcov")
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatalf("Failed to create test dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assets", "style.css"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create nested file: %v", err)
	}

	missing := filepath.Join(tmpDir, "never_created")

	remover := NewRemover(Quiet())
	remover.RemovePaths(file, dir, missing)

	for _, p := range []string{file, dir, missing} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("path %s should not exist after removal", p)
		}
	}
}

// TestRemovePathsNestedDirectory covers the build-directory scenario:
// a directory with nested files is removed entirely.
func TestRemovePathsNestedDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	build := filepath.Join(tmpDir, "build")
	if err := os.MkdirAll(filepath.Join(build, "lib", "pkg"), 0o755); err != nil {
		t.Fatalf("Failed to create build tree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(build, "lib", "pkg", "mod.py"), []byte("pass"), 0o644); err != nil {
		t.Fatalf("Failed to create nested file: %v", err)
	}

	NewRemover(Quiet()).RemovePaths(build)

	if _, err := os.Stat(build); !os.IsNotExist(err) {
		t.Errorf("build directory should not exist after removal")
	}
}

// TestRemovePathsNonexistent verifies that removing only missing paths
// completes quietly and changes nothing.
func TestRemovePathsNonexistent(t *testing.T) {
	tmpDir := t.TempDir()

	NewRemover(Quiet()).RemovePaths(
		filepath.Join(tmpDir, "nonexistent_dir"),
		filepath.Join(tmpDir, "nonexistent_file.txt"),
	)

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir should be unchanged, found %d entries", len(entries))
	}
}

// TestRemovePathsEmptyInput verifies an empty input is a no-op: no
// filesystem calls, no output.
func TestRemovePathsEmptyInput(t *testing.T) {
	fake := &FakeDeleter{}
	var buf bytes.Buffer

	NewRemover(WithDeleter(fake), WithOutput(&buf)).RemovePaths()

	if len(fake.Calls) != 0 {
		t.Errorf("expected 0 delete calls, got %d: %v", len(fake.Calls), fake.Calls)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

// TestRemovePathsDuplicates verifies duplicate paths are each attempted
// independently.
func TestRemovePathsDuplicates(t *testing.T) {
	fake := &FakeDeleter{}

	NewRemover(WithDeleter(fake), Quiet()).RemovePaths("build", "build")

	want := []string{"rmall:build", "rm:build", "rmall:build", "rm:build"}
	if len(fake.Calls) != len(want) {
		t.Fatalf("calls = %v, want %v", fake.Calls, want)
	}
	for i := range want {
		if fake.Calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, fake.Calls[i], want[i])
		}
	}
}

// TestVerboseAnnouncements verifies verbose mode emits exactly one line
// per input path, in input order, and quiet mode emits nothing.
func TestVerboseAnnouncements(t *testing.T) {
	t.Run("verbose default", func(t *testing.T) {
		var buf bytes.Buffer
		fake := &FakeDeleter{}

		NewRemover(WithDeleter(fake), WithOutput(&buf)).RemovePaths("a", "b", "c")

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		want := []string{"Removing a", "Removing b", "Removing c"}
		if len(lines) != len(want) {
			t.Fatalf("lines = %v, want %v", lines, want)
		}
		for i := range want {
			if lines[i] != want[i] {
				t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
			}
		}
	})

	t.Run("quiet", func(t *testing.T) {
		var buf bytes.Buffer
		fake := &FakeDeleter{}

		NewRemover(WithDeleter(fake), WithOutput(&buf), Quiet()).RemovePaths("a", "b")

		if buf.Len() != 0 {
			t.Errorf("expected no output in quiet mode, got %q", buf.String())
		}
	})
}

// tracingDeleter writes a marker into the shared buffer so tests can
// assert the announcement precedes the removal attempt.
type tracingDeleter struct {
	out *bytes.Buffer
}

func (d *tracingDeleter) Remove(path string) error {
	fmt.Fprintf(d.out, "attempt rm %s\n", path)
	return nil
}

func (d *tracingDeleter) RemoveAll(path string) error {
	fmt.Fprintf(d.out, "attempt rmall %s\n", path)
	return nil
}

// TestAnnouncementPrecedesAttempt verifies ordering: the notice for a
// path is emitted before that path's removal is attempted.
func TestAnnouncementPrecedesAttempt(t *testing.T) {
	var buf bytes.Buffer

	NewRemover(WithDeleter(&tracingDeleter{out: &buf}), WithOutput(&buf)).RemovePaths("x", "y")

	want := []string{
		"Removing x",
		"attempt rmall x",
		"attempt rm x",
		"Removing y",
		"attempt rmall y",
		"attempt rm y",
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

// TestRemovePathsSuppressesFailures verifies that deleter failures never
// escape: the suppress-all policy applies to both attempts.
func TestRemovePathsSuppressesFailures(t *testing.T) {
	fake := &FakeDeleter{Err: os.ErrPermission}
	var buf bytes.Buffer

	NewRemover(WithDeleter(fake), WithOutput(&buf)).RemovePaths("locked")

	// Both attempts happened despite the errors
	if len(fake.Calls) != 2 {
		t.Errorf("expected 2 delete calls, got %d: %v", len(fake.Calls), fake.Calls)
	}
	// Still exactly one announcement
	if got := buf.String(); got != "Removing locked\n" {
		t.Errorf("output = %q, want %q", got, "Removing locked\n")
	}
}
