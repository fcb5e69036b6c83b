package safety

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateRemovalTargetAllowsInsideRoot(t *testing.T) {
	root := t.TempDir()
	v := NewValidator([]string{root}, nil)

	target := filepath.Join(root, "build")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	if err := v.ValidateRemovalTarget(target); err != nil {
		t.Errorf("ValidateRemovalTarget(%s) = %v, want nil", target, err)
	}
}

func TestValidateRemovalTargetAllowsMissingPath(t *testing.T) {
	root := t.TempDir()
	v := NewValidator([]string{root}, nil)

	// Missing targets are the normal case for clean tasks
	if err := v.ValidateRemovalTarget(filepath.Join(root, "never_built")); err != nil {
		t.Errorf("missing path should validate, got %v", err)
	}
}

func TestValidateRemovalTargetProtectedPaths(t *testing.T) {
	v := NewValidator([]string{"/"}, nil)

	tests := []string{
		"/",
		"/etc",
		"/etc/passwd",
		"/bin",
		"/usr/local/bin",
		"/boot",
		"/lib",
		"/lib64",
		"/sbin",
		"/var/lib",
	}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			if err := v.ValidateRemovalTarget(path); !errors.Is(err, ErrProtectedPath) {
				t.Errorf("ValidateRemovalTarget(%s) = %v, want ErrProtectedPath", path, err)
			}
		})
	}
}

func TestValidateRemovalTargetExtraProtected(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "keep")
	v := NewValidator([]string{root}, []string{keep})

	if err := v.ValidateRemovalTarget(filepath.Join(keep, "data")); !errors.Is(err, ErrProtectedPath) {
		t.Errorf("configured protected path should be blocked, got %v", err)
	}
	if err := v.ValidateRemovalTarget(filepath.Join(root, "other")); err != nil {
		t.Errorf("sibling of protected path should validate, got %v", err)
	}
}

func TestValidateRemovalTargetOutsideRoot(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	v := NewValidator([]string{root}, nil)

	if err := v.ValidateRemovalTarget(filepath.Join(other, "build")); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("target outside root should be blocked, got %v", err)
	}
}

func TestValidateRemovalTargetTraversal(t *testing.T) {
	root := t.TempDir()
	v := NewValidator([]string{root}, nil)

	// The raw input carries a ".." segment even though it cleans to a path
	// inside the root
	raw := root + "/sub/../build"
	if err := v.ValidateRemovalTarget(raw); !errors.Is(err, ErrTraversal) {
		t.Errorf("traversal input should be blocked, got %v", err)
	}
}

func TestValidateRemovalTargetEmptyPath(t *testing.T) {
	v := NewValidator([]string{"/tmp"}, nil)

	for _, path := range []string{"", "   "} {
		if err := v.ValidateRemovalTarget(path); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ValidateRemovalTarget(%q) = %v, want ErrInvalidPath", path, err)
		}
	}
}

func TestValidateRemovalTargetSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	v := NewValidator([]string{root}, nil)

	link := filepath.Join(root, "sneaky")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	if err := v.ValidateRemovalTarget(link); !errors.Is(err, ErrSymlinkEscape) {
		t.Errorf("symlink escaping root should be blocked, got %v", err)
	}
}

func TestIsWithinAllowedRoots(t *testing.T) {
	roots := []string{"/home/dev/project"}

	tests := []struct {
		path string
		want bool
	}{
		{"/home/dev/project", true},
		{"/home/dev/project/build", true},
		{"/home/dev/project-evil", false},
		{"/home/dev", false},
		{"/tmp", false},
	}
	for _, tt := range tests {
		if got := IsWithinAllowedRoots(tt.path, roots); got != tt.want {
			t.Errorf("IsWithinAllowedRoots(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDetectTraversal(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"build", false},
		{"a/b/c", false},
		{"../escape", true},
		{"a/../b", true},
		{"a/..b/c", false},
	}
	for _, tt := range tests {
		if got := DetectTraversal(tt.raw); got != tt.want {
			t.Errorf("DetectTraversal(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	if _, err := NormalizePath(""); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("NormalizePath(\"\") error = %v, want ErrInvalidPath", err)
	}

	got, err := NormalizePath("/a/b/../c/")
	if err != nil {
		t.Fatalf("NormalizePath() error = %v", err)
	}
	if got != "/a/c" {
		t.Errorf("NormalizePath(/a/b/../c/) = %q, want /a/c", got)
	}
}
