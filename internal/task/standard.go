package task

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"devtask/internal/command"
	"devtask/internal/config"
)

// Standard builds the full devtask task set from configuration. Tool
// argument sets reproduce the project's fixed development workflow; the
// config only parameterizes the values.
func Standard(cfg *config.Config) (*Registry, error) {
	cov := "--cov=" + cfg.Pytest.Package

	defs := []Task{
		{
			Name:    "pytest",
			Summary: "Run tests and code coverage using pytest",
			Command: &command.Invocation{
				Program: "pytest",
				Args:    []string{cov, "--cov-report=term", "--cov-report=html"},
			},
		},
		{
			Name:    "pytest-junit",
			Summary: "Run tests and emit JUnit-format XML results",
			Command: &command.Invocation{
				Program: "pytest",
				Args:    []string{cov, "--junitxml=" + cfg.Pytest.JUnitPath},
			},
		},
		{
			Name:    "mypy",
			Summary: "Run mypy optional static type checker",
			Command: &command.Invocation{
				Program: "mypy",
				Args:    []string{cfg.Mypy.Entry},
			},
		},
		{
			Name:    "flake8",
			Summary: "Run flake8 linter and tool for style guide enforcement",
			Command: &command.Invocation{
				Program: "flake8",
				Args:    flake8Args(cfg),
			},
		},
		{
			Name:    "clean.pytest",
			Summary: "Remove pytest cache and code coverage files and directories",
			Targets: StaticTargets(".pytest_cache", ".cache", "htmlcov", ".coverage"),
		},
		{
			Name:    "clean.mypy",
			Summary: "Remove mypy cache directory",
			Targets: StaticTargets(".mypy_cache", "dmypy.json", "dmypy.sock"),
		},
		{
			Name:    "clean.build",
			Summary: "Remove the build directory",
			Targets: StaticTargets("build"),
		},
		{
			Name:    "clean.dist",
			Summary: "Remove the dist directory",
			Targets: StaticTargets("dist"),
		},
		{
			Name:    "clean.eggs",
			Summary: "Remove egg directories",
			Targets: EggTargets,
		},
		{
			Name:    "clean.pycache",
			Summary: "Remove __pycache__ directories",
			Targets: PycacheTargets,
		},
		{
			Name:    "clean.all",
			Summary: "Run all clean tasks",
			Pre: []string{
				"clean.pytest", "clean.mypy", "clean.build",
				"clean.dist", "clean.eggs", "clean.pycache",
			},
		},
		{
			Name:    "sdist",
			Summary: "Create a source distribution",
			Pre:     []string{"clean.all"},
			Command: &command.Invocation{
				Program: "python",
				Args:    []string{"setup.py", "sdist"},
			},
		},
		{
			Name:    "wheel",
			Summary: "Build a wheel distribution",
			Pre:     []string{"clean.all"},
			Command: &command.Invocation{
				Program: "python",
				Args:    []string{"setup.py", "bdist_wheel"},
			},
		},
		{
			Name:    "pypi",
			Summary: "Build and upload a distribution to pypi",
			Pre:     []string{"sdist", "wheel"},
			Command: &command.Invocation{
				Program: "twine",
				// twine expands the dist/* pattern itself
				Args: []string{"upload", "dist/*"},
			},
		},
		{
			Name:    "pypi-test",
			Summary: "Build and upload a distribution to the test package index",
			Pre:     []string{"sdist", "wheel"},
			Command: &command.Invocation{
				Program: "twine",
				Args:    []string{"upload", "--repository-url", cfg.Publish.TestRepositoryURL, "dist/*"},
			},
		},
	}

	return NewRegistry(defs, map[string]string{"clean": "clean.all"})
}

// EggTargets enumerates the .eggs directory plus every *.egg / *.egg-info
// entry of the root directory. Only suffix-matched entries are included.
func EggTargets(root string) []string {
	targets := []string{joinRoot(root, ".eggs")}

	entries, err := os.ReadDir(root)
	if err != nil {
		return targets
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".egg-info") || strings.HasSuffix(name, ".egg") {
			targets = append(targets, joinRoot(root, name))
		}
	}
	return targets
}

// PycacheTargets walks the tree under root and collects every __pycache__
// directory. Walk errors are skipped; a tree we cannot read holds nothing
// we can remove.
func PycacheTargets(root string) []string {
	var targets []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && d.Name() == "__pycache__" {
			targets = append(targets, path)
			return filepath.SkipDir
		}
		return nil
	})
	return targets
}

func flake8Args(cfg *config.Config) []string {
	return []string{
		"--ignore=" + strings.Join(cfg.Flake8.Ignore, ","),
		fmt.Sprintf("--max-complexity=%d", cfg.Flake8.MaxComplexity),
		fmt.Sprintf("--max-line-length=%d", cfg.Flake8.MaxLineLength),
		"--show-source",
		"--statistics",
		"--exclude=" + strings.Join(cfg.Flake8.Exclude, ","),
	}
}

func joinRoot(root, rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(root, rel)
}
