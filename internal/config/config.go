package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the task root when no -config flag is given.
const DefaultFileName = "devtask.yaml"

type PytestCfg struct {
	Package   string `yaml:"package" json:"package"`       // Coverage target package
	JUnitPath string `yaml:"junit_path" json:"junit_path"` // JUnit XML output path
}

type MypyCfg struct {
	Entry string `yaml:"entry" json:"entry"` // Entry file handed to the type checker
}

type Flake8Cfg struct {
	Ignore        []string `yaml:"ignore" json:"ignore"`
	MaxComplexity int      `yaml:"max_complexity" json:"max_complexity"`
	MaxLineLength int      `yaml:"max_line_length" json:"max_line_length"`
	Exclude       []string `yaml:"exclude" json:"exclude"`
}

type PublishCfg struct {
	TestRepositoryURL string `yaml:"test_repository_url" json:"test_repository_url"`
}

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"` // 0 disables the metrics server
}

type LoggingCfg struct {
	File         string `yaml:"file" json:"file"`                   // Optional log file (stdout always)
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type Config struct {
	Root            string        `yaml:"root" json:"root"` // Task root; all tasks execute relative to it
	Pytest          PytestCfg     `yaml:"pytest" json:"pytest"`
	Mypy            MypyCfg       `yaml:"mypy" json:"mypy"`
	Flake8          Flake8Cfg     `yaml:"flake8" json:"flake8"`
	Publish         PublishCfg    `yaml:"publish" json:"publish"`
	DatabasePath    string        `yaml:"database_path" json:"database_path"` // SQLite run-history database
	Prometheus      PrometheusCfg `yaml:"prometheus" json:"prometheus"`
	Logging         LoggingCfg    `yaml:"logging" json:"logging"`
	IntervalMinutes int           `yaml:"interval_minutes" json:"interval_minutes"` // Watch-mode clean interval
	ProtectedPaths  []string      `yaml:"protected_paths" json:"protected_paths"`   // Extra paths the validator must never touch
}

var (
	errInvalidRoot     = errors.New("root must be an existing directory")
	errNegativeLimit   = errors.New("limit cannot be negative")
	errInvalidInterval = errors.New("interval_minutes must be positive")
)

// Load reads and validates a configuration file. The task root defaults to
// the directory containing the file; a relative root is resolved against it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	if err := cfg.validateAndDefault(base); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no config file exists: all
// defaults, rooted at the given directory.
func Default(root string) (*Config, error) {
	cfg := &Config{}
	base, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if err := cfg.validateAndDefault(base); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault(base string) error {
	if c.Root == "" {
		c.Root = base
	} else if !filepath.IsAbs(c.Root) {
		c.Root = filepath.Join(base, c.Root)
	}
	c.Root = filepath.Clean(c.Root)

	info, err := os.Stat(c.Root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", errInvalidRoot, c.Root)
	}

	if c.Pytest.Package == "" {
		c.Pytest.Package = filepath.Base(c.Root)
	}
	if c.Pytest.JUnitPath == "" {
		c.Pytest.JUnitPath = filepath.Join("junit", "test-results.xml")
	}

	if c.Mypy.Entry == "" {
		c.Mypy.Entry = "main.py"
	}

	if len(c.Flake8.Ignore) == 0 {
		c.Flake8.Ignore = []string{"E252", "W503"}
	}
	if c.Flake8.MaxComplexity < 0 {
		return fmt.Errorf("flake8 max_complexity: %w", errNegativeLimit)
	}
	if c.Flake8.MaxComplexity == 0 {
		c.Flake8.MaxComplexity = 26
	}
	if c.Flake8.MaxLineLength < 0 {
		return fmt.Errorf("flake8 max_line_length: %w", errNegativeLimit)
	}
	if c.Flake8.MaxLineLength == 0 {
		c.Flake8.MaxLineLength = 127
	}
	if len(c.Flake8.Exclude) == 0 {
		c.Flake8.Exclude = []string{
			".git", "__pycache__", ".tox", ".eggs", "*.egg", ".venv",
			".idea", ".pytest_cache", ".vscode", "build", "dist", "htmlcov",
		}
	}

	if c.Publish.TestRepositoryURL == "" {
		c.Publish.TestRepositoryURL = "https://test.pypi.org/legacy/"
	}

	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.Root, ".devtask", "history.db")
	} else if !filepath.IsAbs(c.DatabasePath) {
		c.DatabasePath = filepath.Join(c.Root, c.DatabasePath)
	}

	if c.IntervalMinutes < 0 {
		return errInvalidInterval
	}
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 15
	}

	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30
	}
	if c.Logging.File != "" && !filepath.IsAbs(c.Logging.File) {
		c.Logging.File = filepath.Join(c.Root, c.Logging.File)
	}

	// Prometheus stays disabled unless a port is configured: a one-shot
	// CLI run has nothing useful to serve, watch mode does.

	return nil
}

// Interval returns the watch-mode clean interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// PrometheusAddress returns the listen address for the metrics server.
func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}
