// Package config loads the sift project configuration.
//
// The presence of sift.toml is what activates the engine: without it sift
// behaves as if it were not installed at all.
package config

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"sift/internal/errors"
)

// ProjectConfigFile is the marker file that identifies a sift project root.
const ProjectConfigFile = "sift.toml"

// DataDirName is the per-project directory holding the duration ledger.
const DataDirName = ".sift"

// Config represents the complete sift configuration
type Config struct {
	Version int `toml:"version" mapstructure:"version"`

	Runner  RunnerConfig  `toml:"runner" mapstructure:"runner"`
	Modules ModulesConfig `toml:"modules" mapstructure:"modules"`
	Logging LoggingConfig `toml:"logging" mapstructure:"logging"`
}

// RunnerConfig describes how tests are discovered and executed
type RunnerConfig struct {
	// Command is the test command template; {{files}} expands to the kept
	// test files, space separated
	Command string `toml:"command" mapstructure:"command"`

	// Report selects how per-test results are parsed from the command
	// output: "gotest-json" or "none"
	Report string `toml:"report" mapstructure:"report"`

	// Patterns are glob patterns (matched against base names) identifying
	// test files
	Patterns []string `toml:"patterns" mapstructure:"patterns"`

	// Ignore lists directory names excluded from discovery
	Ignore []string `toml:"ignore" mapstructure:"ignore"`
}

// ModulesConfig describes where the module map comes from
type ModulesConfig struct {
	// File is the module declaration file, relative to the project root
	File string `toml:"file" mapstructure:"file"`

	// Roots restricts test discovery to these subdirectories (empty = whole tree)
	Roots []string `toml:"roots" mapstructure:"roots"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `toml:"format" mapstructure:"format"`
	Level  string `toml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Runner: RunnerConfig{
			Command:  "go test -json ./...",
			Report:   "gotest-json",
			Patterns: []string{"*_test.go", "test_*.py", "*_test.py"},
			Ignore:   []string{".git", "node_modules", "vendor", "build", "dist", "__pycache__", DataDirName},
		},
		Modules: ModulesConfig{
			File:  "modules.toml",
			Roots: []string{},
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// FindRoot walks up from start looking for sift.toml and returns the
// directory containing it.
func FindRoot(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ProjectConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Load reads sift.toml from root. Settings may be overridden through
// SIFT_* environment variables (e.g. SIFT_LOGGING_LEVEL=debug).
func Load(root string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("runner.command", defaults.Runner.Command)
	v.SetDefault("runner.report", defaults.Runner.Report)
	v.SetDefault("runner.patterns", defaults.Runner.Patterns)
	v.SetDefault("runner.ignore", defaults.Runner.Ignore)
	v.SetDefault("modules.file", defaults.Modules.File)
	v.SetDefault("modules.roots", defaults.Modules.Roots)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetEnvPrefix("SIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(filepath.Join(root, ProjectConfigFile))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ConfigMissing, "no "+ProjectConfigFile+" found", err, nil)
		}
		return nil, errors.New(errors.InternalError, "failed to read "+ProjectConfigFile, err, nil)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New(errors.InternalError, "invalid "+ProjectConfigFile, err, nil)
	}

	return &cfg, nil
}

// Discover locates the project root from start and loads its configuration.
// A ConfigMissing error means the engine should stay disabled.
func Discover(start string) (string, *Config, error) {
	root, ok := FindRoot(start)
	if !ok {
		return "", nil, errors.New(errors.ConfigMissing, "no "+ProjectConfigFile+" found above "+start, nil, nil)
	}
	cfg, err := Load(root)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

// Save writes the configuration to sift.toml in root.
func (c *Config) Save(root string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, ProjectConfigFile), data, 0644)
}
