// Package config loads Conveyor configuration from file, environment
// variables and flags.
package config

// Config holds all Conveyor configuration options.
type Config struct {
	// ProjectDir is the root of the project the tasks operate on.
	ProjectDir string `koanf:"project_dir"`
	// StatePath is the path to the run-history database.
	StatePath string `koanf:"state_path"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
	// Output selects the output format (auto|text|json).
	Output string `koanf:"output"`

	Go     GoConfig     `koanf:"go"`
	Format FormatConfig `koanf:"format"`
	Docs   DocsConfig   `koanf:"docs"`
	Lint   LintConfig   `koanf:"lint"`
	Test   TestConfig   `koanf:"test"`
	Watch  WatchConfig  `koanf:"watch"`
}

// GoConfig configures the Go toolchain binary.
type GoConfig struct {
	// Bin is the go binary to invoke.
	Bin string `koanf:"bin"`
	// Packages is the package pattern passed to build and test.
	Packages string `koanf:"packages"`
}

// FormatConfig configures the formatter tasks.
type FormatConfig struct {
	// Tool is the formatter binary.
	Tool string `koanf:"tool"`
	// Paths are the paths passed to the formatter.
	Paths []string `koanf:"paths"`
}

// DocsConfig configures the documentation tasks.
type DocsConfig struct {
	// Packages are the packages to document. Empty means every package
	// reported by the Go toolchain.
	Packages []string `koanf:"packages"`
}

// LintConfig configures the lint task.
type LintConfig struct {
	// Tool is the static analyzer binary.
	Tool string `koanf:"tool"`
	// Rules are the rule identifiers to enable. Every rule runs at deny
	// severity: any finding fails the task.
	Rules []string `koanf:"rules"`
}

// TestConfig configures the test task.
type TestConfig struct {
	// Tags are the optional feature sets (build tags) enabled for tests.
	Tags []string `koanf:"tags"`
	// Args are extra arguments appended to the test invocation.
	Args []string `koanf:"args"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// DebounceMS is the quiet period, in milliseconds, after the last file
	// event before a run starts.
	DebounceMS int `koanf:"debounce_ms"`
}
