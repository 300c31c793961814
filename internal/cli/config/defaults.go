package config

// DefaultLintRules is the fixed set of analyzers enabled by the lint task.
// Every rule runs at deny severity.
var DefaultLintRules = []string{
	"govet",
	"staticcheck",
	"errcheck",
	"unused",
	"ineffassign",
	"misspell",
	"unconvert",
	"unparam",
	"gocritic",
	"revive",
	"prealloc",
	"copyloopvar",
}

// Defaults returns the default configuration values as a flat map keyed by
// koanf path.
func Defaults() map[string]any {
	return map[string]any{
		"project_dir":       ".",
		"state_path":        ".conveyor/history.db",
		"verbose":           false,
		"output":            "auto",
		"go.bin":            "go",
		"go.packages":       "./...",
		"format.tool":       "gofmt",
		"format.paths":      []string{"."},
		"docs.packages":     []string{},
		"lint.tool":         "golangci-lint",
		"lint.rules":        DefaultLintRules,
		"test.tags":         []string{},
		"test.args":         []string{},
		"watch.debounce_ms": 400,
	}
}
