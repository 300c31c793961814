package toolchain

import (
	"context"
	"testing"

	"github.com/leapstack-labs/conveyor/internal/cli/config"
	"github.com/leapstack-labs/conveyor/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor records invocations and serves canned capture output.
type fakeExecutor struct {
	runs     []Invocation
	captures []Invocation
	output   map[string][]string
	fail     map[string]error
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		output: make(map[string][]string),
		fail:   make(map[string]error),
	}
}

func (f *fakeExecutor) Run(_ context.Context, inv Invocation) error {
	f.runs = append(f.runs, inv)
	return f.fail[inv.String()]
}

func (f *fakeExecutor) Capture(_ context.Context, inv Invocation) ([]string, error) {
	f.captures = append(f.captures, inv)
	return f.output[inv.String()], f.fail[inv.String()]
}

func testConfig() *config.Config {
	return &config.Config{
		ProjectDir: "/proj",
		Go:         config.GoConfig{Bin: "go", Packages: "./..."},
		Format:     config.FormatConfig{Tool: "gofmt", Paths: []string{"."}},
		Lint:       config.LintConfig{Tool: "golangci-lint", Rules: []string{"govet", "staticcheck", "errcheck"}},
	}
}

func findTask(t *testing.T, tasks []*task.Task, name string) *task.Task {
	t.Helper()
	for _, tk := range tasks {
		if tk.Name == name {
			return tk
		}
	}
	t.Fatalf("task %s not defined", name)
	return nil
}

func TestTasks_Surface(t *testing.T) {
	tasks := Tasks(testConfig(), newFakeExecutor())

	names := make(map[string]*task.Task)
	for _, tk := range tasks {
		names[tk.Name] = tk
	}
	for _, want := range []string{"build", "check_format", "format", "fix", "doc", "doc_all", "lint", "test", "validate"} {
		assert.Contains(t, names, want)
	}

	assert.Equal(t, []string{"b"}, names["build"].Aliases)
	assert.Equal(t, []string{"f"}, names["fix"].Aliases)
	assert.Equal(t, []string{"t"}, names["test"].Aliases)
	assert.Equal(t, []string{"v"}, names["validate"].Aliases)

	assert.Equal(t, []string{"format"}, names["fix"].Deps)
	assert.Equal(t, []string{"check_format", "build", "test", "lint"}, names["validate"].Deps)

	// Aggregates sequence their dependencies and do nothing themselves.
	assert.Nil(t, names["fix"].Run)
	assert.Nil(t, names["validate"].Run)
}

func TestTasks_Build(t *testing.T) {
	exec := newFakeExecutor()
	build := findTask(t, Tasks(testConfig(), exec), "build")

	require.NoError(t, build.Run(context.Background()))
	require.Len(t, exec.runs, 1)
	assert.Equal(t, "go", exec.runs[0].Name)
	assert.Equal(t, []string{"build", "./..."}, exec.runs[0].Args)
	assert.Equal(t, "/proj", exec.runs[0].Dir)
}

func TestTasks_FormatUsesWriteMode(t *testing.T) {
	exec := newFakeExecutor()
	format := findTask(t, Tasks(testConfig(), exec), "format")

	require.NoError(t, format.Run(context.Background()))
	require.Len(t, exec.runs, 1)
	assert.Equal(t, "gofmt", exec.runs[0].Name)
	assert.Equal(t, []string{"-w", "."}, exec.runs[0].Args)
}

func TestTasks_CheckFormatListsWithoutWriting(t *testing.T) {
	exec := newFakeExecutor()
	check := findTask(t, Tasks(testConfig(), exec), "check_format")

	require.NoError(t, check.Run(context.Background()))
	require.Len(t, exec.captures, 1)
	assert.Equal(t, []string{"-l", "."}, exec.captures[0].Args)
	assert.NotContains(t, exec.captures[0].Args, "-w")
}

func TestTasks_CheckFormatFailsOnUnformattedFiles(t *testing.T) {
	exec := newFakeExecutor()
	exec.output["gofmt -l ."] = []string{"main.go", "util.go"}
	check := findTask(t, Tasks(testConfig(), exec), "check_format")

	err := check.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.go")
	assert.Contains(t, err.Error(), "2 file(s)")
}

func TestTasks_DocExcludesPrivateItems(t *testing.T) {
	exec := newFakeExecutor()
	exec.output["go list ./..."] = []string{"example.com/m/a", "example.com/m/b"}
	doc := findTask(t, Tasks(testConfig(), exec), "doc")

	require.NoError(t, doc.Run(context.Background()))
	require.Len(t, exec.runs, 2)
	assert.Equal(t, []string{"doc", "-all", "example.com/m/a"}, exec.runs[0].Args)
	assert.Equal(t, []string{"doc", "-all", "example.com/m/b"}, exec.runs[1].Args)
	for _, inv := range exec.runs {
		assert.NotContains(t, inv.Args, "-u")
	}
}

func TestTasks_DocAllIncludesPrivateItems(t *testing.T) {
	exec := newFakeExecutor()
	exec.output["go list ./..."] = []string{"example.com/m/a"}
	docAll := findTask(t, Tasks(testConfig(), exec), "doc_all")

	require.NoError(t, docAll.Run(context.Background()))
	require.Len(t, exec.runs, 1)
	assert.Equal(t, []string{"doc", "-all", "-u", "example.com/m/a"}, exec.runs[0].Args)
}

func TestTasks_DocUsesConfiguredPackages(t *testing.T) {
	cfg := testConfig()
	cfg.Docs.Packages = []string{"./pkg/special"}
	exec := newFakeExecutor()
	doc := findTask(t, Tasks(cfg, exec), "doc")

	require.NoError(t, doc.Run(context.Background()))
	assert.Empty(t, exec.captures, "configured packages need no listing")
	require.Len(t, exec.runs, 1)
	assert.Equal(t, []string{"doc", "-all", "./pkg/special"}, exec.runs[0].Args)
}

func TestTasks_LintEnablesExactRuleSet(t *testing.T) {
	exec := newFakeExecutor()
	lint := findTask(t, Tasks(testConfig(), exec), "lint")

	require.NoError(t, lint.Run(context.Background()))
	require.Len(t, exec.runs, 1)
	assert.Equal(t, "golangci-lint", exec.runs[0].Name)
	assert.Equal(t, []string{
		"run",
		"--no-config",
		"--disable-all",
		"--enable", "govet,staticcheck,errcheck",
		"./...",
	}, exec.runs[0].Args)
}

func TestTasks_TestIsVerboseWithTags(t *testing.T) {
	cfg := testConfig()
	cfg.Test.Tags = []string{"integration", "slow"}
	exec := newFakeExecutor()
	test := findTask(t, Tasks(cfg, exec), "test")

	require.NoError(t, test.Run(context.Background()))
	require.Len(t, exec.runs, 1)
	assert.Equal(t, []string{"test", "-v", "-tags", "integration,slow", "./..."}, exec.runs[0].Args)
}

func TestTasks_TestWithoutTags(t *testing.T) {
	exec := newFakeExecutor()
	test := findTask(t, Tasks(testConfig(), exec), "test")

	require.NoError(t, test.Run(context.Background()))
	assert.Equal(t, []string{"test", "-v", "./..."}, exec.runs[0].Args)
}

func TestRegister_WiresEveryTask(t *testing.T) {
	reg := task.NewRegistry()
	require.NoError(t, Register(reg, testConfig(), newFakeExecutor()))
	assert.Len(t, reg.All(), 9)

	resolved, ok := reg.Resolve("v")
	require.True(t, ok)
	assert.Equal(t, "validate", resolved.Name)
}

func TestExitError_Message(t *testing.T) {
	err := &ExitError{Command: "go build ./...", Code: 2}
	assert.Equal(t, "go build ./... exited with code 2", err.Error())
}
