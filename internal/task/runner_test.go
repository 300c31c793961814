package task

import (
	"context"
	"errors"
	"testing"

	"github.com/leapstack-labs/conveyor/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipelineRegistry builds a registry shaped like the validation pipeline,
// recording executed task names in order.
func pipelineRegistry(t *testing.T, executed *[]string, failing map[string]error) *Registry {
	t.Helper()
	r := NewRegistry()

	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			*executed = append(*executed, name)
			return failing[name]
		}
	}

	for _, spec := range []struct {
		name    string
		aliases []string
		deps    []string
		run     bool
	}{
		{name: "build", aliases: []string{"b"}, run: true},
		{name: "check_format", run: true},
		{name: "format", run: true},
		{name: "fix", aliases: []string{"f"}, deps: []string{"format"}},
		{name: "lint", run: true},
		{name: "test", aliases: []string{"t"}, run: true},
		{name: "validate", aliases: []string{"v"}, deps: []string{"check_format", "build", "test", "lint"}},
	} {
		task := &Task{Name: spec.name, Aliases: spec.aliases, Deps: spec.deps}
		if spec.run {
			task.Run = record(spec.name)
		}
		require.NoError(t, r.Register(task))
	}
	return r
}

func TestRunner_Plan_DeclarationOrder(t *testing.T) {
	var executed []string
	r := NewRunner(pipelineRegistry(t, &executed, nil), nil, nil, nil)

	plan, err := r.Plan("validate")
	require.NoError(t, err)

	var names []string
	for _, task := range plan {
		names = append(names, task.Name)
	}
	assert.Equal(t, []string{"check_format", "build", "test", "lint", "validate"}, names)
}

func TestRunner_Plan_ResolvesAlias(t *testing.T) {
	var executed []string
	r := NewRunner(pipelineRegistry(t, &executed, nil), nil, nil, nil)

	plan, err := r.Plan("v")
	require.NoError(t, err)
	assert.Equal(t, "validate", plan[len(plan)-1].Name)
}

func TestRunner_Plan_UnknownTask(t *testing.T) {
	var executed []string
	r := NewRunner(pipelineRegistry(t, &executed, nil), nil, nil, nil)

	_, err := r.Plan("deploy")
	assert.ErrorContains(t, err, "unknown task")
}

func TestRunner_Run_AllSucceed(t *testing.T) {
	var executed []string
	r := NewRunner(pipelineRegistry(t, &executed, nil), nil, nil, nil)

	results, err := r.Run(context.Background(), "validate")
	require.NoError(t, err)
	assert.Equal(t, []string{"check_format", "build", "test", "lint"}, executed)

	require.Len(t, results, 5)
	for _, res := range results {
		assert.Equal(t, state.TaskStatusSuccess, res.Status)
	}
}

func TestRunner_Run_DepFailureFailsRunAndSkipsRest(t *testing.T) {
	boom := errors.New("compilation failed")
	var executed []string
	reg := pipelineRegistry(t, &executed, map[string]error{"build": boom})
	r := NewRunner(reg, nil, nil, nil)

	results, err := r.Run(context.Background(), "validate")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// Execution stops at the failure; later tasks never run.
	assert.Equal(t, []string{"check_format", "build"}, executed)

	statuses := make(map[string]state.TaskStatus)
	for _, res := range results {
		statuses[res.Task] = res.Status
	}
	assert.Equal(t, state.TaskStatusSuccess, statuses["check_format"])
	assert.Equal(t, state.TaskStatusFailed, statuses["build"])
	assert.Equal(t, state.TaskStatusSkipped, statuses["test"])
	assert.Equal(t, state.TaskStatusSkipped, statuses["lint"])
	assert.Equal(t, state.TaskStatusSkipped, statuses["validate"])
}

func TestRunner_Run_LastDepFailure(t *testing.T) {
	boom := errors.New("findings")
	var executed []string
	reg := pipelineRegistry(t, &executed, map[string]error{"lint": boom})
	r := NewRunner(reg, nil, nil, nil)

	_, err := r.Run(context.Background(), "validate")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"check_format", "build", "test", "lint"}, executed)
}

func TestRunner_Run_AggregateRunsDeps(t *testing.T) {
	var executed []string
	r := NewRunner(pipelineRegistry(t, &executed, nil), nil, nil, nil)

	_, err := r.Run(context.Background(), "fix")
	require.NoError(t, err)
	assert.Equal(t, []string{"format"}, executed)
}

type recordingObserver struct {
	started  []string
	finished []Result
}

func (o *recordingObserver) TaskStarted(name string) { o.started = append(o.started, name) }
func (o *recordingObserver) TaskFinished(res Result) { o.finished = append(o.finished, res) }

func TestRunner_Run_NotifiesObserver(t *testing.T) {
	var executed []string
	obs := &recordingObserver{}
	r := NewRunner(pipelineRegistry(t, &executed, nil), nil, nil, obs)

	_, err := r.Run(context.Background(), "fix")
	require.NoError(t, err)

	assert.Equal(t, []string{"format", "fix"}, obs.started)
	require.Len(t, obs.finished, 2)
	assert.Equal(t, state.TaskStatusSuccess, obs.finished[0].Status)
}

func TestRunner_Run_RecordsState(t *testing.T) {
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	defer store.Close()
	require.NoError(t, store.InitSchema())

	boom := errors.New("test failure")
	var executed []string
	reg := pipelineRegistry(t, &executed, map[string]error{"test": boom})
	r := NewRunner(reg, store, nil, nil)

	_, err := r.Run(context.Background(), "validate")
	require.Error(t, err)

	runs, err := store.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "validate", runs[0].Target)
	assert.Equal(t, state.RunStatusFailed, runs[0].Status)

	taskRuns, err := store.TaskRuns(runs[0].ID)
	require.NoError(t, err)
	require.Len(t, taskRuns, 5)
	assert.Equal(t, "check_format", taskRuns[0].Task)
	assert.Equal(t, state.TaskStatusSuccess, taskRuns[0].Status)
	assert.Equal(t, state.TaskStatusFailed, taskRuns[2].Status)
	assert.Equal(t, state.TaskStatusSkipped, taskRuns[3].Status)
}
