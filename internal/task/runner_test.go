package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTask is a scriptable Task implementation for runner tests.
type testTask struct {
	id      uuid.UUID
	execute func(ctx context.Context) error
	done    chan struct{}
}

func newTestTask(execute func(ctx context.Context) error) *testTask {
	return &testTask{
		id:      uuid.New(),
		execute: execute,
		done:    make(chan struct{}),
	}
}

func (t *testTask) ID() uuid.UUID      { return t.id }
func (t *testTask) Type() string       { return "test_task" }
func (t *testTask) Payload() []byte    { return []byte("{}") }
func (t *testTask) Status() TaskStatus { return TaskStatusPending }

func (t *testTask) Execute(ctx context.Context) error {
	defer close(t.done)
	if t.execute != nil {
		return t.execute(ctx)
	}
	return nil
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for task execution")
	}
}

func TestRunnerExecutesSubmittedTasks(t *testing.T) {
	runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 2, QueueSize: 10}, taskTestLogger())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	var executed atomic.Int32
	task := newTestTask(func(ctx context.Context) error {
		executed.Add(1)
		return nil
	})

	require.NoError(t, runner.Submit(context.Background(), task))
	waitFor(t, task.done)

	assert.Equal(t, int32(1), executed.Load())
}

func TestRunnerInvokesErrorHandler(t *testing.T) {
	runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 10}, taskTestLogger())

	var mu sync.Mutex
	var handledErr error
	handled := make(chan struct{})
	runner.SetErrorHandler(func(task Task, err error) {
		mu.Lock()
		handledErr = err
		mu.Unlock()
		close(handled)
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	boom := errors.New("boom")
	task := newTestTask(func(ctx context.Context) error { return boom })

	require.NoError(t, runner.Submit(context.Background(), task))
	waitFor(t, handled)

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, handledErr, boom)
}

func TestRunnerSubmitFullQueue(t *testing.T) {
	// No workers started, so submitted tasks sit in the queue.
	runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 1}, taskTestLogger())

	require.NoError(t, runner.Submit(context.Background(), newTestTask(nil)))

	err := runner.Submit(context.Background(), newTestTask(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestRunnerStopWaitsForWorkers(t *testing.T) {
	runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 10}, taskTestLogger())
	require.NoError(t, runner.Start())

	started := make(chan struct{})
	var finished atomic.Bool
	task := newTestTask(func(ctx context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	require.NoError(t, runner.Submit(context.Background(), task))
	<-started

	runner.Stop()
	assert.True(t, finished.Load(), "Stop should wait for in-flight task")
}

func TestRunnerDefaultsApplied(t *testing.T) {
	runner := NewTaskRunner(TaskRunnerConfig{}, taskTestLogger())
	assert.Equal(t, DefaultTaskRunnerConfig().WorkerCount, runner.config.WorkerCount)
	assert.Equal(t, DefaultTaskRunnerConfig().QueueSize, runner.config.QueueSize)
}
