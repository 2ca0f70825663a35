package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/core/ports/driving"
)

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu      sync.Mutex
	tasks   map[string]*domain.ScheduledTask
	results []domain.TaskResult
}

var _ driven.SchedulerStore = (*mockSchedulerStore)(nil)

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{tasks: make(map[string]*domain.ScheduledTask)}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockSchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, _ string, _ int) ([]domain.TaskResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TaskResult(nil), m.results...), nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error { return nil }

// mockRefresher implements driving.Pipeline for scheduler testing.
type mockRefresher struct {
	mu   sync.Mutex
	runs int
	err  error
}

func (m *mockRefresher) Run(_ context.Context, _ domain.SearchRequest) (*driving.RunResult, error) {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &driving.RunResult{RunID: "run-1"}, nil
}

func (m *mockRefresher) Document(_ context.Context, _ domain.SearchRequest, _ *driving.RunResult) *domain.ResultDocument {
	return &domain.ResultDocument{TotalCount: 2, LastUpdated: time.Now()}
}

func (m *mockRefresher) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

// mockExporter implements driven.ResultExporter for testing.
type mockExporter struct {
	mu   sync.Mutex
	docs []*domain.ResultDocument
	path string
	err  error
}

func (m *mockExporter) Export(_ context.Context, doc *domain.ResultDocument) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.docs = append(m.docs, doc)
	return m.path, nil
}

func testSchedulerRequest() domain.SearchRequest {
	return domain.SearchRequest{
		Locations: []string{"Liverpool"},
		Radius:    5,
		Sources:   []string{"rightmove"},
	}
}

func TestScheduler_InitialiseTasks(t *testing.T) {
	store := newMockSchedulerStore()
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, &mockRefresher{}, nil, testSchedulerRequest())

	err := s.initialiseTasks(context.Background())
	require.NoError(t, err)

	task, err := store.GetTask(context.Background(), domain.TaskIDPipelineRefresh)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.True(t, task.Enabled)
	assert.Equal(t, 6*time.Hour, task.Interval)
	assert.False(t, task.NextRun.IsZero())
}

func TestScheduler_InitialiseTasks_UpdatesChangedInterval(t *testing.T) {
	store := newMockSchedulerStore()
	require.NoError(t, store.SaveTask(context.Background(), &domain.ScheduledTask{
		ID:       domain.TaskIDPipelineRefresh,
		Interval: time.Hour,
		Enabled:  true,
	}))

	s := NewScheduler(domain.DefaultSchedulerConfig(), store, &mockRefresher{}, nil, testSchedulerRequest())
	require.NoError(t, s.initialiseTasks(context.Background()))

	task, _ := store.GetTask(context.Background(), domain.TaskIDPipelineRefresh)
	assert.Equal(t, 6*time.Hour, task.Interval)
}

func TestScheduler_RunsDueRefresh(t *testing.T) {
	store := newMockSchedulerStore()
	require.NoError(t, store.SaveTask(context.Background(), &domain.ScheduledTask{
		ID:       domain.TaskIDPipelineRefresh,
		Interval: time.Hour,
		Enabled:  true,
		// Zero NextRun means due immediately.
	}))

	refresher := &mockRefresher{}
	exporter := &mockExporter{path: "/tmp/results.json"}
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, refresher, exporter, testSchedulerRequest())

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	assert.Equal(t, 1, refresher.runCount())
	require.Len(t, exporter.docs, 1)
	assert.Equal(t, 2, exporter.docs[0].TotalCount)

	require.Len(t, store.results, 1)
	assert.True(t, store.results[0].Success)
	assert.Equal(t, 2, store.results[0].ItemsProcessed)

	task, _ := store.GetTask(context.Background(), domain.TaskIDPipelineRefresh)
	assert.False(t, task.NextRun.IsZero(), "next run scheduled after completion")
	assert.Empty(t, task.LastError)
}

func TestScheduler_SkipsDisabledTask(t *testing.T) {
	store := newMockSchedulerStore()
	require.NoError(t, store.SaveTask(context.Background(), &domain.ScheduledTask{
		ID:      domain.TaskIDPipelineRefresh,
		Enabled: false,
	}))

	refresher := &mockRefresher{}
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, refresher, nil, testSchedulerRequest())

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	assert.Equal(t, 0, refresher.runCount())
}

func TestScheduler_RecordsFailure(t *testing.T) {
	store := newMockSchedulerStore()
	require.NoError(t, store.SaveTask(context.Background(), &domain.ScheduledTask{
		ID:       domain.TaskIDPipelineRefresh,
		Interval: time.Hour,
		Enabled:  true,
	}))

	refresher := &mockRefresher{err: domain.ErrInvalidRequest}
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, refresher, nil, testSchedulerRequest())

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	require.Len(t, store.results, 1)
	assert.False(t, store.results[0].Success)
	assert.NotEmpty(t, store.results[0].Error)

	task, _ := store.GetTask(context.Background(), domain.TaskIDPipelineRefresh)
	assert.NotEmpty(t, task.LastError)
}

func TestScheduler_StartStop(t *testing.T) {
	store := newMockSchedulerStore()
	s := NewScheduler(domain.DefaultSchedulerConfig(), store, &mockRefresher{}, nil, testSchedulerRequest())

	done := make(chan error, 1)
	go func() {
		done <- s.Start(context.Background())
	}()

	// Give Start a moment to enter its loop before stopping.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
