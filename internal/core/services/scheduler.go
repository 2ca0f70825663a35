package services

import (
	"context"
	"sync"
	"time"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/core/ports/driving"
	"github.com/propscout/propscout-cli/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// runHistoryKeep bounds the scheduler's task history per task.
const runHistoryKeep = 100

// Scheduler runs the pipeline on an interval behind `propscout serve`.
// It is a pure core service with no external control API.
type Scheduler struct {
	config   domain.SchedulerConfig
	store    driven.SchedulerStore
	pipeline driving.Pipeline
	exporter driven.ResultExporter
	request  domain.SearchRequest

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler that refreshes the given search
// request. The exporter may be nil, in which case refresh results are
// discarded after the run history is recorded.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	pipeline driving.Pipeline,
	exporter driven.ResultExporter,
	request domain.SearchRequest,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		pipeline: pipeline,
		exporter: exporter,
		request:  request,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Initialise tasks in store
	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("Scheduler failed to initialise tasks: %v", err)
	}

	// Run the main scheduler loop
	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if taskCfg := s.config.GetTaskConfig(domain.TaskIDPipelineRefresh); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDPipelineRefresh, "Pipeline Refresh", taskCfg); err != nil {
			return err
		}
	}

	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		// Create new task
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		// Update interval if changed
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			// Recalculate next run from now
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	// Use a 1-minute ticker to check for due tasks
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("Scheduler failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || task.NextRun.Before(now) || task.NextRun.Equal(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDPipelineRefresh:
			result.ItemsProcessed, err = s.runPipelineRefresh(ctx)
		default:
			logger.Warn("Scheduler has no handler for task ID %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		// Update task state
		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Warn("Scheduler failed to save task %s: %v", task.ID, saveErr)
		}

		// Record result for history
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Warn("Scheduler failed to record result for %s: %v", task.ID, recordErr)
		}

		// Prune old history
		if pruneErr := s.store.PruneHistory(ctx, runHistoryKeep); pruneErr != nil {
			logger.Warn("Scheduler failed to prune history: %v", pruneErr)
		}
	}()
}

// runPipelineRefresh runs the full pipeline for the configured request
// and exports the refreshed result document.
func (s *Scheduler) runPipelineRefresh(ctx context.Context) (int, error) {
	if s.pipeline == nil {
		return 0, nil
	}

	result, err := s.pipeline.Run(ctx, s.request)
	if err != nil {
		return 0, err
	}

	doc := s.pipeline.Document(ctx, s.request, result)
	if s.exporter != nil {
		path, err := s.exporter.Export(ctx, doc)
		if err != nil {
			return doc.TotalCount, err
		}
		logger.Info("Refreshed %d properties to %s", doc.TotalCount, path)
	}

	return doc.TotalCount, nil
}
