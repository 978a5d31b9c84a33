package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/martinsuchenak/merakilife/internal/log"
	"github.com/robfig/cron/v3"
)

// Scheduler runs registered tasks on cron schedules.
type Scheduler struct {
	mu      sync.RWMutex
	cron    *cron.Cron
	tasks   map[string]*Task
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Task represents a scheduled task
type Task struct {
	ID       string
	Name     string
	Spec     string
	Schedule cron.Schedule
	LastRun  *time.Time
	Status   string // "pending", "running", "completed", "failed"
	LastErr  error
	Handler  TaskHandler
}

// TaskHandler is the function executed by a task
type TaskHandler func(ctx context.Context, taskID string) error

// NewScheduler creates a scheduler. Running tasks see ctx cancelled on Stop
// or when parent is cancelled.
func NewScheduler(parent context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{
		cron:   cron.New(),
		tasks:  make(map[string]*Task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterTask adds a task on a standard five-field cron spec (descriptors
// such as "@daily" and "@every 1h" are accepted).
func (s *Scheduler) RegisterTask(id, name, spec string, handler TaskHandler) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("parsing cron spec %q: %w", spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; exists {
		return fmt.Errorf("task %s already registered", id)
	}

	task := &Task{
		ID:       id,
		Name:     name,
		Spec:     spec,
		Schedule: schedule,
		Status:   "pending",
		Handler:  handler,
	}
	s.tasks[id] = task
	s.cron.Schedule(schedule, cron.FuncJob(func() { s.runTask(task) }))

	log.Info("Task registered", "task_id", id, "spec", spec)
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.running = true
	log.Info("Starting background scheduler", "tasks", len(s.tasks))
	s.cron.Start()
}

// Stop cancels running tasks and waits for them to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	log.Info("Stopping background scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
}

// Next returns the first activation of a task after from
func (s *Scheduler) Next(id string, from time.Time) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return time.Time{}, fmt.Errorf("task %s not registered", id)
	}
	return task.Schedule.Next(from), nil
}

// Task returns a snapshot of a registered task
func (s *Scheduler) Task(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// runTask executes a task unless the previous activation is still running
func (s *Scheduler) runTask(task *Task) {
	s.mu.Lock()
	if task.Status == "running" {
		s.mu.Unlock()
		log.Warn("Skipping task, previous run still active", "task_id", task.ID)
		return
	}
	task.Status = "running"
	now := time.Now()
	task.LastRun = &now
	s.mu.Unlock()

	log.Info("Running task", "task_id", task.ID, "name", task.Name)

	err := task.Handler(s.ctx, task.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	task.LastErr = err
	if err != nil {
		task.Status = "failed"
		log.Error("Task failed", "task_id", task.ID, "error", err)
	} else {
		task.Status = "completed"
		log.Info("Task completed", "task_id", task.ID)
	}
}
