package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/infrastructure/metrics"
	"github.com/strictpm/core/internal/ports"
)

// TaskStore is the ordered in-memory task collection mirrored to the
// key-value store. Every mutation rewrites the whole snapshot.
type TaskStore struct {
	kv      ports.KeyValueStore
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu    sync.RWMutex
	tasks []entities.Task
	index map[string]int
}

// NewTaskStore creates an empty store; call Load to read the snapshot.
func NewTaskStore(kv ports.KeyValueStore, logger *logger.Logger, m *metrics.Metrics) *TaskStore {
	return &TaskStore{
		kv:      kv,
		logger:  logger.WithComponent("task_store"),
		metrics: m,
		index:   make(map[string]int),
	}
}

var _ ports.TaskRepository = (*TaskStore)(nil)

// Load reads the persisted snapshot. A missing or unreadable snapshot leaves
// the store empty and is never returned as an error.
func (s *TaskStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = nil
	s.index = make(map[string]int)

	data, err := s.kv.Get(ctx, ports.TasksKey)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			s.logger.Debugw("No saved tasks")
			return nil
		}
		s.logger.WithError(err).Warn("Failed to read saved tasks")
		return nil
	}

	var tasks []entities.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		s.logger.WithError(err).Warn("Failed to parse saved tasks")
		return nil
	}

	for _, t := range tasks {
		if _, dup := s.index[t.ID]; dup {
			s.logger.Warnw("Dropping task with duplicate id from snapshot", "task_id", t.ID)
			continue
		}
		if len(t.Subtasks) == 0 {
			t.Subtasks = nil
		}
		s.index[t.ID] = len(s.tasks)
		s.tasks = append(s.tasks, t)
	}

	s.metrics.SetTasksStored(len(s.tasks))
	s.logger.Infow("Tasks loaded", "count", len(s.tasks))
	return nil
}

func (s *TaskStore) List(_ context.Context, filter ports.TaskFilter) ([]entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entities.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.Date != nil && t.Date != *filter.Date {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Tag != nil && t.Tag != *filter.Tag {
			continue
		}
		result = append(result, t.Clone())
	}
	return result, nil
}

func (s *TaskStore) GetByID(_ context.Context, id string) (*entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	t := s.tasks[i].Clone()
	return &t, nil
}

// Add appends tasks in order as a single mutation.
func (s *TaskStore) Add(ctx context.Context, tasks ...entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if _, exists := s.index[t.ID]; exists || seen[t.ID] {
			return fmt.Errorf("add task %s: %w", t.ID, entities.ErrDuplicateTaskID)
		}
		seen[t.ID] = true
	}

	next := make([]entities.Task, len(s.tasks), len(s.tasks)+len(tasks))
	copy(next, s.tasks)
	for _, t := range tasks {
		next = append(next, t.Clone())
	}

	return s.commit(ctx, next)
}

// Replace swaps the stored record with the same id for task.
func (s *TaskStore) Replace(ctx context.Context, task entities.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[task.ID]
	if !ok {
		return entities.ErrTaskNotFound
	}

	next := make([]entities.Task, len(s.tasks))
	copy(next, s.tasks)
	next[i] = task.Clone()

	return s.commit(ctx, next)
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return entities.ErrTaskNotFound
	}

	next := make([]entities.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)

	return s.commit(ctx, next)
}

func (s *TaskStore) Count(context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// commit persists next and only then makes it the in-memory state, so a
// failed write leaves memory and snapshot in agreement. Callers hold mu.
func (s *TaskStore) commit(ctx context.Context, next []entities.Task) error {
	if next == nil {
		next = []entities.Task{}
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	if err := s.kv.Set(ctx, ports.TasksKey, data); err != nil {
		return fmt.Errorf("persist tasks: %w", err)
	}

	index := make(map[string]int, len(next))
	for i, t := range next {
		index[t.ID] = i
	}
	s.tasks = next
	s.index = index

	s.metrics.SetTasksStored(len(next))
	return nil
}
