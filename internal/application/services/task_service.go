package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/ports"
)

// TaskService handles task-related operations
type TaskService struct {
	taskRepo ports.TaskRepository
	validate *validator.Validate
	logger   *logger.Logger
	location *time.Location
	now      func() time.Time
	newID    func() string
}

var _ ports.TaskService = (*TaskService)(nil)

// NewTaskService creates a new task service. loc decides what "today" is.
func NewTaskService(taskRepo ports.TaskRepository, loc *time.Location, logger *logger.Logger) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	return &TaskService{
		taskRepo: taskRepo,
		validate: validator.New(),
		logger:   logger.WithComponent("task_service"),
		location: loc,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Today returns the current calendar day in the service location.
func (s *TaskService) Today() string {
	return s.now().In(s.location).Format(entities.DateLayout)
}

// CreateTask creates a new pending task
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	req.Title, req.Subtasks = trimTitles(req.Title, req.Subtasks)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	date := req.Date
	if date == "" {
		date = s.Today()
	}

	task := entities.Task{
		ID:                s.newID(),
		Title:             req.Title,
		EstimatedDuration: req.EstimatedDuration,
		Tag:               req.Tag,
		Status:            entities.TaskStatusPending,
		Date:              date,
		CreatedAt:         s.now().UnixMilli(),
		Subtasks:          s.buildSubtasks(req.Subtasks, nil),
	}

	if err := s.taskRepo.Add(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.LogTaskEvent(task.ID, "created", map[string]interface{}{
		"title": task.Title,
		"date":  task.Date,
	})

	return &task, nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id string) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

// UpdateTask replaces the editable fields of a task. Date, status, timestamps
// and id are kept.
func (s *TaskService) UpdateTask(ctx context.Context, id string, req ports.UpdateTaskRequest) (*entities.Task, error) {
	req.Title, req.Subtasks = trimTitles(req.Title, req.Subtasks)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	existing, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}

	if req.Date != "" && req.Date != existing.Date {
		return nil, fmt.Errorf("update task %s: %w", id, entities.ErrDateImmutable)
	}

	updated := existing.Clone()
	updated.Title = req.Title
	updated.EstimatedDuration = req.EstimatedDuration
	updated.Tag = req.Tag
	updated.Subtasks = s.buildSubtasks(req.Subtasks, existing.Subtasks)

	if err := s.taskRepo.Replace(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.LogTaskEvent(id, "updated", nil)

	return &updated, nil
}

// DeleteTask removes a task
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}

	s.logger.LogTaskEvent(id, "deleted", nil)
	return nil
}

// ListTasks returns tasks in insertion order
func (s *TaskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]entities.Task, error) {
	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// StartTask moves a pending task to in-progress
func (s *TaskService) StartTask(ctx context.Context, id string) (*entities.Task, error) {
	return s.transition(ctx, id, "started", func(t entities.Task) (entities.Task, error) {
		return entities.Start(t, s.now())
	})
}

// ToggleTask flips a task between completed and pending
func (s *TaskService) ToggleTask(ctx context.Context, id string) (*entities.Task, error) {
	return s.transition(ctx, id, "toggled", func(t entities.Task) (entities.Task, error) {
		return entities.ToggleComplete(t, s.now()), nil
	})
}

// ToggleSubtask flips one subtask; the parent status is left alone
func (s *TaskService) ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*entities.Task, error) {
	return s.transition(ctx, taskID, "subtask_toggled", func(t entities.Task) (entities.Task, error) {
		return entities.ToggleSubtask(t, subtaskID)
	})
}

// GetDailyStats aggregates the tasks of one date
func (s *TaskService) GetDailyStats(ctx context.Context, date string) (*entities.DailyStats, error) {
	if date == "" {
		date = s.Today()
	}
	if !entities.ValidDate(date) {
		return nil, fmt.Errorf("stats for %q: %w", date, entities.ErrInvalidDate)
	}

	tasks, err := s.taskRepo.List(ctx, ports.TaskFilter{Date: &date})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	stats := entities.ComputeDailyStats(date, tasks)
	return &stats, nil
}

func (s *TaskService) transition(ctx context.Context, id, action string, apply func(entities.Task) (entities.Task, error)) (*entities.Task, error) {
	current, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s task %s: %w", action, id, err)
	}

	next, err := apply(*current)
	if err != nil {
		return nil, fmt.Errorf("%s task %s: %w", action, id, err)
	}

	if err := s.taskRepo.Replace(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	s.logger.LogTaskEvent(id, action, map[string]interface{}{
		"status": next.Status,
	})

	return &next, nil
}

// buildSubtasks keeps ids that match an existing subtask and mints new ones
// otherwise. An empty list yields nil.
func (s *TaskService) buildSubtasks(inputs []ports.SubtaskInput, existing []entities.Subtask) []entities.Subtask {
	if len(inputs) == 0 {
		return nil
	}

	known := make(map[string]bool, len(existing))
	for _, st := range existing {
		known[st.ID] = true
	}

	subtasks := make([]entities.Subtask, 0, len(inputs))
	for _, in := range inputs {
		id := in.ID
		if known[id] {
			delete(known, id)
		} else {
			id = s.newID()
		}
		st := entities.Subtask{
			ID:          id,
			Title:       in.Title,
			IsCompleted: in.IsCompleted,
		}
		if in.Duration != nil && *in.Duration > 0 {
			d := *in.Duration
			st.Duration = &d
		}
		subtasks = append(subtasks, st)
	}
	return subtasks
}

// trimTitles trims the task and subtask titles so that blank titles fail the
// required check. The caller's subtask slice is not modified.
func trimTitles(title string, inputs []ports.SubtaskInput) (string, []ports.SubtaskInput) {
	if len(inputs) > 0 {
		trimmed := make([]ports.SubtaskInput, len(inputs))
		for i, in := range inputs {
			in.Title = strings.TrimSpace(in.Title)
			trimmed[i] = in
		}
		inputs = trimmed
	}
	return strings.TrimSpace(title), inputs
}
