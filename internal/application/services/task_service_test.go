package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strictpm/core/internal/adapters/kvstore"
	"github.com/strictpm/core/internal/adapters/repository"
	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/ports"
)

func newTestRepo(t *testing.T) *repository.TaskStore {
	t.Helper()
	repo := repository.NewTaskStore(kvstore.NewMemoryStore(), logger.NewNop(), nil)
	require.NoError(t, repo.Load(context.Background()))
	return repo
}

func newTestTaskService(t *testing.T) (*TaskService, *repository.TaskStore) {
	t.Helper()
	repo := newTestRepo(t)
	s := NewTaskService(repo, time.UTC, logger.NewNop())
	s.now = func() time.Time { return fixedNow }
	s.newID = sequentialIDs()
	return s, repo
}

func intPtr(v int) *int { return &v }

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestTaskService(t)

	task, err := s.CreateTask(ctx, ports.CreateTaskRequest{
		Title:             "Read a chapter",
		EstimatedDuration: 40,
		Tag:               entities.TaskTagStudy,
		Subtasks: []ports.SubtaskInput{
			{Title: "Skim", Duration: intPtr(5)},
			{Title: "Notes"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, "2024-05-01", task.Date)
	assert.Equal(t, entities.TaskStatusPending, task.Status)
	assert.Equal(t, fixedNow.UnixMilli(), task.CreatedAt)
	require.Len(t, task.Subtasks, 2)
	assert.Equal(t, "id-2", task.Subtasks[0].ID)
	assert.Equal(t, 5, *task.Subtasks[0].Duration)
	assert.Nil(t, task.Subtasks[1].Duration)

	assert.Equal(t, 1, repo.Count(ctx))
}

func TestCreateTaskValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestTaskService(t)

	tests := []struct {
		name string
		req  ports.CreateTaskRequest
	}{
		{"missing title", ports.CreateTaskRequest{EstimatedDuration: 10, Tag: entities.TaskTagWork}},
		{"zero duration", ports.CreateTaskRequest{Title: "x", Tag: entities.TaskTagWork}},
		{"unknown tag", ports.CreateTaskRequest{Title: "x", EstimatedDuration: 10, Tag: "Chores"}},
		{"bad date", ports.CreateTaskRequest{Title: "x", EstimatedDuration: 10, Tag: entities.TaskTagWork, Date: "05/01/2024"}},
		{"untitled subtask", ports.CreateTaskRequest{Title: "x", EstimatedDuration: 10, Tag: entities.TaskTagWork, Subtasks: []ports.SubtaskInput{{}}}},
		{"blank title", ports.CreateTaskRequest{Title: "   ", EstimatedDuration: 10, Tag: entities.TaskTagWork}},
		{"blank subtask title", ports.CreateTaskRequest{Title: "x", EstimatedDuration: 10, Tag: entities.TaskTagWork, Subtasks: []ports.SubtaskInput{{Title: "  "}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateTask(ctx, tt.req)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestTaskLifecycleThroughService(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestTaskService(t)

	task, err := s.CreateTask(ctx, ports.CreateTaskRequest{
		Title: "Deep work", EstimatedDuration: 90, Tag: entities.TaskTagWork,
		Subtasks: []ports.SubtaskInput{{Title: "Focus"}},
	})
	require.NoError(t, err)

	started, err := s.StartTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusInProgress, started.Status)
	require.NotNil(t, started.ActualStartTime)

	_, err = s.StartTask(ctx, task.ID)
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)

	withSub, err := s.ToggleSubtask(ctx, task.ID, task.Subtasks[0].ID)
	require.NoError(t, err)
	assert.True(t, withSub.Subtasks[0].IsCompleted)
	assert.Equal(t, entities.TaskStatusInProgress, withSub.Status)

	_, err = s.ToggleSubtask(ctx, task.ID, "nope")
	assert.ErrorIs(t, err, entities.ErrSubtaskNotFound)

	done, err := s.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusCompleted, done.Status)
	assert.NotNil(t, done.ActualEndTime)

	reopened, err := s.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusPending, reopened.Status)
	assert.Nil(t, reopened.ActualEndTime)

	stored, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, reopened, stored)

	_, err = s.ToggleTask(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestTaskService(t)

	task, err := s.CreateTask(ctx, ports.CreateTaskRequest{
		Title: "Plan trip", EstimatedDuration: 30, Tag: entities.TaskTagLife, Date: "2024-05-04",
		Subtasks: []ports.SubtaskInput{{Title: "Flights"}},
	})
	require.NoError(t, err)
	_, err = s.StartTask(ctx, task.ID)
	require.NoError(t, err)

	updated, err := s.UpdateTask(ctx, task.ID, ports.UpdateTaskRequest{
		Title: "Plan summer trip", EstimatedDuration: 45, Tag: entities.TaskTagOther,
		Subtasks: []ports.SubtaskInput{
			{ID: task.Subtasks[0].ID, Title: "Book flights", IsCompleted: true},
			{Title: "Hotel"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Plan summer trip", updated.Title)
	assert.Equal(t, 45, updated.EstimatedDuration)
	assert.Equal(t, entities.TaskTagOther, updated.Tag)
	assert.Equal(t, "2024-05-04", updated.Date)
	assert.Equal(t, entities.TaskStatusInProgress, updated.Status)
	assert.NotNil(t, updated.ActualStartTime)
	require.Len(t, updated.Subtasks, 2)
	assert.Equal(t, task.Subtasks[0].ID, updated.Subtasks[0].ID)
	assert.True(t, updated.Subtasks[0].IsCompleted)
	assert.NotEqual(t, task.Subtasks[0].ID, updated.Subtasks[1].ID)

	_, err = s.UpdateTask(ctx, task.ID, ports.UpdateTaskRequest{
		Title: "x", EstimatedDuration: 1, Tag: entities.TaskTagLife, Date: "2024-05-05",
	})
	assert.ErrorIs(t, err, entities.ErrDateImmutable)

	cleared, err := s.UpdateTask(ctx, task.ID, ports.UpdateTaskRequest{
		Title: "x", EstimatedDuration: 1, Tag: entities.TaskTagLife, Date: "2024-05-04",
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.Subtasks)

	_, err = s.UpdateTask(ctx, task.ID, ports.UpdateTaskRequest{
		Title: " \t ", EstimatedDuration: 1, Tag: entities.TaskTagLife,
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = s.UpdateTask(ctx, task.ID, ports.UpdateTaskRequest{
		Title: "x", EstimatedDuration: 1, Tag: entities.TaskTagLife,
		Subtasks: []ports.SubtaskInput{{Title: "   "}},
	})
	assert.ErrorAs(t, err, &verrs)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Title)
}

func TestCreateTaskTrimsTitles(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestTaskService(t)

	subtasks := []ports.SubtaskInput{{Title: "  Outline "}}
	task, err := s.CreateTask(ctx, ports.CreateTaskRequest{
		Title: "  Write report  ", EstimatedDuration: 60, Tag: entities.TaskTagWork,
		Subtasks: subtasks,
	})
	require.NoError(t, err)

	assert.Equal(t, "Write report", task.Title)
	require.Len(t, task.Subtasks, 1)
	assert.Equal(t, "Outline", task.Subtasks[0].Title)
	assert.Equal(t, "  Outline ", subtasks[0].Title, "input is not modified")
}

func TestDeleteAndStats(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestTaskService(t)

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		task, err := s.CreateTask(ctx, ports.CreateTaskRequest{Title: title, EstimatedDuration: 20, Tag: entities.TaskTagWork})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	_, err := s.CreateTask(ctx, ports.CreateTaskRequest{Title: "other day", EstimatedDuration: 20, Tag: entities.TaskTagWork, Date: "2024-05-02"})
	require.NoError(t, err)

	_, err = s.ToggleTask(ctx, ids[0])
	require.NoError(t, err)

	stats, err := s.GetDailyStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", stats.Date)
	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 33, stats.CompletionRate)
	assert.Equal(t, 60, stats.TotalEstimatedMinutes)
	assert.Equal(t, 20, stats.CompletedMinutes)

	require.NoError(t, s.DeleteTask(ctx, ids[2]))
	assert.ErrorIs(t, s.DeleteTask(ctx, ids[2]), entities.ErrTaskNotFound)

	stats, err = s.GetDailyStats(ctx, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 50, stats.CompletionRate)

	empty, err := s.GetDailyStats(ctx, "2030-01-01")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.CompletionRate)

	_, err = s.GetDailyStats(ctx, "tomorrow")
	assert.ErrorIs(t, err, entities.ErrInvalidDate)
}
