package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/infrastructure/metrics"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestIngestion() *IngestionService {
	s := NewIngestionService(logger.NewNop(), metrics.New())
	s.now = func() time.Time { return fixedNow }
	s.newID = sequentialIDs()
	return s
}

// toolArgs decodes JSON the way tool-call arguments arrive: numbers as float64.
func toolArgs(t *testing.T, raw string) map[string]any {
	t.Helper()
	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &args))
	return args
}

func TestIngestionAcceptsFullDescriptor(t *testing.T) {
	s := newTestIngestion()

	result := s.Parse(toolArgs(t, `{"tasks":[{
		"title":"  Prepare slides ",
		"estimatedDuration":45,
		"tag":"Work",
		"date":"2024-05-03",
		"subtasks":[{"title":"Outline","duration":10},{"title":"Polish","duration":0}]
	}]}`), "2024-05-01")

	require.Empty(t, result.Rejected)
	require.Len(t, result.Tasks, 1)

	task := result.Tasks[0]
	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, "Prepare slides", task.Title)
	assert.Equal(t, 45, task.EstimatedDuration)
	assert.Equal(t, entities.TaskTagWork, task.Tag)
	assert.Equal(t, entities.TaskStatusPending, task.Status)
	assert.Equal(t, "2024-05-03", task.Date)
	assert.Equal(t, fixedNow.UnixMilli(), task.CreatedAt)
	assert.Zero(t, task.DeferredCount)
	assert.Nil(t, task.ActualStartTime)
	assert.Nil(t, task.ActualEndTime)

	require.Len(t, task.Subtasks, 2)
	assert.Equal(t, "Outline", task.Subtasks[0].Title)
	require.NotNil(t, task.Subtasks[0].Duration)
	assert.Equal(t, 10, *task.Subtasks[0].Duration)
	assert.False(t, task.Subtasks[0].IsCompleted)
	assert.Nil(t, task.Subtasks[1].Duration)
}

func TestIngestionDefaults(t *testing.T) {
	s := newTestIngestion()

	result := s.Parse(toolArgs(t, `{"tasks":[
		{"title":"No extras"},
		{"title":"Bad duration","estimatedDuration":"soon","tag":"health"},
		{"title":"Negative","estimatedDuration":-5,"subtasks":[]},
		{"title":"Fractional","estimatedDuration":"12.6"}
	]}`), "2024-05-01")

	require.Empty(t, result.Rejected)
	require.Len(t, result.Tasks, 4)

	assert.Equal(t, DefaultTaskDuration, result.Tasks[0].EstimatedDuration)
	assert.Equal(t, entities.TaskTagOther, result.Tasks[0].Tag)
	assert.Equal(t, "2024-05-01", result.Tasks[0].Date)

	assert.Equal(t, DefaultTaskDuration, result.Tasks[1].EstimatedDuration)
	assert.Equal(t, entities.TaskTagHealth, result.Tasks[1].Tag)

	assert.Equal(t, DefaultTaskDuration, result.Tasks[2].EstimatedDuration)
	assert.Nil(t, result.Tasks[2].Subtasks)

	assert.Equal(t, 13, result.Tasks[3].EstimatedDuration)
}

func TestIngestionRejectsMalformedDescriptors(t *testing.T) {
	s := newTestIngestion()

	result := s.Parse(toolArgs(t, `{"tasks":[
		{"title":"Good one","estimatedDuration":20,"tag":"Study"},
		{"estimatedDuration":20},
		{"title":"Weird tag","tag":"Chores"},
		{"title":"Bad date","date":"2024-02-30"},
		{"title":"Bad subtask","subtasks":[{"duration":5}]},
		"not an object"
	]}`), "2024-05-01")

	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "Good one", result.Tasks[0].Title)

	require.Len(t, result.Rejected, 5)
	assert.Equal(t, 1, result.Rejected[0].Index)
	assert.Contains(t, result.Rejected[0].Reason, "Title is required")

	assert.Equal(t, 2, result.Rejected[1].Index)
	assert.Equal(t, "Weird tag", result.Rejected[1].Title)
	assert.Contains(t, result.Rejected[1].Reason, "unknown tag")

	assert.Equal(t, 3, result.Rejected[2].Index)
	assert.Contains(t, result.Rejected[2].Reason, "YYYY-MM-DD")

	assert.Equal(t, 4, result.Rejected[3].Index)
	assert.Contains(t, result.Rejected[3].Reason, "Subtasks[0].Title is required")

	assert.Equal(t, 5, result.Rejected[4].Index)
}

func TestIngestionWithoutTasksArray(t *testing.T) {
	s := newTestIngestion()

	assert.Empty(t, s.Parse(map[string]any{}, "2024-05-01").Tasks)
	assert.Empty(t, s.Parse(map[string]any{"tasks": "nope"}, "2024-05-01").Tasks)
}

func TestDurationField(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{float64(30), 30},
		{float64(29.5), 30},
		{float64(29.4), 29},
		{"45", 45},
		{" 7.5 ", 8},
		{json.Number("15"), 15},
		{int64(20), 20},
		{nil, 0},
		{true, 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, durationField(tt.in))
		})
	}
}
