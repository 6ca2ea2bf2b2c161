package entities

import (
	"errors"
	"strings"
	"time"
)

// Common errors
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrSubtaskNotFound   = errors.New("subtask not found")
	ErrDuplicateTaskID   = errors.New("duplicate task id")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidTag        = errors.New("invalid tag")
	ErrInvalidDate       = errors.New("invalid date")
	ErrDateImmutable     = errors.New("task date cannot be changed")
	ErrEmptyMessage      = errors.New("message is empty")
)

// DateLayout is the calendar day format used for task ownership and cache keys.
const DateLayout = "2006-01-02"

// Enums and types
type TaskTag string

const (
	TaskTagLife   TaskTag = "Life"
	TaskTagStudy  TaskTag = "Study"
	TaskTagWork   TaskTag = "Work"
	TaskTagHealth TaskTag = "Health"
	TaskTagOther  TaskTag = "Other"
)

// TaskTags lists every tag in display order.
var TaskTags = []TaskTag{TaskTagLife, TaskTagStudy, TaskTagWork, TaskTagHealth, TaskTagOther}

// ParseTaskTag matches s case-insensitively against the tag enumeration.
func ParseTaskTag(s string) (TaskTag, error) {
	s = strings.TrimSpace(s)
	for _, tag := range TaskTags {
		if strings.EqualFold(string(tag), s) {
			return tag, nil
		}
	}
	return "", ErrInvalidTag
}

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusDeferred   TaskStatus = "deferred"
)

// Task represents a planned unit of work owned by a calendar date.
// Timestamps are unix milliseconds.
type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	EstimatedDuration int        `json:"estimatedDuration"`
	Tag               TaskTag    `json:"tag"`
	Status            TaskStatus `json:"status"`
	Date              string     `json:"date"`
	CreatedAt         int64      `json:"createdAt"`
	ActualStartTime   *int64     `json:"actualStartTime,omitempty"`
	ActualEndTime     *int64     `json:"actualEndTime,omitempty"`
	DeferredCount     int        `json:"deferredCount"`
	Subtasks          []Subtask  `json:"subtasks,omitempty"`
}

// Subtask is a sub-unit of a Task with only a binary completion state.
type Subtask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
	Duration    *int   `json:"duration,omitempty"`
}

type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one entry of the visible chat transcript.
type ChatMessage struct {
	ID        string   `json:"id"`
	Role      ChatRole `json:"role"`
	Text      string   `json:"text"`
	IsSystem  bool     `json:"isSystem,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// DailyNews is the three-line news blurb shown on the dashboard.
type DailyNews struct {
	Date     string `json:"date"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Insight  string `json:"insight"`
	Raw      string `json:"raw"`
	Fallback bool   `json:"fallback"`
}

// DailyStats aggregates one date's tasks.
type DailyStats struct {
	Date                  string `json:"date"`
	TotalTasks            int    `json:"totalTasks"`
	CompletedTasks        int    `json:"completedTasks"`
	DeferredTasks         int    `json:"deferredTasks"`
	TotalEstimatedMinutes int    `json:"totalEstimatedMinutes"`
	CompletedMinutes      int    `json:"completedMinutes"`
	CompletionRate        int    `json:"completionRate"`
}

// DailyReview is the generated summary of one date.
type DailyReview struct {
	Stats           DailyStats `json:"stats"`
	CompletedTitles []string   `json:"completedTitles"`
	PendingTitles   []string   `json:"pendingTitles"`
	Text            string     `json:"text"`
	Fallback        bool       `json:"fallback"`
}

// Business logic methods for Task

// IsCompleted reports whether the task is in the completed state.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// HasSubtasks reports whether the task carries a subtask list.
func (t *Task) HasSubtasks() bool {
	return len(t.Subtasks) > 0
}

// CompletedSubtasks counts finished subtasks.
func (t *Task) CompletedSubtasks() int {
	n := 0
	for _, st := range t.Subtasks {
		if st.IsCompleted {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers never share pointer fields with the store.
func (t Task) Clone() Task {
	if t.ActualStartTime != nil {
		v := *t.ActualStartTime
		t.ActualStartTime = &v
	}
	if t.ActualEndTime != nil {
		v := *t.ActualEndTime
		t.ActualEndTime = &v
	}
	if t.Subtasks != nil {
		subtasks := make([]Subtask, len(t.Subtasks))
		for i, st := range t.Subtasks {
			if st.Duration != nil {
				d := *st.Duration
				st.Duration = &d
			}
			subtasks[i] = st
		}
		t.Subtasks = subtasks
	}
	return t
}

// ComputeDailyStats partitions tasks of a single date into completed and
// not completed. The completion rate of an empty day is 0.
func ComputeDailyStats(date string, tasks []Task) DailyStats {
	stats := DailyStats{Date: date, TotalTasks: len(tasks)}
	for _, t := range tasks {
		stats.TotalEstimatedMinutes += t.EstimatedDuration
		if t.IsCompleted() {
			stats.CompletedTasks++
			stats.CompletedMinutes += t.EstimatedDuration
		}
		if t.DeferredCount > 0 {
			stats.DeferredTasks++
		}
	}
	stats.CompletionRate = CompletionRate(stats.CompletedTasks, stats.TotalTasks)
	return stats
}

// CompletionRate returns round(100*completed/total), or 0 for an empty day.
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	// integer half-up rounding
	return (200*completed + total) / (2 * total)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar day.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
