package ports

import (
	"context"

	"github.com/strictpm/core/internal/domain/entities"
)

// TaskService interface for task management operations
type TaskService interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	GetTask(ctx context.Context, id string) (*entities.Task, error)
	UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskFilter) ([]entities.Task, error)
	StartTask(ctx context.Context, id string) (*entities.Task, error)
	ToggleTask(ctx context.Context, id string) (*entities.Task, error)
	ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*entities.Task, error)
	GetDailyStats(ctx context.Context, date string) (*entities.DailyStats, error)
}

// ReviewService interface for end-of-day reviews
type ReviewService interface {
	GenerateReview(ctx context.Context, date string) (*entities.DailyReview, error)
}

// NewsService interface for the daily news blurb
type NewsService interface {
	GetDailyNews(ctx context.Context) (*entities.DailyNews, error)
}

// ChatService interface for the planning assistant
type ChatService interface {
	SendMessage(ctx context.Context, req SendMessageRequest) (*ChatReply, error)
	Transcript() []entities.ChatMessage
	InjectModelMessage(text string)
}

// Request/Response Types

// Task related types
type CreateTaskRequest struct {
	Title             string           `json:"title" validate:"required,max=500"`
	EstimatedDuration int              `json:"estimatedDuration" validate:"required,gt=0"`
	Tag               entities.TaskTag `json:"tag" validate:"required,oneof=Life Study Work Health Other"`
	Date              string           `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Subtasks          []SubtaskInput   `json:"subtasks" validate:"omitempty,dive"`
}

type UpdateTaskRequest struct {
	Title             string           `json:"title" validate:"required,max=500"`
	EstimatedDuration int              `json:"estimatedDuration" validate:"required,gt=0"`
	Tag               entities.TaskTag `json:"tag" validate:"required,oneof=Life Study Work Health Other"`
	Date              string           `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Subtasks          []SubtaskInput   `json:"subtasks" validate:"omitempty,dive"`
}

// SubtaskInput carries an optional id so edits keep existing subtask state.
type SubtaskInput struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required,max=500"`
	Duration    *int   `json:"duration" validate:"omitempty,gt=0"`
	IsCompleted bool   `json:"isCompleted"`
}

// Review related types
type ReviewRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	// Discuss posts the review text into the chat as an assistant message.
	Discuss bool `json:"discuss"`
}

// Chat related types
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
	// Date is the currently selected day; tool calls without a date land on it.
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type ChatReply struct {
	Messages   []entities.ChatMessage `json:"messages"`
	AddedTasks []entities.Task        `json:"addedTasks,omitempty"`
	Rejected   []RejectedDescriptor   `json:"rejected,omitempty"`
}

// RejectedDescriptor reports a tool-call task descriptor that failed validation.
type RejectedDescriptor struct {
	Index  int    `json:"index"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason"`
}
