package ports

import (
	"context"
	"errors"

	"github.com/strictpm/core/internal/domain/entities"
)

// ErrKeyNotFound is returned by KeyValueStore.Get for a missing key.
var ErrKeyNotFound = errors.New("key not found")

// Persistence keys
const (
	TasksKey      = "strictpm_tasks"
	NewsKeyPrefix = "strictpm_news_"
)

// NewsKey returns the cache key holding the news text of date (YYYY-MM-DD).
func NewsKey(date string) string {
	return NewsKeyPrefix + date
}

// KeyValueStore defines the durable key-value layer behind the task snapshot
// and the news cache.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// TaskRepository defines the interface for task data operations.
// Every mutation rewrites the persisted snapshot in full.
type TaskRepository interface {
	Load(ctx context.Context) error
	List(ctx context.Context, filter TaskFilter) ([]entities.Task, error)
	GetByID(ctx context.Context, id string) (*entities.Task, error)
	Add(ctx context.Context, tasks ...entities.Task) error
	Replace(ctx context.Context, task entities.Task) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) int
}

// TaskFilter narrows a task listing. Zero value lists everything.
type TaskFilter struct {
	Date   *string
	Status *entities.TaskStatus
	Tag    *entities.TaskTag
}
