package entities

import (
	"fmt"
	"time"
)

// Start moves a pending task to in-progress and records the start time.
func Start(task Task, now time.Time) (Task, error) {
	if task.Status != TaskStatusPending {
		return task, fmt.Errorf("start from %q: %w", task.Status, ErrInvalidTransition)
	}

	next := task.Clone()
	started := now.UnixMilli()
	next.Status = TaskStatusInProgress
	next.ActualStartTime = &started
	return next, nil
}

// ToggleComplete completes any non-completed task, or reopens a completed
// one as pending. The end time is set iff the result is completed.
func ToggleComplete(task Task, now time.Time) Task {
	next := task.Clone()
	if next.IsCompleted() {
		next.Status = TaskStatusPending
		next.ActualEndTime = nil
		return next
	}

	ended := now.UnixMilli()
	next.Status = TaskStatusCompleted
	next.ActualEndTime = &ended
	return next
}

// ToggleSubtask flips one subtask's completion flag. The parent status is
// left untouched.
func ToggleSubtask(task Task, subtaskID string) (Task, error) {
	next := task.Clone()
	for i := range next.Subtasks {
		if next.Subtasks[i].ID == subtaskID {
			next.Subtasks[i].IsCompleted = !next.Subtasks[i].IsCompleted
			return next, nil
		}
	}
	return task, fmt.Errorf("subtask %s: %w", subtaskID, ErrSubtaskNotFound)
}
