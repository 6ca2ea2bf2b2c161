package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks godoc
// @Summary List tasks
// @Description List tasks in insertion order, optionally filtered by date, status or tag
// @Tags tasks
// @Produce json
// @Param date query string false "Calendar day (YYYY-MM-DD)"
// @Param status query string false "Status filter" Enums(pending, in-progress, completed, deferred)
// @Param tag query string false "Tag filter" Enums(Life, Study, Work, Health, Other)
// @Success 200 {object} ListResponse[entities.Task]
// @Failure 400 {object} ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	var filter ports.TaskFilter

	if date := c.QueryParam("date"); date != "" {
		if !entities.ValidDate(date) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid date parameter")
		}
		filter.Date = &date
	}

	if status := c.QueryParam("status"); status != "" {
		s := entities.TaskStatus(status)
		filter.Status = &s
	}

	if tagStr := c.QueryParam("tag"); tagStr != "" {
		tag, err := entities.ParseTaskTag(tagStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid tag parameter")
		}
		filter.Tag = &tag
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		h.logger.Errorw("List tasks failed", "error", err)
		return err
	}

	return c.JSON(http.StatusOK, ListResponse[entities.Task]{Data: tasks, Total: len(tasks)})
}

// CreateTask godoc
// @Summary Create a task
// @Description Create a pending task; the date defaults to today
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body ports.CreateTaskRequest true "Task data"
// @Success 201 {object} entities.Task
// @Failure 400 {object} ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Create task failed", "error", err)
		return err
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask godoc
// @Summary Get task by ID
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} entities.Task
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	task, err := h.taskService.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask godoc
// @Summary Update a task
// @Description Replace title, duration, tag and subtasks. Date and status are kept.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body ports.UpdateTaskRequest true "Task data"
// @Success 200 {object} entities.Task
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		h.logger.Errorw("Update task failed", "error", err, "task_id", c.Param("id"))
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	if err := h.taskService.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// StartTask godoc
// @Summary Start a task
// @Description Move a pending task to in-progress and record the start time
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} entities.Task
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tasks/{id}/start [post]
func (h *TaskHandler) StartTask(c echo.Context) error {
	task, err := h.taskService.StartTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// ToggleTask godoc
// @Summary Toggle task completion
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} entities.Task
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(c echo.Context) error {
	task, err := h.taskService.ToggleTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// ToggleSubtask godoc
// @Summary Toggle subtask completion
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Param subtaskId path string true "Subtask ID"
// @Success 200 {object} entities.Task
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id}/subtasks/{subtaskId}/toggle [post]
func (h *TaskHandler) ToggleSubtask(c echo.Context) error {
	task, err := h.taskService.ToggleSubtask(c.Request().Context(), c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// GetStats godoc
// @Summary Daily statistics
// @Tags stats
// @Produce json
// @Param date query string false "Calendar day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} entities.DailyStats
// @Failure 400 {object} ErrorResponse
// @Router /stats [get]
func (h *TaskHandler) GetStats(c echo.Context) error {
	stats, err := h.taskService.GetDailyStats(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}
