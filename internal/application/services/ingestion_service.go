package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/infrastructure/metrics"
	"github.com/strictpm/core/internal/ports"
)

// DefaultTaskDuration is used when a descriptor carries no usable duration.
const DefaultTaskDuration = 30

// taskDescriptor is the validated form of one tool-call task entry.
type taskDescriptor struct {
	Title             string              `validate:"required,max=500"`
	EstimatedDuration int                 `validate:"gt=0"`
	Tag               entities.TaskTag    `validate:"required,oneof=Life Study Work Health Other"`
	Date              string              `validate:"required,datetime=2006-01-02"`
	Subtasks          []subtaskDescriptor `validate:"omitempty,dive"`
}

type subtaskDescriptor struct {
	Title    string `validate:"required,max=500"`
	Duration *int   `validate:"omitempty,gt=0"`
}

// IngestionResult is the outcome of one addTasksToSchedule call.
type IngestionResult struct {
	Tasks    []entities.Task
	Rejected []ports.RejectedDescriptor
}

// IngestionService turns loosely typed tool-call arguments into tasks.
type IngestionService struct {
	validate *validator.Validate
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newID    func() string
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(logger *logger.Logger, m *metrics.Metrics) *IngestionService {
	return &IngestionService{
		validate: validator.New(),
		logger:   logger.WithComponent("ingestion"),
		metrics:  m,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Parse reads the "tasks" array of args. Each element is accepted or rejected
// on its own; selectedDate is used for elements without a date.
func (s *IngestionService) Parse(args map[string]any, selectedDate string) IngestionResult {
	var result IngestionResult

	items, ok := args["tasks"].([]any)
	if !ok {
		s.logger.Warnw("Tool call without a tasks array", "args", args)
		return result
	}

	createdAt := s.now().UnixMilli()
	for i, item := range items {
		d, err := s.parseDescriptor(item, selectedDate)
		if err != nil {
			rejected := ports.RejectedDescriptor{Index: i, Reason: err.Error()}
			if m, ok := item.(map[string]any); ok {
				rejected.Title, _ = m["title"].(string)
			}
			result.Rejected = append(result.Rejected, rejected)
			continue
		}
		result.Tasks = append(result.Tasks, s.toTask(d, createdAt))
	}

	s.metrics.ObserveIngestion(len(result.Tasks), len(result.Rejected))
	if len(result.Rejected) > 0 {
		s.logger.Warnw("Rejected task descriptors",
			"accepted", len(result.Tasks),
			"rejected", len(result.Rejected),
		)
	}

	return result
}

func (s *IngestionService) parseDescriptor(item any, selectedDate string) (*taskDescriptor, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return nil, errors.New("task descriptor is not an object")
	}

	d := &taskDescriptor{
		Title:             stringField(m, "title"),
		EstimatedDuration: durationField(m["estimatedDuration"]),
		Date:              stringField(m, "date"),
	}

	if d.EstimatedDuration <= 0 {
		d.EstimatedDuration = DefaultTaskDuration
	}

	tag := stringField(m, "tag")
	if tag == "" {
		d.Tag = entities.TaskTagOther
	} else {
		parsed, err := entities.ParseTaskTag(tag)
		if err != nil {
			return nil, fmt.Errorf("unknown tag %q: %w", tag, err)
		}
		d.Tag = parsed
	}

	if d.Date == "" {
		d.Date = selectedDate
	}

	if raw, present := m["subtasks"]; present && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, errors.New("subtasks is not an array")
		}
		for j, entry := range list {
			sm, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("subtask %d is not an object", j)
			}
			st := subtaskDescriptor{Title: stringField(sm, "title")}
			if dur := durationField(sm["duration"]); dur > 0 {
				st.Duration = &dur
			}
			d.Subtasks = append(d.Subtasks, st)
		}
	}

	if err := s.validate.Struct(d); err != nil {
		return nil, describeValidation(err)
	}

	return d, nil
}

func (s *IngestionService) toTask(d *taskDescriptor, createdAt int64) entities.Task {
	task := entities.Task{
		ID:                s.newID(),
		Title:             d.Title,
		EstimatedDuration: d.EstimatedDuration,
		Tag:               d.Tag,
		Status:            entities.TaskStatusPending,
		Date:              d.Date,
		CreatedAt:         createdAt,
	}
	for _, st := range d.Subtasks {
		task.Subtasks = append(task.Subtasks, entities.Subtask{
			ID:       s.newID(),
			Title:    st.Title,
			Duration: st.Duration,
		})
	}
	return task
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return strings.TrimSpace(v)
}

// durationField accepts JSON numbers and numeric strings and rounds to whole
// minutes. Anything else yields 0.
func durationField(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
		return 0
	}
	return int(math.Round(f))
}

// describeValidation flattens validator errors into one readable reason.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "taskDescriptor.")
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "datetime":
			parts = append(parts, fmt.Sprintf("%s %q is not a YYYY-MM-DD date", field, fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		}
	}
	return errors.New(strings.Join(parts, "; "))
}
