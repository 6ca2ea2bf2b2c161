package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/ports"
)

const (
	reviewFailedText = "无法生成复盘，请检查网络连接。"
	reviewEmptyText  = "无法生成复盘。"

	reviewDateLayout = "2006年01月02日"
)

// ReviewService builds the end-of-day review for one date.
type ReviewService struct {
	taskRepo ports.TaskRepository
	model    ports.LanguageModel
	logger   *logger.Logger
	location *time.Location
	now      func() time.Time
}

var _ ports.ReviewService = (*ReviewService)(nil)

// NewReviewService creates a new review service
func NewReviewService(taskRepo ports.TaskRepository, model ports.LanguageModel, loc *time.Location, logger *logger.Logger) *ReviewService {
	if loc == nil {
		loc = time.Local
	}
	return &ReviewService{
		taskRepo: taskRepo,
		model:    model,
		logger:   logger.WithComponent("review_service"),
		location: loc,
		now:      time.Now,
	}
}

// GenerateReview aggregates the day's tasks and asks the model for a
// narrative. Model failures degrade to a fixed text, never to an error.
func (s *ReviewService) GenerateReview(ctx context.Context, date string) (*entities.DailyReview, error) {
	if date == "" {
		date = s.now().In(s.location).Format(entities.DateLayout)
	}
	day, err := time.Parse(entities.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("review for %q: %w", date, entities.ErrInvalidDate)
	}

	tasks, err := s.taskRepo.List(ctx, ports.TaskFilter{Date: &date})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	review := &entities.DailyReview{
		Stats:           entities.ComputeDailyStats(date, tasks),
		CompletedTitles: []string{},
		PendingTitles:   []string{},
	}
	for _, t := range tasks {
		if t.IsCompleted() {
			review.CompletedTitles = append(review.CompletedTitles, t.Title)
		} else {
			review.PendingTitles = append(review.PendingTitles, t.Title)
		}
	}

	prompt := buildReviewPrompt(day, review.CompletedTitles, review.PendingTitles)

	resp, err := s.model.Generate(ctx, ports.Prompt("review", prompt))
	switch {
	case err != nil:
		s.logger.WithError(err).Errorw("Failed to generate review", "date", date)
		review.Text = reviewFailedText
		review.Fallback = true
	case strings.TrimSpace(resp.Text) == "":
		s.logger.Warnw("Model returned an empty review", "date", date)
		review.Text = reviewEmptyText
		review.Fallback = true
	default:
		review.Text = resp.Text
	}

	s.logger.Infow("Daily review generated",
		"date", date,
		"completion_rate", review.Stats.CompletionRate,
		"fallback", review.Fallback,
	)

	return review, nil
}

func buildReviewPrompt(day time.Time, completed, pending []string) string {
	return fmt.Sprintf("为用户进行 %s 的复盘。已完成：%s。未完成：%s。请给出分析、建议和鼓励，分段输出。",
		day.Format(reviewDateLayout),
		strings.Join(completed, ", "),
		strings.Join(pending, ", "),
	)
}
