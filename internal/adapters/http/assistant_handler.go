package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/ports"
)

// AssistantHandler serves the AI-backed endpoints: chat, review and news.
type AssistantHandler struct {
	chatService   ports.ChatService
	reviewService ports.ReviewService
	newsService   ports.NewsService
	logger        *logger.Logger
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(chat ports.ChatService, review ports.ReviewService, news ports.NewsService, logger *logger.Logger) *AssistantHandler {
	return &AssistantHandler{
		chatService:   chat,
		reviewService: review,
		newsService:   news,
		logger:        logger,
	}
}

// ListMessages godoc
// @Summary Chat transcript
// @Tags chat
// @Produce json
// @Success 200 {object} ListResponse[entities.ChatMessage]
// @Router /chat/messages [get]
func (h *AssistantHandler) ListMessages(c echo.Context) error {
	messages := h.chatService.Transcript()
	return c.JSON(http.StatusOK, ListResponse[entities.ChatMessage]{Data: messages, Total: len(messages)})
}

// SendMessage godoc
// @Summary Send a chat message
// @Description Messages are answered one at a time. Tool calls from the assistant add tasks to the schedule.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body ports.SendMessageRequest true "Message"
// @Success 200 {object} ports.ChatReply
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /chat/messages [post]
func (h *AssistantHandler) SendMessage(c echo.Context) error {
	var req ports.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	reply, err := h.chatService.SendMessage(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Send message failed", "error", err)
		return err
	}

	return c.JSON(http.StatusOK, reply)
}

// GenerateReview godoc
// @Summary Generate the daily review
// @Description Aggregate a day's tasks and ask the assistant for a review. With discuss=true the review is posted into the chat.
// @Tags review
// @Accept json
// @Produce json
// @Param request body ports.ReviewRequest false "Review options"
// @Success 200 {object} entities.DailyReview
// @Failure 400 {object} ErrorResponse
// @Router /review [post]
func (h *AssistantHandler) GenerateReview(c echo.Context) error {
	var req ports.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	review, err := h.reviewService.GenerateReview(c.Request().Context(), req.Date)
	if err != nil {
		return err
	}

	if req.Discuss && !review.Fallback {
		h.chatService.InjectModelMessage(review.Text)
	}

	return c.JSON(http.StatusOK, review)
}

// GetNews godoc
// @Summary Today's economic news
// @Tags news
// @Produce json
// @Success 200 {object} entities.DailyNews
// @Router /news [get]
func (h *AssistantHandler) GetNews(c echo.Context) error {
	news, err := h.newsService.GetDailyNews(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, news)
}
