package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/ports"
)

const (
	newsPrompt = "请提供一条今天或最近24小时内最重要的全球或中国宏观经济新闻。格式严格要求三行：第一行是简短的标题（20字以内），第二行是新闻摘要（50字以内），第三行是一句核心洞察或对普通人的影响（30字以内）。不要有Markdown格式，不要有额外解释。"

	newsDefaultText  = "市场观察\n今日全球市场波动较小，投资者静待数据发布。\n关注长期价值，保持投资定力。"
	newsFallbackText = "连接超时\n无法获取今日最新财经资讯，请检查网络。\n保持冷静，专注于当下的工作与生活。"

	newsTemperature     float32 = 0.5
	newsMaxOutputTokens int32   = 200
)

// NewsService serves one news blurb per calendar day, cached in the
// key-value store.
type NewsService struct {
	kv       ports.KeyValueStore
	model    ports.LanguageModel
	logger   *logger.Logger
	location *time.Location
	now      func() time.Time
	flights  singleflight.Group
}

var _ ports.NewsService = (*NewsService)(nil)

// NewNewsService creates a new news service
func NewNewsService(kv ports.KeyValueStore, model ports.LanguageModel, loc *time.Location, logger *logger.Logger) *NewsService {
	if loc == nil {
		loc = time.Local
	}
	return &NewsService{
		kv:       kv,
		model:    model,
		logger:   logger.WithComponent("news_service"),
		location: loc,
		now:      time.Now,
	}
}

// GetDailyNews returns today's cached news or fetches it. Concurrent callers
// on a cold cache share a single fetch.
func (s *NewsService) GetDailyNews(ctx context.Context) (*entities.DailyNews, error) {
	date := s.now().In(s.location).Format(entities.DateLayout)
	key := ports.NewsKey(date)

	if news, ok := s.cached(ctx, date, key); ok {
		return news, nil
	}

	// the shared fetch must outlive any single caller
	fetchCtx := context.WithoutCancel(ctx)
	v, _, _ := s.flights.Do(key, func() (interface{}, error) {
		if news, ok := s.cached(fetchCtx, date, key); ok {
			return news, nil
		}
		return s.fetch(fetchCtx, date, key), nil
	})

	news := *v.(*entities.DailyNews)
	return &news, nil
}

func (s *NewsService) cached(ctx context.Context, date, key string) (*entities.DailyNews, bool) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrKeyNotFound) {
			s.logger.WithError(err).Warnw("Failed to read cached news", "key", key)
		}
		return nil, false
	}
	news := ParseNews(date, string(data))
	return &news, true
}

func (s *NewsService) fetch(ctx context.Context, date, key string) *entities.DailyNews {
	temperature := newsTemperature
	req := ports.Prompt("news", newsPrompt)
	req.Temperature = &temperature
	req.MaxOutputTokens = newsMaxOutputTokens

	resp, err := s.model.Generate(ctx, req)
	if err != nil {
		s.logger.WithError(err).Errorw("Failed to fetch news", "date", date)
		news := ParseNews(date, newsFallbackText)
		news.Fallback = true
		return &news
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		s.logger.Warnw("Model returned empty news, using default", "date", date)
		text = newsDefaultText
	}

	if err := s.kv.Set(ctx, key, []byte(text)); err != nil {
		s.logger.WithError(err).Warnw("Failed to cache news", "key", key)
	}

	news := ParseNews(date, text)
	return &news
}

// ParseNews splits text into headline, summary and insight by non-blank lines.
func ParseNews(date, text string) entities.DailyNews {
	news := entities.DailyNews{Date: date, Raw: text}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) > 0 {
		news.Headline = lines[0]
	}
	if len(lines) > 1 {
		news.Summary = lines[1]
	}
	if len(lines) > 2 {
		news.Insight = strings.Join(lines[2:], " ")
	}
	return news
}
