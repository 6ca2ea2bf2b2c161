package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/strictpm/core/internal/infrastructure/config"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/infrastructure/metrics"
	"github.com/strictpm/core/internal/ports"
)

// GeminiClient implements ports.LanguageModel on the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *logger.Logger
	metrics *metrics.Metrics
}

var _ ports.LanguageModel = (*GeminiClient)(nil)

// NewGeminiClient creates a client for cfg.Model. An API key is required.
func NewGeminiClient(ctx context.Context, cfg config.AIConfig, logger *logger.Logger, m *metrics.Metrics) (*GeminiClient, error) {
	if err := cfg.RequireAI(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: newLimiter(cfg.RequestsPerMinute),
		logger:  logger.WithComponent("gemini"),
		metrics: m,
	}, nil
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Generate performs one GenerateContent round trip.
func (c *GeminiClient) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, toContents(req.Messages), toConfig(req))
	elapsed := time.Since(start)

	c.logger.LogAICall(req.Operation, float64(elapsed.Milliseconds()), err)
	c.metrics.ObserveAICall(req.Operation, elapsed, err)

	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", req.Operation, err)
	}

	return fromResponse(resp), nil
}

func toConfig(req ports.GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	}

	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  toSchema(t.Parameters),
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	return cfg
}

func toContents(messages []ports.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		content := &genai.Content{Role: string(m.Role)}

		switch {
		case m.ToolResult != nil:
			content.Parts = []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
				ID:       m.ToolResult.ID,
				Name:     m.ToolResult.Name,
				Response: m.ToolResult.Response,
			}}}
		case len(m.ToolCalls) > 0:
			for _, call := range m.ToolCalls {
				content.Parts = append(content.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   call.ID,
					Name: call.Name,
					Args: call.Args,
				}})
			}
		default:
			content.Parts = []*genai.Part{{Text: m.Text}}
		}

		contents = append(contents, content)
	}
	return contents
}

var schemaTypes = map[ports.SchemaType]genai.Type{
	ports.SchemaObject:  genai.TypeObject,
	ports.SchemaArray:   genai.TypeArray,
	ports.SchemaString:  genai.TypeString,
	ports.SchemaNumber:  genai.TypeNumber,
	ports.SchemaInteger: genai.TypeInteger,
	ports.SchemaBoolean: genai.TypeBoolean,
}

func toSchema(s *ports.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        schemaTypes[s.Type],
		Description: s.Description,
		Items:       toSchema(s.Items),
		Required:    s.Required,
		Enum:        s.Enum,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
	}
	return out
}

func fromResponse(resp *genai.GenerateContentResponse) *ports.GenerateResponse {
	out := &ports.GenerateResponse{}
	if resp == nil {
		return out
	}

	// Text() concatenates text parts of the first candidate only
	out.Text = resp.Text()
	for _, call := range resp.FunctionCalls() {
		out.ToolCalls = append(out.ToolCalls, ports.ToolCall{
			ID:   call.ID,
			Name: call.Name,
			Args: call.Args,
		})
	}
	return out
}
