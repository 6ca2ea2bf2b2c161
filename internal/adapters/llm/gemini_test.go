package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/strictpm/core/internal/application/services"
	"github.com/strictpm/core/internal/infrastructure/config"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/ports"
)

func TestToSchemaAddTasksTool(t *testing.T) {
	decl := services.AddTasksDeclaration()
	schema := toSchema(decl.Parameters)

	require.NotNil(t, schema)
	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"tasks"}, schema.Required)

	tasks := schema.Properties["tasks"]
	require.NotNil(t, tasks)
	assert.Equal(t, genai.TypeArray, tasks.Type)

	item := tasks.Items
	require.NotNil(t, item)
	assert.Equal(t, []string{"title", "estimatedDuration", "tag"}, item.Required)
	assert.Equal(t, genai.TypeNumber, item.Properties["estimatedDuration"].Type)
	assert.Equal(t, []string{"Life", "Study", "Work", "Health", "Other"}, item.Properties["tag"].Enum)
	assert.Equal(t, []string{"title"}, item.Properties["subtasks"].Items.Required)
}

func TestToContents(t *testing.T) {
	contents := toContents([]ports.Message{
		{Role: ports.RoleUser, Text: "plan my day"},
		{Role: ports.RoleModel, ToolCalls: []ports.ToolCall{{ID: "c1", Name: "addTasksToSchedule", Args: map[string]any{"tasks": []any{}}}}},
		{Role: ports.RoleUser, ToolResult: &ports.ToolResult{ID: "c1", Name: "addTasksToSchedule", Response: map[string]any{"added": 0}}},
	})

	require.Len(t, contents, 3)

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "plan my day", contents[0].Parts[0].Text)

	assert.Equal(t, "model", contents[1].Role)
	require.NotNil(t, contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "c1", contents[1].Parts[0].FunctionCall.ID)

	require.NotNil(t, contents[2].Parts[0].FunctionResponse)
	assert.Equal(t, "addTasksToSchedule", contents[2].Parts[0].FunctionResponse.Name)
	assert.Equal(t, 0, contents[2].Parts[0].FunctionResponse.Response["added"])
}

func TestToConfig(t *testing.T) {
	temperature := float32(0.5)
	cfg := toConfig(ports.GenerateRequest{
		SystemInstruction: "be brief",
		Temperature:       &temperature,
		MaxOutputTokens:   200,
		Tools:             []ports.ToolDeclaration{services.AddTasksDeclaration()},
	})

	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "be brief", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, float32(0.5), *cfg.Temperature)
	assert.Equal(t, int32(200), cfg.MaxOutputTokens)
	require.Len(t, cfg.Tools, 1)
	assert.Equal(t, "addTasksToSchedule", cfg.Tools[0].FunctionDeclarations[0].Name)

	bare := toConfig(ports.Prompt("news", "hi"))
	assert.Nil(t, bare.SystemInstruction)
	assert.Nil(t, bare.Tools)
}

func TestFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: "model",
				Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{ID: "c9", Name: "addTasksToSchedule", Args: map[string]any{"tasks": []any{}}}},
				},
			},
		}},
	}

	out := fromResponse(resp)
	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, "c9", out.ToolCalls[0].ID)

	text := fromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: "hello "}, {Text: "world"}}},
		}},
	})
	assert.Equal(t, "hello world", text.Text)
	assert.Empty(t, text.ToolCalls)

	assert.Empty(t, fromResponse(nil).Text)
}

func TestNewLimiter(t *testing.T) {
	assert.Equal(t, rate.Inf, newLimiter(0).Limit())
	assert.InDelta(t, 0.5, float64(newLimiter(30).Limit()), 1e-9)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), config.AIConfig{Model: "m", Timeout: time.Second}, logger.NewNop(), nil)
	assert.Error(t, err)
}
