package services

import (
	"context"
	"sync"

	"github.com/strictpm/core/internal/ports"
)

// fakeModel replays scripted responses and records every request.
type fakeModel struct {
	mu        sync.Mutex
	responses []fakeResponse
	requests  []ports.GenerateRequest
	// block, when set, is received from before answering.
	block chan struct{}
}

type fakeResponse struct {
	resp *ports.GenerateResponse
	err  error
}

func newFakeModel(responses ...fakeResponse) *fakeModel {
	return &fakeModel{responses: responses}
}

func reply(text string) fakeResponse {
	return fakeResponse{resp: &ports.GenerateResponse{Text: text}}
}

func toolCall(args map[string]any) fakeResponse {
	return fakeResponse{resp: &ports.GenerateResponse{
		ToolCalls: []ports.ToolCall{{ID: "call-1", Name: AddTasksTool, Args: args}},
	}}
}

func failure(err error) fakeResponse {
	return fakeResponse{err: err}
}

func (m *fakeModel) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// copy the history so later mutations by the caller do not leak in
	req.Messages = append([]ports.Message(nil), req.Messages...)
	m.requests = append(m.requests, req)

	if len(m.responses) == 0 {
		return &ports.GenerateResponse{}, nil
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	return next.resp, next.err
}

func (m *fakeModel) calls() []ports.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.GenerateRequest(nil), m.requests...)
}
