package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/ports"
)

// AddTasksTool is the only tool declared to the model.
const AddTasksTool = "addTasksToSchedule"

const (
	chatWelcomeText   = "你好！我是 CoachPM。我可以帮你规划多天的日程，也可以帮你拆解复杂的任务。请告诉我你的目标。"
	chatAddedText     = "已添加到日程。"
	chatAckText       = "收到。"
	chatErrorText     = "连接出错，请重试。"
	toolSuccessResult = "Tasks successfully added to user schedule."
	toolEmptyResult   = "No tasks were added."

	chatSystemTemplate = `你是一个专业、理性且乐于助人的项目经理助手（CoachPM）。
当前时间：%s。
1. 帮助用户规划日程。
2. 允许跨天规划，确定日期后使用 'addTasksToSchedule' 工具。
当前已有 %d 个任务。`
)

// ErrChatUnavailable is returned when no chat worker is running.
var ErrChatUnavailable = errors.New("chat worker is not running")

var weekdayNames = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// chatSession is the model-side conversation state.
type chatSession struct {
	systemInstruction string
	history           []ports.Message
}

type chatJob struct {
	ctx  context.Context
	req  ports.SendMessageRequest
	done chan chatOutcome
}

type chatOutcome struct {
	reply *ports.ChatReply
	err   error
}

// ChatService is the planning assistant. Messages are processed one at a time
// by a single worker so tool-call rounds never interleave.
type ChatService struct {
	model     ports.LanguageModel
	taskRepo  ports.TaskRepository
	ingestion *IngestionService
	logger    *logger.Logger
	location  *time.Location
	now       func() time.Time
	newID     func() string

	jobs      chan chatJob
	quit      chan struct{}
	stopped   chan struct{}
	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once

	mu         sync.RWMutex
	session    *chatSession
	pending    []ports.Message
	transcript []entities.ChatMessage
}

var _ ports.ChatService = (*ChatService)(nil)

// NewChatService creates a chat service. Call Start before sending messages.
func NewChatService(model ports.LanguageModel, taskRepo ports.TaskRepository, ingestion *IngestionService, loc *time.Location, logger *logger.Logger) *ChatService {
	if loc == nil {
		loc = time.Local
	}
	s := &ChatService{
		model:     model,
		taskRepo:  taskRepo,
		ingestion: ingestion,
		logger:    logger.WithComponent("chat_service"),
		location:  loc,
		now:       time.Now,
		newID:     uuid.NewString,
		jobs:      make(chan chatJob),
		quit:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	s.transcript = []entities.ChatMessage{s.message(entities.ChatRoleModel, chatWelcomeText, false)}
	return s
}

// Start launches the worker. It exits when ctx is done or Stop is called.
func (s *ChatService) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.run(ctx)
	})
}

// Stop asks the worker to exit and waits for the message in flight.
func (s *ChatService) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.quit) })
	if !s.started.Load() {
		return nil
	}
	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ChatService) run(ctx context.Context) {
	defer close(s.stopped)
	s.logger.Info("Chat worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case job := <-s.jobs:
			if err := job.ctx.Err(); err != nil {
				job.done <- chatOutcome{err: err}
				continue
			}
			reply, err := s.process(job.ctx, job.req)
			job.done <- chatOutcome{reply: reply, err: err}
		}
	}
}

// SendMessage queues a user message and waits for the assistant's answer.
func (s *ChatService) SendMessage(ctx context.Context, req ports.SendMessageRequest) (*ports.ChatReply, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, entities.ErrEmptyMessage
	}
	if req.Date != "" && !entities.ValidDate(req.Date) {
		return nil, fmt.Errorf("chat date %q: %w", req.Date, entities.ErrInvalidDate)
	}
	if !s.started.Load() {
		return nil, ErrChatUnavailable
	}

	job := chatJob{ctx: ctx, req: req, done: make(chan chatOutcome, 1)}

	select {
	case s.jobs <- job:
	case <-s.quit:
		return nil, ErrChatUnavailable
	case <-s.stopped:
		return nil, ErrChatUnavailable
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case out := <-job.done:
		return out.reply, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Transcript returns a copy of the visible conversation.
func (s *ChatService) Transcript() []entities.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.ChatMessage(nil), s.transcript...)
}

// InjectModelMessage shows text as an assistant message, e.g. a daily review
// the user wants to discuss. It joins the model history on the next turn.
// Repeating the last message is a no-op.
func (s *ChatService) InjectModelMessage(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.transcript); n > 0 && s.transcript[n-1].Text == text {
		return
	}
	s.transcript = append(s.transcript, s.message(entities.ChatRoleModel, text, false))
	s.pending = append(s.pending, ports.Message{Role: ports.RoleModel, Text: text})
}

// process runs one user turn. Only the worker goroutine calls it.
func (s *ChatService) process(ctx context.Context, req ports.SendMessageRequest) (*ports.ChatReply, error) {
	date := req.Date
	if date == "" {
		date = s.now().In(s.location).Format(entities.DateLayout)
	}

	reply := &ports.ChatReply{}
	reply.Messages = append(reply.Messages, s.appendTranscript(entities.ChatRoleUser, req.Text, false))

	session := s.ensureSession(ctx)

	s.mu.Lock()
	session.history = append(session.history, s.pending...)
	s.pending = nil
	s.mu.Unlock()

	checkpoint := len(session.history)
	session.history = append(session.history, ports.Message{Role: ports.RoleUser, Text: req.Text})

	resp, err := s.generate(ctx, session)
	if err != nil {
		return s.fail(session, checkpoint, reply, err), nil
	}

	call, ok := findAddTasksCall(resp.ToolCalls)
	if !ok {
		text := resp.Text
		if strings.TrimSpace(text) == "" {
			text = chatAckText
		}
		session.history = append(session.history, ports.Message{Role: ports.RoleModel, Text: text})
		reply.Messages = append(reply.Messages, s.appendTranscript(entities.ChatRoleModel, text, false))
		return reply, nil
	}

	result := s.ingestion.Parse(call.Args, date)
	if len(result.Tasks) > 0 {
		if err := s.taskRepo.Add(ctx, result.Tasks...); err != nil {
			return s.fail(session, checkpoint, reply, fmt.Errorf("failed to add tasks: %w", err)), nil
		}
	}
	reply.AddedTasks = result.Tasks
	reply.Rejected = result.Rejected

	for _, t := range result.Tasks {
		s.logger.LogTaskEvent(t.ID, "added_by_assistant", map[string]interface{}{
			"title": t.Title,
			"date":  t.Date,
		})
	}
	reply.Messages = append(reply.Messages, s.appendTranscript(entities.ChatRoleModel, additionNotice(result), true))

	session.history = append(session.history,
		ports.Message{Role: ports.RoleModel, ToolCalls: []ports.ToolCall{call}},
		ports.Message{Role: ports.RoleUser, ToolResult: &ports.ToolResult{
			ID:       call.ID,
			Name:     call.Name,
			Response: toolResponse(result),
		}},
	)
	// the tasks are stored; a failed follow-up must not hide the tool call
	checkpoint = len(session.history)

	followUp, err := s.generate(ctx, session)
	if err != nil {
		return s.fail(session, checkpoint, reply, err), nil
	}

	text := followUp.Text
	if strings.TrimSpace(text) == "" {
		text = chatAddedText
	}
	session.history = append(session.history, ports.Message{Role: ports.RoleModel, Text: text})
	reply.Messages = append(reply.Messages, s.appendTranscript(entities.ChatRoleModel, text, false))

	return reply, nil
}

func (s *ChatService) generate(ctx context.Context, session *chatSession) (*ports.GenerateResponse, error) {
	return s.model.Generate(ctx, ports.GenerateRequest{
		Operation:         "chat",
		SystemInstruction: session.systemInstruction,
		Messages:          append([]ports.Message(nil), session.history...),
		Tools:             []ports.ToolDeclaration{AddTasksDeclaration()},
	})
}

// fail drops the history after checkpoint and shows the error text.
func (s *ChatService) fail(session *chatSession, checkpoint int, reply *ports.ChatReply, err error) *ports.ChatReply {
	s.logger.WithError(err).Error("Chat turn failed")
	session.history = session.history[:checkpoint]
	reply.Messages = append(reply.Messages, s.appendTranscript(entities.ChatRoleModel, chatErrorText, false))
	return reply
}

// ensureSession creates the session on the first message. The system
// instruction captures the task count and date at that moment.
func (s *ChatService) ensureSession(ctx context.Context) *chatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		s.session = &chatSession{
			systemInstruction: fmt.Sprintf(chatSystemTemplate, s.dateContext(), s.taskRepo.Count(ctx)),
		}
		s.logger.Info("Chat session created")
	}
	return s.session
}

func (s *ChatService) dateContext() string {
	now := s.now().In(s.location)
	return fmt.Sprintf("%s (%s)", now.Format(entities.DateLayout), weekdayNames[now.Weekday()])
}

func (s *ChatService) appendTranscript(role entities.ChatRole, text string, system bool) entities.ChatMessage {
	msg := s.message(role, text, system)

	s.mu.Lock()
	s.transcript = append(s.transcript, msg)
	s.mu.Unlock()

	return msg
}

func (s *ChatService) message(role entities.ChatRole, text string, system bool) entities.ChatMessage {
	return entities.ChatMessage{
		ID:        s.newID(),
		Role:      role,
		Text:      text,
		IsSystem:  system,
		Timestamp: s.now().UnixMilli(),
	}
}

// findAddTasksCall returns the first call, if it is addTasksToSchedule with a
// tasks array.
func findAddTasksCall(calls []ports.ToolCall) (ports.ToolCall, bool) {
	if len(calls) == 0 || calls[0].Name != AddTasksTool {
		return ports.ToolCall{}, false
	}
	if _, ok := calls[0].Args["tasks"].([]any); !ok {
		return ports.ToolCall{}, false
	}
	return calls[0], true
}

func toolResponse(result IngestionResult) map[string]any {
	resp := map[string]any{"added": len(result.Tasks)}
	if len(result.Tasks) > 0 {
		resp["result"] = toolSuccessResult
	} else {
		resp["result"] = toolEmptyResult
	}
	if len(result.Rejected) > 0 {
		rejected := make([]any, 0, len(result.Rejected))
		for _, r := range result.Rejected {
			rejected = append(rejected, map[string]any{
				"index":  r.Index,
				"title":  r.Title,
				"reason": r.Reason,
			})
		}
		resp["rejected"] = rejected
	}
	return resp
}

func additionNotice(result IngestionResult) string {
	notice := fmt.Sprintf("已添加 %d 个任务到日程。", len(result.Tasks))
	if n := len(result.Rejected); n > 0 {
		notice += fmt.Sprintf(" %d 个任务格式有误，未能添加。", n)
	}
	return notice
}

// AddTasksDeclaration describes the addTasksToSchedule tool.
func AddTasksDeclaration() ports.ToolDeclaration {
	tags := make([]string, 0, len(entities.TaskTags))
	for _, tag := range entities.TaskTags {
		tags = append(tags, string(tag))
	}

	return ports.ToolDeclaration{
		Name:        AddTasksTool,
		Description: "Add tasks to the user's schedule.",
		Parameters: &ports.Schema{
			Type: ports.SchemaObject,
			Properties: map[string]*ports.Schema{
				"tasks": {
					Type: ports.SchemaArray,
					Items: &ports.Schema{
						Type: ports.SchemaObject,
						Properties: map[string]*ports.Schema{
							"title":             {Type: ports.SchemaString},
							"estimatedDuration": {Type: ports.SchemaNumber},
							"tag":               {Type: ports.SchemaString, Enum: tags},
							"date":              {Type: ports.SchemaString},
							"subtasks": {
								Type: ports.SchemaArray,
								Items: &ports.Schema{
									Type: ports.SchemaObject,
									Properties: map[string]*ports.Schema{
										"title":    {Type: ports.SchemaString},
										"duration": {Type: ports.SchemaNumber},
									},
									Required: []string{"title"},
								},
							},
						},
						Required: []string{"title", "estimatedDuration", "tag"},
					},
				},
			},
			Required: []string{"tasks"},
		},
	}
}
