package ports

import "context"

// LanguageModel is the external text-generation collaborator. One call is one
// request/response round trip; conversational state travels in Messages.
type LanguageModel interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleModel MessageRole = "model"
)

// Message is one turn of model history. Exactly one of Text, ToolCalls or
// ToolResult is expected to be set.
type Message struct {
	Role       MessageRole
	Text       string
	ToolCalls  []ToolCall
	ToolResult *ToolResult
}

type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

type ToolResult struct {
	ID       string
	Name     string
	Response map[string]any
}

// ToolDeclaration declares a callable tool with a JSON-schema-like parameter shape.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  *Schema
}

type SchemaType string

const (
	SchemaObject  SchemaType = "object"
	SchemaArray   SchemaType = "array"
	SchemaString  SchemaType = "string"
	SchemaNumber  SchemaType = "number"
	SchemaInteger SchemaType = "integer"
	SchemaBoolean SchemaType = "boolean"
)

type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string
	Enum        []string
}

type GenerateRequest struct {
	// Operation labels the call for logs and metrics ("news", "chat", "review").
	Operation         string
	SystemInstruction string
	Messages          []Message
	Tools             []ToolDeclaration
	Temperature       *float32
	MaxOutputTokens   int32
}

type GenerateResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// Prompt is a convenience for single-turn requests.
func Prompt(operation, text string) GenerateRequest {
	return GenerateRequest{
		Operation: operation,
		Messages:  []Message{{Role: RoleUser, Text: text}},
	}
}
